package plan

// EnterScope pushes tag onto the plan's current scope stack and returns a
// function that pops it. Callers that cannot structure their code as a
// single scoped block should defer the returned function immediately to
// guarantee the pop happens on every exit path:
//
//	leave := plan.EnterScope("fetch")
//	defer leave()
func (p *Plan) EnterScope(tag string) func() {
	p.scope = append(p.scope, tag)
	depth := len(p.scope)
	popped := false
	return func() {
		if popped || len(p.scope) != depth {
			return
		}
		popped = true
		p.scope = p.scope[:depth-1]
	}
}

// WithScope runs fn with tag pushed onto the current scope stack,
// guaranteeing the tag is popped whether fn returns an error, panics, or
// returns normally.
func (p *Plan) WithScope(tag string, fn func() error) (err error) {
	leave := p.EnterScope(tag)
	defer leave()
	return fn()
}

// CurrentScope returns a copy of the plan's active scope stack.
func (p *Plan) CurrentScope() []string {
	return p.currentScope()
}
