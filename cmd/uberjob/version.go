package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var versionCardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	Padding(0, 1)

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Display build information",
		RunE: func(cmd *cobra.Command, args []string) error {
			body := fmt.Sprintf(
				"überjob\nVersion: %s\nCommit:  %s\nBuilt:   %s",
				version, commit, date,
			)
			fmt.Fprintln(cmd.OutOrStdout(), versionCardStyle.Render(body))
			return nil
		},
	}

	return cmd
}
