package cli

import (
	"github.com/spf13/cobra"

	"tview/internal/app"
	"tview/internal/config"
)

// replCmd runs the command line directly, without the dashboard screen.
// It is the non-tty entry point.
func replCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Run the command line without the dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := config.Dir()
			if err != nil {
				return err
			}
			a, err := app.New(dir)
			if err != nil {
				return err
			}
			return a.RunREPL()
		},
	}
}
