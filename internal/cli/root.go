// Package cli defines the tview command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"tview/internal/app"
	"tview/internal/config"
	"tview/internal/tui/theme"
)

var (
	themeName string
	debugLog  bool

	// Build information - set via ldflags.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "tview",
	Short: "Interactive dashboard for multi-environment infrastructure",
	Long: `tview is a terminal dashboard for navigating infrastructure along two
axes: environment (TETRA, LOCAL, DEV, STAGING, PROD, QA) and mode
(CONFIG, KEYS, SERVICES, DEPLOY, ORG, REMOTE).

It needs TETRA_DIR pointing at your data directory; TETRA_SRC may point
at a source checkout for git facts.

Quick start:
  export TETRA_DIR=~/tetra
  tview config init > $TETRA_DIR/tview.toml
  tview`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		theme.Set(theme.FromName(themeName))
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := config.Dir()
		if err != nil {
			return err
		}
		if !isatty.IsTerminal(os.Stdin.Fd()) || !isatty.IsTerminal(os.Stdout.Fd()) {
			return fmt.Errorf("tview needs an interactive terminal; try `tview repl`")
		}
		a, err := app.New(dir)
		if err != nil {
			return err
		}
		if debugLog {
			if err := a.EnableDebug(); err != nil {
				return err
			}
		}
		return a.Run()
	},
}

// Execute runs the command tree.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&themeName, "theme", "auto", "color theme (auto, mocha, latte, plain)")
	rootCmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "write diagnostics to a log file under the cache dir")

	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(replCmd())
	rootCmd.AddCommand(versionCmd())
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tview %s (commit %s, built %s)\n", Version, Commit, Date)
		},
	}
}
