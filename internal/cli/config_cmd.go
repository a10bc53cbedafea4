package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"tview/internal/config"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and bootstrap the configuration",
	}
	cmd.AddCommand(configInitCmd(), configShowCmd())
	return cmd
}

// configInitCmd prints a commented default config to stdout; the user
// redirects it into $TETRA_DIR/tview.toml.
func configInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Print a commented default configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.Print(config.Default(), cmd.OutOrStdout())
		},
	}
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := config.Dir()
			if err != nil {
				return err
			}
			path := config.Path(dir)
			cfg, found, err := config.Load(path)
			if err != nil {
				return err
			}
			if !found {
				fmt.Fprintf(cmd.OutOrStdout(), "# no file at %s; showing defaults\n\n", path)
			}
			return config.Print(cfg, cmd.OutOrStdout())
		},
	}
}
