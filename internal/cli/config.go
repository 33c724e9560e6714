package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/permsim/pkg/config"
)

// tabWidth is the width of tabs in formatted output.
const tabWidth = 2

// NewConfigCmd creates the config command with subcommands.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  "View and initialize permsim configuration defaults",
	}

	cmd.AddCommand(
		newConfigShowCmd(),
		newConfigInitCmd(),
	)

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the session defaults the next run will use",
		RunE:  runConfigShow,
	}
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file",
		Long:  "Create a configuration file with the default session settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration file")

	return cmd
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	path, err := config.GetDefaultConfigPath()
	if err != nil {
		return err
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return err
	}

	s := cfg.Settings
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, tabWidth, ' ', 0)
	_, _ = fmt.Fprintln(w, "SETTING\tVALUE")
	_, _ = fmt.Fprintln(w, "-------\t-----")
	_, _ = fmt.Fprintf(w, "permissions\t%s\n", s.Permissions)
	_, _ = fmt.Fprintf(w, "exclude\t%s\n", s.Exclude)
	_, _ = fmt.Fprintf(w, "recursive\t%t\n", s.Recursive)
	_, _ = fmt.Fprintf(w, "no_restore\t%t\n", s.NoRestore)
	_, _ = fmt.Fprintf(w, "hold\t%s\n", s.Hold)
	_, _ = fmt.Fprintf(w, "verbose\t%t\n", s.Verbose)
	_, _ = fmt.Fprintf(w, "no_color\t%t\n", s.NoColor)
	return w.Flush()
}

func runConfigInit(cmd *cobra.Command, force bool) error {
	path, err := config.GetDefaultConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
	}

	if err := config.DefaultConfig().SaveConfig(path); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created config file at %s\n", path)
	return nil
}
