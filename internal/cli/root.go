// Package cli wires the cobra commands for permsim.
package cli

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/glorpus-work/permsim/internal/logger"
	"github.com/glorpus-work/permsim/pkg/config"
	"github.com/glorpus-work/permsim/pkg/engine"
	"github.com/glorpus-work/permsim/pkg/exclude"
	"github.com/glorpus-work/permsim/pkg/permspec"
	"github.com/glorpus-work/permsim/pkg/report"
	"github.com/glorpus-work/permsim/pkg/walker"
)

// NewRootCmd creates the root command. The root command itself runs a
// simulation session; parsing and validation failures abort before any
// mutation.
func NewRootCmd() *cobra.Command {
	var (
		configPath  string
		permissions string
		excludePat  string
		recursive   bool
		verbose     bool
		noColor     bool
		noRestore   bool
		hold        time.Duration
	)

	cmd := &cobra.Command{
		Use:   "permsim [flags] <target-path>",
		Short: "Simulate permission denied conditions on a directory tree",
		Long: `permsim applies a permission mask to the files and directories under a
target path so that software can be exercised against restricted-access
scenarios. Every change is recorded in an undo log and reverted when the
run ends or is interrupted; pass --no-restore to leave the simulated
state in place.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			s := cfg.Settings
			if cmd.Flags().Changed("permissions") {
				s.Permissions = permissions
			}
			if cmd.Flags().Changed("exclude") {
				s.Exclude = excludePat
			}
			if cmd.Flags().Changed("recursive") {
				s.Recursive = recursive
			}
			if cmd.Flags().Changed("no-restore") {
				s.NoRestore = noRestore
			}
			if cmd.Flags().Changed("hold") {
				s.Hold = config.Duration(hold)
			}
			if cmd.Flags().Changed("verbose") {
				s.Verbose = verbose
			}
			if cmd.Flags().Changed("no-color") {
				s.NoColor = noColor
			}

			return runSession(cmd, args[0], s)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file path (default: auto-detect)")
	cmd.Flags().StringVarP(&permissions, "permissions", "p", config.DefaultPermissions,
		"permission string to apply, octal (0644) or symbolic (u+rwx,g-w)")
	cmd.Flags().StringVarP(&excludePat, "exclude", "e", "",
		"glob pattern for paths to exclude from permission changes")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false,
		"apply permission changes recursively to subdirectories")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	cmd.Flags().BoolVar(&noRestore, "no-restore", false,
		"leave the simulated permissions applied instead of restoring on exit")
	cmd.Flags().DurationVar(&hold, "hold", 0,
		"hold the simulated state for this duration before restoring (default: until interrupted)")

	cmd.AddCommand(
		NewConfigCmd(),
		NewVersionCmd(),
	)

	return cmd
}

func loadConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		defaultPath, err := config.GetDefaultConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get default config path: %w", err)
		}
		configPath = defaultPath
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// runSession validates the inputs, runs the mutation engine and renders the
// report. The returned error is nil only when every candidate was applied
// and restored cleanly.
func runSession(cmd *cobra.Command, target string, s config.Settings) error {
	logger.InitLogger(s.Verbose)
	if s.NoColor {
		color.NoColor = true
	}

	spec, err := permspec.Parse(s.Permissions)
	if err != nil {
		return err
	}
	pattern, err := exclude.Compile(s.Exclude)
	if err != nil {
		return err
	}
	w, err := walker.New(target, s.Recursive)
	if err != nil {
		return err
	}

	logger.Debug("starting session", logger.Fields{
		"root":      w.Root(),
		"mode":      spec.Octal(),
		"exclude":   pattern.Raw(),
		"recursive": s.Recursive,
	})

	eng := engine.New(w, pattern, spec, engine.Options{
		Recursive:       s.Recursive,
		Restore:         !s.NoRestore,
		Hold:            time.Duration(s.Hold),
		HoldUntilCancel: !s.NoRestore && s.Hold == 0,
	})

	rep, runErr := eng.Run(cmd.Context())
	rep.Render(cmd.OutOrStdout(), s.Verbose)

	if runErr != nil {
		return runErr
	}
	if rep.HasFailures() {
		return fmt.Errorf("%d path(s) failed",
			rep.Count(report.StatusFailed)+rep.Count(report.StatusRestoreFailed))
	}
	return nil
}
