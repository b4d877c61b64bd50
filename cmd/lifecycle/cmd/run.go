package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/go-drift/lifecycle/cmd/lifecycle/internal/config"
	"github.com/go-drift/lifecycle/cmd/lifecycle/internal/scenario"
)

func init() {
	RegisterCommand(newRunCommand)
}

// runOptions holds flags for the run command.
type runOptions struct {
	RunID         string
	Realtime      bool
	SettleTimeout time.Duration
	NoColor       bool
}

func newRunCommand(root *RootOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>...",
		Short: "Run scenarios and print their traces",
		Long: `Run one or more scenario files and print the event trace of each.

Each scenario declares components bound to scripted coroutines and a
script of host actions (mount, unmount, remount, render, flush, frame,
settle). Effect defaults come from lifecycle.yaml at the root of the
enclosing Go module, or from --config.

The command exits with status 1 if any scenario fails its expectations.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(cmd, root, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.RunID, "run-id", "", "fixed run id (default: the scenario's run_id, or a generated UUIDv7)")
	cmd.Flags().BoolVar(&opts.Realtime, "realtime", false, "pace frame actions with a display link instead of a simulated clock")
	cmd.Flags().DurationVar(&opts.SettleTimeout, "settle-timeout", scenario.DefaultSettleTimeout, "upper bound for each settle action")
	cmd.Flags().BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
	return cmd
}

func runScenarios(cmd *cobra.Command, root *RootOptions, opts *runOptions, paths []string) error {
	cfg, err := root.resolveConfig()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	out := cmd.OutOrStdout()
	color := root.Format == "text" && !opts.NoColor && isTerminal(out)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	failed := 0
	for _, path := range paths {
		s, err := scenario.Load(path)
		if err != nil {
			return WrapExitError(ExitCommandError, path, err)
		}
		res, err := scenario.Run(ctx, s, scenario.Options{
			Config:        cfg,
			RunID:         opts.RunID,
			SettleTimeout: opts.SettleTimeout,
			Realtime:      opts.Realtime,
			Logger:        root.logger(cmd),
		})
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("%s: run failed", path), err)
		}

		if root.Format == "json" {
			err = scenario.WriteJSON(out, res)
		} else {
			err = scenario.WriteText(out, res, color)
		}
		if err != nil {
			return err
		}
		if !res.Passed() {
			failed++
		}
	}

	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", failed))
	}
	return nil
}

// resolveConfig loads the file named by --config, or lifecycle.yaml at the
// root of the enclosing Go module. Outside a module the defaults apply.
func (o *RootOptions) resolveConfig() (*config.Resolved, error) {
	if o.ConfigPath != "" {
		cfg, err := config.Load(o.ConfigPath)
		if err != nil {
			return nil, err
		}
		return cfg.Resolve(filepath.Dir(o.ConfigPath))
	}
	root, err := config.FindProjectRoot()
	if err != nil {
		return (&config.Config{}).Resolve("")
	}
	return config.Resolve(root)
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
