// Package cmd implements the lifecycle CLI commands.
//
// The root command dispatches to subcommands (run, check, version) that
// load scenario files and drive them through real effect controllers.
package cmd

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/go-drift/lifecycle/pkg/effect"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// commands registered with the CLI, in registration order.
var commands []func(opts *RootOptions) *cobra.Command

// RegisterCommand adds a subcommand constructor to the CLI.
func RegisterCommand(newCommand func(opts *RootOptions) *cobra.Command) {
	commands = append(commands, newCommand)
}

// NewRootCommand creates the root command for the lifecycle CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	var prevLogger *slog.Logger

	cmd := &cobra.Command{
		Use:   "lifecycle",
		Short: "lifecycle - scripted effect lifecycles",
		Long: `lifecycle drives coroutine-backed effects through mount, unmount and
frame ticks from YAML scenarios, and prints the resulting event trace.

Use "lifecycle <command> --help" for more information about a command.`,
		Version:       fmt.Sprintf("%s (built %s)", Version, BuildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			if opts.Verbose {
				prevLogger = effect.SetLogger(opts.logger(cmd))
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if prevLogger != nil {
				effect.SetLogger(prevLogger)
				prevLogger = nil
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to lifecycle.yaml (default: discovered from the enclosing Go module)")

	for _, newCommand := range commands {
		cmd.AddCommand(newCommand(opts))
	}
	return cmd
}

// logger returns the diagnostic logger for cmd. Verbose output goes to
// stderr at debug level; otherwise only warnings are shown.
func (o *RootOptions) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// Execute runs the CLI with the given arguments.
func Execute(args []string) error {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	return cmd.Execute()
}
