package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-drift/lifecycle/cmd/lifecycle/internal/scenario"
)

func init() {
	RegisterCommand(newCheckCommand)
}

// checkResult is the outcome of checking one scenario file.
type checkResult struct {
	Path       string `json:"path"`
	Name       string `json:"name,omitempty"`
	Components int    `json:"components"`
	Actions    int    `json:"actions"`
	Error      string `json:"error,omitempty"`
}

func newCheckCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check <scenario.yaml>...",
		Short: "Validate scenario files and configuration without running them",
		Long: `Parse and validate scenario files.

Unknown fields, undeclared components and actions that set more than one
kind are reported. The effective configuration is resolved as well, so an
invalid lifecycle.yaml fails the check.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := root.resolveConfig(); err != nil {
				return WrapExitError(ExitCommandError, "failed to load config", err)
			}

			results := make([]checkResult, 0, len(args))
			invalid := 0
			for _, path := range args {
				r := checkResult{Path: path}
				s, err := scenario.Load(path)
				if err != nil {
					r.Error = err.Error()
					invalid++
				} else {
					r.Name = s.Name
					r.Components = len(s.Components)
					r.Actions = len(s.Script)
				}
				results = append(results, r)
			}

			out := cmd.OutOrStdout()
			if root.Format == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(results); err != nil {
					return err
				}
			} else {
				for _, r := range results {
					if r.Error != "" {
						fmt.Fprintf(out, "invalid %s: %s\n", r.Path, r.Error)
						continue
					}
					fmt.Fprintf(out, "ok %s (%s: %d components, %d actions)\n", r.Path, r.Name, r.Components, r.Actions)
				}
			}

			if invalid > 0 {
				return NewExitError(ExitCommandError, fmt.Sprintf("%d scenario file(s) invalid", invalid))
			}
			return nil
		},
	}
}
