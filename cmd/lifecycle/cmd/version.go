package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func init() {
	RegisterCommand(newVersionCommand)
}

func newVersionCommand(*RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "lifecycle version %s (built %s, %s)\n", Version, BuildTime, runtime.Version())
		},
	}
}
