// Command lifecycle runs scripted effect lifecycle scenarios.
package main

import (
	"fmt"
	"os"

	"github.com/go-drift/lifecycle/cmd/lifecycle/cmd"
)

func main() {
	if err := cmd.Execute(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cmd.ExitCode(err))
	}
}
