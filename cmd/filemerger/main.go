// Package main provides the entry point for the filemerger CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rickgao/tickmerge/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		// Usage errors were already reported with the usage text.
		if !errors.Is(err, cli.ErrUsage) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
