// Package main is the entry point for the codegauge CLI.
package main

import (
	"fmt"
	"os"

	"github.com/imyousuf/codegauge/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.ExitCode(err))
	}
}
