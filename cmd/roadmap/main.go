// Package main is the entry point for the roadmap CLI tool.
package main

import (
	"os"

	"github.com/aidanlsb/roadmap/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
