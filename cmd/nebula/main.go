// Package main is the entry point for the Nebula CLI.
package main

import (
	"os"

	"github.com/nebulaai/nebula/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
