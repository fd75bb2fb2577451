// Package main is the entry point for the postflow CLI.
// The CLI is the operator terminal tool for interacting with the postflow API.
package main

import (
	"os"

	"postflow/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
