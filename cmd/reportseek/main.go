// Package main provides the entry point for the reportseek CLI.
package main

import (
	"os"

	"github.com/reportseek/reportseek/cmd/reportseek/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
