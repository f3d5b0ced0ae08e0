// Package main is the entry point for the fetchq CLI.
//
// fetchq can be used either as a library (SDK) or as a standalone binary
// that fires a YAML-defined batch of requests. This CLI provides the
// standalone binary approach.
//
// Usage:
//
//	fetchq run -c batch.yaml      # Submit the batch and report outcomes
//	fetchq validate -c batch.yaml # Validate configuration
//	fetchq mock --port 9095       # Run a mock target server for demos
//	fetchq version                # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "fetchq",
	Short: "An asynchronous HTTP request batch runner",
	Long: `fetchq submits a batch of HTTP requests concurrently and reports
their outcomes as they complete.

The same engine is available as an embeddable Go library for hosts that
need async HTTP without blocking their main loop.

Quick start:
  1. Create a batch file (batch.yaml)
  2. Run: fetchq run -c batch.yaml

Example batch:
  parallelism: 32
  defaults:
    timeout: 10s
  requests:
    - method: GET
      url: https://api.github.com
    - method: POST
      url: https://example.com/hook
      body: '{"event":"ping"}'`,
	// No Run/RunE means this just shows help when called without subcommands
}

// versionCmd prints build information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fetchq %s (commit %s, built %s)\n", version, commit, date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}
