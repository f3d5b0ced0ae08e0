package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/fetchq/config"
)

// validateCmd validates a batch file without executing it.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a batch file",
	Long: `Validate a fetchq batch file without submitting any requests.

This command parses the YAML, expands environment variables, and builds
every request through the SDK constructors, so method names, URLs, headers,
and timeouts are all checked. It's useful for CI/CD pipelines or
pre-deployment checks.

Exit codes:
  0 - Batch is valid
  1 - Batch is invalid (error details printed to stderr)

Example:
  fetchq validate -c batch.yaml
  fetchq validate --config /etc/fetchq/batch.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to batch file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	requests, err := config.BuildRequests(cfg)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Count requests carrying their own timeout vs the default
	withTimeout := 0
	for _, req := range requests {
		if _, ok := req.Timeout(); ok {
			withTimeout++
		}
	}

	fmt.Printf("Batch is valid!\n")
	fmt.Printf("  Parallelism:   %d\n", cfg.Parallelism)
	fmt.Printf("  Drain:         limit %d every %s, total %s\n",
		cfg.Drain.Limit, cfg.Drain.Interval.Duration(), cfg.Drain.TotalTimeout.Duration())
	fmt.Printf("  Requests:      %d (%d with a timeout)\n", len(requests), withTimeout)

	return nil
}
