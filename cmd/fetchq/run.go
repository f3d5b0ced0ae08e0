package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/fetchq"
	"github.com/jpalmerr/fetchq/config"
)

// newLogger creates a JSON logger for CLI use.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// runCmd submits a configured batch and drains until done.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Submit a batch of requests and report outcomes",
	Long: `Submit a batch of requests and report outcomes.

The command will:
  - Load the batch from the specified YAML file
  - Submit every request to one queue
  - Drain outcomes in rate-limited batches until all requests resolve
    or the configured total timeout elapses

Each outcome is printed as it is drained. The exit code is non-zero if
any request failed or the total timeout expired with requests pending.

Example:
  fetchq run -c batch.yaml
  fetchq run --config /etc/fetchq/batch.yaml --verbose`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("config", "c", "", "path to batch file (required)")
	runCmd.Flags().BoolP("verbose", "v", false, "enable debug logging")
	_ = runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := newLogger(verbose)

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	requests, err := config.BuildRequests(cfg)
	if err != nil {
		return fmt.Errorf("failed to build requests: %w", err)
	}

	logger.Info("batch loaded",
		"requests", len(requests),
		"parallelism", cfg.Parallelism,
	)

	queue, err := fetchq.New(
		fetchq.WithParallelism(cfg.Parallelism),
		fetchq.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create queue: %w", err)
	}
	defer queue.Stop()

	failures := 0
	for _, req := range requests {
		req := req
		queue.Submit(req, func(resp *fetchq.Response, err error) {
			if err != nil {
				failures++
				fmt.Printf("FAIL %-6s %s: %v\n", req.Method(), req.URL(), err)
				return
			}
			fmt.Printf("%-4d %-6s %s (%d bytes)\n",
				resp.StatusCode, req.Method(), req.URL(), len(resp.Body))
		})
	}

	// drain in rate-limited batches, like a host tick loop would
	interval := cfg.Drain.Interval.Duration()
	deadline := time.Now().Add(cfg.Drain.TotalTimeout.Duration())
	for queue.PendingCount() > 0 && time.Now().Before(deadline) {
		if queue.DrainWithLimit(cfg.Drain.Limit, interval) == 0 {
			time.Sleep(interval)
		}
	}

	if pending := queue.PendingCount(); pending > 0 {
		return fmt.Errorf("total timeout elapsed with %d requests pending", pending)
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d requests failed", failures, len(requests))
	}

	logger.Info("batch complete", "requests", len(requests))
	return nil
}
