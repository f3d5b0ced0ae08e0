package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jpalmerr/fetchq"
)

// tick mirrors a host main loop: a fixed cadence with a bounded drain
// budget per iteration, so HTTP work can never starve the loop's other work.
const (
	tickInterval = 50 * time.Millisecond
	drainBudget  = 8
)

func main() {
	// start mock server (see mock_server.go)
	addr := StartMockServer(":9999")
	time.Sleep(100 * time.Millisecond)

	q, err := fetchq.New(fetchq.WithParallelism(8))
	if err != nil {
		slog.Error("failed to create queue", "error", err)
		os.Exit(1)
	}
	defer q.Stop()

	// a mixed batch: fast, slow, failing, and one we cancel on purpose
	submit := func(method fetchq.Method, url string, opts ...fetchq.RequestOption) *fetchq.RequestCancellation {
		req, err := fetchq.NewRequest(method, url, opts...)
		if err != nil {
			slog.Error("failed to build request", "url", url, "error", err)
			os.Exit(1)
		}
		return q.Submit(req, func(resp *fetchq.Response, err error) {
			if err != nil {
				fmt.Printf("FAIL %-6s %s: %v\n", method, url, err)
				return
			}
			fmt.Printf("%-4d %-6s %s (%d bytes)\n", resp.StatusCode, method, url, len(resp.Body))
		})
	}

	submit(fetchq.MethodGet, "http://"+addr+"/ok")
	submit(fetchq.MethodPost, "http://"+addr+"/echo",
		fetchq.WithBody([]byte(`{"hello":"fetchq"}`)),
		fetchq.WithHeader("Content-Type", "application/json"),
	)
	submit(fetchq.MethodGet, "http://"+addr+"/slow?delay=200ms",
		fetchq.WithTimeout(2*time.Second),
	)
	submit(fetchq.MethodGet, "http://"+addr+"/slow?delay=10s",
		fetchq.WithTimeout(500*time.Millisecond), // will time out
	)

	doomed := submit(fetchq.MethodGet, "http://"+addr+"/slow?delay=10s")
	doomed.Cancel() // will be cancelled before it resolves

	// host loop: tick until every outcome has been delivered
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for q.PendingCount() > 0 {
		<-ticker.C
		if n := q.DrainWithLimit(drainBudget, tickInterval/2); n > 0 {
			slog.Debug("tick drained outcomes", "count", n)
		}
		// ... the rest of the host's per-tick work would run here ...
	}

	fmt.Println("all outcomes delivered")
}
