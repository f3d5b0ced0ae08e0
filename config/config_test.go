package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestParse_FullConfig verifies that a complete file parses with every field
// populated.
func TestParse_FullConfig(t *testing.T) {
	data := []byte(`
parallelism: 32

defaults:
  timeout: 10s

drain:
  limit: 8
  interval: 25ms
  total_timeout: 90s

requests:
  - method: GET
    url: https://api.example.com/items
    timeout: 5s
    headers:
      Accept: application/json
  - method: POST
    url: https://example.com/hook
    body: '{"event":"ping"}'
`)

	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Parallelism != 32 {
		t.Errorf("Parallelism = %d, want 32", cfg.Parallelism)
	}
	if got := cfg.Defaults.Timeout.Duration(); got != 10*time.Second {
		t.Errorf("Defaults.Timeout = %v, want 10s", got)
	}
	if cfg.Drain.Limit != 8 {
		t.Errorf("Drain.Limit = %d, want 8", cfg.Drain.Limit)
	}
	if got := cfg.Drain.Interval.Duration(); got != 25*time.Millisecond {
		t.Errorf("Drain.Interval = %v, want 25ms", got)
	}
	if got := cfg.Drain.TotalTimeout.Duration(); got != 90*time.Second {
		t.Errorf("Drain.TotalTimeout = %v, want 90s", got)
	}
	if len(cfg.Requests) != 2 {
		t.Fatalf("len(Requests) = %d, want 2", len(cfg.Requests))
	}
	if got := cfg.Requests[0].Timeout.Duration(); got != 5*time.Second {
		t.Errorf("Requests[0].Timeout = %v, want 5s", got)
	}
	if got := cfg.Requests[0].Headers["Accept"]; got != "application/json" {
		t.Errorf("Requests[0].Headers[Accept] = %q, want application/json", got)
	}
	if cfg.Requests[1].Body != `{"event":"ping"}` {
		t.Errorf("Requests[1].Body = %q, want the literal JSON", cfg.Requests[1].Body)
	}
}

// TestParse_Defaults verifies the defaults applied to a minimal file.
func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(`
requests:
  - url: https://example.com
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Parallelism != 16 {
		t.Errorf("Parallelism = %d, want the default 16", cfg.Parallelism)
	}
	if cfg.Drain.Limit != 16 {
		t.Errorf("Drain.Limit = %d, want the default 16", cfg.Drain.Limit)
	}
	if got := cfg.Drain.Interval.Duration(); got != 50*time.Millisecond {
		t.Errorf("Drain.Interval = %v, want the default 50ms", got)
	}
	if got := cfg.Drain.TotalTimeout.Duration(); got != 60*time.Second {
		t.Errorf("Drain.TotalTimeout = %v, want the default 60s", got)
	}
	if got := cfg.Defaults.Timeout.Duration(); got != 0 {
		t.Errorf("Defaults.Timeout = %v, want unset", got)
	}
}

// TestParse_Errors verifies shape validation.
func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{
			name:    "invalid yaml",
			data:    "requests: [",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "no requests",
			data:    "parallelism: 4",
			wantErr: "at least one request",
		},
		{
			name: "missing url",
			data: `
requests:
  - method: GET
`,
			wantErr: "url is required",
		},
		{
			name: "negative parallelism",
			data: `
parallelism: -2
requests:
  - url: https://example.com
`,
			wantErr: "parallelism must be positive",
		},
		{
			name: "negative drain limit",
			data: `
drain:
  limit: -1
requests:
  - url: https://example.com
`,
			wantErr: "drain.limit must be positive",
		},
		{
			name: "bad duration",
			data: `
requests:
  - url: https://example.com
    timeout: soon
`,
			wantErr: "invalid duration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("Parse() error = nil, want an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Parse() error = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

// TestParse_EnvExpansion verifies ${VAR} and ${VAR:-default} substitution in
// URLs and header values.
func TestParse_EnvExpansion(t *testing.T) {
	t.Setenv("FETCHQ_TEST_HOST", "api.example.com")
	t.Setenv("FETCHQ_TEST_TOKEN", "s3cret")

	cfg, err := Parse([]byte(`
requests:
  - url: https://${FETCHQ_TEST_HOST}/v1/items
    headers:
      Authorization: Bearer ${FETCHQ_TEST_TOKEN}
      X-Region: ${FETCHQ_TEST_REGION:-eu-west-1}
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	rc := cfg.Requests[0]
	if rc.URL != "https://api.example.com/v1/items" {
		t.Errorf("URL = %q, want the expanded host", rc.URL)
	}
	if got := rc.Headers["Authorization"]; got != "Bearer s3cret" {
		t.Errorf("Authorization = %q, want the expanded token", got)
	}
	if got := rc.Headers["X-Region"]; got != "eu-west-1" {
		t.Errorf("X-Region = %q, want the fallback default", got)
	}
}

// TestParse_EnvExpansionMissingVar verifies that an unset variable without a
// default is an error.
func TestParse_EnvExpansionMissingVar(t *testing.T) {
	_, err := Parse([]byte(`
requests:
  - url: https://example.com
    headers:
      Authorization: Bearer ${FETCHQ_DEFINITELY_UNSET_VAR}
`))
	if err == nil {
		t.Fatal("Parse() error = nil, want a missing-variable error")
	}
	if !strings.Contains(err.Error(), "FETCHQ_DEFINITELY_UNSET_VAR") {
		t.Errorf("Parse() error = %q, want it to name the variable", err)
	}
}

// TestLoad verifies reading a config from disk.
func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.yaml")
	data := []byte(`
requests:
  - url: https://example.com/ping
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Requests) != 1 || cfg.Requests[0].URL != "https://example.com/ping" {
		t.Errorf("Load() requests = %+v, want the single ping request", cfg.Requests)
	}
}

// TestLoad_MissingFile verifies the error for a nonexistent path.
func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Load() error = nil, want a read error")
	}
	if !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("Load() error = %q, want a read failure", err)
	}
}
