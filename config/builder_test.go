package config

import (
	"strings"
	"testing"
	"time"

	"github.com/jpalmerr/fetchq"
)

// TestBuildRequests verifies the conversion from parsed config into SDK
// requests.
func TestBuildRequests(t *testing.T) {
	cfg, err := Parse([]byte(`
defaults:
  timeout: 10s

requests:
  - url: https://example.com/a
  - method: post
    url: https://example.com/b
    body: payload
    timeout: 2s
    headers:
      Content-Type: text/plain
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	requests, err := BuildRequests(cfg)
	if err != nil {
		t.Fatalf("BuildRequests() error = %v", err)
	}
	if len(requests) != 2 {
		t.Fatalf("len(requests) = %d, want 2", len(requests))
	}

	// first request: method defaults to GET, timeout from defaults
	if got := requests[0].Method(); got != fetchq.MethodGet {
		t.Errorf("requests[0].Method() = %v, want GET", got)
	}
	if d, ok := requests[0].Timeout(); !ok || d != 10*time.Second {
		t.Errorf("requests[0].Timeout() = (%v, %v), want (10s, true)", d, ok)
	}

	// second request: lowercase method normalized, own timeout wins
	if got := requests[1].Method(); got != fetchq.MethodPost {
		t.Errorf("requests[1].Method() = %v, want POST", got)
	}
	if d, ok := requests[1].Timeout(); !ok || d != 2*time.Second {
		t.Errorf("requests[1].Timeout() = (%v, %v), want (2s, true)", d, ok)
	}
	if got := string(requests[1].Body()); got != "payload" {
		t.Errorf("requests[1].Body() = %q, want %q", got, "payload")
	}
	if got := requests[1].Headers().Get("Content-Type"); got != "text/plain" {
		t.Errorf("requests[1] Content-Type = %q, want text/plain", got)
	}
}

// TestBuildRequests_NoDefaultTimeout verifies that requests stay unbounded
// when neither the request nor the defaults carry a timeout.
func TestBuildRequests_NoDefaultTimeout(t *testing.T) {
	cfg, err := Parse([]byte(`
requests:
  - url: https://example.com
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	requests, err := BuildRequests(cfg)
	if err != nil {
		t.Fatalf("BuildRequests() error = %v", err)
	}
	if d, ok := requests[0].Timeout(); ok {
		t.Errorf("Timeout() = (%v, true), want no timeout", d)
	}
}

// TestBuildRequests_Errors verifies that SDK-level validation surfaces with
// the request index.
func TestBuildRequests_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "unsupported method",
			yaml: `
requests:
  - method: PATCH
    url: https://example.com
`,
			wantErr: "unsupported method",
		},
		{
			name: "bad url scheme",
			yaml: `
requests:
  - url: ftp://example.com/file
`,
			wantErr: "scheme",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.yaml))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}

			_, err = BuildRequests(cfg)
			if err == nil {
				t.Fatal("BuildRequests() error = nil, want an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("BuildRequests() error = %q, want it to mention %q", err, tt.wantErr)
			}
			if !strings.Contains(err.Error(), "request 0") {
				t.Errorf("BuildRequests() error = %q, want it to carry the request index", err)
			}
		})
	}
}

// TestParseMethod verifies normalization of the method string.
func TestParseMethod(t *testing.T) {
	tests := []struct {
		in      string
		want    fetchq.Method
		wantErr bool
	}{
		{"", fetchq.MethodGet, false},
		{"GET", fetchq.MethodGet, false},
		{"get", fetchq.MethodGet, false},
		{" Post ", fetchq.MethodPost, false},
		{"PUT", fetchq.MethodPut, false},
		{"delete", fetchq.MethodDelete, false},
		{"PATCH", "", true},
		{"FETCH", "", true},
	}

	for _, tt := range tests {
		got, err := parseMethod(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseMethod(%q) error = nil, want an error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseMethod(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseMethod(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
