package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jpalmerr/fetchq"
)

// BuildRequests converts parsed configuration into SDK [fetchq.Request]
// values, applying defaults.timeout to requests without their own timeout.
func BuildRequests(cfg *Config) ([]fetchq.Request, error) {
	requests := make([]fetchq.Request, 0, len(cfg.Requests))

	for i, rc := range cfg.Requests {
		req, err := buildRequest(rc, cfg.Defaults)
		if err != nil {
			return nil, fmt.Errorf("request %d: %w", i, err)
		}
		requests = append(requests, req)
	}

	return requests, nil
}

// buildRequest converts a single RequestConfig to an SDK Request.
func buildRequest(rc RequestConfig, defaults DefaultsConfig) (fetchq.Request, error) {
	method, err := parseMethod(rc.Method)
	if err != nil {
		return fetchq.Request{}, err
	}

	var opts []fetchq.RequestOption

	if rc.Body != "" {
		opts = append(opts, fetchq.WithBody([]byte(rc.Body)))
	}

	if len(rc.Headers) > 0 {
		opts = append(opts, fetchq.WithHeaders(mapToKeyValuePairs(rc.Headers)...))
	}

	switch {
	case rc.Timeout != 0:
		opts = append(opts, fetchq.WithTimeout(rc.Timeout.Duration()))
	case defaults.Timeout != 0:
		opts = append(opts, fetchq.WithTimeout(defaults.Timeout.Duration()))
	}

	return fetchq.NewRequest(method, rc.URL, opts...)
}

// parseMethod maps the config method string onto the SDK enum.
// An empty method defaults to GET.
func parseMethod(s string) (fetchq.Method, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "GET":
		return fetchq.MethodGet, nil
	case "POST":
		return fetchq.MethodPost, nil
	case "PUT":
		return fetchq.MethodPut, nil
	case "DELETE":
		return fetchq.MethodDelete, nil
	default:
		return "", fmt.Errorf("unsupported method %q (expected GET, POST, PUT, or DELETE)", s)
	}
}

// mapToKeyValuePairs converts a map to a sorted slice of key-value pairs.
func mapToKeyValuePairs(m map[string]string) []string {
	// sort keys for deterministic ordering
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(m)*2)
	for _, k := range keys {
		pairs = append(pairs, k, m[k])
	}
	return pairs
}
