// Package config provides YAML configuration parsing for fetchq batch runs.
//
// This package enables running fetchq as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	parallelism: 32
//
//	defaults:
//	  timeout: 10s
//
//	drain:
//	  limit: 16
//	  interval: 50ms
//	  total_timeout: 60s
//
//	requests:
//	  - method: GET
//	    url: https://api.github.com
//	    timeout: 5s
//	    headers:
//	      Accept: application/vnd.github+json
//	  - method: POST
//	    url: https://example.com/hook
//	    body: '{"event":"ping"}'
//	    headers:
//	      Authorization: Bearer ${HOOK_TOKEN}
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied by Parse when the file leaves them unset.
const (
	defaultParallelism  = 16
	defaultDrainLimit   = 16
	defaultDrainPoll    = 50 * time.Millisecond
	defaultTotalTimeout = 60 * time.Second
)

// Config is the root configuration structure for a fetchq batch run.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Parallelism bounds concurrent HTTP exchanges. Defaults to 16.
	Parallelism int `yaml:"parallelism"`

	// Defaults apply to requests that leave the matching field unset.
	Defaults DefaultsConfig `yaml:"defaults"`

	// Drain controls how the CLI pulls outcomes back.
	Drain DrainConfig `yaml:"drain"`

	// Requests is the batch to submit.
	Requests []RequestConfig `yaml:"requests"`
}

// DefaultsConfig holds per-request defaults.
type DefaultsConfig struct {
	// Timeout applies to requests without their own timeout.
	// Unset means requests without a timeout run effectively unbounded.
	Timeout Duration `yaml:"timeout"`
}

// DrainConfig controls the CLI's drain loop.
type DrainConfig struct {
	// Limit is the per-iteration outcome budget. Defaults to 16.
	Limit int `yaml:"limit"`

	// Interval is the pause between drain attempts. Defaults to 50ms.
	Interval Duration `yaml:"interval"`

	// TotalTimeout bounds the whole run. Defaults to 60s.
	TotalTimeout Duration `yaml:"total_timeout"`
}

// RequestConfig defines a single request in the batch.
type RequestConfig struct {
	// Method is the HTTP method: GET, POST, PUT, or DELETE. Defaults to GET.
	Method string `yaml:"method"`

	// URL is the target URL.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	URL string `yaml:"url"`

	// Body is the request body sent as-is.
	Body string `yaml:"body"`

	// Headers are custom HTTP headers sent with the request.
	// Values support environment variable substitution.
	Headers map[string]string `yaml:"headers"`

	// Timeout is the per-request timeout. Overrides defaults.timeout.
	Timeout Duration `yaml:"timeout"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// already have an error, skip processing
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		// submatches[2] is ":-..." (non-empty if default syntax was used)
		// submatches[3] is the actual default value (may be empty for ${VAR:-})
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded before validation.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in URL and header values, defaults are
// applied, and basic shape validation is performed (at least one request,
// every request has a URL, positive parallelism and drain settings).
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Parallelism == 0 {
		cfg.Parallelism = defaultParallelism
	}
	if cfg.Parallelism < 0 {
		return nil, fmt.Errorf("parallelism must be positive, got %d", cfg.Parallelism)
	}

	if cfg.Drain.Limit == 0 {
		cfg.Drain.Limit = defaultDrainLimit
	}
	if cfg.Drain.Limit < 0 {
		return nil, fmt.Errorf("drain.limit must be positive, got %d", cfg.Drain.Limit)
	}
	if cfg.Drain.Interval == 0 {
		cfg.Drain.Interval = Duration(defaultDrainPoll)
	}
	if cfg.Drain.TotalTimeout == 0 {
		cfg.Drain.TotalTimeout = Duration(defaultTotalTimeout)
	}

	if len(cfg.Requests) == 0 {
		return nil, errors.New("at least one request is required")
	}

	for i := range cfg.Requests {
		rc := &cfg.Requests[i]

		if rc.URL == "" {
			return nil, fmt.Errorf("request %d: url is required", i)
		}

		expanded, err := expandEnvVars(rc.URL)
		if err != nil {
			return nil, fmt.Errorf("request %d: %w", i, err)
		}
		rc.URL = expanded

		for name, value := range rc.Headers {
			expandedVal, err := expandEnvVars(value)
			if err != nil {
				return nil, fmt.Errorf("request %d, header %q: %w", i, name, err)
			}
			rc.Headers[name] = expandedVal
		}
	}

	return &cfg, nil
}
