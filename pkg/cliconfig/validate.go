package cliconfig

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/getmockd/registrar/internal/id"
)

// Paths the server reserves for itself.
var reservedPaths = []string{"/healthz", "/metrics"}

// MaxTimeout bounds readTimeout and writeTimeout, in seconds.
const MaxTimeout = 3600

// Validate checks ranges and enumerations. All problems are reported together.
func (c *CLIConfig) Validate() error {
	var errs []error

	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d is out of range (0-65535)", c.Port))
	}
	if !strings.HasPrefix(c.Path, "/") {
		errs = append(errs, fmt.Errorf("path %q must start with /", c.Path))
	}
	for _, reserved := range reservedPaths {
		if c.Path == reserved {
			errs = append(errs, fmt.Errorf("path %q is reserved", c.Path))
		}
	}
	if c.ReadTimeout < 0 || c.ReadTimeout > MaxTimeout {
		errs = append(errs, fmt.Errorf("readTimeout %d is out of range (0-%d)", c.ReadTimeout, MaxTimeout))
	}
	if c.WriteTimeout < 0 || c.WriteTimeout > MaxTimeout {
		errs = append(errs, fmt.Errorf("writeTimeout %d is out of range (0-%d)", c.WriteTimeout, MaxTimeout))
	}
	if _, err := id.ParsePolicy(c.IDPolicy); err != nil {
		errs = append(errs, fmt.Errorf("idPolicy: %w", err))
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("logLevel %q is not one of debug, info, warn, error", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logFormat %q is not one of text, json", c.LogFormat))
	}
	if c.URL != "" {
		u, err := url.Parse(c.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("url %q must be an absolute http(s) URL", c.URL))
		}
	}

	return errors.Join(errs...)
}
