package cliconfig

import (
	"net"
	"strconv"
)

// DefaultPort is the default HTTP port for the GraphQL server.
const DefaultPort = 5000

// DefaultPath is the default GraphQL endpoint path.
const DefaultPath = "/graphql"

// DefaultReadTimeout is the default read timeout in seconds.
const DefaultReadTimeout = 30

// DefaultWriteTimeout is the default write timeout in seconds.
const DefaultWriteTimeout = 30

// DefaultIDPolicy is the default id assignment policy.
const DefaultIDPolicy = "sequence"

// Default logging settings.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// DefaultURL returns the GraphQL endpoint URL of a local server.
func DefaultURL(port int, path string) string {
	if port == 0 {
		port = DefaultPort
	}
	if path == "" {
		path = DefaultPath
	}
	return "http://" + net.JoinHostPort("localhost", strconv.Itoa(port)) + path
}

// NewDefault creates a new CLIConfig with default values.
func NewDefault() *CLIConfig {
	cfg := &CLIConfig{
		Port:          DefaultPort,
		Path:          DefaultPath,
		ReadTimeout:   DefaultReadTimeout,
		WriteTimeout:  DefaultWriteTimeout,
		Playground:    true,
		Metrics:       true,
		Introspection: true,
		IDPolicy:      DefaultIDPolicy,
		LogLevel:      DefaultLogLevel,
		LogFormat:     DefaultLogFormat,
		Sources:       make(map[string]string),
	}
	cfg.URL = DefaultURL(cfg.Port, cfg.Path)

	for _, key := range Keys {
		cfg.Sources[key] = SourceDefault
	}
	return cfg
}
