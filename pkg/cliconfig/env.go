package cliconfig

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment variable names
const (
	EnvConfig              = "REGISTRAR_CONFIG"
	EnvHost                = "REGISTRAR_HOST"
	EnvPort                = "REGISTRAR_PORT"
	EnvPath                = "REGISTRAR_PATH"
	EnvReadTimeout         = "REGISTRAR_READ_TIMEOUT"
	EnvWriteTimeout        = "REGISTRAR_WRITE_TIMEOUT"
	EnvPlayground          = "REGISTRAR_PLAYGROUND"
	EnvMetrics             = "REGISTRAR_METRICS"
	EnvIntrospection       = "REGISTRAR_INTROSPECTION"
	EnvSeedFile            = "REGISTRAR_SEED"
	EnvIDPolicy            = "REGISTRAR_ID_POLICY"
	EnvCascadeCourseDelete = "REGISTRAR_CASCADE_COURSE_DELETE"
	EnvLogLevel            = "REGISTRAR_LOG_LEVEL"
	EnvLogFormat           = "REGISTRAR_LOG_FORMAT"
	EnvLogFile             = "REGISTRAR_LOG_FILE"
	EnvURL                 = "REGISTRAR_URL"
)

// LoadEnvConfig loads configuration from environment variables.
// It only sets values that are present in the environment. Malformed
// numbers and booleans are reported rather than ignored.
func LoadEnvConfig(cfg *CLIConfig) error {
	if cfg.Sources == nil {
		cfg.Sources = make(map[string]string)
	}

	strs := []struct {
		env, key string
		dst      *string
	}{
		{EnvHost, "host", &cfg.Host},
		{EnvPath, "path", &cfg.Path},
		{EnvSeedFile, "seedFile", &cfg.SeedFile},
		{EnvIDPolicy, "idPolicy", &cfg.IDPolicy},
		{EnvLogLevel, "logLevel", &cfg.LogLevel},
		{EnvLogFormat, "logFormat", &cfg.LogFormat},
		{EnvLogFile, "logFile", &cfg.LogFile},
		{EnvURL, "url", &cfg.URL},
	}
	for _, s := range strs {
		if v := os.Getenv(s.env); v != "" {
			*s.dst = v
			cfg.Sources[s.key] = SourceEnv
		}
	}

	ints := []struct {
		env, key string
		dst      *int
	}{
		{EnvPort, "port", &cfg.Port},
		{EnvReadTimeout, "readTimeout", &cfg.ReadTimeout},
		{EnvWriteTimeout, "writeTimeout", &cfg.WriteTimeout},
	}
	for _, i := range ints {
		v := os.Getenv(i.env)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: invalid integer %q", i.env, v)
		}
		*i.dst = n
		cfg.Sources[i.key] = SourceEnv
	}

	bools := []struct {
		env, key string
		dst      *bool
	}{
		{EnvPlayground, "playground", &cfg.Playground},
		{EnvMetrics, "metrics", &cfg.Metrics},
		{EnvIntrospection, "introspection", &cfg.Introspection},
		{EnvCascadeCourseDelete, "cascadeCourseDelete", &cfg.CascadeCourseDelete},
	}
	for _, b := range bools {
		v := os.Getenv(b.env)
		if v == "" {
			continue
		}
		val, err := parseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", b.env, err)
		}
		*b.dst = val
		cfg.Sources[b.key] = SourceEnv
	}
	return nil
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", v)
}
