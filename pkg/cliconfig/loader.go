package cliconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// GlobalConfigDir is the directory for global config
	GlobalConfigDir = "registrar"
)

// LocalConfigFileNames are the names to search for local config (in order).
var LocalConfigFileNames = []string{".registrarrc.yaml", ".registrarrc.yml"}

// GlobalConfigFileNames are the names to search for global config (in order).
var GlobalConfigFileNames = []string{"config.yaml", "config.yml"}

// FindLocalConfig searches for .registrarrc.yaml or .registrarrc.yml in the current directory.
func FindLocalConfig() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return findIn(cwd, LocalConfigFileNames), nil
}

// FindGlobalConfig returns the path to the global config file.
// Returns empty string if not found.
func FindGlobalConfig() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		//nolint:nilerr // no config dir means no global config
		return "", nil
	}
	return findIn(filepath.Join(configDir, GlobalConfigDir), GlobalConfigFileNames), nil
}

func findIn(dir string, names []string) string {
	for _, name := range names {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// LoadConfigFile loads a CLIConfig from a YAML file. Unknown keys are rejected.
func LoadConfigFile(path string) (*CLIConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		var cerr *ConfigError
		if errors.As(err, &cerr) {
			cerr.Path = path
			return nil, cerr
		}
		return nil, err
	}
	return cfg, nil
}

// ParseConfig decodes a YAML config document.
func ParseConfig(data []byte) (*CLIConfig, error) {
	cfg := &CLIConfig{
		Sources:   make(map[string]string),
		SetFields: make(map[string]bool),
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, yamlConfigError(err)
	}
	if len(node.Content) == 0 {
		return cfg, nil
	}
	root := node.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, &ConfigError{Line: root.Line, Column: root.Column, Message: "config must be a mapping"}
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		cfg.SetFields[root.Content[i].Value] = true
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, yamlConfigError(err)
	}
	return cfg, nil
}

// ConfigError represents a configuration file error with location info.
type ConfigError struct {
	Path    string
	Line    int
	Column  int
	Message string
}

func (e *ConfigError) Error() string {
	path := e.Path
	if path == "" {
		path = "<config>"
	}
	if e.Line > 0 {
		if e.Column > 0 {
			return fmt.Sprintf("%s (line %d, column %d): %s", path, e.Line, e.Column, e.Message)
		}
		return fmt.Sprintf("%s (line %d): %s", path, e.Line, e.Message)
	}
	return path + ": " + e.Message
}

// yamlConfigError converts yaml.v3 errors, which carry the line inside the
// message ("yaml: line 3: ..."), into a ConfigError.
func yamlConfigError(err error) *ConfigError {
	msg := err.Error()
	var typeErr *yaml.TypeError
	if errors.As(err, &typeErr) && len(typeErr.Errors) > 0 {
		msg = typeErr.Errors[0]
	}
	msg = strings.TrimPrefix(msg, "yaml: ")

	cerr := &ConfigError{Message: msg}
	if rest, ok := strings.CutPrefix(msg, "line "); ok {
		if num, tail, ok := strings.Cut(rest, ": "); ok {
			if line, err := strconv.Atoi(num); err == nil {
				cerr.Line = line
				cerr.Message = tail
			}
		}
	}
	return cerr
}

// LoadAll loads configuration from all sources and merges them.
// Precedence: env > local config > global config > defaults. Flags are
// applied by the caller. A non-empty configFile (or REGISTRAR_CONFIG)
// replaces the local config search.
func LoadAll(configFile string) (*CLIConfig, error) {
	cfg := NewDefault()

	globalPath, err := FindGlobalConfig()
	if err != nil {
		return nil, err
	}
	if globalPath != "" {
		globalCfg, err := LoadConfigFile(globalPath)
		if err != nil {
			return nil, err
		}
		MergeConfig(cfg, globalCfg, SourceGlobal)
	}

	if configFile == "" {
		configFile = os.Getenv(EnvConfig)
	}
	localPath := configFile
	if localPath == "" {
		if localPath, err = FindLocalConfig(); err != nil {
			return nil, err
		}
	}
	if localPath != "" {
		localCfg, err := LoadConfigFile(localPath)
		if err != nil {
			return nil, err
		}
		MergeConfig(cfg, localCfg, SourceLocal)
		cfg.ConfigFile = localPath
	}

	if err := LoadEnvConfig(cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	return cfg, nil
}

// Normalize recomputes derived values. A URL still at its default follows
// the configured port and path.
func (c *CLIConfig) Normalize() {
	if c.Sources == nil || c.Sources["url"] == "" || c.Sources["url"] == SourceDefault {
		c.URL = DefaultURL(c.Port, c.Path)
	}
}
