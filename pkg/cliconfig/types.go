// Package cliconfig provides configuration types and loading for the registrar CLI.
package cliconfig

// CLIConfig represents the complete configuration for the registrar CLI.
// Configuration values can come from multiple sources with the following precedence:
// 1. Command-line flags (highest priority)
// 2. Environment variables
// 3. Local config file (.registrarrc.yaml in current directory, or --config)
// 4. Global config file (~/.config/registrar/config.yaml)
// 5. Default values (lowest priority)
type CLIConfig struct {
	// Server settings
	Host         string `yaml:"host,omitempty" json:"host,omitempty"`
	Port         int    `yaml:"port" json:"port"`
	Path         string `yaml:"path" json:"path"`
	ReadTimeout  int    `yaml:"readTimeout" json:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout" json:"writeTimeout"`
	Playground   bool   `yaml:"playground" json:"playground"`
	Metrics      bool   `yaml:"metrics" json:"metrics"`

	// GraphQL settings
	Introspection bool `yaml:"introspection" json:"introspection"`

	// Data settings
	SeedFile            string `yaml:"seedFile,omitempty" json:"seedFile,omitempty"`
	IDPolicy            string `yaml:"idPolicy" json:"idPolicy"`
	CascadeCourseDelete bool   `yaml:"cascadeCourseDelete" json:"cascadeCourseDelete"`

	// Logging settings
	LogLevel  string `yaml:"logLevel" json:"logLevel"`
	LogFormat string `yaml:"logFormat" json:"logFormat"`
	// LogFile receives a JSON copy of every log record.
	LogFile string `yaml:"logFile,omitempty" json:"logFile,omitempty"`

	// Client settings
	URL string `yaml:"url" json:"url"`

	// ConfigFile is the file that replaced the local config search, if any.
	ConfigFile string `yaml:"-" json:"configFile,omitempty"`

	// Sources tracks where each value came from (for debugging)
	Sources map[string]string `yaml:"-" json:"-"`

	// SetFields records the keys explicitly present in a loaded file, so an
	// explicit false can override an inherited true.
	SetFields map[string]bool `yaml:"-" json:"-"`
}

// ConfigSource identifies where a config value originated.
const (
	SourceDefault = "default"
	SourceEnv     = "env"
	SourceGlobal  = "global"
	SourceLocal   = "local"
	SourceFlag    = "flag"
)

// Keys lists every configurable key in display order.
var Keys = []string{
	"host", "port", "path", "readTimeout", "writeTimeout", "playground", "metrics",
	"introspection", "seedFile", "idPolicy", "cascadeCourseDelete",
	"logLevel", "logFormat", "logFile", "url",
}
