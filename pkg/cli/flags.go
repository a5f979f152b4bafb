package cli

import (
	"github.com/spf13/cobra"

	"github.com/getmockd/registrar/pkg/cliconfig"
)

// configFlag ties a command-line flag to a cliconfig key.
type configFlag struct {
	name  string
	key   string
	apply func(cmd *cobra.Command, name string, cfg *cliconfig.CLIConfig) error
}

func stringFlag(dst func(*cliconfig.CLIConfig) *string) func(*cobra.Command, string, *cliconfig.CLIConfig) error {
	return func(cmd *cobra.Command, name string, cfg *cliconfig.CLIConfig) error {
		v, err := cmd.Flags().GetString(name)
		if err != nil {
			return err
		}
		*dst(cfg) = v
		return nil
	}
}

func intFlag(dst func(*cliconfig.CLIConfig) *int) func(*cobra.Command, string, *cliconfig.CLIConfig) error {
	return func(cmd *cobra.Command, name string, cfg *cliconfig.CLIConfig) error {
		v, err := cmd.Flags().GetInt(name)
		if err != nil {
			return err
		}
		*dst(cfg) = v
		return nil
	}
}

func boolFlag(dst func(*cliconfig.CLIConfig) *bool) func(*cobra.Command, string, *cliconfig.CLIConfig) error {
	return func(cmd *cobra.Command, name string, cfg *cliconfig.CLIConfig) error {
		v, err := cmd.Flags().GetBool(name)
		if err != nil {
			return err
		}
		*dst(cfg) = v
		return nil
	}
}

var configFlags = []configFlag{
	{"host", "host", stringFlag(func(c *cliconfig.CLIConfig) *string { return &c.Host })},
	{"port", "port", intFlag(func(c *cliconfig.CLIConfig) *int { return &c.Port })},
	{"path", "path", stringFlag(func(c *cliconfig.CLIConfig) *string { return &c.Path })},
	{"read-timeout", "readTimeout", intFlag(func(c *cliconfig.CLIConfig) *int { return &c.ReadTimeout })},
	{"write-timeout", "writeTimeout", intFlag(func(c *cliconfig.CLIConfig) *int { return &c.WriteTimeout })},
	{"playground", "playground", boolFlag(func(c *cliconfig.CLIConfig) *bool { return &c.Playground })},
	{"metrics", "metrics", boolFlag(func(c *cliconfig.CLIConfig) *bool { return &c.Metrics })},
	{"introspection", "introspection", boolFlag(func(c *cliconfig.CLIConfig) *bool { return &c.Introspection })},
	{"seed", "seedFile", stringFlag(func(c *cliconfig.CLIConfig) *string { return &c.SeedFile })},
	{"id-policy", "idPolicy", stringFlag(func(c *cliconfig.CLIConfig) *string { return &c.IDPolicy })},
	{"cascade-course-delete", "cascadeCourseDelete", boolFlag(func(c *cliconfig.CLIConfig) *bool { return &c.CascadeCourseDelete })},
	{"log-level", "logLevel", stringFlag(func(c *cliconfig.CLIConfig) *string { return &c.LogLevel })},
	{"log-format", "logFormat", stringFlag(func(c *cliconfig.CLIConfig) *string { return &c.LogFormat })},
	{"log-file", "logFile", stringFlag(func(c *cliconfig.CLIConfig) *string { return &c.LogFile })},
	{"url", "url", stringFlag(func(c *cliconfig.CLIConfig) *string { return &c.URL })},
}

// applyFlags copies every flag changed on the command line into cfg.
// Flags a command does not define are skipped.
func applyFlags(cmd *cobra.Command, cfg *cliconfig.CLIConfig) error {
	if cfg.Sources == nil {
		cfg.Sources = make(map[string]string)
	}
	for _, f := range configFlags {
		if cmd.Flags().Lookup(f.name) == nil || !cmd.Flags().Changed(f.name) {
			continue
		}
		if err := f.apply(cmd, f.name, cfg); err != nil {
			return err
		}
		cfg.Sources[f.key] = cliconfig.SourceFlag
	}
	return nil
}
