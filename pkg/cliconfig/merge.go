package cliconfig

// MergeConfig merges source config into target, updating sources tracking.
// Only non-zero values from source are applied.
func MergeConfig(target, source *CLIConfig, sourceType string) {
	if source == nil {
		return
	}
	if target.Sources == nil {
		target.Sources = make(map[string]string)
	}

	if source.Host != "" {
		target.Host = source.Host
		target.Sources["host"] = sourceType
	}
	if source.Port != 0 {
		target.Port = source.Port
		target.Sources["port"] = sourceType
	}
	if source.Path != "" {
		target.Path = source.Path
		target.Sources["path"] = sourceType
	}
	if source.ReadTimeout != 0 {
		target.ReadTimeout = source.ReadTimeout
		target.Sources["readTimeout"] = sourceType
	}
	if source.WriteTimeout != 0 {
		target.WriteTimeout = source.WriteTimeout
		target.Sources["writeTimeout"] = sourceType
	}
	if source.SeedFile != "" {
		target.SeedFile = source.SeedFile
		target.Sources["seedFile"] = sourceType
	}
	if source.IDPolicy != "" {
		target.IDPolicy = source.IDPolicy
		target.Sources["idPolicy"] = sourceType
	}
	if source.LogLevel != "" {
		target.LogLevel = source.LogLevel
		target.Sources["logLevel"] = sourceType
	}
	if source.LogFormat != "" {
		target.LogFormat = source.LogFormat
		target.Sources["logFormat"] = sourceType
	}
	if source.LogFile != "" {
		target.LogFile = source.LogFile
		target.Sources["logFile"] = sourceType
	}
	if source.URL != "" {
		target.URL = source.URL
		target.Sources["url"] = sourceType
	}
	// A plain `if source.X` cannot detect an explicit false, so booleans
	// consult SetFields when the source came from a file.
	if boolIsSet(source, "playground") {
		target.Playground = source.Playground
		target.Sources["playground"] = sourceType
	}
	if boolIsSet(source, "metrics") {
		target.Metrics = source.Metrics
		target.Sources["metrics"] = sourceType
	}
	if boolIsSet(source, "introspection") {
		target.Introspection = source.Introspection
		target.Sources["introspection"] = sourceType
	}
	if boolIsSet(source, "cascadeCourseDelete") {
		target.CascadeCourseDelete = source.CascadeCourseDelete
		target.Sources["cascadeCourseDelete"] = sourceType
	}
}

// boolIsSet reports whether a boolean field identified by its YAML key was
// explicitly set in the source config. Without SetFields only true counts.
func boolIsSet(cfg *CLIConfig, yamlKey string) bool {
	if cfg.SetFields != nil {
		return cfg.SetFields[yamlKey]
	}
	switch yamlKey {
	case "playground":
		return cfg.Playground
	case "metrics":
		return cfg.Metrics
	case "introspection":
		return cfg.Introspection
	case "cascadeCourseDelete":
		return cfg.CascadeCourseDelete
	}
	return false
}
