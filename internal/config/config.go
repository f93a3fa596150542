// Package config holds generator settings. Values come from defaults, an
// optional YAML file and SQLJOB_* environment variables, in that order; the
// CLI applies its flags last and calls Validate.
package config

// Config holds all generator configuration.
type Config struct {
	Input    InputConfig    `yaml:"input"`
	Output   OutputConfig   `yaml:"output"`
	Debug    DebugConfig    `yaml:"debug"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// InputConfig describes where the mapping sheet comes from.
type InputConfig struct {
	// Malcode is the source application code used in names and the manifest.
	Malcode string `yaml:"malcode" env:"SQLJOB_MALCODE"`

	// HintsPath is an optional YAML hint document.
	HintsPath string `yaml:"hints" env:"SQLJOB_HINTS"`
}

// OutputConfig controls artifact names and placement.
type OutputConfig struct {
	// Dir receives one "<target>_job" directory per target (default: out)
	Dir string `yaml:"dir" env:"SQLJOB_OUTPUT_DIR" default:"out"`

	SQLPrefix      string `yaml:"sql_prefix" env:"SQLJOB_SQL_PREFIX" default:"dt"`
	ManifestPrefix string `yaml:"manifest_prefix" env:"SQLJOB_MANIFEST_PREFIX" default:"job"`
	AuditPrefix    string `yaml:"audit_prefix" env:"SQLJOB_AUDIT_PREFIX" default:"audit"`

	// ManifestFormat is json or yaml (default: json)
	ManifestFormat string `yaml:"manifest_format" env:"SQLJOB_MANIFEST_FORMAT" default:"json"`

	// SQLByReference makes the manifest point at the .sql file instead of embedding it.
	SQLByReference bool `yaml:"sql_by_reference" env:"SQLJOB_SQL_BY_REFERENCE" default:"false"`
}

// DebugConfig controls the append-only debug logs.
type DebugConfig struct {
	Dir string `yaml:"dir" env:"SQLJOB_DEBUG_DIR" default:"debug"`

	JoinDebug           bool `yaml:"joins" env:"SQLJOB_JOIN_DEBUG" default:"true"`
	TransformationDebug bool `yaml:"transformations" env:"SQLJOB_TRANSFORMATION_DEBUG" default:"true"`
	BusinessRuleDebug   bool `yaml:"business_rules" env:"SQLJOB_BUSINESS_RULE_DEBUG" default:"true"`
	ValidatorDebug      bool `yaml:"validator" env:"SQLJOB_VALIDATOR_DEBUG" default:"true"`
}

// DatabaseConfig configures the optional relational mapping source.
type DatabaseConfig struct {
	// DSN is a PostgreSQL connection string. Empty means CSV input.
	DSN string `yaml:"dsn" env:"SQLJOB_DATABASE_URL" envAlt:"DATABASE_URL"`

	// Table holds the approved mapping rows (default: source_target_mapping)
	Table string `yaml:"table" env:"SQLJOB_MAPPING_TABLE" default:"source_target_mapping"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `yaml:"level" env:"SQLJOB_LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `yaml:"format" env:"SQLJOB_LOG_FORMAT" default:"text"`
}
