package main

import (
	"github.com/spf13/cobra"

	"sqljob-generator/internal/config"
	"sqljob-generator/internal/logging"
)

type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "sqljob-generator",
		Short:         "Generate SQL views and job manifests from mapping sheets",
		Long:          `sqljob-generator reads a source-to-target mapping sheet (CSV or an approved mapping table in PostgreSQL) and writes, per target table, a SQL view, a job manifest and an audit report.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "Log format: text or json")

	cmd.AddCommand(newGenerateCmd(opts), newValidateCmd())

	return cmd
}

// loadConfig reads the configuration and applies the persistent flags.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}

	if o.logFormat != "" {
		cfg.Logging.Format = o.logFormat
	}

	return cfg, nil
}

func setupLogging(cfg *config.Config) {
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
}
