package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"sqljob-generator/internal/config"
	"sqljob-generator/internal/engine"
	"sqljob-generator/internal/mapping"
	"sqljob-generator/internal/mappingdb"
)

type generateOptions struct {
	root *rootOptions

	dsn            string
	table          string
	target         string
	malcode        string
	outputDir      string
	debugDir       string
	hints          string
	format         string
	sqlByReference bool
	noDebug        bool
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	opts := &generateOptions{root: root}

	cmd := &cobra.Command{
		Use:   "generate [mapping.csv]",
		Short: "Generate views, manifests and audit reports",
		Example: `  sqljob-generator generate mapping.csv --malcode ossbr --out build
  sqljob-generator generate --dsn postgres://localhost/mappings --target acct_dim`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, args)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.dsn, "dsn", "", "PostgreSQL connection string to read approved mapping rows from")
	f.StringVar(&opts.table, "table", "", "Mapping table (default: source_target_mapping)")
	f.StringVar(&opts.target, "target", "", "Only generate this target table (database input)")
	f.StringVarP(&opts.malcode, "malcode", "m", "", "Source application code (default: derived from the base table)")
	f.StringVarP(&opts.outputDir, "out", "o", "", "Output directory")
	f.StringVar(&opts.debugDir, "debug-dir", "", "Directory for append-only debug logs")
	f.StringVar(&opts.hints, "hints", "", "YAML hint document")
	f.StringVarP(&opts.format, "format", "f", "", "Manifest format: json or yaml")
	f.BoolVar(&opts.sqlByReference, "sql-by-reference", false, "Reference the .sql file from the manifest instead of embedding it")
	f.BoolVar(&opts.noDebug, "no-debug", false, "Disable debug logs")

	return cmd
}

// apply overrides configuration with the flags that were set.
func (o *generateOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	set := func(name string, dst *string, val string) {
		if cmd.Flags().Changed(name) {
			*dst = val
		}
	}

	set("dsn", &cfg.Database.DSN, o.dsn)
	set("table", &cfg.Database.Table, o.table)
	set("malcode", &cfg.Input.Malcode, o.malcode)
	set("out", &cfg.Output.Dir, o.outputDir)
	set("debug-dir", &cfg.Debug.Dir, o.debugDir)
	set("hints", &cfg.Input.HintsPath, o.hints)
	set("format", &cfg.Output.ManifestFormat, o.format)

	if cmd.Flags().Changed("sql-by-reference") {
		cfg.Output.SQLByReference = o.sqlByReference
	}

	if o.noDebug {
		cfg.Debug.JoinDebug = false
		cfg.Debug.BusinessRuleDebug = false
		cfg.Debug.TransformationDebug = false
		cfg.Debug.ValidatorDebug = false
	}
}

func (o *generateOptions) run(cmd *cobra.Command, args []string) error {
	cfg, err := o.root.loadConfig()
	if err != nil {
		return err
	}

	o.apply(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return err
	}

	setupLogging(cfg)
	slog.Debug("configuration loaded", "config", cfg.String())

	if len(args) == 0 && cfg.Database.DSN == "" {
		return fmt.Errorf("a mapping CSV argument or --dsn is required")
	}

	if len(args) == 1 && cfg.Database.DSN != "" {
		return fmt.Errorf("cannot use both a mapping CSV and --dsn")
	}

	ds, err := o.load(cmd.Context(), cfg, args)
	if err != nil {
		return err
	}

	opts, err := engine.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}

	res, err := engine.New(opts, slog.Default()).Run(ds)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, t := range res.Targets {
		fmt.Fprintf(out, "%s: %s\n", t.Target, t.Dir)
	}

	fmt.Fprintf(out, "%d issue(s)", res.Issues())

	if res.DebugDir != "" {
		fmt.Fprintf(out, ", see debug logs in %s", res.DebugDir)
	}

	fmt.Fprintln(out)

	return nil
}

func (o *generateOptions) load(ctx context.Context, cfg *config.Config, args []string) (*mapping.Dataset, error) {
	if len(args) == 1 {
		return mapping.LoadFile(args[0])
	}

	pool, err := mappingdb.Open(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	defer pool.Close()

	return mappingdb.New(pool, cfg.Database.Table).Load(ctx, o.target)
}
