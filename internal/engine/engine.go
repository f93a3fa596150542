package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"sqljob-generator/internal/common"
	"sqljob-generator/internal/diagnostic"
	"sqljob-generator/internal/gen"
	"sqljob-generator/internal/logging"
	"sqljob-generator/internal/manifest"
	"sqljob-generator/internal/mapping"
	"sqljob-generator/internal/plan"
)

// ErrInvalidSheet is returned when the dataset cannot produce any view.
var ErrInvalidSheet = errors.New("invalid mapping sheet")

// Options configures a run.
type Options struct {
	// Malcode is the source application code. Empty derives it from the base table.
	Malcode   string
	OutputDir string

	Generator      gen.GeneratorConfig
	ManifestPrefix string
	ManifestFormat manifest.Format
	// SQLByReference makes the manifest reference the .sql file as "@<job dir>/<file>".
	SQLByReference bool

	Debug      DebugOptions
	Resolution plan.ResolutionConfig
}

// DefaultOptions returns options writing to "out" with JSON manifests and no debug logs.
func DefaultOptions() Options {
	return Options{
		OutputDir:      "out",
		Generator:      gen.DefaultGeneratorConfig(),
		ManifestPrefix: "job",
		ManifestFormat: manifest.JSON,
		Resolution:     plan.DefaultConfig(),
	}
}

// Engine generates views and manifests.
type Engine struct {
	opts  Options
	log   *slog.Logger
	debug *debugLog
	gen   *gen.Generator
}

// New creates an engine. A nil logger means the default logger.
func New(opts Options, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}

	if opts.ManifestFormat == "" {
		opts.ManifestFormat = manifest.JSON
	}

	opts.Generator.DebugDir = ""
	if opts.Debug.Validator {
		opts.Generator.DebugDir = opts.Debug.Dir
	}

	return &Engine{
		opts:  opts,
		log:   logger,
		debug: newDebugLog(opts.Debug),
		gen:   gen.NewGenerator(opts.Generator),
	}
}

// TargetResult is the outcome for one target table.
type TargetResult struct {
	Target  string
	Malcode string
	// Dir is the job directory the files were written to.
	Dir      string
	Files    []string
	Plan     *plan.ResolvedViewPlan
	Output   *gen.Output
	Manifest *manifest.Manifest

	Diagnostics diagnostic.Diagnostics
}

// Result is the outcome of a run.
type Result struct {
	Targets     []TargetResult
	Diagnostics diagnostic.Diagnostics
	// DebugDir is where debug logs were appended, empty when disabled.
	DebugDir string
}

// Issues counts errors and warnings across the run.
func (r *Result) Issues() int {
	return r.Diagnostics.Issues()
}

// Run generates every target of ds and writes the artifacts.
func (e *Engine) Run(ds *mapping.Dataset) (*Result, error) {
	res := &Result{DebugDir: e.debug.dir()}

	sheet := mapping.Validate(ds)
	if sheet.HasErrors() {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSheet, sheet.Error())
	}

	res.Diagnostics.Merge(ds.Diagnostics)
	res.Diagnostics.Merge(*sheet)

	for _, part := range ds.SplitByTarget() {
		tr, files, err := e.Generate(part)
		if err != nil {
			return res, err
		}

		tr.Dir = filepath.Join(e.opts.OutputDir, gen.JobDir(tr.Target))

		tr.Files, err = gen.WriteFiles(files, tr.Dir)
		if err != nil {
			return res, fmt.Errorf("writing %s: %w", tr.Target, err)
		}

		logging.WithFields(e.log, "target", tr.Target, "malcode", tr.Malcode).Info("generated job",
			"dir", tr.Dir,
			"columns", len(tr.Plan.Columns),
			"joins", len(tr.Plan.Joins),
			"issues", tr.Diagnostics.Issues(),
		)

		res.Diagnostics.Merge(tr.Diagnostics)
		res.Targets = append(res.Targets, *tr)
	}

	return res, nil
}

// Generate produces the artifacts of a single-target dataset without writing them.
func (e *Engine) Generate(ds *mapping.Dataset) (*TargetResult, []gen.GeneratedFile, error) {
	p, err := plan.NewResolver(ds, e.opts.Resolution).Resolve()
	if err != nil {
		return nil, nil, fmt.Errorf("resolving plan: %w", err)
	}

	tr := &TargetResult{Target: p.Target, Plan: p}
	tr.Diagnostics.Merge(p.Diagnostics)

	tr.Malcode = e.opts.Malcode
	if tr.Malcode == "" {
		tr.Malcode = DeriveMalcode(p.BaseTable)
		tr.Diagnostics.AddInfo("derived_malcode",
			fmt.Sprintf("no malcode given, using %q from base table %s", tr.Malcode, p.BaseTable), p.Target, "")
	}

	log := logging.WithFields(e.log, "target", p.Target, "malcode", tr.Malcode)

	out, err := e.gen.Generate(p, tr.Malcode)
	if err != nil {
		return nil, nil, fmt.Errorf("generating %s: %w", p.Target, err)
	}

	tr.Output = out
	tr.Diagnostics.Merge(out.Validation.Diagnostics().WithTarget(p.Target))

	if len(out.Validation.Changes) > 0 {
		log.Warn("validator repaired statement", "changes", len(out.Validation.Changes))
	}

	m, mdiags, encoded, err := e.buildManifest(p, tr.Malcode, out)
	if err != nil {
		return nil, nil, err
	}

	tr.Manifest = m
	tr.Diagnostics.Merge(mdiags)

	e.writeDebug(p, tr.Malcode, out, log)

	files := []gen.GeneratedFile{
		out.SQLFile,
		{
			Filename: gen.FileName(e.opts.ManifestPrefix, p.Target, tr.Malcode, e.opts.ManifestFormat.Ext()),
			Content:  encoded,
		},
		out.AuditFile,
	}

	return tr, files, nil
}

func (e *Engine) buildManifest(p *plan.ResolvedViewPlan, malcode string, out *gen.Output) (*manifest.Manifest, diagnostic.Diagnostics, []byte, error) {
	in := manifest.Input{
		Target:  p.Target,
		Malcode: malcode,
		SQL:     out.SQL,
	}

	for _, s := range p.Sources {
		in.Sources = append(in.Sources, s.Table)
	}

	for _, c := range p.Columns {
		in.Columns = append(in.Columns, c.Expression.Target)
	}

	if e.opts.SQLByReference {
		in.SQLPath = path.Join(gen.JobDir(p.Target), out.SQLFile.Filename)
	}

	m, diags := manifest.Build(in)

	encoded, err := m.Encode(e.opts.ManifestFormat)
	if err != nil {
		return nil, diags, nil, fmt.Errorf("encoding manifest for %s: %w", p.Target, err)
	}

	return m, diags.WithTarget(p.Target), encoded, nil
}

func (e *Engine) writeDebug(p *plan.ResolvedViewPlan, malcode string, out *gen.Output, log *slog.Logger) {
	header := p.Target + " (" + malcode + ")"

	if err := e.debug.joins(header, p); err != nil {
		log.Warn("writing join debug log", "error", err)
	}

	if err := e.debug.businessRules(header, p); err != nil {
		log.Warn("writing business rule debug log", "error", err)
	}

	if err := e.debug.transformations(header, p); err != nil {
		log.Warn("writing transformation debug log", "error", err)
	}

	if err := e.debug.validator(header, out.Validation); err != nil {
		log.Warn("writing validator debug log", "error", err)
	}
}

// DeriveMalcode returns the leading alphanumeric run of a table name: "ossbr_2_1" gives "ossbr".
func DeriveMalcode(table string) string {
	leaf := strings.ToLower(common.LeafName(table))

	end := strings.IndexFunc(leaf, func(r rune) bool {
		return (r < 'a' || r > 'z') && (r < '0' || r > '9')
	})
	if end > 0 {
		leaf = leaf[:end]
	}

	return leaf
}
