package gen

import (
	"fmt"
	"strings"

	"sqljob-generator/internal/common"
	"sqljob-generator/internal/plan"
	"sqljob-generator/internal/validate"
)

// GeneratorConfig holds configuration for artifact generation.
type GeneratorConfig struct {
	// SQLPrefix prefixes the statement file name.
	SQLPrefix string
	// AuditPrefix prefixes the audit report file name.
	AuditPrefix string
	// DebugDir receives the statement as assembled whenever the validator
	// had to change it. Empty disables the sidecar.
	DebugDir string
}

// DefaultGeneratorConfig returns the default generator configuration.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		SQLPrefix:   "dt",
		AuditPrefix: "audit",
	}
}

// Generator renders the artifacts of a resolved plan.
type Generator struct {
	config GeneratorConfig
}

// NewGenerator creates a new Generator with the given configuration.
func NewGenerator(config GeneratorConfig) *Generator {
	return &Generator{config: config}
}

// GeneratedFile represents a generated artifact.
type GeneratedFile struct {
	// Filename is the name of the file (e.g., "dt_acct_dim_ossbr.sql").
	Filename string
	// Content is the file content.
	Content []byte
}

// Output is the result of generating one target.
type Output struct {
	// Raw is the assembled statement before validation.
	Raw string
	// SQL is the validated statement written to disk.
	SQL        string
	Validation validate.Result
	// SQLFile and AuditFile are the rendered artifacts.
	SQLFile   GeneratedFile
	AuditFile GeneratedFile
}

// Files returns the rendered artifacts in write order.
func (o *Output) Files() []GeneratedFile {
	return []GeneratedFile{o.SQLFile, o.AuditFile}
}

// Generate assembles, validates and renders the artifacts for one plan.
func (g *Generator) Generate(p *plan.ResolvedViewPlan, malcode string) (*Output, error) {
	raw, err := Assemble(p)
	if err != nil {
		return nil, fmt.Errorf("assembling %s: %w", p.Target, err)
	}

	res := validate.Check(raw)
	out := &Output{
		Raw:        raw,
		SQL:        finish(res.SQL),
		Validation: res,
	}

	out.SQLFile = GeneratedFile{
		Filename: FileName(g.config.SQLPrefix, p.Target, malcode, "sql"),
		Content:  []byte(out.SQL),
	}

	if len(res.Changes) > 0 && g.config.DebugDir != "" {
		// Best-effort: keep the unvalidated text next to the debug logs.
		_ = writeDebugUnvalidated(g.config.DebugDir, out.SQLFile.Filename, []byte(raw))
	}

	audit, err := Audit(p, malcode, res)
	if err != nil {
		return nil, fmt.Errorf("rendering audit for %s: %w", p.Target, err)
	}

	out.AuditFile = GeneratedFile{
		Filename: FileName(g.config.AuditPrefix, p.Target, malcode, "md"),
		Content:  audit,
	}

	return out, nil
}

// FileName builds "<prefix>_<target>_<malcode>.<ext>" with lower-cased,
// file-safe parts. Empty parts are skipped.
func FileName(prefix, target, malcode, ext string) string {
	var parts []string

	for _, p := range []string{prefix, target, malcode} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, common.FileStem(p))
		}
	}

	return strings.Join(parts, "_") + "." + ext
}

// JobDir is the per-target output directory name.
func JobDir(target string) string {
	return common.FileStem(target) + "_job"
}
