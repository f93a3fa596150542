package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"sqljob-generator/internal/common"
	"sqljob-generator/internal/diagnostic"
)

// Module names and fixed stage settings.
const (
	SourcingModule = "data_sourcing_process"
	LoadModule     = "load_enrich_process"

	sourceRoot = "${adls.source.root}/"
	stageRoot  = "${adls.stage.root}/"
)

// PartitionPriority lists the columns that may partition the load, best first.
var PartitionPriority = []string{"to_dt", "etl_effective_dt", "effectv_dt", "last_change_dt"}

// ErrUnknownFormat is returned for an unsupported encoding name.
var ErrUnknownFormat = errors.New("unknown manifest format")

// Format is a manifest encoding.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" or "yml", case-insensitively. Empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Ext is the file extension for the format.
func (f Format) Ext() string {
	if f == YAML {
		return "yaml"
	}

	return "json"
}

// Input describes one generated view.
type Input struct {
	Target  string
	Malcode string
	// Sources are the source tables in first-seen order.
	Sources []string
	// Columns are the output column names of the view.
	Columns []string
	// SQL is embedded when SQLPath is empty.
	SQL string
	// SQLPath makes the transform stage reference the statement as "@<path>".
	SQLPath string
}

// Manifest is a job manifest for one target.
type Manifest struct {
	SourceMalcode  string
	SourceBasepath string
	Comment        string

	Sources      []string
	Transform    string
	TransformSQL string
	LoadSQL      string
	TargetPath   string
	TargetTable  string
	PartitionBy  string
	LoadName     string
}

// Build derives the manifest for a view. A missing partition column is
// reported as an info diagnostic and leaves partition-by blank.
func Build(in Input) (*Manifest, diagnostic.Diagnostics) {
	var diags diagnostic.Diagnostics

	sources := make([]string, 0, len(in.Sources))
	seen := map[string]struct{}{}

	for _, s := range in.Sources {
		table := common.FirstToken(s)
		if table == "" {
			continue
		}

		if _, ok := seen[strings.ToLower(table)]; ok {
			continue
		}

		seen[strings.ToLower(table)] = struct{}{}
		sources = append(sources, table)
	}

	name := TransformName(in.Target, in.Malcode)

	m := &Manifest{
		SourceMalcode:  in.Malcode,
		SourceBasepath: strings.ToUpper(in.Malcode),
		Comment: fmt.Sprintf("This job is responsible for loading data into %s from %s - %s",
			in.Target, in.Malcode, strings.Join(sources, ", ")),
		Sources:      sources,
		Transform:    name,
		TransformSQL: in.SQL,
		LoadSQL:      "SELECT * FROM " + name,
		TargetPath:   stageRoot + in.Malcode,
		TargetTable:  "/" + in.Target,
		PartitionBy:  PartitionColumn(in.Columns),
		LoadName:     in.Target + "_daily",
	}

	if in.SQLPath != "" {
		m.TransformSQL = "@" + in.SQLPath
	}

	if m.PartitionBy == "" {
		diags.AddInfo(diagnostic.CodeNoPartitionField,
			"no partition column among "+strings.Join(PartitionPriority, ", ")+"; partition-by left blank",
			in.Target, LoadModule)
	}

	return m, diags
}

// TransformName is the transform module name, "dt_<target>_<malcode>" in lower case.
func TransformName(target, malcode string) string {
	parts := []string{"dt"}

	for _, p := range []string{target, malcode} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, common.FileStem(p))
		}
	}

	return strings.Join(parts, "_")
}

// PartitionColumn returns the highest-priority partition column present in
// columns, as written there, or "" when there is none.
func PartitionColumn(columns []string) string {
	byKey := make(map[string]string, len(columns))
	for _, c := range columns {
		key := strings.ToLower(strings.TrimSpace(c))
		if _, ok := byKey[key]; !ok {
			byKey[key] = strings.TrimSpace(c)
		}
	}

	for _, p := range PartitionPriority {
		if c, ok := byKey[p]; ok {
			return c
		}
	}

	return ""
}

// Document returns the manifest as an ordered mapping.
func (m *Manifest) Document() Object {
	sourcing := Object{
		{"options", options(SourcingModule)},
		{"loggable", true},
		{"sourcelist", append([]string{}, m.Sources...)},
	}

	for _, s := range m.Sources {
		sourcing = append(sourcing, Field{s, Object{
			{"type", "sz_zone"},
			{"table.name", s},
			{"read-format", "view"},
			{"path", sourceRoot + s},
		}})
	}

	transform := Object{
		{"sql", m.TransformSQL},
		{"loggable", true},
		{"options", options("data_transformation")},
		{"name", m.Transform},
	}

	load := Object{
		{"options", options(LoadModule)},
		{"loggable", true},
		{"sql", m.LoadSQL},
		{"target-path", m.TargetPath},
		{"mode-of-write", "replace_partition"},
		{"keys", ""},
		{"cdc-flag", false},
		{"scd2-flag", false},
		{"partition-by", m.PartitionBy},
		{"target-format", "delta"},
		{"target-table", m.TargetTable},
		{"name", m.LoadName},
	}

	return Object{
		{"source_malcode", m.SourceMalcode},
		{"source_basepath", m.SourceBasepath},
		{"comment", m.Comment},
		{"modules", Object{
			{SourcingModule, sourcing},
			{m.Transform, transform},
			{LoadModule, load},
		}},
	}
}

// Encode renders the manifest. Output always ends with a newline.
func (m *Manifest) Encode(f Format) ([]byte, error) {
	var buf bytes.Buffer

	switch f {
	case YAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)

		if err := enc.Encode(m.Document()); err != nil {
			return nil, fmt.Errorf("encoding yaml manifest: %w", err)
		}

		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encoding yaml manifest: %w", err)
		}
	case JSON, "":
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")

		if err := enc.Encode(m.Document()); err != nil {
			return nil, fmt.Errorf("encoding json manifest: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}

	return buf.Bytes(), nil
}

func options(module string) Object {
	return Object{{"module", module}, {"method", "process"}}
}
