package mapping

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultLookupSuffixes mark reference tables that must never drop base rows.
var DefaultLookupSuffixes = []string{"_ref", "_lkp", "_xref", "_map", "_dim"}

// Hints pins aliases and known columns for a sheet.
type Hints struct {
	// Aliases maps a source table to the alias it must use.
	Aliases map[string]string `yaml:"aliases,omitempty"`
	// KnownColumns adds columns that the sheet itself does not list.
	KnownColumns map[string][]string `yaml:"known_columns,omitempty"`
	// LookupSuffixes overrides DefaultLookupSuffixes.
	LookupSuffixes []string `yaml:"lookup_suffixes,omitempty"`
	// StatusColumn names the column tested by "not active" rules.
	StatusColumn string `yaml:"status_column,omitempty"`
}

// LoadHints loads and parses a YAML hints document from the given path.
func LoadHints(path string) (*Hints, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read hints file %s: %w", path, err)
	}

	return ParseHints(data)
}

// ParseHints parses YAML data into Hints.
func ParseHints(data []byte) (*Hints, error) {
	var h Hints

	if err := yaml.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("failed to parse hints YAML: %w", err)
	}

	applyDefaults(&h)

	return &h, nil
}

// DefaultHints returns an empty hint set with defaults applied.
func DefaultHints() *Hints {
	h := &Hints{}
	applyDefaults(h)

	return h
}

// applyDefaults lower-cases table keys and fills in default values.
func applyDefaults(h *Hints) {
	aliases := make(map[string]string, len(h.Aliases))
	for table, alias := range h.Aliases {
		aliases[strings.ToLower(strings.TrimSpace(table))] = strings.TrimSpace(alias)
	}

	h.Aliases = aliases

	known := make(map[string][]string, len(h.KnownColumns))
	for table, cols := range h.KnownColumns {
		key := strings.ToLower(strings.TrimSpace(table))
		known[key] = append(known[key], cols...)
	}

	h.KnownColumns = known

	if len(h.LookupSuffixes) == 0 {
		h.LookupSuffixes = append([]string(nil), DefaultLookupSuffixes...)
	}

	h.StatusColumn = strings.TrimSpace(h.StatusColumn)
}
