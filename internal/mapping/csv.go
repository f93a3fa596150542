package mapping

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"sqljob-generator/internal/common"
	"sqljob-generator/internal/diagnostic"
	"sqljob-generator/internal/match"
)

var (
	// ErrMissingColumn is returned when a required canonical column is absent.
	ErrMissingColumn = errors.New("missing required column")
	// ErrUnreadable is returned when neither the strict nor the lenient parse succeeds.
	ErrUnreadable = errors.New("unreadable mapping sheet")
)

// required lists the canonical columns a sheet must provide.
var required = []string{match.SourceTable, match.TargetColumn}

// LoadFile loads and normalizes a CSV mapping sheet from the given path.
func LoadFile(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping sheet %s: %w", path, err)
	}

	return Parse(data, match.DefaultHeaderMatcher())
}

// Parse parses CSV data, retrying once leniently, and normalizes it.
func Parse(data []byte, matcher *match.HeaderMatcher) (*Dataset, error) {
	records, strictErr := readStrict(data)
	lenient := false

	if strictErr != nil {
		var err error

		records, err = readLenient(data)
		if err != nil {
			return nil, fmt.Errorf("%w: strict: %v; lenient: %v", ErrUnreadable, strictErr, err)
		}

		lenient = true
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no header row", ErrUnreadable)
	}

	ds, err := Normalize(records[0], records[1:], matcher)
	if err != nil {
		return nil, err
	}

	if lenient {
		ds.Lenient = true
		ds.Diagnostics.AddWarning(diagnostic.CodeLenientParse,
			fmt.Sprintf("strict parse failed, used lenient parse: %v", strictErr), "", "")
	}

	return ds, nil
}

func readStrict(data []byte) ([][]string, error) {
	if !utf8.Valid(data) {
		return nil, errors.New("input is not valid UTF-8")
	}

	r := csv.NewReader(transform.NewReader(bytes.NewReader(data), unicode.BOMOverride(unicode.UTF8.NewDecoder())))

	return r.ReadAll()
}

func readLenient(data []byte) ([][]string, error) {
	var src io.Reader = transform.NewReader(bytes.NewReader(data), unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	if !utf8.Valid(data) {
		src = transform.NewReader(bytes.NewReader(data), unicode.BOMOverride(charmap.Windows1252.NewDecoder()))
	}

	r := csv.NewReader(src)
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	return r.ReadAll()
}

// Normalize canonicalizes headers and builds rows from raw records.
func Normalize(header []string, records [][]string, matcher *match.HeaderMatcher) (*Dataset, error) {
	matches := matcher.MatchAll(header)

	columns := map[string][]int{}
	for i, m := range matches {
		if m.Canonical != "" {
			columns[m.Canonical] = append(columns[m.Canonical], i)
		}
	}

	var missing []string

	for _, c := range required {
		if len(columns[c]) == 0 {
			missing = append(missing, c)
		}
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	ds := &Dataset{Headers: matches}

	for n, rec := range records {
		get := func(canonical string) string {
			return firstNonEmpty(rec, columns[canonical])
		}

		row := Row{
			Line:               n + 1,
			SourceTable:        strings.ToLower(common.FirstToken(get(match.SourceTable))),
			SourceColumn:       common.CollapseSpace(get(match.SourceColumn)),
			SourceDatatype:     common.CollapseSpace(get(match.SourceDatatype)),
			TargetTable:        common.FirstToken(get(match.TargetTable)),
			TargetColumn:       common.CollapseSpace(get(match.TargetColumn)),
			TargetDatatype:     common.CollapseSpace(get(match.TargetDatatype)),
			BusinessRule:       freeText(get(match.BusinessRule)),
			JoinClause:         freeText(get(match.JoinClause)),
			TransformationRule: freeText(get(match.TransformationRule)),
			SourcePath:         common.CollapseSpace(get(match.SourcePath)),
			TargetPath:         common.CollapseSpace(get(match.TargetPath)),
		}

		if row.isBlank() {
			continue
		}

		ds.Rows = append(ds.Rows, row)
	}

	return ds, nil
}

// firstNonEmpty returns the first non-blank cell among idxs. Ragged rows read as empty.
func firstNonEmpty(rec []string, idxs []int) string {
	for _, i := range idxs {
		if i < len(rec) && strings.TrimSpace(rec[i]) != "" {
			return strings.TrimSpace(rec[i])
		}
	}

	return ""
}

// freeText normalizes line endings and trims each line, keeping line structure.
func freeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func (r Row) isBlank() bool {
	return r.SourceTable == "" && r.TargetColumn == "" && r.BusinessRule == "" &&
		r.JoinClause == "" && r.TransformationRule == ""
}
