package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func canonicals(ms []HeaderMatch) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Canonical
	}

	return out
}

func TestHeaderMatcher_SheetLayout(t *testing.T) {
	headers := []string{
		"Table/File Name * (auto populate)",
		"Column Name * (auto populate)",
		"Data Type * (auto populate)",
		"Table/File Name * (auto populate)",
		"Column/Field Name * (auto populate)",
		"Data Type * (auto populate)",
		"Business Rule (auto populate)",
		"Join Clause (auto populate)",
		"Transformation Rule/Logic (auto populate)",
	}

	got := DefaultHeaderMatcher().MatchAll(headers)
	require.Len(t, got, len(headers))

	assert.Equal(t, []string{
		SourceTable, SourceColumn, SourceDatatype,
		TargetTable, TargetColumn, TargetDatatype,
		BusinessRule, JoinClause, TransformationRule,
	}, canonicals(got))

	for _, m := range got {
		assert.False(t, m.Fuzzy, m.Raw)
	}
}

func TestHeaderMatcher_RepeatSuffix(t *testing.T) {
	got := DefaultHeaderMatcher().MatchAll([]string{
		"Table/File Name * (auto populate).1",
		"Data Type * (auto populate)__1",
	})

	assert.Equal(t, []string{TargetTable, TargetDatatype}, canonicals(got))
}

func TestHeaderMatcher_Fuzzy(t *testing.T) {
	tests := []struct {
		header   string
		expected string
	}{
		{"Source Table", SourceTable},
		{"target_column", TargetColumn},
		{"Tgt Col", TargetColumn},
		{"Transformation Logic", TransformationRule},
		{"Joins", JoinClause},
		{"Notes", ""},
		{"", ""},
	}

	m := DefaultHeaderMatcher()

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got := m.MatchAll([]string{tt.header})
			assert.Equal(t, tt.expected, got[0].Canonical)

			if tt.expected != "" {
				assert.True(t, got[0].Fuzzy)
				assert.GreaterOrEqual(t, got[0].Score, DefaultThreshold)
			}
		})
	}
}

func TestHeaderMatcher_Threshold(t *testing.T) {
	strict := NewHeaderMatcher(DefaultHeaderRules(), 0.95)
	got := strict.MatchAll([]string{"Tgt Col"})
	assert.Empty(t, got[0].Canonical)
}
