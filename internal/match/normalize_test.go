package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFoldHeader(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Business Rules (auto populate)", "business rule auto populate"},
		{"Table/File Name * (auto populate)", "table file name auto populate"},
		{"TargetColumn", "target column"},
		{"  Join   Clauses ", "join clause"},
		{"Célula", "celula"},
		{"", ""},
		{"***", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, FoldHeader(tt.input))
		})
	}
}

func TestTokenizeCamelCase(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"BusinessRule", []string{"Business", "Rule"}},
		{"SRCTable", []string{"SRC", "Table"}},
		{"source_table", []string{"source", "table"}},
		{"Table/File", []string{"Table", "File"}},
		{"a", []string{"a"}},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, tokenizeCamelCase(tt.input))
		})
	}
}

func TestTokenizeIdent(t *testing.T) {
	assert.Equal(t, []string{"tgt", "column", "name"}, TokenizeIdent("TgtColumn-Name"))
}
