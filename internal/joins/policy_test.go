package joins

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPolicy(t *testing.T) {
	p := NewDefaultPolicy(lookupSuffixes)

	tests := []struct {
		entity   string
		explicit Type
		want     Type
	}{
		{"db.Acct_REF", Inner, Left},
		{"country_dim", Full, Left},
		{"branch", "", Left},
		{"branch", Inner, Inner},
		{"branch", Right, Right},
		{"branch", Full, Full},
	}

	for _, tt := range tests {
		t.Run(tt.entity+"/"+string(tt.explicit), func(t *testing.T) {
			assert.Equal(t, tt.want, p.JoinType(tt.entity, tt.explicit))
		})
	}
}

func TestParseType(t *testing.T) {
	assert.Equal(t, Inner, ParseType(" inner "))
	assert.Equal(t, Type(""), ParseType("cross"))
}
