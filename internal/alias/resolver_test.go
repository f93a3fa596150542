package alias

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSynthesize(t *testing.T) {
	tests := []struct {
		table    string
		expected string
	}{
		{"ossbr_2_1", "ossb"},
		{"glsxref", "glsx"},
		{"mfspric", "mfsp"},
		{"db.sales.acct", "acct"},
		{"user", "usr"},
		{"area", "area"},
		{"io", "io"},
		{"2019_sales", "sls"},
		{"123", "t123"},
		{"", "t"},
	}

	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			assert.Equal(t, tt.expected, Synthesize(tt.table))
		})
	}
}

func TestIsReserved(t *testing.T) {
	for _, w := range []string{"on", "WITH", "join", "ref", "ref1", "REF22", "using", "step1"} {
		assert.True(t, IsReserved(w), w)
	}

	for _, w := range []string{"mas", "refx", "g"} {
		assert.False(t, IsReserved(w), w)
	}
}

func TestResolver_StrategyChain(t *testing.T) {
	texts := []string{
		"LEFT JOIN glsxref g ON mas.acct = g.acct",
		"select * from ossbr_2_1 on x",
		"ossbr_2_1 mas WITH mfspric p ON mas.id = p.id",
	}

	r := NewResolver(NewHintStrategy(map[string]string{"ACCT_REF": "ar"}), NewTextStrategy(texts))

	assert.Equal(t, "ar", r.Resolve("acct_ref"))
	assert.Equal(t, "g", r.Resolve("glsxref"))
	assert.Equal(t, "mas", r.Resolve("OSSBR_2_1"))
	assert.Equal(t, "p", r.Resolve("mfspric"))
	assert.Equal(t, "cstm", r.Resolve("customer"))

	// stable on repeat
	assert.Equal(t, "mas", r.Resolve("ossbr_2_1"))
	assert.Equal(t, []string{"acct_ref", "glsxref", "OSSBR_2_1", "mfspric", "customer"}, r.Tables())
}

func TestResolver_ReservedAliasesSkipped(t *testing.T) {
	r := NewResolver(NewTextStrategy([]string{"JOIN glsxref ref1 ON a.x = ref1.x", "from mfspric using"}))

	assert.Equal(t, "glsx", r.Resolve("glsxref"))
	assert.Equal(t, "mfsp", r.Resolve("mfspric"))
}

func TestResolver_Collisions(t *testing.T) {
	r := NewResolver()

	assert.Equal(t, "ossb", r.Resolve("ossbr_2_1"))
	assert.Equal(t, "ossb1", r.Resolve("ossbr_3_1"))
	assert.Equal(t, "ossb2", r.Resolve("ossbr_4_1"))
	assert.Equal(t, "ref_t", r.Resolve("ref"))

	tbl, ok := r.Table("OSSB1")
	assert.True(t, ok)
	assert.Equal(t, "ossbr_3_1", tbl)

	_, ok = r.Table("zz")
	assert.False(t, ok)
}

func TestResolver_Claim(t *testing.T) {
	r := NewResolver()

	assert.Equal(t, "g", r.Claim("glsxref", "g"))
	assert.Equal(t, "g1", r.Claim("gl_other", "g"))
	assert.Equal(t, "g", r.Claim("GLSXREF", "x"))
	assert.Equal(t, "mfsp", r.Claim("mfspric", "on"))

	a, ok := r.Lookup("gl_other")
	assert.True(t, ok)
	assert.Equal(t, "g1", a)

	assert.True(t, r.Known("g1"))
	assert.True(t, r.Known("glsxref"))
	assert.False(t, r.Known("q"))
}
