package manifest

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"sqljob-generator/internal/diagnostic"
)

func testInput() Input {
	return Input{
		Target:  "acct_dim",
		Malcode: "ossbr",
		Sources: []string{"ossbr_2_1", "glsxref g", "OSSBR_2_1"},
		Columns: []string{"acct_no", "LAST_CHANGE_DT", "etl_effective_dt"},
		SQL:     "SELECT a FROM t WHERE a <> 1;\n",
	}
}

const expectedJSON = `{
  "source_malcode": "ossbr",
  "source_basepath": "OSSBR",
  "comment": "This job is responsible for loading data into acct_dim from ossbr - ossbr_2_1, glsxref",
  "modules": {
    "data_sourcing_process": {
      "options": {
        "module": "data_sourcing_process",
        "method": "process"
      },
      "loggable": true,
      "sourcelist": [
        "ossbr_2_1",
        "glsxref"
      ],
      "ossbr_2_1": {
        "type": "sz_zone",
        "table.name": "ossbr_2_1",
        "read-format": "view",
        "path": "${adls.source.root}/ossbr_2_1"
      },
      "glsxref": {
        "type": "sz_zone",
        "table.name": "glsxref",
        "read-format": "view",
        "path": "${adls.source.root}/glsxref"
      }
    },
    "dt_acct_dim_ossbr": {
      "sql": "SELECT a FROM t WHERE a <> 1;\n",
      "loggable": true,
      "options": {
        "module": "data_transformation",
        "method": "process"
      },
      "name": "dt_acct_dim_ossbr"
    },
    "load_enrich_process": {
      "options": {
        "module": "load_enrich_process",
        "method": "process"
      },
      "loggable": true,
      "sql": "SELECT * FROM dt_acct_dim_ossbr",
      "target-path": "${adls.stage.root}/ossbr",
      "mode-of-write": "replace_partition",
      "keys": "",
      "cdc-flag": false,
      "scd2-flag": false,
      "partition-by": "etl_effective_dt",
      "target-format": "delta",
      "target-table": "/acct_dim",
      "name": "acct_dim_daily"
    }
  }
}
`

func TestBuild_JSON(t *testing.T) {
	m, diags := Build(testInput())
	assert.Empty(t, diags.Infos)

	out, err := m.Encode(JSON)
	require.NoError(t, err)
	assert.Equal(t, expectedJSON, string(out))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
}

func TestBuild_Deterministic(t *testing.T) {
	for _, f := range []Format{JSON, YAML} {
		a, _ := Build(testInput())
		b, _ := Build(testInput())

		outA, err := a.Encode(f)
		require.NoError(t, err)

		outB, err := b.Encode(f)
		require.NoError(t, err)

		assert.Equal(t, outA, outB, string(f))
	}
}

func TestBuild_YAML(t *testing.T) {
	m, _ := Build(testInput())

	out, err := m.Encode(YAML)
	require.NoError(t, err)

	var node yaml.Node
	require.NoError(t, yaml.Unmarshal(out, &node))

	root := node.Content[0]
	require.Equal(t, yaml.MappingNode, root.Kind)
	assert.Equal(t, "source_malcode", root.Content[0].Value)
	assert.Equal(t, "source_basepath", root.Content[2].Value)
	assert.Equal(t, "OSSBR", root.Content[3].Value)
	assert.Equal(t, "modules", root.Content[6].Value)

	modules := root.Content[7]
	assert.Equal(t, "data_sourcing_process", modules.Content[0].Value)
	assert.Equal(t, "dt_acct_dim_ossbr", modules.Content[2].Value)
	assert.Equal(t, "load_enrich_process", modules.Content[4].Value)

	var decoded struct {
		Modules map[string]map[string]any `yaml:"modules"`
	}
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	assert.Equal(t, "SELECT a FROM t WHERE a <> 1;\n", decoded.Modules["dt_acct_dim_ossbr"]["sql"])
	assert.Equal(t, "etl_effective_dt", decoded.Modules["load_enrich_process"]["partition-by"])
}

func TestBuild_SQLReference(t *testing.T) {
	in := testInput()
	in.SQLPath = "acct_dim_job/dt_acct_dim_ossbr.sql"

	m, _ := Build(in)
	assert.Equal(t, "@acct_dim_job/dt_acct_dim_ossbr.sql", m.TransformSQL)
}

func TestBuild_NoPartitionColumn(t *testing.T) {
	in := testInput()
	in.Columns = []string{"acct_no"}

	m, diags := Build(in)
	assert.Empty(t, m.PartitionBy)
	require.Len(t, diags.Infos, 1)
	assert.Equal(t, diagnostic.CodeNoPartitionField, diags.Infos[0].Code)

	v, ok := m.Document().Get("modules")
	require.True(t, ok)

	load, ok := v.(Object).Get(LoadModule)
	require.True(t, ok)

	pb, _ := load.(Object).Get("partition-by")
	assert.Equal(t, "", pb)
}

func TestPartitionColumn(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		want    string
	}{
		{"none", []string{"a", "b"}, ""},
		{"to_dt wins", []string{"last_change_dt", "effectv_dt", "TO_DT"}, "TO_DT"},
		{"effectv", []string{"last_change_dt", "effectv_dt"}, "effectv_dt"},
		{"last", []string{"x", "last_change_dt"}, "last_change_dt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PartitionColumn(tt.columns))
		})
	}
}

func TestTransformName(t *testing.T) {
	assert.Equal(t, "dt_acct_dim_ossbr", TransformName("ACCT_DIM", "OSSBR"))
	assert.Equal(t, "dt_acct_dim", TransformName("acct_dim", ""))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("YML")
	require.NoError(t, err)
	assert.Equal(t, YAML, f)
	assert.Equal(t, "yaml", f.Ext())

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, "json", f.Ext())

	_, err = ParseFormat("toml")
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestObject_Set(t *testing.T) {
	var o Object
	o.Set("b", 1)
	o.Set("a", 2)
	o.Set("b", 3)

	assert.Equal(t, []string{"b", "a"}, o.Keys())

	v, ok := o.Get("b")
	require.True(t, ok)
	assert.Equal(t, 3, v)
}
