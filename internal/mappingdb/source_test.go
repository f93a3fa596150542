package mappingdb

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRows struct {
	data [][]string
	pos  int
	err  error
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}

	r.pos++

	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.pos-1]
	if len(dest) != len(row) {
		return fmt.Errorf("want %d destinations, got %d", len(row), len(dest))
	}

	for i, d := range dest {
		*d.(*string) = row[i]
	}

	return nil
}

func (r *fakeRows) Values() ([]any, error) {
	row := r.data[r.pos-1]
	out := make([]any, len(row))

	for i, v := range row {
		out[i] = v
	}

	return out, nil
}

type fakeDB struct {
	rows  *fakeRows
	err   error
	query string
}

func (f *fakeDB) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	f.query = sql
	if f.err != nil {
		return nil, f.err
	}

	return f.rows, nil
}

func record(source, srcCol, target, tgtCol, join, transform string) []string {
	return []string{source, srcCol, "", "", target, tgtCol, "", "", join, transform}
}

func TestSource_Load(t *testing.T) {
	db := &fakeDB{rows: &fakeRows{data: [][]string{
		record("OSSBR_2_1 mas", "SRACCT", "acct_dim", "acct_no", "", "ossbr_2_1.SRACCT"),
		record("glsxref", "gl_desc", "acct_dim", "gl_desc", "LEFT JOIN glsxref g ON g.acct = mas.SRACCT", ""),
		record("other", "x", "other_dim", "x", "", ""),
	}}}

	ds, err := New(db, "").Load(context.Background(), "ACCT_DIM")
	require.NoError(t, err)
	require.Len(t, ds.Rows, 2)

	assert.Equal(t, "ossbr_2_1", ds.Rows[0].SourceTable)
	assert.Equal(t, "SRACCT", ds.Rows[0].SourceColumn)
	assert.Equal(t, "acct_no", ds.Rows[0].TargetColumn)
	assert.Equal(t, "LEFT JOIN glsxref g ON g.acct = mas.SRACCT", ds.Rows[1].JoinClause)
	assert.Contains(t, db.query, `FROM "source_target_mapping"`)
}

func TestSource_LoadAllTargets(t *testing.T) {
	db := &fakeDB{rows: &fakeRows{data: [][]string{
		record("a", "x", "t1", "x", "", ""),
		record("b", "y", "t2", "y", "", ""),
	}}}

	ds, err := New(db, "dbo.source_target_mapping").Load(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2"}, ds.Targets())
	assert.Contains(t, db.query, `FROM "dbo"."source_target_mapping"`)
}

func TestSource_Errors(t *testing.T) {
	boom := errors.New("boom")

	_, err := New(&fakeDB{err: boom}, "").Load(context.Background(), "")
	require.ErrorIs(t, err, boom)

	_, err = New(&fakeDB{rows: &fakeRows{err: boom}}, "").Load(context.Background(), "")
	require.ErrorIs(t, err, boom)
}

func TestSource_Query(t *testing.T) {
	q := New(nil, "").Query()

	assert.Contains(t, q, "COALESCE(source_table::text, '') AS source_table")
	assert.Contains(t, q, "COALESCE(join_rule::text, '') AS join_clause")
	assert.Contains(t, q, "date_deleted IS NULL")
	assert.Contains(t, q, "ORDER BY id")
}
