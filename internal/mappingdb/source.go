// Package mappingdb reads approved mapping rows from PostgreSQL.
package mappingdb

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sqljob-generator/internal/mapping"
	"sqljob-generator/internal/match"
)

// DefaultTable is the table holding approved mapping rows.
const DefaultTable = "source_target_mapping"

// Querier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// columns are read in this order and named with their canonical header.
var columns = []struct {
	expr      string
	canonical string
}{
	{"source_table", match.SourceTable},
	{"source_columns", match.SourceColumn},
	{"source_data_types", match.SourceDatatype},
	{"source_adls_location", match.SourcePath},
	{"target_table", match.TargetTable},
	{"target_columns", match.TargetColumn},
	{"target_data_types", match.TargetDatatype},
	{"target_adls_location", match.TargetPath},
	{"join_rule", match.JoinClause},
	{"transformation_rule", match.TransformationRule},
}

// Open connects a pool to dsn and checks it with a ping.
func Open(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// Source loads mapping datasets from a table.
type Source struct {
	db    Querier
	table string
}

// New returns a Source reading table through db. An empty table means DefaultTable.
func New(db Querier, table string) *Source {
	if strings.TrimSpace(table) == "" {
		table = DefaultTable
	}

	return &Source{db: db, table: table}
}

// Query is the statement used by Load. Only approved, not deleted rows are read.
func (s *Source) Query() string {
	sel := make([]string, len(columns))
	for i, c := range columns {
		sel[i] = fmt.Sprintf("COALESCE(%s::text, '') AS %s", c.expr, c.canonical)
	}

	ident := pgx.Identifier(strings.Split(s.table, ".")).Sanitize()

	return "SELECT " + strings.Join(sel, ", ") +
		" FROM " + ident +
		" WHERE COALESCE(approved_by, '') <> '' AND date_deleted IS NULL" +
		" ORDER BY id"
}

// Load reads the approved rows into a normalized dataset. When targetTable is
// not empty only its rows are returned.
func (s *Source) Load(ctx context.Context, targetTable string) (*mapping.Dataset, error) {
	rows, err := s.db.Query(ctx, s.Query())
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", s.table, err)
	}
	defer rows.Close()

	var records [][]string

	for rows.Next() {
		rec := make([]string, len(columns))
		dest := make([]any, len(columns))

		for i := range rec {
			dest[i] = &rec[i]
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", s.table, err)
		}

		if targetTable != "" && !strings.EqualFold(strings.TrimSpace(rec[4]), targetTable) {
			continue
		}

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.table, err)
	}

	return mapping.Normalize(header(), records, headerMatcher())
}

func header() []string {
	h := make([]string, len(columns))
	for i, c := range columns {
		h[i] = c.canonical
	}

	return h
}

// headerMatcher recognises the canonical names exactly.
func headerMatcher() *match.HeaderMatcher {
	rules := make([]match.HeaderRule, len(columns))
	for i, c := range columns {
		rules[i] = match.HeaderRule{
			Canonical: c.canonical,
			Pattern:   regexp.MustCompile(`^` + regexp.QuoteMeta(c.canonical) + `$`),
		}
	}

	return match.NewHeaderMatcher(rules, 1)
}
