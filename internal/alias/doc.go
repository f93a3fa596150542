// Package alias assigns a short, statement-unique alias to every source entity.
//
// Aliases come from a chain of strategies: pinned hints, FROM/JOIN mentions in
// the sheet's free text, then a synthetic abbreviation of the table name.
// Collisions are resolved by numeric suffix (x, x1, x2, ...). Table matching
// is case-insensitive; the first-seen casing of each table name is kept.
package alias
