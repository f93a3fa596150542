// Package expr turns interpreted transformation fragments into typed,
// aliased SELECT-list expressions and merges rows that define the same target column.
package expr
