// Package mapping loads and normalizes column-mapping sheets.
//
// A mapping sheet is a CSV export where each data row describes one target
// column: the source table and column it comes from, declared datatypes, and
// free-form text for business rules, join logic and transformation logic.
//
// # Normalization
//
// Headers are matched to canonical names (see package match). Duplicate
// canonical columns collapse into one by taking, per row, the first non-empty
// value. The source table is reduced to its first token and lower-cased.
// Missing cells are empty strings, never absent.
//
// # Parsing
//
// Sheets are parsed strictly first (UTF-8, rectangular). When that fails they
// are parsed once more leniently: lazy quotes, ragged rows, and a Windows-1252
// fallback for bytes that are not valid UTF-8. A byte-order mark is always
// stripped.
//
// # Hints
//
// An optional YAML document pins aliases and known columns:
//
//	aliases:
//	  ossbr_2_1: mas
//	known_columns:
//	  glsxref: [gl_acct_id, gl_desc]
//	lookup_suffixes: [_ref, _lkp]
//	status_column: srstatus
package mapping
