// Package validate performs token-level structural checks on generated SQL
// and repairs what it safely can.
//
// Checks:
//   - duplicate alias declarations within one SELECT scope
//   - JOIN without ON (repaired with ON 1=1 and a flag comment)
//   - CASE/END and parenthesis balance
//   - column references through undeclared aliases
//   - duplicate JOIN lines (same target and ON clause)
//
// Validation never fails; it returns the corrected SQL, warnings and a change log.
package validate
