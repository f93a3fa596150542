// Package diagnostic provides structured warnings, errors and informational
// notes collected while turning a mapping sheet into a SQL view.
//
// Key capabilities:
//   - Input-shape errors (missing required columns, unreadable sheets)
//   - Rule interpretation fallbacks (unclassified text, guarded expressions)
//   - Join repairs (self-joins, alias conflicts, missing ON clauses)
//   - Validator fixes applied to the assembled statement
package diagnostic
