// Package rules interprets the free-form text of a mapping sheet.
//
// Transformation text is first classified into a Kind (CASE block, literal
// assignment, column passthrough, predicate, join, or unclassified) and then
// handled by the matching builder, which yields a Fragment: the SQL
// expression plus any comments, defaults and join text that must travel with
// it. Business-rule text is split into items and turned into WHERE or QUALIFY
// predicates, or into audit-only notes when no predicate can be recovered.
//
// Interpretation never fails. The worst case is NULL with an explanatory comment.
package rules
