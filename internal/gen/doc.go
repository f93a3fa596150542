// Package gen assembles the view statement for a resolved plan and renders
// the SQL file and the markdown audit report.
//
// Statement layout:
//   - one CTE per source entity, in first-seen order
//   - a step1 CTE that joins the base entity, applies business-rule
//     predicates (each preceded by a numbered audit comment) and QUALIFY;
//     joins keep discovery order unless an ON condition reads the alias of
//     a later join, which is then moved first
//   - a final SELECT of one expression per target column, in encounter order
//
// Generation uses text/template. The assembled text is passed through the
// validator before it is written; the pre-validation text can be kept as a
// debug sidecar.
package gen
