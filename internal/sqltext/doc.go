// Package sqltext provides token-level helpers over SQL fragments: whitespace
// collapsing, comment extraction, CASE/parenthesis balance, keyword search at
// nesting depth zero and qualifier rewriting. Everything is quote-aware and
// comment-aware, so keywords inside string literals are never matched.
package sqltext
