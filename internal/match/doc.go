// Package match maps the free-form column headers of a mapping sheet onto
// canonical column names.
//
// Key functions:
//   - FoldHeader: folds header text (accents, case, plurals, separators)
//   - Levenshtein: computes edit distance between strings
//   - HeaderMatcher: regex-then-fuzzy header canonicalization
package match
