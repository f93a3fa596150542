// Package joins normalizes free-text join fragments into an ordered,
// deduplicated list of join edges for one base entity.
//
// Fragments may come from the join column of a sheet or be found embedded in
// transformation text. The normalizer accepts "A WITH B ON ..." phrasing,
// strips trailing FROM clauses and semicolons, repairs self-joins and aliases
// leaked from other statements, and drops joins that differ only in alias
// spelling or whitespace. The join type is decided by a Policy.
package joins
