// Package plan provides the resolution pipeline that turns a normalized
// mapping sheet into a ResolvedViewPlan consumed by SQL assembly.
//
// Resolution pipeline:
//  1. Pick the base entity (most frequent source table) and the target table
//  2. Resolve statement-unique aliases for every source entity
//  3. Collect join fragments from join cells and transformation text → join edges
//  4. Interpret business rules → WHERE / QUALIFY predicates and audit notes
//  5. Group rows by target column, merge variants, interpret and build one
//     expression per column
//  6. Emit diagnostics (leaked aliases, guarded expressions, merged variants)
package plan
