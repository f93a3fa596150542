// Package engine runs one generation over a mapping dataset.
//
// A run splits the sheet by target table and, per target, resolves a plan,
// assembles and validates the view, builds the job manifest and writes the
// artifacts to "<output dir>/<target>_job". Interpretation traces go to
// append-only debug logs when enabled.
//
// A run is a pure function of the dataset, the hints and the options: the
// same input rewrites byte-identical artifacts.
package engine
