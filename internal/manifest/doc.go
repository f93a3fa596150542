// Package manifest builds the job manifest that runs a generated view as a
// three-stage pipeline: source listing, transformation and load.
//
// Keys are emitted in a fixed order so that repeated runs over the same
// sheet produce byte-identical JSON or YAML.
package manifest
