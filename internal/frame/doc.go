// Package frame provides the small tabular abstraction the importer, feature
// builder and exporters pass between each other.
//
// A Frame is an ordered set of named columns over row-major cells. Cells are
// plain Go values: string, int64, float64, bool, time.Time, time.Duration,
// Category, or nil for a missing value. A Frame is indexed either positionally
// (row numbers) or by a timestamp Index, optionally asserted to be uniformly
// spaced.
//
// Frames are process-local values. Operations that enrich a table
// (see package features) clone the input rather than mutating it.
package frame
