// Package shared holds helpers used by more than one package.
//
// The testutil subpackage provides a buffered slog handler for asserting on
// log output and builders for vendor-shaped .xlsx workbooks used by the
// importer and pipeline tests.
package shared
