// Package pipeline runs the import, enrich and export stages of one ETL run.
//
// Each selected table (monthly, daily, prog) is an independent stage. The
// Runner executes stages through an errgroup bounded by the configured
// worker count; the first failing stage cancels the others and fails the
// run. Every stage gets its own span and records rows and files written on
// the pipeline metrics. The glossary export runs as an extra stage when
// enabled.
package pipeline
