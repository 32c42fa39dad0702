// Package reference holds the read-only lookup tables the pipeline consults:
// the daypart hour-slot table and the holiday calendar.
//
// Both tables are built once by the process entry point and handed to the
// importer and feature builder; nothing here is loaded at package init, so
// unit tests can build tables in memory without touching disk.
package reference
