// Package exporter writes normalized tables as flat CSV files.
//
// CSVWriter is the low-level writer (headers, streaming, optional UTF-8 BOM
// for spreadsheet tools). TableExporter renders a frame with its index as
// the first column, one file per table, and writes the metric glossary.
//
// Example usage:
//
//	exp := exporter.NewTableExporter("../datasets/kino_polska/tableau", false, logger)
//	path, err := exp.Export(daily, "daily")
//
//	header, records, err := exporter.ReadTable(path)
package exporter
