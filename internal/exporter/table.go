package exporter

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"

	apperrors "tvaudience/internal/errors"
	"tvaudience/internal/frame"
	"tvaudience/pkg/contracts/domain"
)

// TableExporter writes frames as <output dir>/<name>.csv
type TableExporter struct {
	writer *CSVWriter
	logger *slog.Logger
}

// NewTableExporter creates an exporter writing into outputDir
func NewTableExporter(outputDir string, bom bool, logger *slog.Logger) *TableExporter {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "exporter")
	return &TableExporter{
		writer: NewCSVWriter(outputDir, bom, logger),
		logger: logger,
	}
}

// Export writes f with its index as the first column and returns the path
// written. An existing file is replaced.
func (e *TableExporter) Export(f *frame.Frame, name string) (string, error) {
	if name == "" {
		return "", apperrors.NewAppValidationError("table name is empty")
	}

	header, records := f.Records()
	stream, err := e.writer.CreateStreamWriter(name+".csv", header)
	if err != nil {
		return "", apperrors.NewIOError("failed to create table file", err).WithContext("table", name)
	}
	for i, rec := range records {
		if err := stream.WriteRecord(rec); err != nil {
			stream.Close()
			return "", apperrors.NewIOError("failed to write table row", err).
				WithContext("table", name).WithContext("row", i)
		}
	}
	if err := stream.Close(); err != nil {
		return "", apperrors.NewIOError("failed to close table file", err).WithContext("table", name)
	}

	e.logger.Info("Exported table",
		slog.String("table", name),
		slog.String("path", stream.Path()),
		slog.Int("rows", len(records)),
		slog.Int("columns", len(header)))
	return stream.Path(), nil
}

// ExportGlossary writes the metric glossary as glossary.csv
func (e *TableExporter) ExportGlossary() (string, error) {
	codes := domain.MetricCodes()
	records := make([][]string, 0, len(codes))
	for _, code := range codes {
		desc, _ := domain.Describe(code)
		records = append(records, []string{string(code), desc})
	}

	path, err := e.writer.WriteSimpleCSV(string(domain.TableGlossary)+".csv", []string{"Metric", "Description"}, records)
	if err != nil {
		return "", apperrors.NewIOError("failed to write glossary", err)
	}
	return path, nil
}

// ReadTable reads an exported table back as its header and records. A
// leading byte order mark is dropped.
func ReadTable(path string) ([]string, [][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, apperrors.NewIOError("failed to open table", err).WithContext("file", path)
	}
	defer file.Close()

	br := bufio.NewReader(file)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return nil, nil, apperrors.NewIOError("failed to read table", err).WithContext("file", path)
		}
	}

	r := csv.NewReader(br)
	header, err := r.Read()
	if err == io.EOF {
		return nil, nil, apperrors.NewConsistencyError("table file is empty").WithContext("file", path)
	}
	if err != nil {
		return nil, nil, apperrors.NewParsingError("malformed table header", err).WithContext("file", path)
	}

	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, apperrors.NewParsingError(
				fmt.Sprintf("malformed table row %d", len(records)), err).WithContext("file", path)
		}
		records = append(records, rec)
	}
	return header, records, nil
}
