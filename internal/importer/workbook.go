package importer

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	apperrors "tvaudience/internal/errors"
	"tvaudience/internal/frame"
)

const (
	metaHeaderRow = 0
	metaValueRow  = 1
	headerRow     = 2
)

// Sheet is the first worksheet of a vendor workbook split into its parts
type Sheet struct {
	Path   string
	Meta   map[string]string
	Header []string
	Rows   [][]string
}

// ReadWorkbook reads the first worksheet of an .xls or .xlsx file
func ReadWorkbook(path string) (*Sheet, error) {
	var (
		grid [][]string
		err  error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		grid, err = readXLSX(path)
	case ".xls":
		grid, err = readXLS(path)
	default:
		return nil, apperrors.NewIOError(fmt.Sprintf("unsupported workbook format %q", filepath.Ext(path)), nil).
			WithContext("file", path)
	}
	if err != nil {
		return nil, apperrors.NewIOError("failed to read workbook", err).WithContext("file", path)
	}

	return splitSheet(path, grid)
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

func readXLS(path string) ([][]string, error) {
	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, err
	}
	if wb.NumSheets() == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("first sheet is unreadable")
	}

	grid := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			grid = append(grid, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for c := row.FirstCol(); c < row.LastCol(); c++ {
			cells[c] = row.Col(c)
		}
		grid = append(grid, cells)
	}
	return grid, nil
}

// splitSheet separates the metadata rows, the header row and the data rows.
// Rows without any non-blank cell are skipped.
func splitSheet(path string, grid [][]string) (*Sheet, error) {
	if len(grid) <= headerRow {
		return nil, apperrors.NewConsistencyError(
			fmt.Sprintf("workbook has %d rows, expected metadata and header rows", len(grid))).
			WithContext("file", path)
	}

	s := &Sheet{
		Path:   path,
		Meta:   make(map[string]string),
		Header: headerNames(grid[headerRow]),
	}

	metaValues := grid[metaValueRow]
	for i, name := range grid[metaHeaderRow] {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if i < len(metaValues) {
			s.Meta[name] = strings.TrimSpace(metaValues[i])
		} else {
			s.Meta[name] = ""
		}
	}

	for _, raw := range grid[headerRow+1:] {
		if blank(raw) {
			continue
		}
		row := make([]string, len(s.Header))
		copy(row, raw)
		s.Rows = append(s.Rows, row)
	}
	return s, nil
}

// headerNames trims the header cells, names empty ones "Unnamed: <i>" and
// suffixes repeated names with ".1", ".2", ...
func headerNames(cells []string) []string {
	last := len(cells)
	for last > 0 && strings.TrimSpace(cells[last-1]) == "" {
		last--
	}

	names := make([]string, last)
	seen := make(map[string]int)
	for i := 0; i < last; i++ {
		name := strings.TrimSpace(cells[i])
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n+1)
		} else {
			seen[name] = 0
		}
		names[i] = name
	}
	return names
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Frame converts the data rows into a positionally indexed frame. Column
// types are inferred: a column whose non-empty cells all parse as integers
// becomes int64, as numbers float64, otherwise string. Empty cells are nil.
// Only the metadata fields named in keep are attached to the frame.
func (s *Sheet) Frame(keep ...string) (*frame.Frame, error) {
	rows := make([][]any, len(s.Rows))
	for i := range rows {
		rows[i] = make([]any, len(s.Header))
	}

	for c := range s.Header {
		kind := inferKind(s.Rows, c)
		for r, raw := range s.Rows {
			rows[r][c] = convertCell(strings.TrimSpace(raw[c]), kind)
		}
	}

	f, err := frame.New(s.Header, rows)
	if err != nil {
		return nil, err
	}
	for _, k := range keep {
		if v, ok := s.Meta[k]; ok {
			f.Meta[k] = v
		}
	}
	return f, nil
}

type cellKind int

const (
	kindInt cellKind = iota
	kindFloat
	kindString
)

func inferKind(rows [][]string, c int) cellKind {
	kind := kindInt
	for _, r := range rows {
		v := strings.TrimSpace(r[c])
		if v == "" {
			continue
		}
		if kind == kindInt {
			if _, err := strconv.ParseInt(v, 10, 64); err == nil {
				continue
			}
			kind = kindFloat
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return kindString
		}
	}
	return kind
}

func convertCell(v string, kind cellKind) any {
	if v == "" {
		return nil
	}
	switch kind {
	case kindInt:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	case kindFloat:
		n, _ := strconv.ParseFloat(v, 64)
		return n
	default:
		return v
	}
}
