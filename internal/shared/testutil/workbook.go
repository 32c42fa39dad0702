package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// DailyHeader is the column header row of a vendor daily export
var DailyHeader = []any{"Date", `Day Part\Variable`, "Channel", "AMR", "RCH [Not cons. - TH: 0min.]", "SHR %"}

// WriteWorkbook saves grid as the first sheet of dir/name
func WriteWorkbook(t *testing.T, dir, name string, grid [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range grid {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}

	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	return path
}

// DailyGrid builds a daily export with one row per daypart label for each date
func DailyGrid(labels []string, dates ...string) [][]any {
	grid := [][]any{
		{"Target", "Activity", "Platform"},
		{"All 4+", "Live", "TV"},
		DailyHeader,
	}
	n := 0
	for _, d := range dates {
		for _, l := range labels {
			grid = append(grid, []any{d, l, "Kino Polska", 1000 + n, 2000 + n, 0.5})
			n++
		}
	}
	return grid
}

// MonthlyGrid builds a monthly export with one row per month start
func MonthlyGrid(months ...string) [][]any {
	grid := [][]any{
		{"Target", "Day Part group", "Activity", "Platform"},
		{"All 4+", "Whole day", "Live", "TV"},
		{`Date\Variable`, "AMR", "ATS", "SHR %"},
	}
	for i, m := range months {
		grid = append(grid, []any{m, 1500 + i, "00:12:34", 1.2})
	}
	return grid
}

// ProgGrid builds a programme export with the given titles
func ProgGrid(titles ...string) [][]any {
	grid := [][]any{
		{"Activity", "Platform"},
		{"Live", "TV"},
		{"Title", "Date", "SHR %", "AMR"},
	}
	for i, title := range titles {
		grid = append(grid, []any{title, "2023-07-04", 1.5, 10 + i})
	}
	return grid
}
