package importer

import (
	"io"
	"log/slog"
	"testing"

	"tvaudience/internal/shared/testutil"
)

// writeWorkbook saves grid as the first sheet of a new .xlsx file
func writeWorkbook(t *testing.T, name string, grid [][]any) string {
	t.Helper()
	return testutil.WriteWorkbook(t, t.TempDir(), name, grid)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
