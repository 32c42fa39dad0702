package exporter

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Setup test environment
func setupTestEnv(t *testing.T, bom bool) (*CSVWriter, string) {
	t.Helper()
	tempDir := t.TempDir()
	return NewCSVWriter(tempDir, bom, quietLogger()), tempDir
}

func TestCSVWriter_WriteCSV(t *testing.T) {
	writer, tempDir := setupTestEnv(t, false)

	tests := []struct {
		name        string
		filePath    string
		options     WriteOptions
		expectError bool
		validate    func(t *testing.T, filePath string)
	}{
		{
			name:     "basic write with headers",
			filePath: "test_basic.csv",
			options: WriteOptions{
				Headers: []string{"Metric", "Description"},
				Records: [][]string{
					{"AMR", "Average Minute Rating"},
					{"SHR", "Share"},
				},
			},
			validate: func(t *testing.T, filePath string) {
				content, err := os.ReadFile(filePath)
				require.NoError(t, err)

				lines := strings.Split(strings.TrimSpace(string(content)), "\n")
				assert.Len(t, lines, 3) // header + 2 records
				assert.Equal(t, "Metric,Description", lines[0])
				assert.Equal(t, "AMR,Average Minute Rating", lines[1])
				assert.Equal(t, "SHR,Share", lines[2])
			},
		},
		{
			name:     "write with BOM prefix",
			filePath: "test_bom.csv",
			options: WriteOptions{
				Headers:   []string{"date_of_holiday"},
				Records:   [][]string{{"2024-01-01"}},
				BOMPrefix: true,
			},
			validate: func(t *testing.T, filePath string) {
				content, err := os.ReadFile(filePath)
				require.NoError(t, err)

				assert.True(t, bytes.HasPrefix(content, []byte{0xEF, 0xBB, 0xBF}))
				assert.Equal(t, "date_of_holiday\n2024-01-01\n", string(content[3:]))
			},
		},
		{
			name:     "nested directory is created",
			filePath: filepath.Join("nested", "deeper", "out.csv"),
			options: WriteOptions{
				Headers: []string{"a"},
				Records: [][]string{{"1"}},
			},
			validate: func(t *testing.T, filePath string) {
				assert.FileExists(t, filePath)
			},
		},
		{
			name:     "special characters are quoted",
			filePath: "special.csv",
			options: WriteOptions{
				Headers: []string{"Title", "Note"},
				Records: [][]string{{"Film, the", `say "hi"`}},
			},
			validate: func(t *testing.T, filePath string) {
				content, err := os.ReadFile(filePath)
				require.NoError(t, err)
				assert.Contains(t, string(content), `"Film, the","say ""hi"""`)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := writer.WriteCSV(tt.filePath, tt.options)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(tempDir, tt.filePath), path)
			if tt.validate != nil {
				tt.validate(t, path)
			}
		})
	}
}

func TestCSVWriter_Append(t *testing.T) {
	writer, _ := setupTestEnv(t, false)

	path, err := writer.WriteCSV("append.csv", WriteOptions{
		Headers: []string{"x"},
		Records: [][]string{{"1"}},
	})
	require.NoError(t, err)

	_, err = writer.WriteCSV("append.csv", WriteOptions{
		Headers:   []string{"ignored"},
		Records:   [][]string{{"2"}},
		Append:    true,
		BOMPrefix: true,
	})
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x\n1\n2\n", string(content))
}

func TestCSVWriter_WriteSimpleCSVOverwrites(t *testing.T) {
	writer, _ := setupTestEnv(t, true)

	_, err := writer.WriteSimpleCSV("simple.csv", []string{"a"}, [][]string{{"1"}, {"2"}, {"3"}})
	require.NoError(t, err)
	path, err := writer.WriteSimpleCSV("simple.csv", []string{"a"}, [][]string{{"9"}})
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "\ufeffa\n9\n", string(content))
}

func TestCSVWriter_AbsolutePath(t *testing.T) {
	writer, _ := setupTestEnv(t, false)
	abs := filepath.Join(t.TempDir(), "abs.csv")

	assert.Equal(t, abs, writer.resolvePath(abs))
	assert.Equal(t, filepath.Join(writer.outputDir, "rel.csv"), writer.resolvePath("rel.csv"))
}

func TestCSVWriter_ErrorScenarios(t *testing.T) {
	tempDir := t.TempDir()
	blocker := filepath.Join(tempDir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("file"), 0644))

	// The output directory is a regular file, so nothing can be created in it.
	writer := NewCSVWriter(blocker, false, quietLogger())

	_, err := writer.WriteCSV("out.csv", WriteOptions{Headers: []string{"a"}})
	assert.Error(t, err)

	_, err = writer.CreateStreamWriter("out.csv", []string{"a"})
	assert.Error(t, err)
}

func TestStreamWriter(t *testing.T) {
	for _, bom := range []bool{false, true} {
		writer, tempDir := setupTestEnv(t, bom)

		stream, err := writer.CreateStreamWriter("stream.csv", []string{"Name", "Value"})
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(tempDir, "stream.csv"), stream.Path())

		require.NoError(t, stream.WriteRecord([]string{"a", "1"}))
		require.NoError(t, stream.WriteRecord([]string{"b", "2"}))
		require.NoError(t, stream.Close())

		content, err := os.ReadFile(stream.Path())
		require.NoError(t, err)
		assert.Equal(t, bom, bytes.HasPrefix(content, utf8BOM))
		assert.Equal(t, "Name,Value\na,1\nb,2\n", string(bytes.TrimPrefix(content, utf8BOM)))
	}
}
