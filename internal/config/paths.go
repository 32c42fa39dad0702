package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains all the file system locations a run reads from or writes to.
// Relative settings are resolved against the working directory.
type Paths struct {
	DatasetDir   string
	OutputDir    string
	ProgFile     string
	MonthlyFile  string
	DailyFile    string
	HolidaysFile string
	SQLiteFile   string
	LogFile      string
}

// Paths resolves the dataset, output and log locations of the configuration
func (c *Config) Paths() (*Paths, error) {
	datasetDir, err := filepath.Abs(c.Dataset.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve dataset dir: %v", err)
	}
	outputDir, err := filepath.Abs(c.Export.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output dir: %v", err)
	}

	p := &Paths{
		DatasetDir:   datasetDir,
		OutputDir:    outputDir,
		ProgFile:     resolveIn(datasetDir, c.Dataset.ProgFile),
		MonthlyFile:  resolveIn(datasetDir, c.Dataset.MonthlyFile),
		DailyFile:    resolveIn(datasetDir, c.Dataset.DailyFile),
		HolidaysFile: resolveIn(datasetDir, c.Dataset.HolidaysFile),
	}
	if c.Export.SQLitePath != "" {
		p.SQLiteFile = resolveIn(outputDir, c.Export.SQLitePath)
	}
	if c.Logging.Output != "console" && c.Logging.FilePath != "" {
		p.LogFile, _ = filepath.Abs(c.Logging.FilePath)
	}
	return p, nil
}

// resolveIn joins name onto dir unless name is already absolute
func resolveIn(dir, name string) string {
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	return filepath.Join(dir, name)
}

// EnsureDirectories creates the output directory and the log directory
func (p *Paths) EnsureDirectories() error {
	directories := []string{p.OutputDir}
	if p.LogFile != "" {
		directories = append(directories, filepath.Dir(p.LogFile))
	}
	if p.SQLiteFile != "" {
		directories = append(directories, filepath.Dir(p.SQLiteFile))
	}

	logger := slog.Default()
	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
		logger.Debug("Ensured directory", slog.String("path", dir))
	}
	return nil
}

// InputFiles returns the source workbook for each table name
func (p *Paths) InputFiles() map[string]string {
	return map[string]string{
		"monthly": p.MonthlyFile,
		"daily":   p.DailyFile,
		"prog":    p.ProgFile,
	}
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
