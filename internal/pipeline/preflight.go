package pipeline

import (
	"fmt"
	"strings"

	"tvaudience/internal/config"
	apperrors "tvaudience/internal/errors"
	"tvaudience/internal/validation"
	"tvaudience/pkg/contracts/domain"
)

// Preflight checks that the dataset directory and the workbooks of the
// selected tables exist, that the holiday table exists when the daily table
// is selected, and that the output directory is writable
func Preflight(v *validation.FileValidator, paths *config.Paths, tables []domain.TableType) error {
	if err := v.ValidateInputDirectory(paths.DatasetDir); err != nil {
		return err
	}

	inputs := paths.InputFiles()
	for _, table := range tables {
		path, ok := inputs[string(table)]
		if !ok {
			continue
		}
		if err := v.ValidateExcelFile(path); err != nil {
			return err
		}
		if table == domain.TableDaily {
			if err := v.ValidateCSVFile(paths.HolidaysFile); err != nil {
				return err
			}
		}
	}

	return v.ValidateOutputDirectory(paths.OutputDir)
}

// ParseTables converts table names to table types
func ParseTables(names []string) ([]domain.TableType, error) {
	tables := make([]domain.TableType, 0, len(names))
	seen := make(map[domain.TableType]bool, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		t := domain.TableType(strings.ToLower(strings.TrimSpace(name)))
		switch t {
		case domain.TableMonthly, domain.TableDaily, domain.TableProg:
		default:
			return nil, apperrors.NewAppValidationError(fmt.Sprintf("unknown table %q", name))
		}
		if seen[t] {
			continue
		}
		seen[t] = true
		tables = append(tables, t)
	}
	return tables, nil
}
