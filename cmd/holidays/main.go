// Command holidays writes the Polish public holiday table used by the daily
// feature builder.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"tvaudience/internal/config"
	apperrors "tvaudience/internal/errors"
	"tvaudience/internal/exporter"
	"tvaudience/internal/infrastructure"
	"tvaudience/internal/reference"
)

func main() {
	if err := run(os.Args[1:], os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "holidays: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stderr io.Writer) error {
	year := time.Now().Year()

	fs := flag.NewFlagSet("holidays", flag.ContinueOnError)
	fs.SetOutput(stderr)
	from := fs.Int("from", year-5, "first year to include")
	to := fs.Int("to", year+1, "last year to include")
	out := fs.String("out", "holidays.csv", "output csv file path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *from > *to {
		return apperrors.NewAppValidationError(fmt.Sprintf("-from %d is after -to %d", *from, *to))
	}

	cfg, err := config.Load("")
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}
	logger := infrastructure.NewLogger(cfg.Logging, stderr)

	records := make([][]string, 0, (*to-*from+1)*14)
	for y := *from; y <= *to; y++ {
		for _, h := range reference.PolishHolidays(y) {
			records = append(records, []string{h.Date.Format("2006-01-02"), h.Name})
		}
	}

	path, err := exporter.NewCSVWriter("", false, logger).
		WriteSimpleCSV(*out, []string{reference.HolidayColumn, "name"}, records)
	if err != nil {
		return apperrors.NewIOError("failed to write holiday table", err).WithContext("file", *out)
	}

	logger.Info("Wrote holiday table",
		slog.String("path", path),
		slog.Int("from", *from),
		slog.Int("to", *to),
		slog.Int("holidays", len(records)))
	return nil
}
