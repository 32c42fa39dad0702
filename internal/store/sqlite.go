// Package store persists exported tables into a SQLite database, one table
// per frame plus a _meta table holding the workbook metadata of each.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	apperrors "tvaudience/internal/errors"
	"tvaudience/internal/frame"
)

const metaTable = "_meta"

// columnMetaPrefix keys the _meta rows recording renamed columns
const columnMetaPrefix = "column:"

// positionalIndex names the index column of frames without a time index
const positionalIndex = "index"

// SQLiteStore writes frames into a SQLite file
type SQLiteStore struct {
	db     *sql.DB
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

// Open opens (creating when needed) the database at path
func Open(ctx context.Context, path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, apperrors.NewIOError("failed to create database directory", err).WithContext("file", path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, apperrors.NewIOError("failed to open sqlite database", err).WithContext("file", path)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, apperrors.NewIOError("failed to open sqlite database", err).WithContext("file", path)
	}

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS "`+metaTable+`" (
		"table_name" TEXT NOT NULL,
		"key" TEXT NOT NULL,
		"value" TEXT,
		PRIMARY KEY ("table_name", "key")
	)`); err != nil {
		db.Close()
		return nil, apperrors.NewIOError("failed to create metadata table", err).WithContext("file", path)
	}

	return &SQLiteStore{
		db:     db,
		path:   path,
		logger: logger.With("component", "store"),
	}, nil
}

// SaveTable replaces the table called name with the rows of f. The index
// becomes the first column; integer and float columns are stored as
// INTEGER and REAL, everything else as its CSV text.
func (s *SQLiteStore) SaveTable(ctx context.Context, name string, f *frame.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name == "" || name == metaTable {
		return apperrors.NewAppValidationError(fmt.Sprintf("invalid table name %q", name))
	}

	ix := f.Index()
	indexName := ix.Name
	if indexName == "" {
		indexName = positionalIndex
	}
	cols, renamed := storedColumns(append([]string{indexName}, f.Columns()...))

	defs := make([]string, len(cols))
	quoted := make([]string, len(cols))
	defs[0] = quoteIdent(cols[0]) + " TEXT"
	if !ix.IsTime() {
		defs[0] = quoteIdent(cols[0]) + " INTEGER"
	}
	quoted[0] = quoteIdent(cols[0])
	for i, c := range f.Columns() {
		values, err := f.Column(c)
		if err != nil {
			return err
		}
		defs[i+1] = quoteIdent(cols[i+1]) + " " + columnType(values)
		quoted[i+1] = quoteIdent(cols[i+1])
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewIOError("failed to begin transaction", err).WithContext("table", name)
	}
	defer tx.Rollback()

	table := quoteIdent(name)
	if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS `+table); err != nil {
		return apperrors.NewIOError("failed to drop table", err).WithContext("table", name)
	}
	if _, err := tx.ExecContext(ctx, `CREATE TABLE `+table+` (`+strings.Join(defs, ",")+`)`); err != nil {
		return apperrors.NewIOError("failed to create table", err).WithContext("table", name)
	}

	ph := strings.TrimRight(strings.Repeat("?,", len(cols)), ",")
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO `+table+` (`+strings.Join(quoted, ",")+`) VALUES (`+ph+`)`)
	if err != nil {
		return apperrors.NewIOError("failed to prepare insert", err).WithContext("table", name)
	}
	defer stmt.Close()

	for i := 0; i < f.Len(); i++ {
		args := make([]any, 0, len(cols))
		if ix.IsTime() {
			args = append(args, frame.FormatTimestamp(ix.Times[i]))
		} else {
			args = append(args, int64(i))
		}
		for _, v := range f.Row(i) {
			args = append(args, sqliteValue(v))
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return apperrors.NewIOError("failed to insert row", err).
				WithContext("table", name).WithContext("row", i)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM "`+metaTable+`" WHERE "table_name" = ?`, name); err != nil {
		return apperrors.NewIOError("failed to clear metadata", err).WithContext("table", name)
	}
	meta := make(map[string]string, len(f.Meta)+len(renamed))
	for k, v := range f.Meta {
		meta[k] = v
	}
	for stored, original := range renamed {
		meta[columnMetaPrefix+stored] = original
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO "`+metaTable+`" ("table_name", "key", "value") VALUES (?, ?, ?)`, name, k, v); err != nil {
			return apperrors.NewIOError("failed to write metadata", err).WithContext("table", name)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewIOError("failed to commit table", err).WithContext("table", name)
	}

	s.logger.InfoContext(ctx, "Stored table",
		slog.String("table", name),
		slog.String("path", s.path),
		slog.Int("rows", f.Len()))
	return nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// storedColumns makes names unique ignoring case, as SQLite compares
// identifiers case-insensitively. A clashing name gets a _1, _2, ... suffix;
// renamed maps each stored name to the frame's name.
func storedColumns(names []string) (stored []string, renamed map[string]string) {
	stored = make([]string, len(names))
	renamed = make(map[string]string)
	seen := make(map[string]bool, len(names))
	for i, n := range names {
		candidate := n
		for k := 1; seen[strings.ToLower(candidate)]; k++ {
			candidate = fmt.Sprintf("%s_%d", n, k)
		}
		seen[strings.ToLower(candidate)] = true
		stored[i] = candidate
		if candidate != n {
			renamed[candidate] = n
		}
	}
	return stored, renamed
}

// quoteIdent quotes a SQL identifier
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// columnType picks the storage class of a column from its values
func columnType(values []any) string {
	kind := "INTEGER"
	for _, v := range values {
		switch v.(type) {
		case nil, int64:
		case float64:
			kind = "REAL"
		default:
			return "TEXT"
		}
	}
	return kind
}

func sqliteValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case int64, float64:
		return val
	default:
		return frame.FormatValue(val)
	}
}
