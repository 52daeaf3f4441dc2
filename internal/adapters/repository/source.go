// Package repository loads player tables and publishes immutable dataset snapshots.
package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// Source kinds accepted by NewSource.
const (
	SourceAuto   = "auto"
	SourceCSV    = "csv"
	SourceSQLite = "sqlite"
)

// DefaultSQLiteTable is the table read when none is configured.
const DefaultSQLiteTable = "players"

// Table is a raw tabular dataset: a header and string cells.
type Table struct {
	Columns []string
	Records [][]string
}

// Source reads a raw table.
type Source interface {
	// Path returns the location the source reads from.
	Path() string
	Read(ctx context.Context) (*Table, error)
}

// NewSource picks a Source for path. kind "auto" chooses SQLite for
// .db/.sqlite/.sqlite3 files and CSV otherwise.
func NewSource(kind, path, table string) (Source, error) {
	switch strings.ToLower(kind) {
	case "", SourceAuto:
		switch strings.ToLower(filepath.Ext(path)) {
		case ".db", ".sqlite", ".sqlite3":
			return &SQLiteSource{File: path, Table: table}, nil
		}
		return &CSVSource{File: path}, nil
	case SourceCSV:
		return &CSVSource{File: path}, nil
	case SourceSQLite:
		return &SQLiteSource{File: path, Table: table}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, kind)
	}
}

// CSVSource reads a comma-separated file with a header row.
type CSVSource struct {
	File string
}

// Path implements Source.
func (s *CSVSource) Path() string { return s.File }

// Read implements Source.
func (s *CSVSource) Read(ctx context.Context) (*Table, error) {
	f, err := os.Open(s.File)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataLoad, err)
	}
	defer f.Close()
	return readCSV(ctx, f)
}

func readCSV(ctx context.Context, r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", ErrDataLoad)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrDataLoad, err)
	}
	t := &Table{Columns: header}
	if len(header) > 0 {
		// strip a UTF-8 BOM left by spreadsheet exports
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDataLoad, err)
		}
		t.Records = append(t.Records, rec)
	}
	return t, nil
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteSource reads one table of a SQLite database file.
type SQLiteSource struct {
	File  string
	Table string
}

// Path implements Source.
func (s *SQLiteSource) Path() string { return s.File }

// Read implements Source.
func (s *SQLiteSource) Read(ctx context.Context) (*Table, error) {
	table := s.Table
	if table == "" {
		table = DefaultSQLiteTable
	}
	if !identRe.MatchString(table) {
		return nil, fmt.Errorf("%w: invalid table name %q", ErrDataLoad, table)
	}
	if _, err := os.Stat(s.File); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataLoad, err)
	}

	db, err := sqlx.ConnectContext(ctx, "sqlite", s.File)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrDataLoad, s.File, err)
	}
	defer db.Close()

	// rowid keeps table order stable across loads
	rows, err := db.QueryxContext(ctx, "SELECT * FROM "+table+" ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("%w: query %s: %w", ErrDataLoad, table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataLoad, err)
	}
	t := &Table{Columns: cols}
	for rows.Next() {
		vals, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("%w: scan: %w", ErrDataLoad, err)
		}
		rec := make([]string, len(vals))
		for i, v := range vals {
			rec[i] = cellString(v)
		}
		t.Records = append(t.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataLoad, err)
	}
	return t, nil
}

func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

// Fingerprint identifies the current content of path by size and
// modification time.
func Fingerprint(path string) (string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d:%d", path, fi.Size(), fi.ModTime().UnixNano()), nil
}
