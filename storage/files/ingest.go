// Package files loads text files into throwaway SQLite databases, so that they can be queried like any table.
package files

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"

	"github.com/lsst-sims/catalogs"
	"github.com/lsst-sims/catalogs/adapter"
	"github.com/lsst-sims/catalogs/config"
	"github.com/lsst-sims/catalogs/storage/sql"
	"github.com/lsst-sims/catalogs/storage/sql/sqlite"
)

const DefaultTable = "catalog"

type Options struct {
	// Table is the name of the created table, DefaultTable if empty.
	Table string
	// Delimiter separates the values of text files, any whitespace if empty.
	Delimiter string
	// IDColumn is added, numbering the rows from 1, if the file doesn't have it. Defaults to "id".
	IDColumn string
	// Fields, if given, name and type the columns in order. Otherwise names come
	// from the header and types are inferred.
	Fields []catalogs.Field
	// Dir is where the database gets created, the system temporary directory if empty.
	Dir string
}

// Result is an ingested file. Close removes its database.
type Result struct {
	Path     string
	Table    string
	IDColumn string
	Fields   []catalogs.Field
	Rows     int
}

func (r *Result) Identity() adapter.TableIdentity {
	return adapter.TableIdentity{
		Driver:   "sqlite",
		Database: r.Path,
		Table:    r.Table,
	}
}

func (r *Result) Close() error {
	if err := os.Remove(r.Path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "couldn't remove %s", r.Path)
	}
	return nil
}

// Ingest loads the file, as JSON lines if its extension says so, as delimited text otherwise.
func Ingest(ctx context.Context, path string, opts Options) (*Result, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't expand path")
	}

	var table *rawTable
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonl", ".ndjson":
		table, err = readJSONLines(path, opts.Fields)
	default:
		table, err = readText(path, opts.Delimiter, opts.Fields)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't read %s", path)
	}

	return store(ctx, table, opts)
}

// FromConfig ingests a configured file.
func FromConfig(ctx context.Context, file *config.FileConfig, dir string) (*Result, error) {
	opts := Options{
		Table:     file.Table,
		Delimiter: file.Delimiter,
		IDColumn:  file.IDColumn,
		Dir:       dir,
	}
	for _, column := range file.Columns {
		opts.Fields = append(opts.Fields, catalogs.Field{Name: column.Name, Type: column.Type})
	}
	return Ingest(ctx, file.Path, opts)
}

// rawTable is a file's content before it's stored. Values are already converted to the field types.
type rawTable struct {
	fields []catalogs.Field
	rows   [][]interface{}
}

func store(ctx context.Context, table *rawTable, opts Options) (*Result, error) {
	tableName := opts.Table
	if tableName == "" {
		tableName = DefaultTable
	}
	idColumn := opts.IDColumn
	if idColumn == "" {
		idColumn = adapter.DefaultIDColumn
	}
	dir := opts.Dir
	if dir == "" {
		dir = os.TempDir()
	}

	fields := table.fields
	addID := true
	for i := range fields {
		if fields[i].Name == idColumn {
			addID = false
		}
	}
	if addID {
		fields = append([]catalogs.Field{{Name: idColumn, Type: catalogs.Int}}, fields...)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "couldn't create database directory")
	}
	result := &Result{
		Path:     filepath.Join(dir, fmt.Sprintf("ingested_%s.db", ulid.MustNew(ulid.Now(), rand.Reader).String())),
		Table:    tableName,
		IDColumn: idColumn,
		Fields:   fields,
		Rows:     len(table.rows),
	}

	template := &sqlite.Template{}
	db, err := sql.Open(ctx, template, sql.ConnectionParams{Database: result.Path})
	if err != nil {
		return nil, errors.Wrap(err, "couldn't create database")
	}
	defer db.DB().Close()

	columns := make([]string, len(fields))
	placeholders := make([]string, len(fields))
	for i := range fields {
		columns[i] = fmt.Sprintf("%s %s", template.QuoteIdentifier(fields[i].Name), sqliteType(fields[i].Type))
		placeholders[i] = "?"
	}
	if _, err := db.DB().ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s (%s)", template.QuoteIdentifier(tableName), strings.Join(columns, ", "))); err != nil {
		result.Close()
		return nil, errors.Wrap(err, "couldn't create table")
	}

	tx, err := db.DB().BeginTx(ctx, nil)
	if err != nil {
		result.Close()
		return nil, errors.Wrap(err, "couldn't begin transaction")
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s VALUES (%s)", template.QuoteIdentifier(tableName), strings.Join(placeholders, ", ")))
	if err != nil {
		tx.Rollback()
		result.Close()
		return nil, errors.Wrap(err, "couldn't prepare insert")
	}
	defer stmt.Close()

	values := make([]interface{}, len(fields))
	for i, row := range table.rows {
		if addID {
			values[0] = int64(i + 1)
			copy(values[1:], row)
		} else {
			copy(values, row)
		}
		if _, err := stmt.ExecContext(ctx, values...); err != nil {
			tx.Rollback()
			result.Close()
			return nil, errors.Wrapf(err, "couldn't insert row %d", i)
		}
	}
	if err := tx.Commit(); err != nil {
		result.Close()
		return nil, errors.Wrap(err, "couldn't commit")
	}

	log.Printf("files: ingested %d rows into table %s of %s", result.Rows, result.Table, result.Path)
	return result, nil
}

func sqliteType(t catalogs.Type) string {
	switch t.TypeID {
	case catalogs.TypeIDInt, catalogs.TypeIDBoolean:
		return "INTEGER"
	case catalogs.TypeIDFloat:
		return "REAL"
	case catalogs.TypeIDString:
		return "TEXT"
	}
	panic("impossible, type switch bug")
}
