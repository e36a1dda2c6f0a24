package sql

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/lsst-sims/catalogs/execution"
)

// ConnectionParams holds what's needed to connect to a database.
// Host and Port are ignored by file based databases, where Database is the path.
type ConnectionParams struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// Template captures the differences between SQL dialects.
type Template interface {
	DriverName() string
	DefaultPort() int
	GetDSN(params ConnectionParams) string
	QuoteIdentifier(name string) string
}

// Database executes statements on a database/sql connection pool.
type Database struct {
	db       *sql.DB
	template Template
}

func NewDatabase(db *sql.DB, template Template) *Database {
	return &Database{
		db:       db,
		template: template,
	}
}

func (d *Database) DB() *sql.DB {
	return d.db
}

func (d *Database) Template() Template {
	return d.template
}

func (d *Database) Execute(ctx context.Context, stmt execution.Statement) (execution.Cursor, error) {
	query, err := StatementToSQL(stmt, d.template)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't render statement")
	}

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't execute query %s", query)
	}

	columns, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, errors.Wrap(err, "couldn't get columns from rows")
	}

	return &RowsCursor{
		rows:    rows,
		columns: columns,
	}, nil
}

// Open opens a connection pool for the template and checks it's alive.
func Open(ctx context.Context, template Template, params ConnectionParams) (*Database, error) {
	if params.Port == 0 {
		params.Port = template.DefaultPort()
	}

	db, err := sql.Open(template.DriverName(), template.GetDSN(params))
	if err != nil {
		return nil, errors.Wrap(err, "couldn't open database")
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "couldn't ping database")
	}

	return NewDatabase(db, template), nil
}
