package sqlite

import (
	_ "modernc.org/sqlite"

	"github.com/lsst-sims/catalogs/storage/sql"
)

// Template connects to SQLite database files. The database name is the file path.
type Template struct{}

func (t *Template) DriverName() string {
	return "sqlite"
}

func (t *Template) DefaultPort() int {
	return 0
}

func (t *Template) GetDSN(params sql.ConnectionParams) string {
	return params.Database
}

func (t *Template) QuoteIdentifier(name string) string {
	return sql.QuoteDoubleQuotes(name)
}
