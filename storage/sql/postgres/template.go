package postgres

import (
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/stdlib"
	_ "github.com/lib/pq"

	"github.com/lsst-sims/catalogs/storage/sql"
)

// Template connects to PostgreSQL through lib/pq.
type Template struct{}

func (t *Template) DriverName() string {
	return "postgres"
}

func (t *Template) DefaultPort() int {
	return 5432
}

func (t *Template) GetDSN(params sql.ConnectionParams) string {
	sb := &strings.Builder{}
	sb.WriteString(fmt.Sprintf("host=%s port=%d user=%s ", quoteValue(params.Host), params.Port, quoteValue(params.User)))
	if params.Password != "" {
		sb.WriteString(fmt.Sprintf("password=%s ", quoteValue(params.Password)))
	}
	sb.WriteString(fmt.Sprintf("dbname=%s sslmode=disable", quoteValue(params.Database)))

	return sb.String()
}

var valueEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// quoteValue single quotes a connection string value, escaping backslashes and quotes.
func quoteValue(value string) string {
	return "'" + valueEscaper.Replace(value) + "'"
}

func (t *Template) QuoteIdentifier(name string) string {
	return sql.QuoteDoubleQuotes(name)
}

// PgxTemplate connects to PostgreSQL through the pgx database/sql driver.
// It accepts the same connection strings as lib/pq.
type PgxTemplate struct {
	Template
}

func (t *PgxTemplate) DriverName() string {
	return "pgx"
}
