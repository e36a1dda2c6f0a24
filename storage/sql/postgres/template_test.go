package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lsst-sims/catalogs/storage/sql"
)

func TestTemplate(t *testing.T) {
	params := sql.ConnectionParams{Host: "db.example.org", Port: 5433, User: "reader", Database: "lsstcat"}

	template := &Template{}
	assert.Equal(t, "host='db.example.org' port=5433 user='reader' dbname='lsstcat' sslmode=disable", template.GetDSN(params))

	params.Password = "secret"
	assert.Equal(t, "host='db.example.org' port=5433 user='reader' password='secret' dbname='lsstcat' sslmode=disable", template.GetDSN(params))
	assert.Equal(t, `"Galaxy""s"`, template.QuoteIdentifier(`Galaxy"s`))

	params.Password = `it's a \ secret`
	assert.Equal(t, `host='db.example.org' port=5433 user='reader' password='it\'s a \\ secret' dbname='lsstcat' sslmode=disable`, template.GetDSN(params))

	pgx := &PgxTemplate{}
	assert.Equal(t, "pgx", pgx.DriverName())
	assert.Equal(t, 5432, pgx.DefaultPort())
	assert.Equal(t, template.GetDSN(params), pgx.GetDSN(params))
}
