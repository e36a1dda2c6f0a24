package sql_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lsst-sims/catalogs/execution"
	"github.com/lsst-sims/catalogs/storage/sql"
	"github.com/lsst-sims/catalogs/storage/sql/mysql"
	"github.com/lsst-sims/catalogs/storage/sql/postgres"
)

func TestStatementToSQL(t *testing.T) {
	tests := []struct {
		name     string
		stmt     execution.Statement
		template sql.Template
		want     string
		wantErr  bool
	}{
		{
			name: "plain",
			stmt: execution.Statement{
				Table: "galaxy",
				Columns: []execution.SelectColumn{
					{Expression: "id", Alias: "id"},
					{Expression: "ra*PI()/180.0", Alias: "master_1_raJ2000"},
				},
			},
			template: &postgres.Template{},
			want:     `SELECT id AS "id", ra*PI()/180.0 AS "master_1_raJ2000" FROM galaxy`,
		},
		{
			name: "predicate and limit",
			stmt: execution.Statement{
				Table:     "stars",
				Columns:   []execution.SelectColumn{{Expression: "a", Alias: "master_1_aa"}},
				Predicate: sql.And("a > 1", "", "b < 2"),
				Limit:     10,
			},
			template: &mysql.Template{},
			want:     "SELECT a AS `master_1_aa` FROM stars WHERE (a > 1) AND (b < 2) LIMIT 10",
		},
		{
			name:     "no columns",
			stmt:     execution.Statement{Table: "stars"},
			template: &postgres.Template{},
			wantErr:  true,
		},
		{
			name:     "no table",
			stmt:     execution.Statement{Columns: []execution.SelectColumn{{Expression: "a", Alias: "a"}}},
			template: &postgres.Template{},
			wantErr:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sql.StatementToSQL(tt.stmt, tt.template)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAnd(t *testing.T) {
	assert.Equal(t, "", sql.And())
	assert.Equal(t, "", sql.And(" ", ""))
	assert.Equal(t, "(x = 1)", sql.And("x = 1"))
}

func TestTemplates_GetDSN(t *testing.T) {
	params := sql.ConnectionParams{
		Host:     "localhost",
		Port:     5432,
		User:     "root",
		Password: "toor",
		Database: "mydb",
	}
	assert.Equal(t, "host='localhost' port=5432 user='root' password='toor' dbname='mydb' sslmode=disable", (&postgres.Template{}).GetDSN(params))
	assert.Equal(t, "pgx", (&postgres.PgxTemplate{}).DriverName())

	params.Password = ""
	assert.Equal(t, "host='localhost' port=5432 user='root' dbname='mydb' sslmode=disable", (&postgres.PgxTemplate{}).GetDSN(params))

	params.Port = 3306
	params.Password = "toor"
	assert.Contains(t, (&mysql.Template{}).GetDSN(params), "root:toor@tcp(localhost:3306)/mydb")
}
