package files

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lsst-sims/catalogs"
	"github.com/lsst-sims/catalogs/config"
	"github.com/lsst-sims/catalogs/execution"
	"github.com/lsst-sims/catalogs/storage/sql"
	"github.com/lsst-sims/catalogs/storage/sql/sqlite"
)

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// readAll returns the ingested table as rows of raw values, ordered by id.
func readAll(t *testing.T, result *Result) *catalogs.RowBatch {
	ctx := context.Background()
	db, err := sql.Open(ctx, &sqlite.Template{}, sql.ConnectionParams{Database: result.Path})
	require.NoError(t, err)
	defer db.DB().Close()

	stmt := execution.Statement{Table: result.Table}
	for _, field := range result.Fields {
		stmt.Columns = append(stmt.Columns, execution.SelectColumn{Expression: sql.QuoteDoubleQuotes(field.Name), Alias: field.Name})
	}
	cursor, err := db.Execute(ctx, stmt)
	require.NoError(t, err)

	it := execution.NewChunkIterator(cursor, result.Fields, 0)
	defer it.Close()
	batch, err := it.Next(ctx)
	require.NoError(t, err)
	return batch
}

func TestIngest_Text(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name       string
		content    string
		opts       Options
		wantFields []catalogs.Field
		wantRows   [][]catalogs.Value
		wantErr    bool
	}{
		{
			name:    "whitespace with inferred types",
			content: "# ra decl name mag\n10.5 -3  vega 0\n# a comment\n\n11 -4 sirius 2\n",
			wantFields: []catalogs.Field{
				{Name: "id", Type: catalogs.Int},
				{Name: "ra", Type: catalogs.Float},
				{Name: "decl", Type: catalogs.Int},
				{Name: "name", Type: catalogs.String},
				{Name: "mag", Type: catalogs.Int},
			},
			wantRows: [][]catalogs.Value{
				{catalogs.NewInt(1), catalogs.NewFloat(10.5), catalogs.NewInt(-3), catalogs.NewString("vega"), catalogs.NewInt(0)},
				{catalogs.NewInt(2), catalogs.NewFloat(11), catalogs.NewInt(-4), catalogs.NewString("sirius"), catalogs.NewInt(2)},
			},
		},
		{
			name:    "delimiter and given fields",
			content: "7, 1.5, a\n9, 2.5, b\n",
			opts: Options{
				Delimiter: ",",
				IDColumn:  "objid",
				Fields: []catalogs.Field{
					{Name: "objid", Type: catalogs.Int},
					{Name: "flux", Type: catalogs.Float},
					{Name: "band", Type: catalogs.FixedString(1)},
				},
			},
			wantFields: []catalogs.Field{
				{Name: "objid", Type: catalogs.Int},
				{Name: "flux", Type: catalogs.Float},
				{Name: "band", Type: catalogs.FixedString(1)},
			},
			wantRows: [][]catalogs.Value{
				{catalogs.NewInt(7), catalogs.NewFloat(1.5), {Type: catalogs.FixedString(1), Str: "a"}},
				{catalogs.NewInt(9), catalogs.NewFloat(2.5), {Type: catalogs.FixedString(1), Str: "b"}},
			},
		},
		{
			name:    "ragged rows",
			content: "# a b\n1 2\n3\n",
			wantErr: true,
		},
		{
			name:    "no header",
			content: "1 2\n",
			wantErr: true,
		},
		{
			name:    "header mismatch",
			content: "# a b c\n1 2\n",
			wantErr: true,
		},
		{
			name:    "bad value for given type",
			content: "x\n",
			opts:    Options{Fields: []catalogs.Field{{Name: "a", Type: catalogs.Int}}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Dir = t.TempDir()
			result, err := Ingest(ctx, writeFile(t, "stars.txt", tt.content), tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer result.Close()

			assert.Equal(t, tt.wantFields, result.Fields)
			assert.Equal(t, len(tt.wantRows), result.Rows)
			assert.Equal(t, DefaultTable, result.Table)

			batch := readAll(t, result)
			require.Equal(t, len(tt.wantRows), batch.Len())
			for i := range tt.wantRows {
				assert.Equal(t, tt.wantRows[i], batch.Row(i))
			}
		})
	}
}

func TestIngest_JSONLines(t *testing.T) {
	ctx := context.Background()
	content := `{"name": "vega", "mag": 0.03, "variable": false, "count": 1}
{"name": "sirius", "mag": -1, "count": 2, "extra": null}

{"name": "polaris", "mag": 1.98, "variable": true, "count": 3}
`
	result, err := Ingest(ctx, writeFile(t, "stars.jsonl", content), Options{Table: "bright", Dir: t.TempDir()})
	require.NoError(t, err)
	defer result.Close()

	assert.Equal(t, "bright", result.Table)
	assert.Equal(t, []catalogs.Field{
		{Name: "id", Type: catalogs.Int},
		{Name: "name", Type: catalogs.String},
		{Name: "mag", Type: catalogs.Float},
		{Name: "variable", Type: catalogs.Boolean},
		{Name: "count", Type: catalogs.Int},
		{Name: "extra", Type: catalogs.Float},
	}, result.Fields)

	batch := readAll(t, result)
	require.Equal(t, 3, batch.Len())
	names, _ := batch.Column("name")
	assert.Equal(t, []string{"vega", "sirius", "polaris"}, names.Strings())
	mags, _ := batch.Column("mag")
	assert.Equal(t, []float64{0.03, -1, 1.98}, mags.Floats())
	variable, _ := batch.Column("variable")
	assert.Equal(t, []bool{false, false, true}, variable.Booleans(), "missing booleans are stored as NULL and read as false")
	assert.True(t, batch.Row(1)[5].IsMissing())

	_, err = Ingest(ctx, writeFile(t, "bad.json", "[1, 2]\n"), Options{Dir: t.TempDir()})
	assert.Error(t, err)
}

func TestResult_Close(t *testing.T) {
	ctx := context.Background()
	result, err := Ingest(ctx, writeFile(t, "a.txt", "# a\n1\n"), Options{Dir: t.TempDir()})
	require.NoError(t, err)

	_, err = os.Stat(result.Path)
	require.NoError(t, err)
	require.NoError(t, result.Close())
	_, err = os.Stat(result.Path)
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, result.Close())

	identity := result.Identity()
	assert.Equal(t, "sqlite", identity.Driver)
	assert.Equal(t, result.Path, identity.Database)
	assert.Equal(t, DefaultTable, identity.Table)
}

func TestFromConfig(t *testing.T) {
	ctx := context.Background()
	path := writeFile(t, "stars.csv", "1,10.0,-5.0\n2,11.0,-6.0\n")

	result, err := FromConfig(ctx, &config.FileConfig{
		Name:      "stars",
		Path:      path,
		Table:     "stars",
		Delimiter: ",",
		Columns: []config.ColumnConfig{
			{Name: "id", Type: catalogs.Int},
			{Name: "ra"},
			{Name: "decl"},
		},
	}, t.TempDir())
	require.NoError(t, err)
	defer result.Close()

	assert.Equal(t, "stars", result.Table)
	assert.Equal(t, 2, result.Rows)
	assert.Equal(t, []catalogs.Field{
		{Name: "id", Type: catalogs.Int},
		{Name: "ra", Type: catalogs.Float},
		{Name: "decl", Type: catalogs.Float},
	}, result.Fields)
}
