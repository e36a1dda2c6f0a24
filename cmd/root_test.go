package cmd

import (
	"bytes"
	"context"
	gosql "database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/lsst-sims/catalogs"
	"github.com/lsst-sims/catalogs/catalog"
)

const testConfig = `databases:
  - name: local
    type: sqlite
    config:
      path: %s

files:
  - name: stars
    path: %s
    table: stars

adapters:
  - id: bright
    database: local
    table: T
    columns:
      - name: aa
        expression: a
      - name: bb
        expression: b
  - id: faint
    database: local
    table: T
    columns:
      - name: aa
        expression: a
      - name: dd
        expression: d
  - id: starlist
    file: stars
    columns:
      - name: mag
`

// setup creates a table T with rows id, a = id/2, b = 2*id, d = 100-id and a text file of magnitudes.
func setup(t *testing.T) string {
	dir := t.TempDir()

	dbPath := filepath.Join(dir, "t.db")
	db, err := gosql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec("CREATE TABLE T(id INTEGER PRIMARY KEY, a REAL, b REAL, d REAL)")
	require.NoError(t, err)
	for id := 1; id <= 5; id++ {
		_, err := db.Exec("INSERT INTO T VALUES(?, ?, ?, ?)", id, float64(id)/2, float64(2*id), float64(100-id))
		require.NoError(t, err)
	}

	starsPath := filepath.Join(dir, "stars.txt")
	require.NoError(t, os.WriteFile(starsPath, []byte("# mag\n10.5\n11.25\n"), 0644))

	configFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(fmt.Sprintf(testConfig, dbPath, starsPath)), 0644))
	return configFile
}

func run(t *testing.T, args ...string) (string, error) {
	queryFlagValues = queryFlags{}
	outputFormat = "csv"
	outputDir = ""
	catalogName = ""
	checkDependencies = false
	showProgress = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestDescribe(t *testing.T) {
	configFile := setup(t)

	out, err := run(t, "describe", "bright", "faint", "--config", configFile, "--where", "a > 1")
	require.NoError(t, err)

	assert.Contains(t, out, "compound query on T with 2 adapters and 3 columns")
	assert.Contains(t, out, "master_1_aa")
	assert.Contains(t, out, "bright.aa, faint.aa")
	assert.Contains(t, out, "master_1_dd")
	assert.Contains(t, out, `    SELECT a AS "master_1_aa"`)
	assert.Contains(t, out, "WHERE (a > 1)")
}

func TestQuery_SingleAdapter(t *testing.T) {
	configFile := setup(t)

	out, err := run(t, "query", "bright", "--config", configFile, "--limit", "3", "--chunk-size", "2")
	require.NoError(t, err)
	assert.Equal(t, "#aa,bb,id\n0.5,2,1\n1,4,2\n1.5,6,3\n", out)
}

func TestQuery_OutputDirectory(t *testing.T) {
	configFile := setup(t)
	outDir := filepath.Join(t.TempDir(), "out")

	_, err := run(t, "query", "bright", "faint", "--config", configFile, "--out-dir", outDir, "--where", "id >= 4")
	require.NoError(t, err)

	bright, err := os.ReadFile(filepath.Join(outDir, "bright.csv"))
	require.NoError(t, err)
	assert.Equal(t, "#aa,bb,id\n2,8,4\n2.5,10,5\n", string(bright))

	faint, err := os.ReadFile(filepath.Join(outDir, "faint.csv"))
	require.NoError(t, err)
	assert.Equal(t, "#aa,dd,id\n2,96,4\n2.5,95,5\n", string(faint))
}

func TestQuery_EmptyResult(t *testing.T) {
	configFile := setup(t)
	outDir := filepath.Join(t.TempDir(), "out")

	_, err := run(t, "query", "bright", "faint", "--config", configFile, "--out-dir", outDir, "--where", "id > 100")
	require.NoError(t, err)

	bright, err := os.ReadFile(filepath.Join(outDir, "bright.csv"))
	require.NoError(t, err)
	assert.Equal(t, "#aa,bb,id\n", string(bright))

	faint, err := os.ReadFile(filepath.Join(outDir, "faint.csv"))
	require.NoError(t, err)
	assert.Equal(t, "#aa,dd,id\n", string(faint))
}

func TestQuery_MultipleAdaptersNeedDirectory(t *testing.T) {
	configFile := setup(t)

	_, err := run(t, "query", "bright", "faint", "--config", configFile)
	assert.Error(t, err)
}

func TestQuery_IngestedFile(t *testing.T) {
	configFile := setup(t)

	out, err := run(t, "query", "starlist", "--config", configFile)
	require.NoError(t, err)
	assert.Equal(t, "#mag,id\n10.5,1\n11.25,2\n", out)
}

func TestQuery_Catalog(t *testing.T) {
	configFile := setup(t)

	require.NoError(t, catalog.Register("plus_one", func() (*catalog.Definition, error) {
		return catalog.NewDefinition("plus_one", catalog.DefinitionOptions{
			ColumnOutputs: []string{"id", "total"},
			Getters: []*catalog.Getter{
				catalog.Simple("total", func(src catalog.Source) (catalogs.Column, error) {
					column, err := src.Column("aa")
					if err != nil {
						return catalogs.Column{}, err
					}
					values, err := column.AsFloats()
					if err != nil {
						return catalogs.Column{}, err
					}
					out := make([]float64, len(values))
					for i := range values {
						out[i] = values[i] + 1
					}
					return catalogs.NewFloatColumn(out), nil
				}),
			},
		})
	}))
	defer catalog.ResetRegistry()

	out, err := run(t, "query", "bright", "--config", configFile, "--catalog", "plus_one", "--limit", "2")
	require.NoError(t, err)
	assert.Equal(t, "#id,total\n1,1.5\n2,2\n", out)

	out, err = run(t, "query", "bright", "--config", configFile, "--catalog", "plus_one", "--where", "id > 100")
	require.NoError(t, err)
	assert.Equal(t, "#id,total\n", out, "an empty result still gets a header")
}

func TestQuery_UnknownAdapter(t *testing.T) {
	configFile := setup(t)

	_, err := run(t, "query", "nope", "--config", configFile)
	assert.Error(t, err)
}

func TestIngest(t *testing.T) {
	configFile := setup(t)
	dir := t.TempDir()

	out, err := run(t, "ingest", "stars", "--config", configFile, "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "2 rows loaded into table stars")

	matches, err := filepath.Glob(filepath.Join(dir, "ingested_*.db"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}
