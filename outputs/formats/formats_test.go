package formats

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lsst-sims/catalogs"
)

func testBatch(t *testing.T) *catalogs.RowBatch {
	batch, err := catalogs.NewRowBatch(
		[]catalogs.Field{
			{Name: "id", Type: catalogs.Int},
			{Name: "mag", Type: catalogs.Float},
			{Name: "variable", Type: catalogs.Boolean},
			{Name: "sed", Type: catalogs.String},
		},
		[]catalogs.Column{
			catalogs.NewIntColumn([]int64{1, 2}),
			catalogs.NewFloatColumn([]float64{21.5, math.NaN()}),
			catalogs.NewBooleanColumn([]bool{true, false}),
			catalogs.NewStringColumn(catalogs.String, []string{"flat.dat", "km30.dat"}),
		},
	)
	require.NoError(t, err)
	return batch
}

func TestFormats(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{
			format: "csv",
			want:   "#id,mag,variable,sed\n1,21.5,true,flat.dat\n2,NaN,false,km30.dat\n",
		},
		{
			format: "txt",
			want:   "#id mag variable sed\n1 21.5 true flat.dat\n2 NaN false km30.dat\n",
		},
		{
			format: "json",
			want:   `{"id":1,"mag":21.5,"variable":true,"sed":"flat.dat"}` + "\n" + `{"id":2,"mag":null,"variable":false,"sed":"km30.dat"}` + "\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			format, err := New(tt.format, &buf)
			require.NoError(t, err)

			batch := testBatch(t)
			format.SetSchema(batch.Fields())
			require.NoError(t, WriteBatch(format, batch))
			require.NoError(t, format.Close())
			assert.Equal(t, tt.want, buf.String())
		})
	}

	_, err := New("parquet", &bytes.Buffer{})
	assert.Error(t, err)
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	format := NewTableFormatter(&buf)
	batch := testBatch(t)
	format.SetSchema(batch.Fields())
	require.NoError(t, WriteBatch(format, batch))
	require.NoError(t, format.Close())

	assert.Contains(t, buf.String(), "variable")
	assert.Contains(t, buf.String(), "km30.dat")
	assert.Contains(t, buf.String(), "21.5")
	assert.Contains(t, buf.String(), "NULL")
	assert.NotContains(t, buf.String(), "NaN")
}
