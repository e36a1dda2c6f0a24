package formats

import (
	"io"

	"github.com/pkg/errors"

	"github.com/lsst-sims/catalogs"
)

type Format interface {
	SetSchema(fields []catalogs.Field)
	Write(values []catalogs.Value) error
	Close() error
}

// New creates the named format: csv, table or json.
func New(name string, w io.Writer) (Format, error) {
	switch name {
	case "csv":
		return NewCSVFormatter(w, ','), nil
	case "txt":
		return NewCSVFormatter(w, ' '), nil
	case "table":
		return NewTableFormatter(w), nil
	case "json":
		return NewJSONFormatter(w), nil
	}
	return nil, errors.Errorf("unknown output format: %s", name)
}

// WriteBatch writes all the rows of the batch.
func WriteBatch(format Format, batch *catalogs.RowBatch) error {
	for i := 0; i < batch.Len(); i++ {
		if err := format.Write(batch.Row(i)); err != nil {
			return errors.Wrapf(err, "couldn't write row %d", i)
		}
	}
	return nil
}
