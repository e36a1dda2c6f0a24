package sql

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/lsst-sims/catalogs/execution"
)

// RowsCursor adapts *sql.Rows to the execution.Cursor interface.
type RowsCursor struct {
	rows    *sql.Rows
	columns []string
	isDone  bool
}

func (rc *RowsCursor) FetchAll(ctx context.Context) ([]execution.Row, error) {
	return rc.fetch(ctx, -1)
}

func (rc *RowsCursor) FetchMany(ctx context.Context, n int) ([]execution.Row, error) {
	if n <= 0 {
		return nil, errors.Errorf("invalid fetch size: %d", n)
	}
	return rc.fetch(ctx, n)
}

func (rc *RowsCursor) fetch(ctx context.Context, n int) ([]execution.Row, error) {
	var out []execution.Row
	for n < 0 || len(out) < n {
		if rc.isDone {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !rc.rows.Next() {
			rc.isDone = true
			if err := rc.rows.Err(); err != nil {
				return nil, errors.Wrap(err, "couldn't iterate over rows")
			}
			break
		}

		cols := make([]interface{}, len(rc.columns))
		colPointers := make([]interface{}, len(cols))
		for i := range cols {
			colPointers[i] = &cols[i]
		}
		if err := rc.rows.Scan(colPointers...); err != nil {
			return nil, errors.Wrap(err, "couldn't scan row")
		}
		for i := range cols {
			// MySQL and SQLite may return text as []byte, we assume strings are what we want really.
			if data, ok := cols[i].([]byte); ok {
				cols[i] = string(data)
			}
		}

		out = append(out, execution.NewRow(rc.columns, cols))
	}
	return out, nil
}

func (rc *RowsCursor) Close() error {
	if err := rc.rows.Close(); err != nil {
		return errors.Wrap(err, "couldn't close underlying SQL rows")
	}
	return nil
}
