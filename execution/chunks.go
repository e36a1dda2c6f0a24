package execution

import (
	"context"

	"github.com/pkg/errors"

	"github.com/lsst-sims/catalogs"
)

// ChunkIterator pulls rows from a cursor and returns them as typed batches.
// With a chunk size of zero or less the whole result is returned as a single batch.
// The cursor is closed once the result is exhausted, or when Close is called.
type ChunkIterator struct {
	cursor    Cursor
	fields    []catalogs.Field
	chunkSize int

	isDone bool
}

func NewChunkIterator(cursor Cursor, fields []catalogs.Field, chunkSize int) *ChunkIterator {
	return &ChunkIterator{
		cursor:    cursor,
		fields:    fields,
		chunkSize: chunkSize,
	}
}

func (it *ChunkIterator) Fields() []catalogs.Field {
	return it.fields
}

func (it *ChunkIterator) Next(ctx context.Context) (*catalogs.RowBatch, error) {
	if it.isDone {
		return nil, ErrEndOfStream
	}

	var rows []Row
	var err error
	if it.chunkSize <= 0 {
		rows, err = it.cursor.FetchAll(ctx)
	} else {
		rows, err = it.cursor.FetchMany(ctx, it.chunkSize)
	}
	if err != nil {
		return nil, errors.Wrap(err, "couldn't fetch rows")
	}

	if len(rows) == 0 {
		if err := it.Close(); err != nil {
			return nil, errors.Wrap(err, "couldn't close exhausted cursor")
		}
		return nil, ErrEndOfStream
	}
	if it.chunkSize <= 0 {
		// Everything has been fetched, there won't be a second chunk.
		if err := it.Close(); err != nil {
			return nil, errors.Wrap(err, "couldn't close exhausted cursor")
		}
	}

	builder := catalogs.NewBatchBuilder(it.fields, len(rows))
	values := make([]interface{}, len(it.fields))
	for i, row := range rows {
		for j := range it.fields {
			value, ok := row.Get(it.fields[j].Name)
			if !ok {
				return nil, errors.Errorf("row %d has no column %s, has %v", i, it.fields[j].Name, row.Keys())
			}
			values[j] = value
		}
		if err := builder.Append(values); err != nil {
			return nil, errors.Wrapf(err, "couldn't convert row %d", i)
		}
	}

	return builder.Build()
}

// Close releases the underlying cursor. It's safe to call more than once.
func (it *ChunkIterator) Close() error {
	if it.isDone {
		return nil
	}
	it.isDone = true
	return it.cursor.Close()
}
