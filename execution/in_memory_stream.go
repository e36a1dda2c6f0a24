package execution

import (
	"context"

	"github.com/pkg/errors"
)

// InMemoryCursor serves rows from a slice.
type InMemoryCursor struct {
	data   []Row
	index  int
	closed bool
}

func NewInMemoryCursor(data []Row) *InMemoryCursor {
	return &InMemoryCursor{
		data:  data,
		index: 0,
	}
}

func (imc *InMemoryCursor) FetchAll(ctx context.Context) ([]Row, error) {
	return imc.FetchMany(ctx, len(imc.data))
}

func (imc *InMemoryCursor) FetchMany(ctx context.Context, n int) ([]Row, error) {
	if imc.closed {
		return nil, errors.New("cursor closed")
	}
	if imc.index >= len(imc.data) {
		return nil, nil
	}

	end := imc.index + n
	if end > len(imc.data) {
		end = len(imc.data)
	}
	out := imc.data[imc.index:end]
	imc.index = end

	return out, nil
}

func (imc *InMemoryCursor) Close() error {
	imc.closed = true
	return nil
}

// InMemoryExecutor returns the same rows for every statement, ignoring the select list and predicate.
// It's useful for feeding fixed data through the query layers.
type InMemoryExecutor struct {
	Rows       []Row
	Statements []Statement
}

func (ime *InMemoryExecutor) Execute(ctx context.Context, stmt Statement) (Cursor, error) {
	ime.Statements = append(ime.Statements, stmt)
	return NewInMemoryCursor(ime.Rows), nil
}
