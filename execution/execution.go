package execution

import (
	"context"
)

// Cursor is a live query result.
// FetchAll and FetchMany return an empty slice once the result is exhausted.
type Cursor interface {
	FetchAll(ctx context.Context) ([]Row, error)
	FetchMany(ctx context.Context, n int) ([]Row, error)
	Close() error
}

// Executor runs statements against a physical store.
type Executor interface {
	Execute(ctx context.Context, stmt Statement) (Cursor, error)
}

type SelectColumn struct {
	Expression string
	Alias      string
}

// Statement is a single table select. Predicate is an opaque SQL fragment, empty for none.
// A Limit of zero means no limit.
type Statement struct {
	Table     string
	Columns   []SelectColumn
	Predicate string
	Limit     int
}

func (stmt Statement) Aliases() []string {
	out := make([]string, len(stmt.Columns))
	for i := range stmt.Columns {
		out[i] = stmt.Columns[i].Alias
	}
	return out
}
