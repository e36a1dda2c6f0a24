// Package compound merges the columns of several adapters querying the same table
// into a single query, and splits its results back into per-adapter views.
package compound

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pkg/errors"

	"github.com/lsst-sims/catalogs"
	"github.com/lsst-sims/catalogs/adapter"
	"github.com/lsst-sims/catalogs/bounds"
	"github.com/lsst-sims/catalogs/execution"
	"github.com/lsst-sims/catalogs/storage/sql"
)

type Option func(options *options)

type options struct {
	tables []string
}

// WithTableRestriction only allows adapters querying one of the given tables.
func WithTableRestriction(tables ...string) Option {
	return func(options *options) {
		options.tables = append(options.tables, tables...)
	}
}

// Query is a compound query over a group of adapters. It's immutable once built.
type Query struct {
	adapters []*adapter.Adapter
	byID     map[string]*adapter.Adapter
	identity adapter.TableIdentity
	executor execution.Executor

	mapping *MasterMapping
	index   *NameTranslationIndex
}

// QueryOptions parametrize a single execution of a compound query.
type QueryOptions struct {
	// Columns are master names to fetch, all of them if empty. Id columns are always fetched.
	Columns []string
	// Bound restricts the rows spatially, using the ra and dec columns of the first adapter.
	Bound bounds.Bound
	// Constraint is an SQL predicate, ANDed with the bound.
	Constraint string
	// ChunkSize is the number of rows per chunk, the whole result is a single chunk if it's zero.
	ChunkSize int
	Limit     int
}

// Build validates the adapters and merges their columns. The executor runs the merged queries.
func Build(adapters []*adapter.Adapter, executor execution.Executor, opts ...Option) (*Query, error) {
	options := &options{}
	for _, opt := range opts {
		opt(options)
	}

	if err := validate(adapters); err != nil {
		return nil, err
	}
	if len(options.tables) > 0 {
		for _, a := range adapters {
			if !contains(options.tables, a.Identity().Table) {
				return nil, &catalogs.UnsupportedTableError{
					Adapter: a.ID(),
					Table:   a.Identity().Table,
					Allowed: options.tables,
				}
			}
		}
	}

	byID := make(map[string]*adapter.Adapter, len(adapters))
	for _, a := range adapters {
		byID[a.ID()] = a
	}
	mapping, index := buildMapping(adapters)

	return &Query{
		adapters: adapters,
		byID:     byID,
		identity: adapters[0].Identity(),
		executor: executor,
		mapping:  mapping,
		index:    index,
	}, nil
}

func validate(adapters []*adapter.Adapter) error {
	if len(adapters) == 0 {
		return &catalogs.ConfigurationError{Reason: "no adapters given"}
	}

	fields := []struct {
		name string
		get  func(identity adapter.TableIdentity) string
	}{
		{"host", func(identity adapter.TableIdentity) string { return identity.Host }},
		{"port", func(identity adapter.TableIdentity) string { return strconv.Itoa(identity.Port) }},
		{"driver", func(identity adapter.TableIdentity) string { return identity.Driver }},
		{"database", func(identity adapter.TableIdentity) string { return identity.Database }},
		{"table", func(identity adapter.TableIdentity) string { return identity.Table }},
	}

	mismatches := make(map[string][]string)
	for _, field := range fields {
		var values []string
		for _, a := range adapters {
			value := field.get(a.Identity())
			if !contains(values, value) {
				values = append(values, value)
			}
		}
		if len(values) > 1 {
			mismatches[field.name] = values
		}
	}

	var duplicates []string
	seen := make(map[string]struct{}, len(adapters))
	for _, a := range adapters {
		if _, ok := seen[a.ID()]; ok && !contains(duplicates, a.ID()) {
			duplicates = append(duplicates, a.ID())
		}
		seen[a.ID()] = struct{}{}
	}

	if len(mismatches) > 0 || len(duplicates) > 0 {
		return &catalogs.ConfigurationError{
			Mismatches:   mismatches,
			DuplicateIDs: duplicates,
		}
	}
	return nil
}

func (q *Query) Adapters() []*adapter.Adapter {
	return q.adapters
}

func (q *Query) Identity() adapter.TableIdentity {
	return q.identity
}

func (q *Query) Mapping() *MasterMapping {
	return q.mapping
}

func (q *Query) Index() *NameTranslationIndex {
	return q.index
}

// Columns returns the published master names, id columns last.
func (q *Query) Columns() []string {
	out := q.mapping.Names()
	for _, entry := range q.mapping.SystemEntries() {
		out = append(out, entry.MasterName)
	}
	return out
}

// MasterColumnsFor translates output names of an adapter to master names.
func (q *Query) MasterColumnsFor(adapterID string, names []string) ([]string, error) {
	if _, ok := q.byID[adapterID]; !ok {
		return nil, errors.Errorf("no adapter %s in compound query", adapterID)
	}

	out := make([]string, 0, len(names))
	var unknown []string
	for _, name := range names {
		masterName, ok := q.index.Master(adapterID, name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		out = append(out, masterName)
	}
	if len(unknown) > 0 {
		return nil, &catalogs.ColumnError{Columns: unknown}
	}
	return out, nil
}

// Statement renders the merged select for the given options, along with the fields of its results.
func (q *Query) Statement(opts QueryOptions) (execution.Statement, []catalogs.Field, error) {
	names := opts.Columns
	if len(names) == 0 {
		names = q.Columns()
	}

	var unknown []string
	selected := make(map[string]struct{}, len(names))
	entries := make([]MasterEntry, 0, len(names))
	for _, name := range names {
		entry, ok := q.mapping.Entry(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		if _, ok := selected[name]; ok {
			continue
		}
		selected[name] = struct{}{}
		entries = append(entries, entry)
	}
	if len(unknown) > 0 {
		return execution.Statement{}, nil, &catalogs.ColumnError{Columns: unknown}
	}
	for _, entry := range q.mapping.SystemEntries() {
		if _, ok := selected[entry.MasterName]; !ok {
			selected[entry.MasterName] = struct{}{}
			entries = append(entries, entry)
		}
	}

	stmt := execution.Statement{
		Table:   q.identity.Table,
		Columns: make([]execution.SelectColumn, len(entries)),
		Limit:   opts.Limit,
	}
	fields := make([]catalogs.Field, len(entries))
	for i, entry := range entries {
		stmt.Columns[i] = execution.SelectColumn{Expression: entry.Expression, Alias: entry.MasterName}
		fields[i] = catalogs.Field{Name: entry.MasterName, Type: entry.Type}
	}

	var boundPredicate string
	if opts.Bound != nil {
		first := q.adapters[0]
		predicate, err := opts.Bound.ToSQL(first.RAColumn(), first.DecColumn())
		if err != nil {
			return execution.Statement{}, nil, errors.Wrapf(err, "couldn't translate bound for adapter %s", first.ID())
		}
		boundPredicate = predicate
	}
	stmt.Predicate = sql.And(boundPredicate, opts.Constraint)

	return stmt, fields, nil
}

// Execute starts the query. The returned iterator must be exhausted or closed.
func (q *Query) Execute(ctx context.Context, opts QueryOptions) (*Iterator, error) {
	stmt, fields, err := q.Statement(opts)
	if err != nil {
		return nil, err
	}

	cursor, err := q.executor.Execute(ctx, stmt)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't execute compound query on table %s", stmt.Table)
	}

	return &Iterator{
		query:  q,
		chunks: execution.NewChunkIterator(cursor, fields, opts.ChunkSize),
		fields: fields,
	}, nil
}

func (q *Query) String() string {
	return fmt.Sprintf("compound query on %s with %d adapters and %d columns", q.identity.Table, len(q.adapters), q.mapping.Len())
}

func contains(list []string, value string) bool {
	for i := range list {
		if list[i] == value {
			return true
		}
	}
	return false
}
