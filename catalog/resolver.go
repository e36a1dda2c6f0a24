package catalog

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"

	"github.com/lsst-sims/catalogs"
	"github.com/lsst-sims/catalogs/adapter"
)

// DependencyMismatchError is returned when a chunk computation reads raw columns
// the dry run didn't predict.
type DependencyMismatchError struct {
	Catalog    string
	Adapter    string
	Unexpected []string
}

func (err *DependencyMismatchError) Error() string {
	return fmt.Sprintf("catalog %s over adapter %s read columns %v which weren't predicted by the dry run", err.Catalog, err.Adapter, err.Unexpected)
}

type ResolverOption func(r *Resolver)

// WithDefaults adds defaults to those of the catalog, which take precedence.
func WithDefaults(defaults []adapter.Default) ResolverOption {
	return func(r *Resolver) {
		for _, def := range defaults {
			if _, ok := r.defaults[def.Name]; !ok {
				r.defaults[def.Name] = def.Value
			}
		}
	}
}

// WithDependencyCheck verifies on every Compute that only the columns predicted by the dry run have been read.
func WithDependencyCheck() ResolverOption {
	return func(r *Resolver) {
		r.checkDependencies = true
	}
}

// Resolver computes the columns of a catalog over the current chunk of an adapter.
// Column resolution order is: getter, default if the chunk has no such column, raw chunk column.
type Resolver struct {
	definition *Definition
	adapterID  string
	defaults   map[string]catalogs.Value

	chunk     *catalogs.RowBatch
	cache     map[string]catalogs.Column
	resolving map[string]bool

	// dryRun records raw column accesses instead of reading a chunk.
	dryRun *recordingChunk

	checkDependencies bool
	predicted         map[string]struct{}
	accessed          map[string]struct{}
}

func NewResolver(definition *Definition, adapterID string, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		definition: definition,
		adapterID:  adapterID,
		defaults:   make(map[string]catalogs.Value, len(definition.defaults)),
		cache:      make(map[string]catalogs.Column),
		resolving:  make(map[string]bool),
	}
	for name, value := range definition.defaults {
		r.defaults[name] = value
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetChunk makes the resolver work on a new chunk, dropping cached results.
func (r *Resolver) SetChunk(chunk *catalogs.RowBatch) {
	r.chunk = chunk
	r.cache = make(map[string]catalogs.Column)
	r.accessed = make(map[string]struct{})
}

func (r *Resolver) Len() int {
	if r.dryRun != nil || r.chunk == nil {
		return 0
	}
	return r.chunk.Len()
}

// Column resolves the named column on the current chunk.
func (r *Resolver) Column(name string) (catalogs.Column, error) {
	if r.chunk == nil && r.dryRun == nil {
		return catalogs.Column{}, errors.Errorf("catalog %s has no chunk set", r.definition.name)
	}

	if getter, ok := r.definition.getters[name]; ok {
		return r.runGetter(getter, name)
	}

	if value, ok := r.defaults[name]; ok {
		if r.dryRun != nil {
			return r.dryRun.defaulted(name), nil
		}
		if !r.chunk.Has(name) {
			return catalogs.ConstantColumn(value, r.chunk.Len()), nil
		}
	}

	if r.dryRun != nil {
		return r.dryRun.raw(name), nil
	}
	column, ok := r.chunk.Column(name)
	if !ok {
		return catalogs.Column{}, &catalogs.MissingColumnError{Adapter: r.adapterID, Column: name}
	}
	if r.accessed != nil {
		r.accessed[name] = struct{}{}
	}
	return column, nil
}

func (r *Resolver) runGetter(getter *Getter, name string) (catalogs.Column, error) {
	if getter.cached {
		if column, ok := r.cache[name]; ok {
			return column, nil
		}
	}

	if r.resolving[name] {
		return catalogs.Column{}, errors.Errorf("column %s of catalog %s depends on itself", name, r.definition.name)
	}
	r.resolving[name] = true
	defer delete(r.resolving, name)

	if r.dryRun != nil && getter.hasDeclaredDependencies() {
		for _, column := range getter.dependsOn {
			r.dryRun.raw(column)
		}
		return catalogs.EmptyColumn(catalogs.Float), nil
	}

	if !getter.IsCompound() {
		column, err := getter.simple(r)
		if err != nil {
			return catalogs.Column{}, errors.Wrapf(err, "couldn't compute column %s", name)
		}
		if err := r.checkLength(name, column); err != nil {
			return catalogs.Column{}, err
		}
		if getter.cached {
			r.cache[name] = column
		}
		return column, nil
	}

	columns, err := getter.compound(r)
	if err != nil {
		return catalogs.Column{}, errors.Wrapf(err, "couldn't compute columns %v", getter.outputs)
	}
	if r.dryRun != nil {
		return catalogs.EmptyColumn(catalogs.Float), nil
	}
	if len(columns) != len(getter.outputs) {
		return catalogs.Column{}, errors.Errorf("getter of %v returned %d columns", getter.outputs, len(columns))
	}
	var out catalogs.Column
	for i, output := range getter.outputs {
		if err := r.checkLength(output, columns[i]); err != nil {
			return catalogs.Column{}, err
		}
		r.cache[output] = columns[i]
		if output == name {
			out = columns[i]
		}
	}
	return out, nil
}

func (r *Resolver) checkLength(name string, column catalogs.Column) error {
	if r.dryRun != nil {
		return nil
	}
	if column.Len() != r.chunk.Len() {
		return errors.Errorf("column %s has %d rows, the chunk has %d", name, column.Len(), r.chunk.Len())
	}
	return nil
}

// Compute returns the output columns of the catalog for the current chunk,
// without the rows in which a cannot-be-null column is missing.
func (r *Resolver) Compute() (*catalogs.RowBatch, error) {
	if r.checkDependencies && r.predicted == nil {
		raw, defaulted, err := r.RequiredRawColumns(r.definition.requiredColumns())
		if err != nil {
			return nil, errors.Wrap(err, "couldn't predict dependencies")
		}
		r.predicted = make(map[string]struct{}, len(raw)+len(defaulted))
		for _, name := range append(raw, defaulted...) {
			r.predicted[name] = struct{}{}
		}
	}

	outputs := r.definition.columnOutputs
	fields := make([]catalogs.Field, len(outputs))
	columns := make([]catalogs.Column, len(outputs))
	for i, name := range outputs {
		column, err := r.Column(name)
		if err != nil {
			return nil, err
		}
		fields[i] = catalogs.Field{Name: name, Type: column.Type()}
		columns[i] = column
	}

	keep := make([]bool, r.chunk.Len())
	for i := range keep {
		keep[i] = true
	}
	filter := false
	for _, name := range r.definition.cannotBeNull {
		column, err := r.Column(name)
		if err != nil {
			return nil, err
		}
		for i := range keep {
			if column.IsMissing(i) {
				keep[i] = false
				filter = true
			}
		}
	}

	if r.checkDependencies {
		var unexpected []string
		for name := range r.accessed {
			if _, ok := r.predicted[name]; !ok {
				unexpected = append(unexpected, name)
			}
		}
		if len(unexpected) > 0 {
			sort.Strings(unexpected)
			return nil, &DependencyMismatchError{
				Catalog:    r.definition.name,
				Adapter:    r.adapterID,
				Unexpected: unexpected,
			}
		}
	}

	out, err := catalogs.NewRowBatch(fields, columns)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't build output batch")
	}
	if filter {
		return out.Filter(keep)
	}
	return out, nil
}

// RequiredRawColumns finds the raw columns needed to compute the given columns, by running their getters
// on a chunk which records accesses. Getters with declared dependencies aren't run.
// The first result lists columns which must come from the database, the second columns which may
// come from it, falling back to a default.
// Getters branching on the data they read may under-report their dependencies.
func (r *Resolver) RequiredRawColumns(names []string) ([]string, []string, error) {
	dry := &Resolver{
		definition: r.definition,
		adapterID:  r.adapterID,
		defaults:   r.defaults,
		cache:      make(map[string]catalogs.Column),
		resolving:  make(map[string]bool),
		dryRun:     newRecordingChunk(),
	}

	for _, name := range names {
		if _, err := dry.Column(name); err != nil {
			return nil, nil, errors.Wrapf(err, "dry run of column %s failed", name)
		}
	}

	return dry.dryRun.rawColumns, dry.dryRun.defaultedColumns, nil
}

// recordingChunk stands in for a chunk during dependency discovery.
type recordingChunk struct {
	rawColumns       []string
	defaultedColumns []string
	seen             map[string]struct{}
}

func newRecordingChunk() *recordingChunk {
	return &recordingChunk{
		seen: make(map[string]struct{}),
	}
}

func (rc *recordingChunk) raw(name string) catalogs.Column {
	if _, ok := rc.seen[name]; !ok {
		rc.seen[name] = struct{}{}
		rc.rawColumns = append(rc.rawColumns, name)
	}
	return catalogs.EmptyColumn(catalogs.Float)
}

func (rc *recordingChunk) defaulted(name string) catalogs.Column {
	if _, ok := rc.seen[name]; !ok {
		rc.seen[name] = struct{}{}
		rc.defaultedColumns = append(rc.defaultedColumns, name)
	}
	return catalogs.EmptyColumn(catalogs.Float)
}
