package catalog

import (
	"context"

	"github.com/pkg/errors"

	"github.com/lsst-sims/catalogs"
	"github.com/lsst-sims/catalogs/compound"
	"github.com/lsst-sims/catalogs/execution"
)

// Binding puts a catalog on top of one adapter of a compound query.
type Binding struct {
	AdapterID  string
	Definition *Definition
}

// Sink receives the computed batches of each binding, in chunk order.
type Sink func(binding Binding, batch *catalogs.RowBatch) error

type RunOptions struct {
	// Query holds the bound, constraint, chunk size and limit. Its columns are ignored,
	// the query only fetches what the catalogs need.
	Query             compound.QueryOptions
	CheckDependencies bool
	// Schema, if set, gets the output fields of every binding before the first chunk is read,
	// so it's called even when the query returns no rows.
	Schema func(binding Binding, fields []catalogs.Field) error
}

// Run computes several catalogs from a single compound query.
func Run(ctx context.Context, query *compound.Query, bindings []Binding, sink Sink, opts RunOptions) error {
	resolvers := make([]*Resolver, len(bindings))
	var masterColumns []string
	for i, binding := range bindings {
		var resolverOpts []ResolverOption
		for _, a := range query.Adapters() {
			if a.ID() == binding.AdapterID {
				resolverOpts = append(resolverOpts, WithDefaults(a.Defaults()))
			}
		}
		if opts.CheckDependencies {
			resolverOpts = append(resolverOpts, WithDependencyCheck())
		}
		resolvers[i] = NewResolver(binding.Definition, binding.AdapterID, resolverOpts...)

		columns, err := neededMasterColumns(query, binding, resolvers[i])
		if err != nil {
			return errors.Wrapf(err, "couldn't find columns needed by catalog %s", binding.Definition.Name())
		}
		for _, column := range columns {
			if !contains(masterColumns, column) {
				masterColumns = append(masterColumns, column)
			}
		}
	}

	if len(masterColumns) == 0 {
		// Only id columns then, which are enough to count the rows.
		for _, entry := range query.Mapping().SystemEntries() {
			masterColumns = append(masterColumns, entry.MasterName)
		}
	}

	queryOpts := opts.Query
	queryOpts.Columns = masterColumns
	it, err := query.Execute(ctx, queryOpts)
	if err != nil {
		return errors.Wrap(err, "couldn't execute compound query")
	}
	defer it.Close()

	if opts.Schema != nil {
		for i, binding := range bindings {
			view, err := it.EmptyView(binding.AdapterID)
			if err != nil {
				return err
			}
			resolvers[i].SetChunk(view)
			batch, err := resolvers[i].Compute()
			if err != nil {
				return errors.Wrapf(err, "couldn't compute fields of catalog %s", binding.Definition.Name())
			}
			if err := opts.Schema(binding, batch.Fields()); err != nil {
				return errors.Wrapf(err, "couldn't prepare output of catalog %s", binding.Definition.Name())
			}
		}
	}

	for {
		chunk, err := it.Next(ctx)
		if err == execution.ErrEndOfStream {
			return nil
		} else if err != nil {
			return errors.Wrap(err, "couldn't get next chunk")
		}

		for i, binding := range bindings {
			view, err := chunk.View(binding.AdapterID)
			if err != nil {
				return err
			}
			resolvers[i].SetChunk(view)
			batch, err := resolvers[i].Compute()
			if err != nil {
				return errors.Wrapf(err, "couldn't compute catalog %s", binding.Definition.Name())
			}
			if err := sink(binding, batch); err != nil {
				return errors.Wrapf(err, "couldn't write catalog %s", binding.Definition.Name())
			}
		}
	}
}

// neededMasterColumns translates the dry run of a catalog to master columns.
// Columns with a default are only fetched when the adapter provides them.
func neededMasterColumns(query *compound.Query, binding Binding, resolver *Resolver) ([]string, error) {
	raw, defaulted, err := resolver.RequiredRawColumns(binding.Definition.requiredColumns())
	if err != nil {
		return nil, err
	}

	out, err := query.MasterColumnsFor(binding.AdapterID, raw)
	if err != nil {
		return nil, err
	}
	for _, name := range defaulted {
		if masterName, ok := query.Index().Master(binding.AdapterID, name); ok {
			out = append(out, masterName)
		}
	}
	return out, nil
}
