package compound

import (
	"context"
	"log"

	"github.com/pkg/errors"

	"github.com/lsst-sims/catalogs"
	"github.com/lsst-sims/catalogs/adapter"
	"github.com/lsst-sims/catalogs/execution"
)

// Iterator streams the chunks of a compound query.
// It's finite and can't be restarted.
type Iterator struct {
	query  *Query
	chunks *execution.ChunkIterator
	fields []catalogs.Field

	// plans are computed on the first chunk, as all chunks share their fields.
	plans map[string]*viewPlan
}

// viewPlan selects an adapter's columns from a merged chunk and renames them to the adapter's output names.
type viewPlan struct {
	sources []string
	names   []string
}

// Chunk is one merged result batch.
type Chunk struct {
	batch *catalogs.RowBatch
	plans map[string]*viewPlan
}

// Next returns the next chunk, or execution.ErrEndOfStream once the result is exhausted.
func (it *Iterator) Next(ctx context.Context) (*Chunk, error) {
	batch, err := it.chunks.Next(ctx)
	if err != nil {
		if err == execution.ErrEndOfStream {
			return nil, err
		}
		return nil, errors.Wrap(err, "couldn't get next chunk")
	}

	if it.plans == nil {
		it.plans = it.query.planViews(batch)
	}

	return &Chunk{
		batch: batch,
		plans: it.plans,
	}, nil
}

// EmptyView returns the view of the given adapter without any rows.
// Its fields are the ones of the views of every chunk, so outputs can be set up before the first chunk.
func (it *Iterator) EmptyView(adapterID string) (*catalogs.RowBatch, error) {
	columns := make([]catalogs.Column, len(it.fields))
	for i := range it.fields {
		columns[i] = catalogs.EmptyColumn(it.fields[i].Type)
	}
	empty, err := catalogs.NewRowBatch(it.fields, columns)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't create empty batch")
	}

	plans := it.plans
	if plans == nil {
		plans = it.query.planViews(empty)
	}
	return (&Chunk{batch: empty, plans: plans}).View(adapterID)
}

// Close releases the underlying cursor. It's safe to call more than once.
func (it *Iterator) Close() error {
	return it.chunks.Close()
}

// Batch returns the merged chunk, with master names as column names.
func (c *Chunk) Batch() *catalogs.RowBatch {
	return c.batch
}

func (c *Chunk) Len() int {
	return c.batch.Len()
}

// View returns the chunk as seen by the given adapter, with its own output names.
// The view shares its data with the chunk.
func (c *Chunk) View(adapterID string) (*catalogs.RowBatch, error) {
	plan, ok := c.plans[adapterID]
	if !ok {
		return nil, errors.Errorf("no adapter %s in compound query", adapterID)
	}

	view, err := c.batch.Project(plan.sources, plan.names)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't select columns of adapter %s", adapterID)
	}
	return view, nil
}

func (q *Query) planViews(batch *catalogs.RowBatch) map[string]*viewPlan {
	plans := make(map[string]*viewPlan, len(q.adapters))
	for _, a := range q.adapters {
		plan := &viewPlan{}

		names := a.OutputNames()
		if _, ok := a.Mapping(a.IDColumn()); !ok {
			names = append(names, a.IDColumn())
		}
		for _, name := range names {
			masterName, ok := q.index.Master(a.ID(), name)
			switch {
			case ok && batch.Has(masterName):
				plan.sources = append(plan.sources, masterName)
			case batch.Has(name) && q.passesThrough(a, name):
				log.Printf("compound: column %s of adapter %s isn't in the result under its master name, using its bare name", name, a.ID())
				plan.sources = append(plan.sources, name)
			default:
				// Not requested in this query.
				continue
			}
			plan.names = append(plan.names, name)
		}

		plans[a.ID()] = plan
	}
	return plans
}

// passesThrough reports whether a column missing under its master name may be read under its bare name.
// Only untransformed system columns qualify, anything else under that name holds different data.
func (q *Query) passesThrough(a *adapter.Adapter, name string) bool {
	if m, ok := a.Mapping(name); ok && m.IsTransform() {
		return false
	}
	if name == a.IDColumn() {
		return true
	}
	entry, ok := q.mapping.Entry(name)
	return ok && entry.System
}
