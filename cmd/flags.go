package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/lsst-sims/catalogs/bounds"
	"github.com/lsst-sims/catalogs/compound"
)

// queryFlags are shared by the commands rendering or running a compound query.
type queryFlags struct {
	box        []float64
	circle     []float64
	constraint string
	chunkSize  int
	limit      int
	tables     []string
}

func (f *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64SliceVar(&f.box, "box", nil, "Box bound: ra,dec,halfWidth[,decHalfWidth] in degrees.")
	cmd.Flags().Float64SliceVar(&f.circle, "circle", nil, "Circle bound: ra,dec,radius in degrees.")
	cmd.Flags().StringVar(&f.constraint, "where", "", "SQL predicate ANDed with the bound.")
	cmd.Flags().IntVar(&f.chunkSize, "chunk-size", 0, "Rows per chunk, the whole result at once if zero.")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "Maximum number of rows, unlimited if zero.")
	cmd.Flags().StringSliceVar(&f.tables, "tables", nil, "Only allow adapters querying these tables.")
}

func (f *queryFlags) queryOptions() (compound.QueryOptions, error) {
	opts := compound.QueryOptions{
		Constraint: f.constraint,
		ChunkSize:  f.chunkSize,
		Limit:      f.limit,
	}

	switch {
	case len(f.box) > 0 && len(f.circle) > 0:
		return opts, errors.New("only one of --box and --circle may be given")
	case len(f.box) > 0:
		bound, err := bounds.Parse("box", f.box)
		if err != nil {
			return opts, errors.Wrap(err, "invalid --box")
		}
		opts.Bound = bound
	case len(f.circle) > 0:
		bound, err := bounds.Parse("circle", f.circle)
		if err != nil {
			return opts, errors.Wrap(err, "invalid --circle")
		}
		opts.Bound = bound
	}
	return opts, nil
}

func (f *queryFlags) buildOptions() []compound.Option {
	if len(f.tables) == 0 {
		return nil
	}
	return []compound.Option{compound.WithTableRestriction(f.tables...)}
}
