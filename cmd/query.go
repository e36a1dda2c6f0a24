package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/lsst-sims/catalogs"
	"github.com/lsst-sims/catalogs/adapter"
	"github.com/lsst-sims/catalogs/catalog"
	"github.com/lsst-sims/catalogs/compound"
	"github.com/lsst-sims/catalogs/execution"
	"github.com/lsst-sims/catalogs/outputs/batch"
	"github.com/lsst-sims/catalogs/outputs/formats"
)

var (
	queryFlagValues   queryFlags
	outputFormat      string
	outputDir         string
	catalogName       string
	checkDependencies bool
	showProgress      bool
)

var queryCmd = &cobra.Command{
	Use:   "query ADAPTER...",
	Short: "Run the compound query of a group of adapters and write one output per adapter.",
	Example: `catalogs query bulge --format table --limit 10
catalogs query bulge disk agn --box 10,-5,0.5 --chunk-size 10000 --out-dir out/
catalogs query bulge disk --catalog galaxies --out-dir out/`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := queryFlagValues.queryOptions()
		if err != nil {
			return err
		}
		if outputDir == "" && len(args) > 1 {
			return errors.New("--out-dir is required when querying more than one adapter")
		}

		ctx := cmd.Context()
		return withEnvironment(func(env *environment) (outErr error) {
			adapters, err := env.adapters(ctx, args)
			if err != nil {
				return err
			}
			if opts.ChunkSize == 0 {
				if _, err := env.config.GetAdapterConfig(args[0]); err == nil {
					if opts.ChunkSize, err = adapter.ChunkSize(env.config, args[0], 0); err != nil {
						return err
					}
				}
			}
			db, err := adapters[0].Open(ctx, env.cache)
			if err != nil {
				return err
			}
			query, err := compound.Build(adapters, db, queryFlagValues.buildOptions()...)
			if err != nil {
				return err
			}

			sinks := newOutputs(cmd.OutOrStdout())
			defer func() {
				if err := sinks.Close(); err != nil && outErr == nil {
					outErr = err
				}
			}()

			var progress *batch.Progress
			if showProgress {
				progress = batch.NewProgress(cmd.ErrOrStderr())
				defer progress.Stop()
			}
			write := func(name string, rows *catalogs.RowBatch) error {
				if err := sinks.Write(name, rows); err != nil {
					return err
				}
				if progress != nil {
					progress.Add(name, rows.Len())
				}
				return nil
			}

			if catalogName != "" {
				definition, err := catalog.Lookup(catalogName)
				if err != nil {
					return err
				}
				bindings := make([]catalog.Binding, len(adapters))
				for i := range adapters {
					bindings[i] = catalog.Binding{AdapterID: adapters[i].ID(), Definition: definition}
				}
				return catalog.Run(ctx, query, bindings, func(binding catalog.Binding, rows *catalogs.RowBatch) error {
					return write(binding.AdapterID, rows)
				}, catalog.RunOptions{
					Query:             opts,
					CheckDependencies: checkDependencies,
					Schema: func(binding catalog.Binding, fields []catalogs.Field) error {
						return sinks.Open(binding.AdapterID, fields)
					},
				})
			}

			it, err := query.Execute(ctx, opts)
			if err != nil {
				return err
			}
			defer it.Close()

			for _, a := range adapters {
				view, err := it.EmptyView(a.ID())
				if err != nil {
					return err
				}
				if err := sinks.Open(a.ID(), view.Fields()); err != nil {
					return err
				}
			}

			for {
				chunk, err := it.Next(ctx)
				if err == execution.ErrEndOfStream {
					return nil
				} else if err != nil {
					return err
				}
				for _, a := range adapters {
					view, err := chunk.View(a.ID())
					if err != nil {
						return err
					}
					if err := write(a.ID(), view); err != nil {
						return err
					}
				}
			}
		})
	},
}

func init() {
	queryFlagValues.register(queryCmd)
	queryCmd.Flags().StringVar(&outputFormat, "format", "csv", "Output format: csv, txt, table or json.")
	queryCmd.Flags().StringVar(&outputDir, "out-dir", "", "Directory to write one file per adapter to, stdout if empty.")
	queryCmd.Flags().StringVar(&catalogName, "catalog", "", "Registered catalog to compute for every adapter instead of its raw columns.")
	queryCmd.Flags().BoolVar(&checkDependencies, "check-dependencies", false, "Fail when a getter reads columns its dry run didn't predict.")
	queryCmd.Flags().BoolVar(&showProgress, "progress", true, "Show live row counts on stderr.")
	rootCmd.AddCommand(queryCmd)
}

// outputs holds one format per adapter, written to stdout or to a file of the output directory.
type outputs struct {
	stdout  io.Writer
	formats map[string]formats.Format
	files   []*os.File
}

func newOutputs(stdout io.Writer) *outputs {
	return &outputs{
		stdout:  stdout,
		formats: make(map[string]formats.Format),
	}
}

// Open creates the output of an adapter and writes its header, if the format has one.
func (o *outputs) Open(name string, fields []catalogs.Field) error {
	if _, ok := o.formats[name]; ok {
		return errors.Errorf("output of %s already open", name)
	}

	w := o.stdout
	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return errors.Wrap(err, "couldn't create output directory")
		}
		f, err := os.Create(filepath.Join(outputDir, fmt.Sprintf("%s.%s", name, extension(outputFormat))))
		if err != nil {
			return errors.Wrapf(err, "couldn't create output file for %s", name)
		}
		o.files = append(o.files, f)
		w = f
	}

	format, err := formats.New(outputFormat, w)
	if err != nil {
		return err
	}
	format.SetSchema(fields)
	o.formats[name] = format
	return nil
}

func (o *outputs) Write(name string, rows *catalogs.RowBatch) error {
	format, ok := o.formats[name]
	if !ok {
		return errors.Errorf("output of %s isn't open", name)
	}
	return formats.WriteBatch(format, rows)
}

func (o *outputs) Close() error {
	var outErr error
	for name, format := range o.formats {
		if err := format.Close(); err != nil && outErr == nil {
			outErr = errors.Wrapf(err, "couldn't close output of %s", name)
		}
	}
	for _, f := range o.files {
		if err := f.Close(); err != nil && outErr == nil {
			outErr = errors.Wrapf(err, "couldn't close %s", f.Name())
		}
	}
	return outErr
}

func extension(format string) string {
	if format == "table" {
		return "txt"
	}
	return format
}
