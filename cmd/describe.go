package cmd

import (
	"fmt"
	"strings"

	"github.com/kr/text"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/lsst-sims/catalogs/compound"
	"github.com/lsst-sims/catalogs/storage/sql"
)

var describeFlags queryFlags

var describeCmd = &cobra.Command{
	Use:   "describe ADAPTER...",
	Short: "Print the merged columns of a group of adapters and the SQL they run.",
	Example: `catalogs describe bulge disk agn
catalogs describe bulge disk --circle 10,-5,0.5 --where "mag < 24"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := describeFlags.queryOptions()
		if err != nil {
			return err
		}

		return withEnvironment(func(env *environment) error {
			adapters, err := env.adapters(cmd.Context(), args)
			if err != nil {
				return err
			}
			// Describing never executes the query, so there's no need to connect.
			query, err := compound.Build(adapters, nil, describeFlags.buildOptions()...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, query.String())

			table := tablewriter.NewWriter(out)
			table.SetHeader([]string{"master", "expression", "type", "adapters"})
			table.SetAutoFormatHeaders(false)
			table.SetAutoWrapText(false)
			for _, entry := range append(query.Mapping().Entries(), query.Mapping().SystemEntries()...) {
				var sources []string
				for _, source := range query.Index().Sources(entry.MasterName) {
					sources = append(sources, source.AdapterID+"."+source.OutputName)
				}
				table.Append([]string{entry.MasterName, entry.Expression, entry.Type.String(), strings.Join(sources, ", ")})
			}
			table.Render()

			stmt, _, err := query.Statement(opts)
			if err != nil {
				return err
			}
			template, err := env.cache.Template(query.Identity().Driver)
			if err != nil {
				return err
			}
			rendered, err := sql.StatementToSQL(stmt, template)
			if err != nil {
				return errors.Wrap(err, "couldn't render statement")
			}
			fmt.Fprintln(out, "SQL:")
			fmt.Fprintln(out, text.Indent(rendered, "    "))
			return nil
		})
	},
}

func init() {
	describeFlags.register(describeCmd)
	rootCmd.AddCommand(describeCmd)
}
