package cmd

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/lsst-sims/catalogs/storage/files"
)

var ingestOptions files.Options

var ingestCmd = &cobra.Command{
	Use:   "ingest FILE",
	Short: "Load a text or JSON lines file into an SQLite database, so adapters can query it.",
	Long: `ingest loads FILE, either the name of a configured file or a path, into a new
SQLite database in --dir and prints its location. The database is kept.`,
	Example: `catalogs ingest stars
catalogs ingest data/stars.txt --delimiter , --table stars --dir ~/.catalogs/db`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return withEnvironment(func(env *environment) error {
			var result *files.Result
			if fileConfig, err := env.config.GetFileConfig(args[0]); err == nil {
				result, err = files.FromConfig(ctx, fileConfig, ingestOptions.Dir)
				if err != nil {
					return err
				}
			} else {
				result, err = files.Ingest(ctx, args[0], ingestOptions)
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d rows loaded into table %s of %s\n", result.Rows, result.Table, result.Path)
			table := tablewriter.NewWriter(out)
			table.SetHeader([]string{"column", "type"})
			table.SetAutoFormatHeaders(false)
			for _, field := range result.Fields {
				table.Append([]string{field.Name, field.Type.String()})
			}
			table.Render()
			return nil
		})
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestOptions.Table, "table", files.DefaultTable, "Table to create.")
	ingestCmd.Flags().StringVar(&ingestOptions.Delimiter, "delimiter", "", "Field delimiter of text files, whitespace if empty.")
	ingestCmd.Flags().StringVar(&ingestOptions.IDColumn, "id-column", "", "Id column, added and numbered from 1 when the file lacks it.")
	ingestCmd.Flags().StringVar(&ingestOptions.Dir, "dir", ".", "Directory to create the database in.")
	rootCmd.AddCommand(ingestCmd)
}
