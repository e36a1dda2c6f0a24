package formats

import (
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/lsst-sims/catalogs"
)

// TableFormatter buffers all rows and renders them as a box drawn table on Close.
// Numeric columns are right aligned, missing values are shown as NULL.
type TableFormatter struct {
	table *tablewriter.Table
}

func NewTableFormatter(w io.Writer) *TableFormatter {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)

	return &TableFormatter{
		table: table,
	}
}

func (t *TableFormatter) SetSchema(fields []catalogs.Field) {
	header := make([]string, len(fields))
	alignments := make([]int, len(fields))
	for i := range fields {
		header[i] = fields[i].Name
		switch fields[i].Type.TypeID {
		case catalogs.TypeIDInt, catalogs.TypeIDFloat:
			alignments[i] = tablewriter.ALIGN_RIGHT
		default:
			alignments[i] = tablewriter.ALIGN_LEFT
		}
	}
	t.table.SetHeader(header)
	t.table.SetColumnAlignment(alignments)
}

func (t *TableFormatter) Write(values []catalogs.Value) error {
	row := make([]string, len(values))
	for i := range values {
		if values[i].IsMissing() {
			row[i] = "NULL"
			continue
		}
		row[i] = values[i].String()
	}
	t.table.Append(row)
	return nil
}

func (t *TableFormatter) Close() error {
	t.table.Render()
	return nil
}
