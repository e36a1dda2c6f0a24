package formats

import (
	"encoding/csv"
	"io"

	"github.com/lsst-sims/catalogs"
)

// CSVFormatter writes delimited text, with the header as a comment line.
type CSVFormatter struct {
	writer *csv.Writer
	fields []catalogs.Field
}

func NewCSVFormatter(w io.Writer, delimiter rune) *CSVFormatter {
	writer := csv.NewWriter(w)
	writer.Comma = delimiter

	return &CSVFormatter{
		writer: writer,
	}
}

func (t *CSVFormatter) SetSchema(fields []catalogs.Field) {
	t.fields = fields

	header := make([]string, len(fields))
	for i := range fields {
		header[i] = fields[i].Name
	}
	if len(header) > 0 {
		header[0] = "#" + header[0]
	}
	t.writer.Write(header)
}

func (t *CSVFormatter) Write(values []catalogs.Value) error {
	row := make([]string, len(values))
	for i := range values {
		row[i] = values[i].String()
	}
	return t.writer.Write(row)
}

func (t *CSVFormatter) Close() error {
	t.writer.Flush()
	return t.writer.Error()
}
