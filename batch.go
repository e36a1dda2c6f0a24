package catalogs

import (
	"github.com/pkg/errors"
)

type Field struct {
	Name string
	Type Type
}

// RowBatch is a chunk of rows stored column-wise. Its fields are fixed for its lifetime.
// Views created with Select and Rename share column data with the batch they came from.
type RowBatch struct {
	fields  []Field
	columns []Column
	index   map[string]int
	length  int
}

func NewRowBatch(fields []Field, columns []Column) (*RowBatch, error) {
	if len(fields) != len(columns) {
		return nil, errors.Errorf("got %d fields but %d columns", len(fields), len(columns))
	}

	length := 0
	index := make(map[string]int, len(fields))
	for i := range fields {
		if _, ok := index[fields[i].Name]; ok {
			return nil, errors.Errorf("duplicate field name: %s", fields[i].Name)
		}
		index[fields[i].Name] = i

		if !columns[i].Type().Equals(fields[i].Type) {
			return nil, errors.Errorf("field %s declared as %s but column is %s", fields[i].Name, fields[i].Type, columns[i].Type())
		}
		if i == 0 {
			length = columns[i].Len()
		} else if columns[i].Len() != length {
			return nil, errors.Errorf("column %s has %d rows, expected %d", fields[i].Name, columns[i].Len(), length)
		}
	}

	return &RowBatch{
		fields:  fields,
		columns: columns,
		index:   index,
		length:  length,
	}, nil
}

func (b *RowBatch) Len() int {
	return b.length
}

func (b *RowBatch) Fields() []Field {
	return b.fields
}

func (b *RowBatch) Names() []string {
	out := make([]string, len(b.fields))
	for i := range b.fields {
		out[i] = b.fields[i].Name
	}
	return out
}

func (b *RowBatch) Has(name string) bool {
	_, ok := b.index[name]
	return ok
}

func (b *RowBatch) Column(name string) (Column, bool) {
	i, ok := b.index[name]
	if !ok {
		return Column{}, false
	}
	return b.columns[i], true
}

func (b *RowBatch) ColumnAt(i int) Column {
	return b.columns[i]
}

func (b *RowBatch) Row(i int) []Value {
	out := make([]Value, len(b.columns))
	for j := range b.columns {
		out[j] = b.columns[j].Value(i)
	}
	return out
}

// Select returns a view with only the given columns, in the given order.
func (b *RowBatch) Select(names ...string) (*RowBatch, error) {
	fields := make([]Field, len(names))
	columns := make([]Column, len(names))
	var missing []string
	for i, name := range names {
		j, ok := b.index[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		fields[i] = b.fields[j]
		columns[i] = b.columns[j]
	}
	if len(missing) > 0 {
		return nil, &ColumnError{Columns: missing}
	}

	out, err := NewRowBatch(fields, columns)
	if err != nil {
		return nil, err
	}
	// An empty selection still describes the same rows.
	out.length = b.length
	return out, nil
}

// Rename returns a view with the same columns under new names.
func (b *RowBatch) Rename(names []string) (*RowBatch, error) {
	if len(names) != len(b.fields) {
		return nil, errors.Errorf("got %d names for %d fields", len(names), len(b.fields))
	}
	fields := make([]Field, len(names))
	for i := range names {
		fields[i] = Field{Name: names[i], Type: b.fields[i].Type}
	}

	out, err := NewRowBatch(fields, b.columns)
	if err != nil {
		return nil, err
	}
	out.length = b.length
	return out, nil
}

// Project returns a view with the columns named by sources, renamed to names.
// A source may be listed more than once.
func (b *RowBatch) Project(sources, names []string) (*RowBatch, error) {
	if len(sources) != len(names) {
		return nil, errors.Errorf("got %d names for %d sources", len(names), len(sources))
	}
	fields := make([]Field, len(sources))
	columns := make([]Column, len(sources))
	var missing []string
	for i, source := range sources {
		j, ok := b.index[source]
		if !ok {
			missing = append(missing, source)
			continue
		}
		fields[i] = Field{Name: names[i], Type: b.fields[j].Type}
		columns[i] = b.columns[j]
	}
	if len(missing) > 0 {
		return nil, &ColumnError{Columns: missing}
	}

	out, err := NewRowBatch(fields, columns)
	if err != nil {
		return nil, err
	}
	out.length = b.length
	return out, nil
}

// Filter returns a copy of the batch containing the rows for which keep is true.
func (b *RowBatch) Filter(keep []bool) (*RowBatch, error) {
	if len(keep) != b.length {
		return nil, errors.Errorf("filter mask has %d entries for %d rows", len(keep), b.length)
	}
	columns := make([]Column, len(b.columns))
	for i := range b.columns {
		columns[i] = b.columns[i].Filter(keep)
	}

	out, err := NewRowBatch(b.fields, columns)
	if err != nil {
		return nil, err
	}
	out.length = 0
	for i := range keep {
		if keep[i] {
			out.length++
		}
	}
	return out, nil
}

// BatchBuilder accumulates raw rows into a typed RowBatch.
type BatchBuilder struct {
	fields  []Field
	columns []Column
	rows    int
}

func NewBatchBuilder(fields []Field, capacity int) *BatchBuilder {
	columns := make([]Column, len(fields))
	for i := range fields {
		columns[i] = newColumn(fields[i].Type, capacity)
	}
	return &BatchBuilder{
		fields:  fields,
		columns: columns,
	}
}

// Append adds a row of raw values, ordered like the builder fields, converting them to the field types.
func (bb *BatchBuilder) Append(values []interface{}) error {
	if len(values) != len(bb.fields) {
		return errors.Errorf("got %d values for %d fields", len(values), len(bb.fields))
	}
	converted := make([]Value, len(values))
	for i := range values {
		value, err := ConvertValue(bb.fields[i].Type, values[i])
		if err != nil {
			return errors.Wrapf(err, "couldn't convert value of field %s", bb.fields[i].Name)
		}
		converted[i] = value
	}
	for i := range converted {
		bb.columns[i].append(converted[i])
	}
	bb.rows++
	return nil
}

func (bb *BatchBuilder) Len() int {
	return bb.rows
}

// Build returns the accumulated batch. The builder must not be used afterwards.
func (bb *BatchBuilder) Build() (*RowBatch, error) {
	out, err := NewRowBatch(bb.fields, bb.columns)
	if err != nil {
		return nil, err
	}
	out.length = bb.rows
	return out, nil
}
