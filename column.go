package catalogs

import (
	"math"

	"github.com/pkg/errors"
)

// Column is a typed, homogeneous array of values.
// Only the slice matching the column type is populated.
// Columns share their backing arrays when sliced, so they must be treated as read-only.
type Column struct {
	typ      Type
	ints     []int64
	floats   []float64
	booleans []bool
	strs     []string
}

func NewIntColumn(values []int64) Column {
	return Column{typ: Int, ints: values}
}

func NewFloatColumn(values []float64) Column {
	return Column{typ: Float, floats: values}
}

func NewBooleanColumn(values []bool) Column {
	return Column{typ: Boolean, booleans: values}
}

func NewStringColumn(t Type, values []string) Column {
	if t.TypeID != TypeIDString {
		panic("string column with non-string type")
	}
	return Column{typ: t, strs: values}
}

// EmptyColumn returns a zero-length column of the given type.
func EmptyColumn(t Type) Column {
	return newColumn(t, 0)
}

func newColumn(t Type, capacity int) Column {
	switch t.TypeID {
	case TypeIDInt:
		return Column{typ: t, ints: make([]int64, 0, capacity)}
	case TypeIDFloat:
		return Column{typ: t, floats: make([]float64, 0, capacity)}
	case TypeIDBoolean:
		return Column{typ: t, booleans: make([]bool, 0, capacity)}
	case TypeIDString:
		return Column{typ: t, strs: make([]string, 0, capacity)}
	}
	panic("impossible, type switch bug")
}

// ConstantColumn returns a column of length n filled with value.
func ConstantColumn(value Value, n int) Column {
	out := newColumn(value.Type, n)
	for i := 0; i < n; i++ {
		out.append(value)
	}
	return out
}

func (c Column) Type() Type {
	return c.typ
}

func (c Column) Len() int {
	switch c.typ.TypeID {
	case TypeIDInt:
		return len(c.ints)
	case TypeIDFloat:
		return len(c.floats)
	case TypeIDBoolean:
		return len(c.booleans)
	case TypeIDString:
		return len(c.strs)
	}
	panic("impossible, type switch bug")
}

func (c Column) Ints() []int64 {
	return c.ints
}

func (c Column) Floats() []float64 {
	return c.floats
}

func (c Column) Booleans() []bool {
	return c.booleans
}

func (c Column) Strings() []string {
	return c.strs
}

// AsFloats returns the column as floats, converting ints.
func (c Column) AsFloats() ([]float64, error) {
	switch c.typ.TypeID {
	case TypeIDFloat:
		return c.floats, nil
	case TypeIDInt:
		out := make([]float64, len(c.ints))
		for i := range c.ints {
			out[i] = float64(c.ints[i])
		}
		return out, nil
	}
	return nil, errors.Errorf("can't use %s column as float", c.typ)
}

func (c Column) Value(i int) Value {
	switch c.typ.TypeID {
	case TypeIDInt:
		return Value{Type: c.typ, Int: c.ints[i]}
	case TypeIDFloat:
		return Value{Type: c.typ, Float: c.floats[i]}
	case TypeIDBoolean:
		return Value{Type: c.typ, Boolean: c.booleans[i]}
	case TypeIDString:
		return Value{Type: c.typ, Str: c.strs[i]}
	}
	panic("impossible, type switch bug")
}

// IsMissing reports whether the i-th value is NaN, or an empty or "None" string.
func (c Column) IsMissing(i int) bool {
	switch c.typ.TypeID {
	case TypeIDFloat:
		return math.IsNaN(c.floats[i])
	case TypeIDString:
		return c.strs[i] == "" || c.strs[i] == "None"
	}
	return false
}

// Filter returns a new column with the values for which keep is true.
func (c Column) Filter(keep []bool) Column {
	out := newColumn(c.typ, len(keep))
	for i := range keep {
		if keep[i] {
			out.append(c.Value(i))
		}
	}
	return out
}

// append assumes the value has already been converted to the column type.
func (c *Column) append(value Value) {
	switch c.typ.TypeID {
	case TypeIDInt:
		c.ints = append(c.ints, value.Int)
	case TypeIDFloat:
		c.floats = append(c.floats, value.Float)
	case TypeIDBoolean:
		c.booleans = append(c.booleans, value.Boolean)
	case TypeIDString:
		c.strs = append(c.strs, c.typ.truncate(value.Str))
	}
}
