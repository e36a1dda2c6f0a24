package formats

import (
	"io"
	"math"

	"github.com/valyala/fastjson"

	"github.com/lsst-sims/catalogs"
)

// JSONFormatter writes one JSON object per row. Missing floats are written as null.
type JSONFormatter struct {
	buf    []byte
	arena  *fastjson.Arena
	w      io.Writer
	fields []catalogs.Field
}

func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{
		buf:   make([]byte, 0, 1024),
		arena: new(fastjson.Arena),
		w:     w,
	}
}

func (t *JSONFormatter) SetSchema(fields []catalogs.Field) {
	t.fields = fields
}

func (t *JSONFormatter) Write(values []catalogs.Value) error {
	obj := t.arena.NewObject()
	for i := range t.fields {
		obj.Set(t.fields[i].Name, ValueToJson(t.arena, values[i]))
	}

	t.buf = obj.MarshalTo(t.buf)
	t.buf = append(t.buf, '\n')
	_, err := t.w.Write(t.buf)
	t.buf = t.buf[:0]
	t.arena.Reset()
	return err
}

func ValueToJson(arena *fastjson.Arena, value catalogs.Value) *fastjson.Value {
	switch value.Type.TypeID {
	case catalogs.TypeIDInt:
		return arena.NewNumberString(value.String())
	case catalogs.TypeIDFloat:
		if math.IsNaN(value.Float) || math.IsInf(value.Float, 0) {
			return arena.NewNull()
		}
		return arena.NewNumberFloat64(value.Float)
	case catalogs.TypeIDBoolean:
		if value.Boolean {
			return arena.NewTrue()
		}
		return arena.NewFalse()
	case catalogs.TypeIDString:
		return arena.NewString(value.Str)
	}
	panic("impossible, type switch bug")
}

func (t *JSONFormatter) Close() error {
	return nil
}
