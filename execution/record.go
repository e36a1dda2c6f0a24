package execution

import (
	"github.com/pkg/errors"
)

var ErrEndOfStream = errors.New("end of stream")

// Row is a single row returned by a cursor, accessed by column name.
type Row interface {
	Keys() []string
	Get(key string) (interface{}, bool)
}

// MapRow is a Row backed by parallel slices of keys and values.
type MapRow struct {
	keys   []string
	values []interface{}
}

func NewRow(keys []string, values []interface{}) *MapRow {
	if len(keys) != len(values) {
		panic("row keys and values lengths differ")
	}
	return &MapRow{
		keys:   keys,
		values: values,
	}
}

func NewRowFromMap(keys []string, data map[string]interface{}) *MapRow {
	values := make([]interface{}, len(keys))
	for i := range keys {
		values[i] = data[keys[i]]
	}
	return NewRow(keys, values)
}

func (r *MapRow) Keys() []string {
	return r.keys
}

func (r *MapRow) Get(key string) (interface{}, bool) {
	for i := range r.keys {
		if r.keys[i] == key {
			return r.values[i], true
		}
	}
	return nil, false
}
