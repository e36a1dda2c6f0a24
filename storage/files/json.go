package files

import (
	"bufio"
	"os"

	"github.com/pkg/errors"
	"github.com/valyala/fastjson"

	"github.com/lsst-sims/catalogs"
)

// readJSONLines reads a file with one JSON object per line.
// Without given fields, columns are the keys in first-seen order.
func readJSONLines(path string, fields []catalogs.Field) (*rawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't open file")
	}
	defer f.Close()

	var objects []map[string]interface{}
	var names []string
	kinds := make(map[string]jsonKind)

	sc := bufio.NewScanner(bufio.NewReaderSize(f, 4096*1024))
	sc.Buffer(nil, 1024*1024)

	var p fastjson.Parser
	for sc.Scan() {
		if len(sc.Bytes()) == 0 {
			continue
		}
		v, err := p.ParseBytes(sc.Bytes())
		if err != nil {
			return nil, errors.Wrap(err, "couldn't parse json")
		}
		o, err := v.Object()
		if err != nil {
			return nil, errors.Errorf("expected JSON object, got '%s'", sc.Text())
		}

		object := make(map[string]interface{}, o.Len())
		var visitErr error
		o.Visit(func(key []byte, value *fastjson.Value) {
			name := string(key)
			raw, kind, err := jsonValue(value)
			if err != nil && visitErr == nil {
				visitErr = errors.Wrapf(err, "invalid value of %s", name)
				return
			}
			if _, ok := kinds[name]; !ok {
				names = append(names, name)
			}
			kinds[name] = kinds[name].sum(kind)
			object[name] = raw
		})
		if visitErr != nil {
			return nil, visitErr
		}
		objects = append(objects, object)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "couldn't scan lines")
	}

	if fields == nil {
		fields = make([]catalogs.Field, len(names))
		for i, name := range names {
			fields[i] = catalogs.Field{Name: name, Type: kinds[name].toType()}
		}
	}

	table := &rawTable{
		fields: fields,
		rows:   make([][]interface{}, len(objects)),
	}
	for i, object := range objects {
		row := make([]interface{}, len(fields))
		for j := range fields {
			raw, ok := object[fields[j].Name]
			if !ok || raw == nil {
				// Stored as NULL.
				continue
			}
			value, err := catalogs.ConvertValue(fields[j].Type, raw)
			if err != nil {
				return nil, errors.Wrapf(err, "invalid value of %s in line %d", fields[j].Name, i+1)
			}
			row[j] = value.ToRawGoValue()
		}
		table.rows[i] = row
	}
	return table, nil
}

type jsonKind int

const (
	jsonNull jsonKind = iota
	jsonBoolean
	jsonInt
	jsonFloat
	jsonString
)

// sum returns the kind able to hold both kinds.
func (k jsonKind) sum(other jsonKind) jsonKind {
	switch {
	case k == jsonNull:
		return other
	case other == jsonNull || k == other:
		return k
	case (k == jsonInt && other == jsonFloat) || (k == jsonFloat && other == jsonInt):
		return jsonFloat
	}
	return jsonString
}

func (k jsonKind) toType() catalogs.Type {
	switch k {
	case jsonBoolean:
		return catalogs.Boolean
	case jsonInt:
		return catalogs.Int
	case jsonString:
		return catalogs.String
	}
	return catalogs.Float
}

func jsonValue(value *fastjson.Value) (interface{}, jsonKind, error) {
	switch value.Type() {
	case fastjson.TypeNull:
		return nil, jsonNull, nil
	case fastjson.TypeTrue:
		return true, jsonBoolean, nil
	case fastjson.TypeFalse:
		return false, jsonBoolean, nil
	case fastjson.TypeNumber:
		if i, err := value.Int64(); err == nil {
			return i, jsonInt, nil
		}
		f, err := value.Float64()
		if err != nil {
			return nil, jsonNull, err
		}
		return f, jsonFloat, nil
	case fastjson.TypeString:
		str, err := value.StringBytes()
		if err != nil {
			return nil, jsonNull, err
		}
		return string(str), jsonString, nil
	}
	return nil, jsonNull, errors.Errorf("unsupported JSON value: %s", value.String())
}
