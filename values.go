package catalogs

import (
	"fmt"
	"math"
	"strconv"

	"github.com/pkg/errors"
)

type Value struct {
	Type    Type
	Int     int64
	Float   float64
	Boolean bool
	Str     string
}

func NewInt(value int64) Value {
	return Value{Type: Int, Int: value}
}

func NewFloat(value float64) Value {
	return Value{Type: Float, Float: value}
}

func NewBoolean(value bool) Value {
	return Value{Type: Boolean, Boolean: value}
}

func NewString(value string) Value {
	return Value{Type: String, Str: value}
}

// IsMissing reports whether the value stands for "no data": NaN floats,
// and empty or "None" strings.
func (value Value) IsMissing() bool {
	switch value.Type.TypeID {
	case TypeIDFloat:
		return math.IsNaN(value.Float)
	case TypeIDString:
		return value.Str == "" || value.Str == "None"
	}
	return false
}

func (value Value) String() string {
	switch value.Type.TypeID {
	case TypeIDInt:
		return strconv.FormatInt(value.Int, 10)
	case TypeIDFloat:
		return strconv.FormatFloat(value.Float, 'g', -1, 64)
	case TypeIDBoolean:
		return strconv.FormatBool(value.Boolean)
	case TypeIDString:
		return value.Str
	}
	panic("impossible, type switch bug")
}

func (value Value) ToRawGoValue() interface{} {
	switch value.Type.TypeID {
	case TypeIDInt:
		return value.Int
	case TypeIDFloat:
		return value.Float
	case TypeIDBoolean:
		return value.Boolean
	case TypeIDString:
		return value.Str
	}
	panic("impossible, type switch bug")
}

// ConvertValue converts a raw value, as returned by a database driver or a
// parsed configuration file, to a Value of the given type.
// NULLs become NaN floats and zero values for the other types.
func ConvertValue(t Type, raw interface{}) (Value, error) {
	if data, ok := raw.([]byte); ok {
		// Some drivers return text as bytes.
		raw = string(data)
	}

	switch t.TypeID {
	case TypeIDInt:
		switch raw := raw.(type) {
		case nil:
			return NewInt(0), nil
		case int:
			return NewInt(int64(raw)), nil
		case int32:
			return NewInt(int64(raw)), nil
		case int64:
			return NewInt(raw), nil
		case float64:
			if raw != math.Trunc(raw) {
				return Value{}, errors.Errorf("can't use %v as an int without losing precision", raw)
			}
			return NewInt(int64(raw)), nil
		case bool:
			if raw {
				return NewInt(1), nil
			}
			return NewInt(0), nil
		case string:
			parsed, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return Value{}, errors.Wrapf(err, "couldn't parse %q as int", raw)
			}
			return NewInt(parsed), nil
		}

	case TypeIDFloat:
		switch raw := raw.(type) {
		case nil:
			return NewFloat(math.NaN()), nil
		case int:
			return NewFloat(float64(raw)), nil
		case int32:
			return NewFloat(float64(raw)), nil
		case int64:
			return NewFloat(float64(raw)), nil
		case float32:
			return NewFloat(float64(raw)), nil
		case float64:
			return NewFloat(raw), nil
		case string:
			parsed, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return Value{}, errors.Wrapf(err, "couldn't parse %q as float", raw)
			}
			return NewFloat(parsed), nil
		}

	case TypeIDBoolean:
		switch raw := raw.(type) {
		case nil:
			return NewBoolean(false), nil
		case bool:
			return NewBoolean(raw), nil
		case int64:
			return NewBoolean(raw != 0), nil
		case int:
			return NewBoolean(raw != 0), nil
		case string:
			parsed, err := strconv.ParseBool(raw)
			if err != nil {
				return Value{}, errors.Wrapf(err, "couldn't parse %q as bool", raw)
			}
			return NewBoolean(parsed), nil
		}

	case TypeIDString:
		var str string
		switch raw := raw.(type) {
		case nil:
		case string:
			str = raw
		default:
			str = fmt.Sprint(raw)
		}
		return Value{Type: t, Str: t.truncate(str)}, nil
	}

	return Value{}, errors.Errorf("can't convert %v of type %T to %s", raw, raw, t)
}
