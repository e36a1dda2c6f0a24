package catalogs

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

type TypeID int

// TypeIDFloat comes first, so that an undeclared type is a float.
const (
	TypeIDFloat TypeID = iota
	TypeIDInt
	TypeIDBoolean
	TypeIDString
)

// Type is the type tag of a column. Width is only meaningful for strings,
// where it is the fixed width in bytes values get truncated to. Zero means unbounded.
type Type struct {
	TypeID TypeID
	Width  int
}

var (
	Int     = Type{TypeID: TypeIDInt}
	Float   = Type{TypeID: TypeIDFloat}
	Boolean = Type{TypeID: TypeIDBoolean}
	String  = Type{TypeID: TypeIDString}
)

func FixedString(width int) Type {
	return Type{TypeID: TypeIDString, Width: width}
}

// truncate cuts a string down to the type's width, without splitting a UTF-8 sequence.
func (t Type) truncate(str string) string {
	if t.Width <= 0 || len(str) <= t.Width {
		return str
	}
	end := t.Width
	for end > 0 && !utf8.RuneStart(str[end]) {
		end--
	}
	return str[:end]
}

func (t Type) Equals(other Type) bool {
	if t.TypeID != other.TypeID {
		return false
	}
	return t.TypeID != TypeIDString || t.Width == other.Width
}

func (t Type) String() string {
	switch t.TypeID {
	case TypeIDInt:
		return "int"
	case TypeIDFloat:
		return "float"
	case TypeIDBoolean:
		return "bool"
	case TypeIDString:
		if t.Width > 0 {
			return fmt.Sprintf("str(%d)", t.Width)
		}
		return "str"
	}
	panic("impossible, type switch bug")
}

// ParseType parses the textual form of a type, as used in configuration files.
// An empty string yields Float, which is the type of an expression declared without one.
func ParseType(text string) (Type, error) {
	text = strings.ToLower(strings.TrimSpace(text))
	switch text {
	case "":
		return Float, nil
	case "int", "int64", "integer":
		return Int, nil
	case "float", "float64", "double", "real":
		return Float, nil
	case "bool", "boolean":
		return Boolean, nil
	case "str", "string", "text":
		return String, nil
	}

	for _, prefix := range []string{"str(", "string("} {
		if !strings.HasPrefix(text, prefix) || !strings.HasSuffix(text, ")") {
			continue
		}
		width, err := strconv.Atoi(text[len(prefix) : len(text)-1])
		if err != nil {
			return Type{}, errors.Wrapf(err, "couldn't parse string width in %s", text)
		}
		if width < 0 {
			return Type{}, errors.Errorf("string width can't be negative: %s", text)
		}
		return FixedString(width), nil
	}

	return Type{}, errors.Errorf("unknown type: %s", text)
}

func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}
