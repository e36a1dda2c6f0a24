package catalogs

import (
	"strings"

	"github.com/pkg/errors"
)

// ColumnMapping declares one output column of an adapter.
// An empty SourceExpression means the column is read as-is from the table column named OutputName.
type ColumnMapping struct {
	OutputName       string
	SourceExpression string
	Type             Type
}

func NewColumnMapping(name, expression string, t Type) ColumnMapping {
	return ColumnMapping{
		OutputName:       name,
		SourceExpression: strings.TrimSpace(expression),
		Type:             t,
	}
}

// Expression returns the SQL expression computing the column.
func (m ColumnMapping) Expression() string {
	if m.SourceExpression == "" {
		return m.OutputName
	}
	return m.SourceExpression
}

// IsTransform reports whether the column is computed rather than read from a same-named table column.
func (m ColumnMapping) IsTransform() bool {
	return m.SourceExpression != "" && m.SourceExpression != m.OutputName
}

// ValidateMappings checks that output names are present and unique.
func ValidateMappings(mappings []ColumnMapping) error {
	seen := make(map[string]struct{}, len(mappings))
	for i := range mappings {
		name := mappings[i].OutputName
		if name == "" {
			return errors.Errorf("column mapping with index %d has no output name", i)
		}
		if _, ok := seen[name]; ok {
			return errors.Errorf("output name %s declared more than once", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}
