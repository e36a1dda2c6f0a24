package catalogs

import (
	"fmt"
	"sort"
	"strings"
)

// ConfigurationError is returned when adapters can't be combined into one query,
// because they disagree on the physical table or share an identifier.
type ConfigurationError struct {
	// Mismatches maps the disagreeing identity field (host, port, driver, database, table)
	// to the distinct values found, in adapter order.
	Mismatches map[string][]string
	// DuplicateIDs lists adapter identifiers declared more than once.
	DuplicateIDs []string
	Reason       string
}

func (err *ConfigurationError) Error() string {
	var parts []string
	if len(err.Mismatches) > 0 {
		fields := make([]string, 0, len(err.Mismatches))
		for field := range err.Mismatches {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			parts = append(parts, fmt.Sprintf("%s list %v", field, err.Mismatches[field]))
		}
	}
	if len(err.DuplicateIDs) > 0 {
		parts = append(parts, fmt.Sprintf("duplicate adapter ids %v", err.DuplicateIDs))
	}
	if err.Reason != "" {
		parts = append(parts, err.Reason)
	}
	return "invalid configuration: " + strings.Join(parts, "; ")
}

// ColumnError is returned when requested columns don't exist in a mapping or batch.
type ColumnError struct {
	Columns []string
}

func (err *ColumnError) Error() string {
	return fmt.Sprintf("unknown columns: %v", err.Columns)
}

// MissingColumnError is returned when a column is resolvable neither by a getter,
// a default value nor the raw data.
type MissingColumnError struct {
	Adapter string
	Column  string
}

func (err *MissingColumnError) Error() string {
	return fmt.Sprintf("column %s can't be resolved for adapter %s", err.Column, err.Adapter)
}

// UnsupportedTableError is returned when a compound query restricted to some tables
// is asked to combine adapters querying another one.
type UnsupportedTableError struct {
	Adapter string
	Table   string
	Allowed []string
}

func (err *UnsupportedTableError) Error() string {
	return fmt.Sprintf("adapter %s queries table %s, only %v are supported", err.Adapter, err.Table, err.Allowed)
}
