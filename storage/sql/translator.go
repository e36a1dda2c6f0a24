package sql

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/lsst-sims/catalogs/execution"
)

// StatementToSQL renders the statement. Expressions and the predicate are passed through verbatim,
// aliases get quoted so that drivers return them with their exact case.
func StatementToSQL(stmt execution.Statement, template Template) (string, error) {
	if stmt.Table == "" {
		return "", errors.New("statement has no table")
	}
	if len(stmt.Columns) == 0 {
		return "", errors.New("statement has no columns")
	}

	sb := &strings.Builder{}
	sb.WriteString("SELECT ")
	for i, column := range stmt.Columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		if column.Expression == "" {
			return "", errors.Errorf("column %s has no expression", column.Alias)
		}
		sb.WriteString(column.Expression)
		if column.Alias != "" {
			sb.WriteString(" AS ")
			sb.WriteString(template.QuoteIdentifier(column.Alias))
		}
	}
	sb.WriteString(" FROM ")
	sb.WriteString(stmt.Table)

	if predicate := strings.TrimSpace(stmt.Predicate); predicate != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(predicate)
	}
	if stmt.Limit > 0 {
		sb.WriteString(fmt.Sprintf(" LIMIT %d", stmt.Limit))
	}

	return sb.String(), nil
}

// And joins non-empty predicates with AND, parenthesizing each of them.
func And(predicates ...string) string {
	var parts []string
	for _, predicate := range predicates {
		if predicate = strings.TrimSpace(predicate); predicate != "" {
			parts = append(parts, parenthesize(predicate))
		}
	}
	return strings.Join(parts, " AND ")
}

func parenthesize(str string) string {
	return fmt.Sprintf("(%s)", str)
}

// QuoteDoubleQuotes quotes an identifier the ANSI way.
func QuoteDoubleQuotes(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
