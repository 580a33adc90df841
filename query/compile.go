package query

import (
	"strconv"
	"strings"

	"github.com/zeptools/gw-dataops/db/sqldb"
)

// Statement is backend-ready SQL with its ordered arguments.
type Statement struct {
	SQL  string
	Args []any
}

// CompileSelect renders q with placeholders of the given prefix (see sqldb.PlaceholderPrefix).
func CompileSelect(q Query, prefix byte) (Statement, error) {
	if err := q.Validate(); err != nil {
		return Statement{}, err
	}
	var b strings.Builder
	b.WriteString("SELECT ")
	if q.Distinct {
		b.WriteString("DISTINCT ")
	}
	if len(q.Columns) == 0 {
		b.WriteString("*")
	} else {
		b.WriteString(strings.Join(q.Columns, ", "))
	}
	b.WriteString(" FROM ")
	b.WriteString(q.Table)
	writeWhere(&b, q.Where)
	if len(q.GroupBy) > 0 {
		b.WriteString(" GROUP BY ")
		b.WriteString(strings.Join(q.GroupBy, ", "))
		if q.Having != "" {
			b.WriteString(" HAVING ")
			b.WriteString(q.Having)
		}
	}
	b.WriteString(sqldb.OrderByClause(q.OrderBy))
	if q.Limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(q.Limit))
		if q.Offset > 0 {
			b.WriteString(" OFFSET ")
			b.WriteString(strconv.Itoa(q.Offset))
		}
	}
	return statement(b.String(), prefix, q.WhereArgs), nil
}

func CompileRaw(q RawQuery, prefix byte) (Statement, error) {
	if err := q.Validate(); err != nil {
		return Statement{}, err
	}
	return statement(q.SQL, prefix, q.Args), nil
}

func CompileInsert(q InsertQuery, v Values, prefix byte) (Statement, error) {
	if err := q.Validate(); err != nil {
		return Statement{}, err
	}
	if err := validateValues(v); err != nil {
		return Statement{}, err
	}
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(q.Table)
	b.WriteString(" (")
	b.WriteString(strings.Join(v.columns, ", "))
	b.WriteString(") VALUES (")
	b.WriteString(strings.TrimSuffix(strings.Repeat("?, ", v.Len()), ", "))
	b.WriteString(")")
	return statement(b.String(), prefix, v.args), nil
}

func CompileUpdate(q UpdateQuery, v Values, prefix byte) (Statement, error) {
	if err := q.Validate(); err != nil {
		return Statement{}, err
	}
	if err := validateValues(v); err != nil {
		return Statement{}, err
	}
	var b strings.Builder
	b.WriteString("UPDATE ")
	b.WriteString(q.Table)
	b.WriteString(" SET ")
	for i, c := range v.columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(c)
		b.WriteString(" = ?")
	}
	writeWhere(&b, q.Where)
	args := make([]any, 0, v.Len()+len(q.WhereArgs))
	args = append(args, v.args...)
	args = append(args, q.WhereArgs...)
	return statement(b.String(), prefix, args), nil
}

func CompileDelete(q DeleteQuery, prefix byte) (Statement, error) {
	if err := q.Validate(); err != nil {
		return Statement{}, err
	}
	var b strings.Builder
	b.WriteString("DELETE FROM ")
	b.WriteString(q.Table)
	writeWhere(&b, q.Where)
	return statement(b.String(), prefix, q.WhereArgs), nil
}

func writeWhere(b *strings.Builder, where string) {
	if where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(where)
	}
}

func validateValues(v Values) error {
	if v.Len() == 0 {
		return ErrNoValues
	}
	for _, c := range v.columns {
		if err := sqldb.ValidateIdentifier(c); err != nil {
			return err
		}
	}
	return nil
}

func statement(sql string, prefix byte, args []any) Statement {
	return Statement{
		SQL:  sqldb.ReplaceStaticPlaceholders(sql, prefix),
		Args: append([]any(nil), args...),
	}
}
