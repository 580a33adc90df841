package query

import "github.com/zeptools/gw-dataops/db/sqldb"

// InsertQuery targets a table for an INSERT built from Values.
type InsertQuery struct {
	Table string
	// IDColumn names the generated key. Backends without LastInsertId read it back with RETURNING.
	IDColumn string
	URI      string // resource locator announced with Table
}

func (q InsertQuery) Validate() error {
	if err := validateTable(q.Table); err != nil {
		return err
	}
	if q.IDColumn != "" {
		return sqldb.ValidateIdentifier(q.IDColumn)
	}
	return nil
}

// UpdateQuery targets the rows an UPDATE built from Values applies to.
type UpdateQuery struct {
	Table     string
	Where     string
	WhereArgs []any
	URI       string
}

func (q UpdateQuery) Validate() error {
	if err := validateTable(q.Table); err != nil {
		return err
	}
	return checkArgs(q.Where, q.WhereArgs)
}

// DeleteQuery targets the rows a DELETE removes. An empty Where deletes every row.
type DeleteQuery struct {
	Table     string
	Where     string
	WhereArgs []any
	URI       string
}

func (q DeleteQuery) Validate() error {
	if err := validateTable(q.Table); err != nil {
		return err
	}
	return checkArgs(q.Where, q.WhereArgs)
}

func validateTable(table string) error {
	if table == "" {
		return ErrEmptyTable
	}
	return sqldb.ValidateIdentifier(table)
}
