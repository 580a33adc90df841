// Package query holds the descriptors the engine turns into backend statements.
//
// Descriptors are plain values: an operation copies what it is given and never
// mutates it. Query and RawQuery are the two Selection kinds a Get accepts.
package query

import (
	"errors"
	"fmt"
	"slices"

	"github.com/zeptools/gw-dataops/db/sqldb"
)

var (
	ErrEmptyTable = errors.New("empty table name")
	ErrEmptySQL   = errors.New("empty sql")
	ErrNoValues   = errors.New("no values to write")
)

// Selection is a read descriptor: either a structured Query or a RawQuery.
type Selection interface {
	// ObservedTables are the tables whose changes invalidate the selection's result.
	ObservedTables() []string
	// ObservedURI is the resource locator whose changes invalidate it, if any.
	ObservedURI() string
	Validate() error
	selection()
}

// Query is a structured SELECT.
type Query struct {
	Distinct  bool
	Table     string
	Columns   []string // empty selects every column
	Where     string   // condition with `?` placeholders
	WhereArgs []any
	GroupBy   []string
	Having    string
	OrderBy   []sqldb.OrderBy
	Limit     int // 0 = unlimited
	Offset    int
	URI       string // resource locator observed alongside Table
}

func (Query) selection() {}

func (q Query) ObservedTables() []string { return []string{q.Table} }

func (q Query) ObservedURI() string { return q.URI }

// Clone returns a copy of q that shares no slices with it.
func (q Query) Clone() Query {
	q.Columns = slices.Clone(q.Columns)
	q.WhereArgs = slices.Clone(q.WhereArgs)
	q.GroupBy = slices.Clone(q.GroupBy)
	q.OrderBy = slices.Clone(q.OrderBy)
	return q
}

func (q Query) Validate() error {
	if q.Table == "" {
		return ErrEmptyTable
	}
	if err := sqldb.ValidateIdentifier(q.Table); err != nil {
		return err
	}
	for _, c := range q.Columns {
		if err := sqldb.ValidateIdentifier(c); err != nil {
			return err
		}
	}
	for _, c := range q.GroupBy {
		if err := sqldb.ValidateIdentifier(c); err != nil {
			return err
		}
	}
	if q.Having != "" && len(q.GroupBy) == 0 {
		return errors.New("having requires group by")
	}
	if q.Limit < 0 || q.Offset < 0 {
		return fmt.Errorf("negative limit/offset: %d/%d", q.Limit, q.Offset)
	}
	if q.Offset > 0 && q.Limit == 0 {
		return errors.New("offset requires limit")
	}
	return checkArgs(q.Where, q.WhereArgs)
}

// RawQuery is caller-written SQL. The engine cannot infer which tables it touches,
// so the caller declares them.
type RawQuery struct {
	SQL            string
	Args           []any
	AffectsTables  []string // notified after ExecSQL
	AffectsURI     string
	ObservesTables []string // observed by reactive Gets
	ObservesURI    string
}

func (RawQuery) selection() {}

func (q RawQuery) ObservedTables() []string { return q.ObservesTables }

func (q RawQuery) ObservedURI() string { return q.ObservesURI }

// Clone returns a copy of q that shares no slices with it.
func (q RawQuery) Clone() RawQuery {
	q.Args = slices.Clone(q.Args)
	q.AffectsTables = slices.Clone(q.AffectsTables)
	q.ObservesTables = slices.Clone(q.ObservesTables)
	return q
}

// CloneSelection returns a copy of sel of the same kind that shares nothing with it.
func CloneSelection(sel Selection) Selection {
	switch s := sel.(type) {
	case Query:
		return s.Clone()
	case *Query:
		c := s.Clone()
		return &c
	case RawQuery:
		return s.Clone()
	case *RawQuery:
		c := s.Clone()
		return &c
	}
	return sel
}

func (q RawQuery) Validate() error {
	if q.SQL == "" {
		return ErrEmptySQL
	}
	return checkArgs(q.SQL, q.Args)
}

// IsMissing reports whether sel carries no descriptor at all.
func IsMissing(sel Selection) bool {
	switch s := sel.(type) {
	case nil:
		return true
	case *Query:
		return s == nil
	case *RawQuery:
		return s == nil
	}
	return false
}

func checkArgs(sql string, args []any) error {
	if n := countPlaceholders(sql); n != len(args) {
		return fmt.Errorf("%d placeholders but %d args in %q", n, len(args), sql)
	}
	return nil
}

func countPlaceholders(sql string) int {
	n := 0
	var quote byte
	for i := 0; i < len(sql); i++ {
		c := sql[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '?':
			n++
		}
	}
	return n
}
