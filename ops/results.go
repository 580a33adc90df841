package ops

import (
	"github.com/zeptools/gw-dataops/changes"
)

// PutResult is the outcome of writing one object.
type PutResult struct {
	insertedID  int64
	inserted    bool
	rowsUpdated int64
	tables      []string
	uri         string
}

func NewPutResultForInsert(insertedID int64, tables ...string) PutResult {
	return PutResult{insertedID: insertedID, inserted: true, tables: tables}
}

func NewPutResultForUpdate(rowsUpdated int64, tables ...string) PutResult {
	return PutResult{rowsUpdated: rowsUpdated, tables: tables}
}

func (r PutResult) WasInserted() bool { return r.inserted }

func (r PutResult) WasUpdated() bool { return !r.inserted }

// InsertedID is 0 for updates and for backends that cannot report generated keys.
func (r PutResult) InsertedID() int64 { return r.insertedID }

func (r PutResult) RowsUpdated() int64 { return r.rowsUpdated }

func (r PutResult) AffectedTables() []string { return append([]string(nil), r.tables...) }

// WithURI returns r also announcing the resource locator uri.
func (r PutResult) WithURI(uri string) PutResult {
	r.uri = uri
	return r
}

func (r PutResult) AffectedURI() string { return r.uri }

func (r PutResult) Changes() changes.Changes { return changes.ForTables(r.tables...).WithURIs(r.uri) }

// DeleteResult is the outcome of deleting one object or one query's rows.
type DeleteResult struct {
	rowsDeleted int64
	tables      []string
	uri         string
}

func NewDeleteResult(rowsDeleted int64, tables ...string) DeleteResult {
	return DeleteResult{rowsDeleted: rowsDeleted, tables: tables}
}

func (r DeleteResult) RowsDeleted() int64 { return r.rowsDeleted }

func (r DeleteResult) AffectedTables() []string { return append([]string(nil), r.tables...) }

func (r DeleteResult) WithURI(uri string) DeleteResult {
	r.uri = uri
	return r
}

func (r DeleteResult) AffectedURI() string { return r.uri }

func (r DeleteResult) Changes() changes.Changes { return changes.ForTables(r.tables...).WithURIs(r.uri) }

// Results maps each input object to its result. Objects remember first-seen order;
// a repeated object keeps its position and takes the latest result.
type Results[T comparable, R any] struct {
	byObject map[T]R
	order    []T
}

func newResults[T comparable, R any](capacity int) *Results[T, R] {
	return &Results[T, R]{
		byObject: make(map[T]R, capacity),
		order:    make([]T, 0, capacity),
	}
}

func (rs *Results[T, R]) add(obj T, r R) {
	if _, already := rs.byObject[obj]; !already {
		rs.order = append(rs.order, obj)
	}
	rs.byObject[obj] = r
}

func (rs *Results[T, R]) Len() int { return len(rs.byObject) }

func (rs *Results[T, R]) Has(obj T) bool {
	_, ok := rs.byObject[obj]
	return ok
}

func (rs *Results[T, R]) Find(obj T) (R, bool) {
	r, ok := rs.byObject[obj]
	return r, ok
}

func (rs *Results[T, R]) Objects() []T { return append([]T(nil), rs.order...) }

// ForEach visits results in first-seen object order.
func (rs *Results[T, R]) ForEach(fn func(T, R)) {
	for _, obj := range rs.order {
		fn(obj, rs.byObject[obj])
	}
}

type PutResults[T comparable] struct {
	*Results[T, PutResult]
}

func (rs PutResults[T]) NumberOfInserts() int {
	n := 0
	for _, r := range rs.byObject {
		if r.WasInserted() {
			n++
		}
	}
	return n
}

func (rs PutResults[T]) NumberOfUpdates() int64 {
	var n int64
	for _, r := range rs.byObject {
		n += r.RowsUpdated()
	}
	return n
}

type DeleteResults[T comparable] struct {
	*Results[T, DeleteResult]
}

func (rs DeleteResults[T]) NumberOfDeletedRows() int64 {
	var n int64
	for _, r := range rs.byObject {
		n += r.RowsDeleted()
	}
	return n
}
