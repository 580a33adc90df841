package sqldb

// Rows is a forward-only row-set. The first Next positions on the first row.
// Whoever obtains Rows owns it and must Close it.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
	Err() error
}

type Result interface {
	RowsAffected() (int64, error)
	LastInsertId() (int64, error)
}
