package sqldb

type targetFieldsProvider interface {
	TargetFields() []any
}

// Scannable is satisfied by *M when M exposes pointers to its fields in column order.
type Scannable[T any] interface {
	~*T                  // Type Constraint: Underlying Type(~) = *T
	targetFieldsProvider // must implement targetFieldsProvider
}
