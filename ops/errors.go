package ops

import (
	"errors"
	"fmt"
	"reflect"
)

type Kind uint8

const (
	// KindConfiguration means the operation was rejected before any backend call.
	KindConfiguration Kind = iota + 1
	// KindExecution means a backend call or a resolver failed.
	KindExecution
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindExecution:
		return "execution"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

var (
	ErrNoQuery  = errors.New("please specify query")
	ErrNoObject = errors.New("please specify object")
	ErrNoStore  = errors.New("please specify store")
)

// Error is returned by every Prepare and Execute call. Err is the cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func IsConfiguration(err error) bool { return isKind(err, KindConfiguration) }

func IsExecution(err error) bool { return isKind(err, KindExecution) }

func isKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

func configError(op string, err error) error {
	return &Error{Kind: KindConfiguration, Op: op, Err: err}
}

// execError wraps err unless it already carries a Kind.
func execError(op string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: KindExecution, Op: op, Err: err}
}

// NoTypeMappingError reports a type with neither a registered mapping nor an explicit resolver.
type NoTypeMappingError struct {
	Type reflect.Type
}

func (e *NoTypeMappingError) Error() string {
	return fmt.Sprintf("this type does not have type mapping: type = %v, "+
		"db was not touched by this operation, please add type mapping for this type", e.Type)
}
