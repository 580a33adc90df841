package sqldb

import (
	"fmt"
	"regexp"
)

var regexIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// Column is a validated SQL identifier (e.g. "user.email").
// It cannot be created directly, only via NewColumn().
type Column struct {
	name string // unexported → cannot bypass validation
}

// Name returns the identifier string.
func (c Column) Name() string { return c.name }

func NewColumn(name string) (Column, error) {
	if err := ValidateIdentifier(name); err != nil {
		return Column{}, err
	}
	return Column{name: name}, nil
}

// NewColumnOrPanic validates the name and returns a safe Column value.
// WARNING: This function panics if the given name is not a valid SQL identifier.
func NewColumnOrPanic(name string) Column {
	c, err := NewColumn(name)
	if err != nil {
		panic(err)
	}
	return c
}

// ValidateIdentifier reports whether name can be spliced into SQL as a table or column name.
func ValidateIdentifier(name string) error {
	if !regexIdentifier.MatchString(name) {
		return fmt.Errorf("invalid SQL identifier: %q", name)
	}
	return nil
}
