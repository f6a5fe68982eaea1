// Where: internal/domain/topology/errors.go
// What: Declaration error types for the topology builder.
// Why: Let callers classify construction failures with errors.Is/As.
package topology

import (
	"errors"
	"fmt"
)

var (
	// ErrUndeclaredReference is returned when an entity refers to another
	// entity that was not declared by the same builder.
	ErrUndeclaredReference = errors.New("undeclared reference")
	// ErrInvalidEntity is returned when an entity's own fields are invalid.
	ErrInvalidEntity = errors.New("invalid entity")
	// ErrDuplicateEntity is returned when an id or singleton kind repeats.
	ErrDuplicateEntity = errors.New("duplicate entity")

	errBuilderSealed = errors.New("builder already built")
)

// DeclarationError records which entity failed to declare.
type DeclarationError struct {
	Kind   Kind
	Entity ResourceID
	Err    error
}

func (e *DeclarationError) Error() string {
	if e.Entity == "" {
		return fmt.Sprintf("declare %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("declare %s %q: %v", e.Kind, e.Entity, e.Err)
}

func (e *DeclarationError) Unwrap() error { return e.Err }

func declErr(kind Kind, id ResourceID, err error) error {
	return &DeclarationError{Kind: kind, Entity: id, Err: err}
}

func invalidf(kind Kind, id ResourceID, format string, a ...any) error {
	return declErr(kind, id, fmt.Errorf("%w: %s", ErrInvalidEntity, fmt.Sprintf(format, a...)))
}

func undeclaredf(kind Kind, id ResourceID, format string, a ...any) error {
	return declErr(kind, id, fmt.Errorf("%w: %s", ErrUndeclaredReference, fmt.Sprintf(format, a...)))
}
