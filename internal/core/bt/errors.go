package bt

import (
	"errors"
	"fmt"
)

var (
	ErrNilTask  = errors.New("task is nil")
	ErrNilState = errors.New("world state is nil")

	// Construction errors, wrapped by StructuralError.
	ErrUnknownKind  = errors.New("unknown node kind")
	ErrNotComposite = errors.New("node cannot have children")
	ErrUnknownField = errors.New("unknown field")
	ErrOutOfDomain  = errors.New("value outside the field's domain")
	ErrCycle        = errors.New("child is already part of the tree")
)

// PreconditionError reports a world entry that must exist but does not.
// It aborts the whole evaluation.
type PreconditionError struct {
	Kind Kind
	Node string
	// Key names the missing entry, e.g. "character_position[Knight]".
	Key string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition failed in %s %q: missing %s", e.Kind, e.Node, e.Key)
}

// StructuralError is returned while building a tree, never while evaluating one.
type StructuralError struct {
	Kind  Kind
	Field string
	Value string
	Err   error
}

func (e *StructuralError) Error() string {
	switch {
	case e.Field != "":
		return fmt.Sprintf("%s.%s = %q: %v", e.Kind, e.Field, e.Value, e.Err)
	case e.Value != "":
		return fmt.Sprintf("%s %q: %v", e.Kind, e.Value, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
}

func (e *StructuralError) Unwrap() error { return e.Err }

// IsPrecondition reports whether err carries a PreconditionError.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}

// IsStructural reports whether err carries a StructuralError.
func IsStructural(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}
