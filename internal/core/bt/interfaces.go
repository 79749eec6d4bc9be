// Package bt holds the behavior tree model and its evaluation rules.
//
// A tree is built from a closed set of node kinds: two composites
// (Sequence, Selector) and five leaves over the world package's State
// (IsOpen, IsHere, MoveTo, Open, PickUp). Evaluation is a single
// synchronous depth-first pass that returns a bool; side effects from
// leaves that ran before a composite stopped are kept.
package bt

import (
	"fmt"

	"github.com/zeusync/btengine/internal/core/observability/log"
	"github.com/zeusync/btengine/internal/core/world"
)

// Kind tags each node variant. The numeric values are part of the
// persisted encoding and must not be reordered.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindSequence
	KindSelector
	KindIsOpen
	KindIsHere
	KindMoveTo
	KindOpen
	KindPickUp
)

var kindNames = [...]string{"Invalid", "Sequence", "Selector", "IsOpen", "IsHere", "MoveTo", "Open", "PickUp"}

// Kinds lists every constructible kind in declaration order.
func Kinds() []Kind {
	return []Kind{KindSequence, KindSelector, KindIsOpen, KindIsHere, KindMoveTo, KindOpen, KindPickUp}
}

// Valid reports whether k is one of the constructible kinds.
func (k Kind) Valid() bool { return k > KindInvalid && int(k) < len(kindNames) }

// Composite reports whether nodes of this kind own children.
func (k Kind) Composite() bool { return k == KindSequence || k == KindSelector }

// String returns the kind name used in documents, e.g. "MoveTo".
func (k Kind) String() string {
	if int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
	return kindNames[k]
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if k.String() == s {
			return k, nil
		}
	}
	return KindInvalid, &StructuralError{Value: s, Err: ErrUnknownKind}
}

// TickContext is what every node sees during evaluation.
type TickContext struct {
	State *world.State
	// Log receives debug diagnostics when State.Debug is set. May be nil.
	Log log.Log
}

func (t TickContext) debug(msg string, fields ...log.Field) {
	if t.Log == nil || !t.State.Debug {
		return
	}
	t.Log.Debug(msg, fields...)
}

// Task is a node of the tree. The set of implementations is closed to this
// package; callers switch on the concrete type or on Kind.
type Task interface {
	Kind() Kind
	// Evaluate runs the node once. A false result is an ordinary outcome;
	// the error is reserved for precondition violations.
	Evaluate(t TickContext) (bool, error)
	String() string

	task()
	owner() Composite
	adopt(parent Composite)
}

// link records the composite a node was attached to. It is embedded in
// every node type.
type link struct {
	parent Composite
}

func (l *link) owner() Composite       { return l.parent }
func (l *link) adopt(parent Composite) { l.parent = parent }

// Composite is a Task with an ordered list of children.
type Composite interface {
	Task
	Children() []Task

	appendChild(child Task)
}

var (
	_ Composite = (*Sequence)(nil)
	_ Composite = (*Selector)(nil)
	_ Task      = (*IsOpen)(nil)
	_ Task      = (*IsHere)(nil)
	_ Task      = (*MoveTo)(nil)
	_ Task      = (*Open)(nil)
	_ Task      = (*PickUp)(nil)
)
