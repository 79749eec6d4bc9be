package bt

import (
	"fmt"

	"github.com/zeusync/btengine/internal/core/world"
)

// FieldSpec describes one settable leaf field and the values it accepts.
type FieldSpec struct {
	Name   string
	Domain []string
}

// New builds a node of the given kind with every field set to None.
func New(kind Kind) (Task, error) {
	switch kind {
	case KindSequence:
		return NewSequence(), nil
	case KindSelector:
		return NewSelector(), nil
	case KindIsOpen:
		return &IsOpen{}, nil
	case KindIsHere:
		return &IsHere{}, nil
	case KindMoveTo:
		return &MoveTo{}, nil
	case KindOpen:
		return &Open{}, nil
	case KindPickUp:
		return &PickUp{}, nil
	default:
		return nil, &StructuralError{Kind: kind, Err: ErrUnknownKind}
	}
}

// AppendChild adds child as the last child of parent. Parent must be a
// composite. A node has at most one parent, so child must not be attached
// anywhere yet and must not be parent or one of its ancestors.
func AppendChild(parent, child Task) error {
	if parent == nil || child == nil {
		return &StructuralError{Err: ErrNilTask}
	}
	comp, ok := parent.(Composite)
	if !ok {
		return &StructuralError{Kind: parent.Kind(), Value: parent.String(), Err: ErrNotComposite}
	}
	if child.owner() != nil {
		return &StructuralError{Kind: parent.Kind(), Value: child.String(), Err: fmt.Errorf("%w: node already has a parent", ErrCycle)}
	}
	for p := comp; p != nil; p = p.owner() {
		if Task(p) == child {
			return &StructuralError{Kind: parent.Kind(), Value: child.String(), Err: ErrCycle}
		}
	}
	comp.appendChild(child)
	return nil
}

var (
	characterDomain = names(world.Characters())
	locationDomain  = names(world.Locations())
	thingDomain     = names(world.Things())
)

func names[T interface{ String() string }](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String()
	}
	return out
}

// Fields lists the settable fields of a kind. Composites have none.
func Fields(kind Kind) []FieldSpec {
	switch kind {
	case KindIsOpen:
		return []FieldSpec{{"what", thingDomain}}
	case KindIsHere:
		return []FieldSpec{{"character", characterDomain}, {"where", locationDomain}}
	case KindMoveTo:
		return []FieldSpec{{"mover", characterDomain}, {"where", locationDomain}}
	case KindOpen:
		return []FieldSpec{{"opener", characterDomain}, {"target", thingDomain}}
	case KindPickUp:
		return []FieldSpec{{"character", characterDomain}, {"target", thingDomain}}
	default:
		return nil
	}
}

// SetField sets a leaf field by name from its enumerated domain.
func SetField(task Task, field, value string) error {
	if task == nil {
		return &StructuralError{Err: ErrNilTask}
	}
	fail := func(err error) error {
		return &StructuralError{Kind: task.Kind(), Field: field, Value: value, Err: err}
	}
	character := func(dst *world.Character) error {
		c, err := world.ParseCharacter(value)
		if err != nil {
			return fail(ErrOutOfDomain)
		}
		*dst = c
		return nil
	}
	location := func(dst *world.Location) error {
		l, err := world.ParseLocation(value)
		if err != nil {
			return fail(ErrOutOfDomain)
		}
		*dst = l
		return nil
	}
	thing := func(dst *world.Thing) error {
		th, err := world.ParseThing(value)
		if err != nil {
			return fail(ErrOutOfDomain)
		}
		*dst = th
		return nil
	}

	switch n := task.(type) {
	case *IsOpen:
		if field == "what" {
			return thing(&n.What)
		}
	case *IsHere:
		switch field {
		case "character":
			return character(&n.Character)
		case "where":
			return location(&n.Where)
		}
	case *MoveTo:
		switch field {
		case "mover":
			return character(&n.Mover)
		case "where":
			return location(&n.Where)
		}
	case *Open:
		switch field {
		case "opener":
			return character(&n.Opener)
		case "target":
			return thing(&n.Target)
		}
	case *PickUp:
		switch field {
		case "character":
			return character(&n.Character)
		case "target":
			return thing(&n.Target)
		}
	}
	return fail(ErrUnknownField)
}

// FieldValues returns the current field values of a leaf, keyed like Fields.
func FieldValues(task Task) map[string]string {
	switch n := task.(type) {
	case *IsOpen:
		return map[string]string{"what": n.What.String()}
	case *IsHere:
		return map[string]string{"character": n.Character.String(), "where": n.Where.String()}
	case *MoveTo:
		return map[string]string{"mover": n.Mover.String(), "where": n.Where.String()}
	case *Open:
		return map[string]string{"opener": n.Opener.String(), "target": n.Target.String()}
	case *PickUp:
		return map[string]string{"character": n.Character.String(), "target": n.Target.String()}
	default:
		return nil
	}
}

func checkCharacter(kind Kind, field string, c world.Character) error {
	if !c.Valid() {
		return &StructuralError{Kind: kind, Field: field, Value: c.String(), Err: ErrOutOfDomain}
	}
	return nil
}

func checkLocation(kind Kind, field string, l world.Location) error {
	if !l.Valid() {
		return &StructuralError{Kind: kind, Field: field, Value: l.String(), Err: ErrOutOfDomain}
	}
	return nil
}

func checkThing(kind Kind, field string, th world.Thing) error {
	if !th.Valid() {
		return &StructuralError{Kind: kind, Field: field, Value: th.String(), Err: ErrOutOfDomain}
	}
	return nil
}

// NewIsOpen returns an IsOpen, rejecting things outside the domain.
func NewIsOpen(what world.Thing) (*IsOpen, error) {
	if err := checkThing(KindIsOpen, "what", what); err != nil {
		return nil, err
	}
	return &IsOpen{What: what}, nil
}

// NewIsHere returns an IsHere with both fields checked.
func NewIsHere(character world.Character, where world.Location) (*IsHere, error) {
	if err := checkCharacter(KindIsHere, "character", character); err != nil {
		return nil, err
	}
	if err := checkLocation(KindIsHere, "where", where); err != nil {
		return nil, err
	}
	return &IsHere{Character: character, Where: where}, nil
}

// NewMoveTo returns a MoveTo with both fields checked.
func NewMoveTo(mover world.Character, where world.Location) (*MoveTo, error) {
	if err := checkCharacter(KindMoveTo, "mover", mover); err != nil {
		return nil, err
	}
	if err := checkLocation(KindMoveTo, "where", where); err != nil {
		return nil, err
	}
	return &MoveTo{Mover: mover, Where: where}, nil
}

// NewOpen returns an Open with both fields checked.
func NewOpen(opener world.Character, target world.Thing) (*Open, error) {
	if err := checkCharacter(KindOpen, "opener", opener); err != nil {
		return nil, err
	}
	if err := checkThing(KindOpen, "target", target); err != nil {
		return nil, err
	}
	return &Open{Opener: opener, Target: target}, nil
}

// NewPickUp returns a PickUp with both fields checked.
func NewPickUp(character world.Character, target world.Thing) (*PickUp, error) {
	if err := checkCharacter(KindPickUp, "character", character); err != nil {
		return nil, err
	}
	if err := checkThing(KindPickUp, "target", target); err != nil {
		return nil, err
	}
	return &PickUp{Character: character, Target: target}, nil
}

// Validate checks every node of a tree: known kinds, in-domain fields, no
// node reachable twice, and every child owned by the composite it sits under.
func Validate(root Task) error {
	if root == nil {
		return &StructuralError{Err: ErrNilTask}
	}
	seen := make(map[Task]struct{})
	var firstErr error
	Walk(root, func(n Task, _ int) bool {
		if _, dup := seen[n]; dup {
			firstErr = &StructuralError{Kind: n.Kind(), Value: n.String(), Err: ErrCycle}
			return false
		}
		seen[n] = struct{}{}
		if err := validateNode(n); err != nil {
			firstErr = err
			return false
		}
		if comp, ok := n.(Composite); ok {
			for _, ch := range comp.Children() {
				if ch != nil && ch.owner() != comp {
					firstErr = &StructuralError{Kind: ch.Kind(), Value: ch.String(), Err: fmt.Errorf("%w: node shared with another parent", ErrCycle)}
					return false
				}
			}
		}
		return true
	})
	return firstErr
}

func validateNode(n Task) error {
	switch v := n.(type) {
	case *Sequence, *Selector:
		return nil
	case *IsOpen:
		return checkThing(KindIsOpen, "what", v.What)
	case *IsHere:
		if err := checkCharacter(KindIsHere, "character", v.Character); err != nil {
			return err
		}
		return checkLocation(KindIsHere, "where", v.Where)
	case *MoveTo:
		if err := checkCharacter(KindMoveTo, "mover", v.Mover); err != nil {
			return err
		}
		return checkLocation(KindMoveTo, "where", v.Where)
	case *Open:
		if err := checkCharacter(KindOpen, "opener", v.Opener); err != nil {
			return err
		}
		return checkThing(KindOpen, "target", v.Target)
	case *PickUp:
		if err := checkCharacter(KindPickUp, "character", v.Character); err != nil {
			return err
		}
		return checkThing(KindPickUp, "target", v.Target)
	default:
		return &StructuralError{Kind: n.Kind(), Err: ErrUnknownKind}
	}
}

// Walk visits nodes depth-first, left to right, with their depth (root is 0).
// Returning false from fn stops the walk.
func Walk(root Task, fn func(n Task, depth int) bool) {
	walk(root, 0, fn, make(map[Task]struct{}))
}

func walk(n Task, depth int, fn func(Task, int) bool, onPath map[Task]struct{}) bool {
	if n == nil {
		return true
	}
	if _, loop := onPath[n]; loop {
		// a cycle built by hand around AppendChild; visit once and stop descending
		return fn(n, depth)
	}
	if !fn(n, depth) {
		return false
	}
	comp, ok := n.(Composite)
	if !ok {
		return true
	}
	onPath[n] = struct{}{}
	defer delete(onPath, n)
	for _, ch := range comp.Children() {
		if !walk(ch, depth+1, fn, onPath) {
			return false
		}
	}
	return true
}

// Count returns the number of nodes in the tree.
func Count(root Task) int {
	n := 0
	Walk(root, func(Task, int) bool { n++; return true })
	return n
}
