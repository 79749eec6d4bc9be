package bt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/btengine/internal/core/world"
)

func TestNewEveryKind(t *testing.T) {
	for _, k := range Kinds() {
		n, err := New(k)
		require.NoError(t, err, k.String())
		assert.Equal(t, k, n.Kind())
		_, isComposite := n.(Composite)
		assert.Equal(t, k.Composite(), isComposite)
		if !k.Composite() {
			for _, v := range FieldValues(n) {
				assert.Equal(t, "None", v)
			}
		}
	}

	_, err := New(KindInvalid)
	assert.ErrorIs(t, err, ErrUnknownKind)
	_, err = New(Kind(42))
	assert.True(t, IsStructural(err))
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseKind("Parallel")
	assert.ErrorIs(t, err, ErrUnknownKind)
	assert.Equal(t, "Kind(200)", Kind(200).String())
}

func TestAppendChild(t *testing.T) {
	root := NewSequence()
	leaf := &IsOpen{What: world.Chest}
	require.NoError(t, AppendChild(root, leaf))
	require.NoError(t, AppendChild(root, &IsHere{Character: world.Knight, Where: world.Outside}))
	assert.Len(t, root.Children(), 2)
	assert.Same(t, leaf, root.Children()[0].(*IsOpen))

	err := AppendChild(leaf, NewSelector())
	assert.ErrorIs(t, err, ErrNotComposite)

	assert.ErrorIs(t, AppendChild(nil, leaf), ErrNilTask)
	assert.ErrorIs(t, AppendChild(root, nil), ErrNilTask)
}

func TestAppendChildRejectsCyclesAndSharing(t *testing.T) {
	root := NewSelector()
	inner := NewSequence()
	require.NoError(t, AppendChild(root, inner))

	assert.ErrorIs(t, AppendChild(root, root), ErrCycle, "self")
	assert.ErrorIs(t, AppendChild(inner, root), ErrCycle, "ancestor")
	assert.ErrorIs(t, AppendChild(root, inner), ErrCycle, "already a child")

	leaf := &IsOpen{What: world.Gate}
	require.NoError(t, AppendChild(inner, leaf))
	assert.ErrorIs(t, AppendChild(root, leaf), ErrCycle, "grandchild")
	assert.Equal(t, 3, Count(root))
}

func TestAppendChildRejectsSecondParent(t *testing.T) {
	leaf := &fixedCounter{IsOpen: &IsOpen{What: world.Gate}}
	a, b := NewSequence(), NewSequence()
	require.NoError(t, AppendChild(a, leaf))
	assert.ErrorIs(t, AppendChild(b, leaf), ErrCycle)

	root := NewSequence()
	require.NoError(t, AppendChild(root, a))
	require.NoError(t, AppendChild(root, b))
	assert.Equal(t, 4, Count(root))

	_, err := Evaluate(root, world.Castle(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, leaf.calls)
}

func TestValidateRejectsChildSharedAcrossConstructors(t *testing.T) {
	leaf := &IsOpen{What: world.Chest}
	a := NewSequence(leaf)
	b := NewSelector(leaf)
	assert.NoError(t, Validate(a))
	assert.ErrorIs(t, Validate(b), ErrCycle, "owned by a")
	assert.ErrorIs(t, Validate(NewSequence(a, b)), ErrCycle)
}

// fixedCounter counts how often the embedded condition is evaluated.
type fixedCounter struct {
	*IsOpen
	calls int
}

func (f *fixedCounter) Evaluate(TickContext) (bool, error) {
	f.calls++
	return true, nil
}

func TestSetField(t *testing.T) {
	n, err := New(KindMoveTo)
	require.NoError(t, err)
	require.NoError(t, SetField(n, "mover", "Knight"))
	require.NoError(t, SetField(n, "where", "Hallway"))
	assert.Equal(t, &MoveTo{Mover: world.Knight, Where: world.Hallway}, n)

	err = SetField(n, "where", "Dungeon")
	var se *StructuralError
	require.ErrorAs(t, err, &se)
	assert.ErrorIs(t, err, ErrOutOfDomain)
	assert.Equal(t, KindMoveTo, se.Kind)
	assert.Equal(t, "where", se.Field)
	assert.Equal(t, "Dungeon", se.Value)
	assert.Equal(t, world.Hallway, n.(*MoveTo).Where, "failed set leaves the field alone")

	assert.ErrorIs(t, SetField(n, "target", "Chest"), ErrUnknownField)
	assert.ErrorIs(t, SetField(NewSequence(), "what", "Chest"), ErrUnknownField)
	assert.ErrorIs(t, SetField(nil, "what", "Chest"), ErrNilTask)
}

func TestFieldsMatchFieldValues(t *testing.T) {
	for _, k := range Kinds() {
		n, err := New(k)
		require.NoError(t, err)
		values := FieldValues(n)
		specs := Fields(k)
		require.Len(t, values, len(specs), k.String())
		for _, spec := range specs {
			assert.Contains(t, values, spec.Name)
			assert.Contains(t, spec.Domain, "None")
			for _, v := range spec.Domain {
				assert.NoError(t, SetField(n, spec.Name, v))
			}
		}
	}
	assert.Equal(t, []string{"None", "Courtyard", "Outside", "Entrance", "Hallway"}, Fields(KindMoveTo)[1].Domain)
}

func TestTypedConstructorsValidate(t *testing.T) {
	_, err := NewMoveTo(world.Knight, world.Location(99))
	assert.ErrorIs(t, err, ErrOutOfDomain)
	_, err = NewIsHere(world.Character(7), world.Outside)
	assert.ErrorIs(t, err, ErrOutOfDomain)
	_, err = NewOpen(world.Knight, world.Thing(9))
	assert.ErrorIs(t, err, ErrOutOfDomain)
	_, err = NewPickUp(world.Character(3), world.Potion)
	assert.ErrorIs(t, err, ErrOutOfDomain)
	_, err = NewIsOpen(world.Thing(4))
	assert.ErrorIs(t, err, ErrOutOfDomain)

	mv, err := NewMoveTo(world.Merlin, world.Entrance)
	require.NoError(t, err)
	assert.Equal(t, "Merlin moves to Entrance", mv.String())
}

func TestValidate(t *testing.T) {
	good := NewSelector(
		NewSequence(&IsOpen{What: world.Gate}, &MoveTo{Mover: world.Knight, Where: world.Entrance}),
		&PickUp{Character: world.Knight, Target: world.Potion},
	)
	assert.NoError(t, Validate(good))

	bad := NewSequence(&Open{Opener: world.Knight, Target: world.Thing(12)})
	assert.ErrorIs(t, Validate(bad), ErrOutOfDomain)

	shared := &IsOpen{What: world.Chest}
	assert.ErrorIs(t, Validate(NewSequence(shared, shared)), ErrCycle)

	assert.ErrorIs(t, Validate(nil), ErrNilTask)
}

func TestWalkSurvivesHandBuiltCycle(t *testing.T) {
	root := NewSequence()
	root.children = append(root.children, root)
	assert.Equal(t, 2, Count(root))
	assert.ErrorIs(t, Validate(root), ErrCycle)
}

func TestFormat(t *testing.T) {
	root := NewSelector(
		NewSequence(&IsOpen{What: world.Chest}, &PickUp{Character: world.Knight, Target: world.Chest}),
		&IsHere{Character: world.Merlin, Where: world.Hallway},
	)
	want := strings.Join([]string{
		"Selector(2)",
		"  Sequence(2)",
		"    Is Chest open?",
		"    Knight picks up Chest",
		"  Is Merlin at Hallway?",
		"",
	}, "\n")
	assert.Equal(t, want, Format(root))
}
