package btadapter

import (
	"testing"

	gobt "github.com/joeycumines/go-behaviortree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/btengine/internal/core/bt"
	"github.com/zeusync/btengine/internal/core/world"
)

func trees() map[string]bt.Task {
	return map[string]bt.Task{
		"empty sequence": bt.NewSequence(),
		"empty selector": bt.NewSelector(),
		"walk in": bt.NewSequence(
			&bt.MoveTo{Mover: world.Knight, Where: world.Entrance},
			&bt.MoveTo{Mover: world.Knight, Where: world.Hallway},
		),
		"partial": bt.NewSequence(
			&bt.MoveTo{Mover: world.Knight, Where: world.Courtyard},
			&bt.Open{Opener: world.Knight, Target: world.Gate},
			&bt.MoveTo{Mover: world.Knight, Where: world.Outside},
		),
		"fallback": bt.NewSelector(
			bt.NewSequence(
				&bt.IsOpen{What: world.Chest},
				&bt.PickUp{Character: world.Knight, Target: world.Chest},
			),
			bt.NewSequence(
				&bt.MoveTo{Mover: world.Knight, Where: world.Courtyard},
				&bt.Open{Opener: world.Knight, Target: world.Chest},
				&bt.PickUp{Character: world.Knight, Target: world.Chest},
			),
		),
	}
}

func TestCompileMatchesEvaluate(t *testing.T) {
	for name, root := range trees() {
		t.Run(name, func(t *testing.T) {
			direct, viaLib := world.Castle(), world.Castle()

			want, err := bt.Evaluate(root, direct, nil)
			require.NoError(t, err)
			got, err := Tick(root, viaLib, nil)
			require.NoError(t, err)

			assert.Equal(t, want, got)
			assert.Equal(t, direct.Digest(), viaLib.Digest())
		})
	}
}

func TestCompiledNodeStatus(t *testing.T) {
	s := world.Castle()
	node := Compile(&bt.IsHere{Character: world.Knight, Where: world.Outside}, s, nil)
	st, err := node.Tick()
	require.NoError(t, err)
	assert.Equal(t, gobt.Success, st)

	s.CharacterPosition[world.Knight] = world.Hallway
	st, err = node.Tick()
	require.NoError(t, err)
	assert.Equal(t, gobt.Failure, st, "the compiled node reads the live state")
}

func TestTickPropagatesPreconditionErrors(t *testing.T) {
	s := world.NewState()
	_, err := Tick(bt.NewSelector(&bt.IsHere{Character: world.Merlin, Where: world.Hallway}), s, nil)
	assert.True(t, bt.IsPrecondition(err))
	assert.True(t, s.TryAcquire(), "guard released on error")
}

func TestTickGuards(t *testing.T) {
	_, err := Tick(nil, world.NewState(), nil)
	assert.ErrorIs(t, err, bt.ErrNilTask)
	_, err = Tick(bt.NewSequence(), nil, nil)
	assert.ErrorIs(t, err, bt.ErrNilState)

	s := world.NewState()
	require.True(t, s.TryAcquire())
	_, err = Tick(bt.NewSequence(), s, nil)
	assert.ErrorIs(t, err, world.ErrEvaluationInFlight)
}
