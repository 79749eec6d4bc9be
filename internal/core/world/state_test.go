package world

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnumNamesRoundTrip(t *testing.T) {
	for _, l := range Locations() {
		got, err := ParseLocation(l.String())
		require.NoError(t, err)
		assert.Equal(t, l, got)
	}
	for _, th := range Things() {
		got, err := ParseThing(th.String())
		require.NoError(t, err)
		assert.Equal(t, th, got)
	}
	for _, c := range Characters() {
		got, err := ParseCharacter(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	_, err := ParseLocation("Dungeon")
	assert.True(t, errors.Is(err, ErrUnknownName))
	assert.False(t, Location(42).Valid())
	assert.Equal(t, "Thing(9)", Thing(9).String())
}

func TestConnectIsSymmetricOneWayIsNot(t *testing.T) {
	s := NewState()
	s.Connect(Outside, Entrance)
	s.ConnectOneWay(Courtyard, Outside)

	assert.True(t, s.Connected(Outside, Entrance))
	assert.True(t, s.Connected(Entrance, Outside))
	assert.True(t, s.Connected(Courtyard, Outside))
	assert.False(t, s.Connected(Outside, Courtyard))
	assert.False(t, s.Connected(Hallway, Entrance))
}

func TestIsOpenMissingKeyIsClosed(t *testing.T) {
	s := NewState()
	assert.False(t, s.IsOpen(Chest))
	s.Open[Chest] = false
	assert.False(t, s.IsOpen(Chest))
	s.Open[Chest] = true
	assert.True(t, s.IsOpen(Chest))
}

func TestCloneIsDeep(t *testing.T) {
	s := Castle()
	c := s.Clone()
	require.True(t, s.Equal(c))

	c.CharacterPosition[Knight] = Courtyard
	c.Connect(Courtyard, Hallway)
	delete(c.ThingPosition, Potion)
	c.Has[Knight] = Potion

	assert.Equal(t, Outside, s.CharacterPosition[Knight])
	assert.False(t, s.Connected(Courtyard, Hallway))
	assert.Contains(t, s.ThingPosition, Potion)
	assert.Empty(t, s.Has)
	assert.False(t, s.Equal(c))
}

func TestDigestIgnoresDebug(t *testing.T) {
	a := Castle()
	b := Castle()
	b.Debug = false
	assert.Equal(t, a.Digest(), b.Digest())
	assert.Len(t, a.DigestString(), 16)
}

func TestDigestIgnoresEmptyAdjacency(t *testing.T) {
	a := NewState()
	a.Connect(Outside, Courtyard)
	b := a.Clone()
	b.ConnectedLocations[Hallway] = make(map[Location]struct{})

	assert.True(t, a.Equal(b), "no exits either way")
	assert.NotContains(t, b.Snapshot().Connections, "Hallway")

	rebuilt, err := b.Snapshot().Build()
	require.NoError(t, err)
	assert.True(t, b.Equal(rebuilt))
}

func TestTryAcquire(t *testing.T) {
	s := NewState()
	require.True(t, s.TryAcquire())
	assert.False(t, s.TryAcquire())
	s.Release()
	assert.True(t, s.TryAcquire())
	s.Release()

	// a clone starts unguarded even if the source is busy
	require.True(t, s.TryAcquire())
	c := s.Clone()
	assert.True(t, c.TryAcquire())
}

func TestStringListsFacts(t *testing.T) {
	s := Castle()
	s.Has[Knight] = Potion
	out := s.String()

	for _, line := range []string{
		"Debug: true",
		"Gate open: true",
		"Chest open: false",
		"Knight at Outside",
		"Merlin at Hallway",
		"Potion at Outside",
		"Outside connected to Courtyard",
		"Outside connected to Entrance",
		"Gate is between Entrance and Hallway",
		"Gate is between Hallway and Entrance",
		"Knight has Potion",
	} {
		assert.Contains(t, out, line)
	}
	assert.Equal(t, out, s.String(), "output must be stable")
	assert.True(t, strings.HasPrefix(out, "Debug: true\n"))
}
