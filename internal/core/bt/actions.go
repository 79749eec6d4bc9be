package bt

import (
	"fmt"

	"github.com/zeusync/btengine/internal/core/observability/log"
	"github.com/zeusync/btengine/internal/core/world"
)

// MoveTo walks Mover one step to Where.
type MoveTo struct {
	link
	Mover world.Character
	Where world.Location
}

func (n *MoveTo) Kind() Kind { return KindMoveTo }
func (n *MoveTo) task()      {}

func (n *MoveTo) String() string {
	return fmt.Sprintf("%s moves to %s", n.Mover, n.Where)
}

func (n *MoveTo) Evaluate(t TickContext) (bool, error) {
	from, err := positionOf(t, n, n.Mover)
	if err != nil {
		return false, err
	}
	if from == n.Where {
		t.debug("move fail: already there", log.Stringer("node", n))
		return false, nil
	}
	if !t.State.Connected(from, n.Where) {
		t.debug("move fail: not connected", log.Stringer("node", n), log.Stringer("from", from))
		return false, nil
	}
	if crossing, gated := t.State.BetweenLocations[n.Where]; gated {
		// Only the presence of the gate in the open map is checked, not its
		// value. A gate recorded as closed still lets the mover through.
		if _, known := t.State.Open[crossing.Thing]; !known {
			t.debug("move fail: gate", log.Stringer("node", n), log.Stringer("gate", crossing.Thing))
			return false, nil
		}
	}
	t.State.CharacterPosition[n.Mover] = n.Where
	t.debug("move success", log.Stringer("node", n), log.Stringer("from", from))
	return true, nil
}

// Open opens Target when Opener stands next to it and it is not open yet.
type Open struct {
	link
	Opener world.Character
	Target world.Thing
}

func (n *Open) Kind() Kind { return KindOpen }
func (n *Open) task()      {}

func (n *Open) String() string {
	return fmt.Sprintf("%s opens %s", n.Opener, n.Target)
}

func (n *Open) Evaluate(t TickContext) (bool, error) {
	at, err := positionOf(t, n, n.Opener)
	if err != nil {
		return false, err
	}
	where, placed := t.State.ThingPosition[n.Target]
	if !placed || where != at || t.State.IsOpen(n.Target) {
		t.debug("open fail", log.Stringer("node", n))
		return false, nil
	}
	t.State.Open[n.Target] = true
	t.debug("open success", log.Stringer("node", n))
	return true, nil
}

// PickUp moves Target into Character's single inventory slot, replacing
// whatever was held before.
type PickUp struct {
	link
	Character world.Character
	Target    world.Thing
}

func (n *PickUp) Kind() Kind { return KindPickUp }
func (n *PickUp) task()      {}

func (n *PickUp) String() string {
	return fmt.Sprintf("%s picks up %s", n.Character, n.Target)
}

func (n *PickUp) Evaluate(t TickContext) (bool, error) {
	at, err := positionOf(t, n, n.Character)
	if err != nil {
		return false, err
	}
	where, placed := t.State.ThingPosition[n.Target]
	if !placed || where != at {
		t.debug("pick up fail", log.Stringer("node", n))
		return false, nil
	}
	t.State.Has[n.Character] = n.Target
	delete(t.State.ThingPosition, n.Target)
	t.debug("pick up success", log.Stringer("node", n))
	return true, nil
}
