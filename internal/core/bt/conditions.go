package bt

import (
	"fmt"

	"github.com/zeusync/btengine/internal/core/observability/log"
	"github.com/zeusync/btengine/internal/core/world"
)

// positionOf looks up a character's location. Every character in play must
// have one, so a missing entry aborts the evaluation.
func positionOf(t TickContext, node Task, c world.Character) (world.Location, error) {
	loc, ok := t.State.CharacterPosition[c]
	if !ok {
		return world.LocationNone, &PreconditionError{
			Kind: node.Kind(),
			Node: node.String(),
			Key:  fmt.Sprintf("character_position[%s]", c),
		}
	}
	return loc, nil
}

// IsHere checks whether Character stands at Where.
type IsHere struct {
	link
	Character world.Character
	Where     world.Location
}

func (n *IsHere) Kind() Kind { return KindIsHere }
func (n *IsHere) task()      {}

func (n *IsHere) String() string {
	return fmt.Sprintf("Is %s at %s?", n.Character, n.Where)
}

func (n *IsHere) Evaluate(t TickContext) (bool, error) {
	at, err := positionOf(t, n, n.Character)
	if err != nil {
		return false, err
	}
	ok := at == n.Where
	t.debug("is here", log.Stringer("node", n), log.Bool("result", ok))
	return ok, nil
}

// IsOpen checks whether What is open. Things missing from the open map are closed.
type IsOpen struct {
	link
	What world.Thing
}

func (n *IsOpen) Kind() Kind { return KindIsOpen }
func (n *IsOpen) task()      {}

func (n *IsOpen) String() string {
	return fmt.Sprintf("Is %s open?", n.What)
}

func (n *IsOpen) Evaluate(t TickContext) (bool, error) {
	ok := t.State.IsOpen(n.What)
	t.debug("is open", log.Stringer("node", n), log.Bool("result", ok))
	return ok, nil
}
