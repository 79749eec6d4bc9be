package world

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
)

var (
	ErrUnknownName        = errors.New("unknown name")
	ErrEvaluationInFlight = errors.New("an evaluation is already running against this state")
)

// State is the mutable world a behavior tree reads and writes.
// It holds no locks: callers must not evaluate two trees against the same
// State at the same time. TryAcquire lets the engine detect that mistake.
type State struct {
	// Debug enables diagnostic output during evaluation.
	Debug bool

	// Open maps things to whether they are open. A missing key means closed.
	Open map[Thing]bool

	CharacterPosition map[Character]Location

	// ThingPosition loses its entry when the thing is picked up.
	ThingPosition map[Thing]Location

	ConnectedLocations map[Location]map[Location]struct{}

	// BetweenLocations maps a location to the thing guarding entry into it
	// and the location on the other side.
	BetweenLocations map[Location]Crossing

	// Has is a single-slot inventory per character.
	Has map[Character]Thing

	busy atomic.Bool
}

func NewState() *State {
	return &State{
		Open:               make(map[Thing]bool),
		CharacterPosition:  make(map[Character]Location),
		ThingPosition:      make(map[Thing]Location),
		ConnectedLocations: make(map[Location]map[Location]struct{}),
		BetweenLocations:   make(map[Location]Crossing),
		Has:                make(map[Character]Thing),
	}
}

// TryAcquire marks the state as being evaluated. It reports false when
// another evaluation already holds it.
func (s *State) TryAcquire() bool {
	return s.busy.CompareAndSwap(false, true)
}

func (s *State) Release() {
	s.busy.Store(false)
}

// Connect links a and b in both directions.
func (s *State) Connect(a, b Location) {
	s.ConnectOneWay(a, b)
	s.ConnectOneWay(b, a)
}

func (s *State) ConnectOneWay(from, to Location) {
	if s.ConnectedLocations == nil {
		s.ConnectedLocations = make(map[Location]map[Location]struct{})
	}
	set, ok := s.ConnectedLocations[from]
	if !ok {
		set = make(map[Location]struct{})
		s.ConnectedLocations[from] = set
	}
	set[to] = struct{}{}
}

// Connected reports whether to is reachable in one step from from.
func (s *State) Connected(from, to Location) bool {
	_, ok := s.ConnectedLocations[from][to]
	return ok
}

// SetCrossing records that entering at requires thing, with other on the far side.
func (s *State) SetCrossing(at Location, thing Thing, other Location) {
	if s.BetweenLocations == nil {
		s.BetweenLocations = make(map[Location]Crossing)
	}
	s.BetweenLocations[at] = Crossing{Thing: thing, Other: other}
}

// IsOpen reports whether thing has an entry in Open that is true.
func (s *State) IsOpen(thing Thing) bool {
	return s.Open[thing]
}

// Clone returns a deep copy. The evaluation guard is not copied.
func (s *State) Clone() *State {
	c := NewState()
	c.Debug = s.Debug
	for k, v := range s.Open {
		c.Open[k] = v
	}
	for k, v := range s.CharacterPosition {
		c.CharacterPosition[k] = v
	}
	for k, v := range s.ThingPosition {
		c.ThingPosition[k] = v
	}
	for from, set := range s.ConnectedLocations {
		dst := make(map[Location]struct{}, len(set))
		for to := range set {
			dst[to] = struct{}{}
		}
		c.ConnectedLocations[from] = dst
	}
	for k, v := range s.BetweenLocations {
		c.BetweenLocations[k] = v
	}
	for k, v := range s.Has {
		c.Has[k] = v
	}
	return c
}

// Equal compares the facts of two states, ignoring Debug.
func (s *State) Equal(o *State) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.Digest() == o.Digest()
}

// String renders the state one fact per line in a stable order.
func (s *State) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Debug: %t\n", s.Debug)

	for _, thing := range sortedKeys(s.Open) {
		fmt.Fprintf(&b, "%s open: %t\n", thing, s.Open[thing])
	}
	for _, character := range sortedKeys(s.CharacterPosition) {
		fmt.Fprintf(&b, "%s at %s\n", character, s.CharacterPosition[character])
	}
	for _, thing := range sortedKeys(s.ThingPosition) {
		fmt.Fprintf(&b, "%s at %s\n", thing, s.ThingPosition[thing])
	}
	for _, from := range sortedKeys(s.ConnectedLocations) {
		for _, to := range sortedKeys(s.ConnectedLocations[from]) {
			fmt.Fprintf(&b, "%s connected to %s\n", from, to)
		}
	}
	for _, at := range sortedKeys(s.BetweenLocations) {
		c := s.BetweenLocations[at]
		fmt.Fprintf(&b, "%s is between %s and %s\n", c.Thing, at, c.Other)
	}
	for _, character := range sortedKeys(s.Has) {
		fmt.Fprintf(&b, "%s has %s\n", character, s.Has[character])
	}
	return b.String()
}

func sortedKeys[K ~uint8, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
