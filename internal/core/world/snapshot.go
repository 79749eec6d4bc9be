package world

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
	"gopkg.in/yaml.v3"
)

// Snapshot is a name-keyed view of a State. It is what runners report and
// what scenario files contain, so State -> Snapshot -> State keeps every
// fact. A location with an empty adjacency set has no exits, same as one
// with no entry, so empty sets are not written.
type Snapshot struct {
	Debug       bool                   `json:"debug" yaml:"debug"`
	Open        map[string]bool        `json:"open,omitempty" yaml:"open,omitempty"`
	Characters  map[string]string      `json:"characters,omitempty" yaml:"characters,omitempty"`
	Things      map[string]string      `json:"things,omitempty" yaml:"things,omitempty"`
	Connections map[string][]string    `json:"connections,omitempty" yaml:"connections,omitempty"`
	Crossings   map[string]CrossingDoc `json:"crossings,omitempty" yaml:"crossings,omitempty"`
	Has         map[string]string      `json:"has,omitempty" yaml:"has,omitempty"`
}

type CrossingDoc struct {
	Thing string `json:"thing" yaml:"thing"`
	Other string `json:"other" yaml:"other"`
}

func (s *State) Snapshot() Snapshot {
	snap := Snapshot{Debug: s.Debug}
	if len(s.Open) > 0 {
		snap.Open = make(map[string]bool, len(s.Open))
		for k, v := range s.Open {
			snap.Open[k.String()] = v
		}
	}
	if len(s.CharacterPosition) > 0 {
		snap.Characters = make(map[string]string, len(s.CharacterPosition))
		for k, v := range s.CharacterPosition {
			snap.Characters[k.String()] = v.String()
		}
	}
	if len(s.ThingPosition) > 0 {
		snap.Things = make(map[string]string, len(s.ThingPosition))
		for k, v := range s.ThingPosition {
			snap.Things[k.String()] = v.String()
		}
	}
	if len(s.ConnectedLocations) > 0 {
		snap.Connections = make(map[string][]string, len(s.ConnectedLocations))
		for from, set := range s.ConnectedLocations {
			if len(set) == 0 {
				continue
			}
			names := make([]string, 0, len(set))
			for _, to := range sortedKeys(set) {
				names = append(names, to.String())
			}
			snap.Connections[from.String()] = names
		}
	}
	if len(s.BetweenLocations) > 0 {
		snap.Crossings = make(map[string]CrossingDoc, len(s.BetweenLocations))
		for at, c := range s.BetweenLocations {
			snap.Crossings[at.String()] = CrossingDoc{Thing: c.Thing.String(), Other: c.Other.String()}
		}
	}
	if len(s.Has) > 0 {
		snap.Has = make(map[string]string, len(s.Has))
		for k, v := range s.Has {
			snap.Has[k.String()] = v.String()
		}
	}
	return snap
}

// Build turns a snapshot back into a State, rejecting unknown names.
func (snap Snapshot) Build() (*State, error) {
	s := NewState()
	s.Debug = snap.Debug

	for name, open := range snap.Open {
		thing, err := ParseThing(name)
		if err != nil {
			return nil, fmt.Errorf("open: %w", err)
		}
		s.Open[thing] = open
	}
	for name, at := range snap.Characters {
		character, err := ParseCharacter(name)
		if err != nil {
			return nil, fmt.Errorf("characters: %w", err)
		}
		loc, err := ParseLocation(at)
		if err != nil {
			return nil, fmt.Errorf("characters[%s]: %w", name, err)
		}
		s.CharacterPosition[character] = loc
	}
	for name, at := range snap.Things {
		thing, err := ParseThing(name)
		if err != nil {
			return nil, fmt.Errorf("things: %w", err)
		}
		loc, err := ParseLocation(at)
		if err != nil {
			return nil, fmt.Errorf("things[%s]: %w", name, err)
		}
		s.ThingPosition[thing] = loc
	}
	for name, targets := range snap.Connections {
		from, err := ParseLocation(name)
		if err != nil {
			return nil, fmt.Errorf("connections: %w", err)
		}
		// an explicit empty list still records the location as a dead end
		if _, ok := s.ConnectedLocations[from]; !ok {
			s.ConnectedLocations[from] = make(map[Location]struct{}, len(targets))
		}
		for _, t := range targets {
			to, err := ParseLocation(t)
			if err != nil {
				return nil, fmt.Errorf("connections[%s]: %w", name, err)
			}
			s.ConnectOneWay(from, to)
		}
	}
	for name, c := range snap.Crossings {
		at, err := ParseLocation(name)
		if err != nil {
			return nil, fmt.Errorf("crossings: %w", err)
		}
		thing, err := ParseThing(c.Thing)
		if err != nil {
			return nil, fmt.Errorf("crossings[%s]: %w", name, err)
		}
		other, err := ParseLocation(c.Other)
		if err != nil {
			return nil, fmt.Errorf("crossings[%s]: %w", name, err)
		}
		s.SetCrossing(at, thing, other)
	}
	for name, held := range snap.Has {
		character, err := ParseCharacter(name)
		if err != nil {
			return nil, fmt.Errorf("has: %w", err)
		}
		thing, err := ParseThing(held)
		if err != nil {
			return nil, fmt.Errorf("has[%s]: %w", name, err)
		}
		s.Has[character] = thing
	}
	return s, nil
}

// Digest hashes the facts of the state, Debug excluded. Two states with the
// same facts always share a digest.
func (s *State) Digest() uint64 {
	snap := s.Snapshot()
	snap.Debug = false
	// encoding/json writes map keys sorted, which makes this canonical.
	b, err := json.Marshal(snap)
	if err != nil {
		panic(fmt.Sprintf("world: marshal snapshot: %v", err))
	}
	return xxhash.Sum64(b)
}

// DigestString formats Digest the way reports print it.
func (s *State) DigestString() string {
	return fmt.Sprintf("%016x", s.Digest())
}

// LoadYAML reads a scenario document. JSON is valid YAML, so this handles both.
func LoadYAML(r io.Reader) (*State, error) {
	var snap Snapshot
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&snap); err != nil {
		if err == io.EOF {
			return NewState(), nil
		}
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	return snap.Build()
}

// LoadJSON reads a scenario document strictly as JSON.
func LoadJSON(r io.Reader) (*State, error) {
	var snap Snapshot
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	return snap.Build()
}

// WriteYAML writes the state as a scenario document.
func WriteYAML(w io.Writer, s *State) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s.Snapshot()); err != nil {
		return err
	}
	return enc.Close()
}
