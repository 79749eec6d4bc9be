package world

import "fmt"

// Location is a place a character or thing can be.
type Location uint8

const (
	LocationNone Location = iota
	Courtyard
	Outside
	Entrance
	Hallway
)

var locationNames = [...]string{"None", "Courtyard", "Outside", "Entrance", "Hallway"}

// Locations returns every Location, None included, in declaration order.
func Locations() []Location {
	out := make([]Location, len(locationNames))
	for i := range locationNames {
		out[i] = Location(i)
	}
	return out
}

func (l Location) Valid() bool { return int(l) < len(locationNames) }

func (l Location) String() string {
	if !l.Valid() {
		return fmt.Sprintf("Location(%d)", uint8(l))
	}
	return locationNames[l]
}

func ParseLocation(s string) (Location, error) {
	for i, name := range locationNames {
		if name == s {
			return Location(i), nil
		}
	}
	return LocationNone, fmt.Errorf("%w: location %q", ErrUnknownName, s)
}

// Thing is an object in the world that can be opened, carried or act as a gate.
type Thing uint8

const (
	ThingNone Thing = iota
	Gate
	Potion
	Chest
)

var thingNames = [...]string{"None", "Gate", "Potion", "Chest"}

func Things() []Thing {
	out := make([]Thing, len(thingNames))
	for i := range thingNames {
		out[i] = Thing(i)
	}
	return out
}

func (t Thing) Valid() bool { return int(t) < len(thingNames) }

func (t Thing) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Thing(%d)", uint8(t))
	}
	return thingNames[t]
}

func ParseThing(s string) (Thing, error) {
	for i, name := range thingNames {
		if name == s {
			return Thing(i), nil
		}
	}
	return ThingNone, fmt.Errorf("%w: thing %q", ErrUnknownName, s)
}

// Character is an agent that moves and acts.
type Character uint8

const (
	CharacterNone Character = iota
	Knight
	Merlin
)

var characterNames = [...]string{"None", "Knight", "Merlin"}

func Characters() []Character {
	out := make([]Character, len(characterNames))
	for i := range characterNames {
		out[i] = Character(i)
	}
	return out
}

func (c Character) Valid() bool { return int(c) < len(characterNames) }

func (c Character) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Character(%d)", uint8(c))
	}
	return characterNames[c]
}

func ParseCharacter(s string) (Character, error) {
	for i, name := range characterNames {
		if name == s {
			return Character(i), nil
		}
	}
	return CharacterNone, fmt.Errorf("%w: character %q", ErrUnknownName, s)
}

// Crossing marks that entering a location from Other depends on Thing.
type Crossing struct {
	Thing Thing
	Other Location
}
