package world

// Castle builds the sample world: four rooms in a line, the gate between
// Entrance and Hallway, the knight outside with a potion and a closed chest
// in the courtyard.
func Castle() *State {
	s := NewState()
	s.Debug = true

	s.Open[Gate] = true
	s.Open[Chest] = false

	s.CharacterPosition[Knight] = Outside
	s.CharacterPosition[Merlin] = Hallway

	s.ThingPosition[Potion] = Outside
	s.ThingPosition[Chest] = Courtyard
	s.ThingPosition[Gate] = Entrance

	s.Connect(Courtyard, Outside)
	s.Connect(Outside, Entrance)
	s.Connect(Entrance, Hallway)

	s.SetCrossing(Entrance, Gate, Hallway)
	s.SetCrossing(Hallway, Gate, Entrance)

	return s
}
