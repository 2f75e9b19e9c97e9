package engine

import "testing"

func TestObservationShape(t *testing.T) {
	e, err := NewEngine(testConfig("2|5|14|14|14|14|14|13|02|14|04|02"))
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	shape := e.ObservationShape()
	want := [3]int{NumChannels, 7, 4}
	if shape != want {
		t.Fatalf("observation shape = %v, want %v", shape, want)
	}

	obs := e.GetObservation()
	if len(obs) != NumChannels*7*4 {
		t.Errorf("observation length = %d, want %d", len(obs), NumChannels*7*4)
	}
}

func TestObservationEncodesBoardAndBorder(t *testing.T) {
	e := NewEngineWithDefaults()
	obs := e.GetObservation()

	paddedCols := 3 + 2
	paddedRows := 3 + 2
	plane := paddedRows * paddedCols

	at := func(channel, row, col int) float32 {
		return obs[channel*plane+row*paddedCols+col]
	}

	// Border cells live in the wall channel, which takes Empty's slot.
	wall := boardChannel(Wall)
	for c := 0; c < paddedCols; c++ {
		if at(wall, 0, c) != 1 || at(wall, paddedRows-1, c) != 1 {
			t.Fatalf("missing wall border at column %d", c)
		}
	}
	for r := 0; r < paddedRows; r++ {
		if at(wall, r, 0) != 1 || at(wall, r, paddedCols-1) != 1 {
			t.Fatalf("missing wall border at row %d", r)
		}
	}
	if at(wall, 1, 1) != 0 {
		t.Error("interior cell marked as wall")
	}

	// Default board: bare key Colour0 at (0,0), agent at (0,2), goal at
	// (2,0), lock Colour0 at (2,1), all shifted +1 for the border.
	if at(int(Colour0), 1, 1) != 1 {
		t.Error("missing bare key in its colour channel")
	}
	if at(int(Agent), 1, 3) != 1 {
		t.Error("missing agent in the agent channel")
	}
	if at(int(ColourGoal), 3, 1) != 1 {
		t.Error("missing goal in the goal channel")
	}
	if at(int(Colour0), 3, 2) != 1 {
		t.Error("missing lock in its colour channel")
	}

	// Empty interior cells set no board channel.
	for ch := 0; ch < NumElements-1; ch++ {
		if ch == wall {
			continue
		}
		if at(ch, 2, 2) != 0 {
			t.Errorf("empty cell set in channel %d", ch)
		}
	}
}

func TestObservationInventoryChannels(t *testing.T) {
	e := NewEngineWithDefaults()
	obs := e.GetObservation()
	plane := 5 * 5

	for colour := 0; colour < NumColours; colour++ {
		channel := NumElements - 1 + colour
		for i := 0; i < plane; i++ {
			if obs[channel*plane+i] != 0 {
				t.Fatalf("inventory channel %d set while holding nothing", colour)
			}
		}
	}

	// Pick up the bare key Colour0 at index 0 (agent starts at index 2).
	e.ApplyAction(Left)
	e.ApplyAction(Left)
	if colour, holding := e.GetInventory(); !holding || colour != Colour0 {
		t.Fatal("expected agent to hold the bare key")
	}

	obs = e.GetObservation()
	held := NumElements - 1 + int(Colour0)
	for i := 0; i < plane; i++ {
		if obs[held*plane+i] != 1 {
			t.Fatalf("held colour plane not filled at offset %d", i)
		}
	}
	for colour := 1; colour < NumColours; colour++ {
		channel := NumElements - 1 + colour
		if obs[channel*plane] != 0 {
			t.Errorf("inventory channel %d set for a colour not held", colour)
		}
	}
}

func TestEnvironmentObservationOmitsInventory(t *testing.T) {
	e := NewEngineWithDefaults()
	e.ApplyAction(Left)
	e.ApplyAction(Left)

	shape := e.EnvironmentObservationShape()
	want := [3]int{NumElements - 1, 5, 5}
	if shape != want {
		t.Fatalf("environment observation shape = %v, want %v", shape, want)
	}

	env := e.GetEnvironmentObservation()
	if len(env) != (NumElements-1)*25 {
		t.Fatalf("environment observation length = %d", len(env))
	}

	full := e.GetObservation()
	for i, v := range env {
		if v != full[i] {
			t.Fatalf("board channels differ from full observation at %d", i)
		}
	}
}
