package engine

// Element represents the content of a single board cell.
// The integer values are the stable wire codes used by the board string
// format; reordering them is a breaking format change.
type Element uint8

const (
	Colour0 Element = iota
	Colour1
	Colour2
	Colour3
	Colour4
	Colour5
	Colour6
	Colour7
	Colour8
	Colour9
	Colour10
	Colour11
	ColourGoal
	Agent
	Empty
	// Wall is never stored on a live board. It exists only for the synthetic
	// border in the observation tensor and the rendered image.
	Wall
)

const (
	// NumElements counts every Element variant, including Wall.
	NumElements = 16
	// NumColours counts the key colours plus the goal colour.
	NumColours = 13
	// NumBoardElements counts the elements a board string may contain
	// (everything except Wall).
	NumBoardElements = 15
	// NumActions is the size of the action space.
	NumActions = 4
	// NumChannels is the observation channel count: one channel per
	// non-empty element plus a one-hot over the held inventory colour.
	NumChannels = NumElements - 1 + NumColours
)

// elementNames maps elements to their single-character board notation.
var elementNames = [NumElements]string{
	"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l",
	"!", // ColourGoal
	"@", // Agent
	" ", // Empty
	"#", // Wall
}

// String returns the single-character notation for the element.
func (e Element) String() string {
	if int(e) >= NumElements {
		return "?"
	}
	return elementNames[e]
}

// ParseElement converts single-character notation back to an Element.
func ParseElement(s string) (Element, error) {
	for i, n := range elementNames {
		if n == s {
			return Element(i), nil
		}
	}
	return 0, ErrInvalidArgument
}

// IsColour reports whether the element is a key colour or the goal colour,
// i.e. something that can be held in the inventory.
func (e Element) IsColour() bool {
	return e <= ColourGoal
}

// Action is one of the four movement directions.
type Action uint8

const (
	Up Action = iota
	Right
	Down
	Left
)

// AllActions is the fixed action set. Every action is always legal; moving
// into a wall or out of bounds is a no-op, not an error.
var AllActions = []Action{Up, Right, Down, Left}

// actionOffsets maps each action to its (column, row) delta.
var actionOffsets = [NumActions]struct{ dCol, dRow int }{
	{0, -1}, // Up
	{1, 0},  // Right
	{0, 1},  // Down
	{-1, 0}, // Left
}

var actionNames = [NumActions]string{"up", "right", "down", "left"}

// String returns the lowercase direction name.
func (a Action) String() string {
	if int(a) >= NumActions {
		return "invalid"
	}
	return actionNames[a]
}

// ParseAction converts a direction name to an Action. It accepts the
// lowercase names used across the API surface.
func ParseAction(name string) (Action, error) {
	for i, n := range actionNames {
		if n == name {
			return Action(i), nil
		}
	}
	return 0, ErrInvalidArgument
}

// GameConfig represents a game configuration loaded from JSON.
type GameConfig struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	// Board is the level in wire format: "rows|cols|e0|e1|..." with decimal
	// element codes in row-major order.
	Board string `json:"board"`
	// Seed feeds the Zobrist hash table generator. Two engines built from
	// the same board and seed produce identical hash trajectories.
	Seed int64 `json:"seed"`
	// CollectFirstKey moves the lowest-index bare key into the inventory at
	// reset instead of leaving it on the board.
	CollectFirstKey bool `json:"collect_first_key"`
}
