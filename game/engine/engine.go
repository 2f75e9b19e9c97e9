package engine

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrInvalidFormat indicates a malformed board string or serialized
	// state. It is only returned during construction, reset, or decoding,
	// never by ApplyAction.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrInvalidArgument indicates a value that is out of range for the
	// operation, such as an unknown direction name or a SetKey call that
	// violates the inventory rules.
	ErrInvalidArgument = errors.New("invalid argument")
)

// sharedState holds the per-episode configuration shared by every engine
// cloned from the same starting point. It is never mutated after Reset, so
// clones may reference it without copying.
type sharedState struct {
	config *GameConfig
	// seed is the value the hash tables were generated from. It tracks
	// config.Seed through Reset but diverges after SetResetConfig until the
	// next Reset, keeping the live hash coherent in between.
	seed int64
	rows int
	cols int
	// zobristBoard holds one 64-bit value per (element, cell) fact, indexed
	// by element*rows*cols + cell.
	zobristBoard []uint64
	// zobristInventory holds one value per holdable colour.
	zobristInventory [NumColours]uint64
}

// localState is the mutable per-instance state. Clone deep-copies it.
type localState struct {
	hash         uint64
	rewardColour uint64
	rewardIndex  uint64
	agentIdx     int
	board        []Element
	inventory    Element
	holding      bool
	keyIndices   map[int]struct{}
	lockIndices  map[int]struct{}
}

// GameEngine is the game-state engine: a board, an inventory, the derived
// key/lock index sets, and an incrementally maintained Zobrist hash. All
// mutation goes through ApplyAction, Reset, and SetKey.
type GameEngine struct {
	shared *sharedState
	local  localState
}

// NewEngine creates an engine from the provided configuration. It returns
// ErrInvalidFormat (wrapped) if the board string is malformed.
func NewEngine(config *GameConfig) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	e := &GameEngine{shared: &sharedState{config: config}}
	if err := e.Reset(); err != nil {
		return nil, err
	}
	return e, nil
}

// NewEngineWithDefaults creates an engine running the default board.
func NewEngineWithDefaults() *GameEngine {
	e, err := NewEngine(DefaultGameConfig())
	if err != nil {
		// The default config is a compile-time constant; it always parses.
		panic(err)
	}
	return e
}

// Reset rebuilds the board, the key/lock index sets, the hash table, and the
// initial hash from the configured board string.
func (e *GameEngine) Reset() error {
	e.local = localState{}

	if err := e.parseBoard(); err != nil {
		return err
	}
	e.initKeyLockIndices()
	e.shared.seed = e.shared.config.Seed
	e.initZobrist()

	// Initial hash: one contribution per occupied cell.
	for i, el := range e.local.board {
		if el != Empty {
			e.local.hash ^= e.boardFact(el, i)
		}
	}

	if e.shared.config.CollectFirstKey {
		e.collectFirstKey()
	}
	return nil
}

// collectFirstKey moves the lowest-index bare key into the inventory.
func (e *GameEngine) collectFirstKey() {
	first := -1
	for idx := range e.local.keyIndices {
		if first == -1 || idx < first {
			first = idx
		}
	}
	if first == -1 {
		return
	}
	delete(e.local.keyIndices, first)
	e.addToInventory(first)
}

// IsSolution reports whether the goal key is held. Once true it stays true:
// no transition rule ever removes the goal colour from the inventory.
func (e *GameEngine) IsSolution() bool {
	return e.local.holding && e.local.inventory == ColourGoal
}

// LegalActions returns the fixed four-direction action set regardless of
// state; blocked moves are absorbed as no-ops by ApplyAction.
func (e *GameEngine) LegalActions() []Action {
	return AllActions
}

// GetHash returns the incrementally maintained Zobrist hash of the current
// board and inventory. Suitable as a map key for transposition lookups.
func (e *GameEngine) GetHash() uint64 {
	return e.local.hash
}

// GetRewardSignal returns the transient signal set by the last ApplyAction:
// colour code + 1 when byColour, otherwise the post-move agent index + 1.
// Zero means no key was collected and no lock was opened.
func (e *GameEngine) GetRewardSignal(byColour bool) uint64 {
	if byColour {
		return e.local.rewardColour
	}
	return e.local.rewardIndex
}

// GetAgentIndex returns the flat board index of the agent.
func (e *GameEngine) GetAgentIndex() int {
	return e.local.agentIdx
}

// Rows returns the board height.
func (e *GameEngine) Rows() int {
	return e.shared.rows
}

// Cols returns the board width.
func (e *GameEngine) Cols() int {
	return e.shared.cols
}

// GetConfig returns the configuration the engine was built from.
func (e *GameEngine) GetConfig() *GameConfig {
	return e.shared.config
}

// GetInventory returns the held colour, if any.
func (e *GameEngine) GetInventory() (Element, bool) {
	return e.local.inventory, e.local.holding
}

// GetItem returns the element at the given flat index.
func (e *GameEngine) GetItem(index int) Element {
	return e.local.board[index]
}

// GetItemString returns the single-character notation of the element at the
// given flat index.
func (e *GameEngine) GetItemString(index int) string {
	return e.local.board[index].String()
}

// GetIndices returns the flat indices of every cell holding the given
// element, in board order.
func (e *GameEngine) GetIndices(element Element) []int {
	var indices []int
	for i, el := range e.local.board {
		if el == element {
			indices = append(indices, i)
		}
	}
	return indices
}

// GetTargetIndices returns the sorted indices of every remaining bare key
// and lock, the cells an agent can usefully act on.
func (e *GameEngine) GetTargetIndices() []int {
	indices := make([]int, 0, len(e.local.keyIndices)+len(e.local.lockIndices))
	for idx := range e.local.keyIndices {
		indices = append(indices, idx)
	}
	for idx := range e.local.lockIndices {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	return indices
}

// HasKey reports whether the cell at the given flat index is a remaining
// bare key.
func (e *GameEngine) HasKey(index int) bool {
	return e.isKey(index)
}

// KeyCount returns the number of remaining bare keys.
func (e *GameEngine) KeyCount() int {
	return len(e.local.keyIndices)
}

// LockCount returns the number of remaining locks.
func (e *GameEngine) LockCount() int {
	return len(e.local.lockIndices)
}

// SetKey places a colour directly into the inventory, bypassing movement.
// It exists for external drivers that stage positions. It returns
// ErrInvalidArgument when the element is not a colour, when a key is
// already held, or while an uncollected bare key remains on the board.
func (e *GameEngine) SetKey(colour Element) error {
	if !colour.IsColour() {
		return ErrInvalidArgument
	}
	if e.local.holding {
		return ErrInvalidArgument
	}
	if len(e.local.keyIndices) > 0 {
		return ErrInvalidArgument
	}
	e.local.inventory = colour
	e.local.holding = true
	e.local.hash ^= e.shared.zobristInventory[colour]
	return nil
}

// Clone returns an independent copy: the mutable state is deep-copied, the
// immutable per-episode configuration and hash table are shared.
func (e *GameEngine) Clone() *GameEngine {
	clone := &GameEngine{shared: e.shared, local: e.local}
	clone.local.board = make([]Element, len(e.local.board))
	copy(clone.local.board, e.local.board)
	clone.local.keyIndices = make(map[int]struct{}, len(e.local.keyIndices))
	for idx := range e.local.keyIndices {
		clone.local.keyIndices[idx] = struct{}{}
	}
	clone.local.lockIndices = make(map[int]struct{}, len(e.local.lockIndices))
	for idx := range e.local.lockIndices {
		clone.local.lockIndices[idx] = struct{}{}
	}
	return clone
}

// SetResetConfig replaces the configuration future Reset calls rebuild
// from. The live state, dimensions, and hash tables are untouched, so the
// current hash stays coherent; Reset then behaves exactly like a fresh
// engine built from the given config. Used when restoring a persisted
// session so resets return to the configured level rather than the
// snapshot. The shared state is copied, leaving existing clones on the old
// reset point.
func (e *GameEngine) SetResetConfig(config *GameConfig) error {
	if err := ValidateGameConfig(config); err != nil {
		return err
	}
	shared := *e.shared
	shared.config = config
	e.shared = &shared
	return nil
}

// Equal reports whether two engines are in the same observable state:
// same dimensions, agent position, inventory, and board contents.
func (e *GameEngine) Equal(other *GameEngine) bool {
	if other == nil {
		return false
	}
	if e.shared.rows != other.shared.rows || e.shared.cols != other.shared.cols {
		return false
	}
	if e.local.agentIdx != other.local.agentIdx {
		return false
	}
	if e.local.holding != other.local.holding || e.local.inventory != other.local.inventory {
		return false
	}
	for i, el := range e.local.board {
		if other.local.board[i] != el {
			return false
		}
	}
	return true
}

// String renders the board as ASCII art with a border, followed by the
// inventory line.
func (e *GameEngine) String() string {
	var b strings.Builder
	border := strings.Repeat("-", e.shared.cols+2) + "\n"

	b.WriteString(border)
	for row := 0; row < e.shared.rows; row++ {
		b.WriteString("|")
		for col := 0; col < e.shared.cols; col++ {
			b.WriteString(e.local.board[row*e.shared.cols+col].String())
		}
		b.WriteString("|\n")
	}
	b.WriteString(border)

	b.WriteString("Inventory: ")
	if e.local.holding {
		b.WriteString(e.local.inventory.String())
	}
	b.WriteString("\n")
	return b.String()
}
