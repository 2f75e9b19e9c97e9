package engine

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"
)

// serializeVersion tags the binary state layout. Bump on any change to the
// field order below; decoders reject unknown versions.
const serializeVersion uint16 = 1

// Serialize encodes the full state as a versioned little-endian byte
// sequence: dimensions, seed, agent index, hash, pending reward signals,
// inventory, board contents, and both derived index sets. The index sets are
// logically redundant with the board but are persisted directly: rebuilding
// them after a collect-first-key reset could disagree with what was actually
// collected.
func (e *GameEngine) Serialize() []byte {
	var buf bytes.Buffer
	write := func(v any) {
		// bytes.Buffer writes never fail.
		_ = binary.Write(&buf, binary.LittleEndian, v)
	}

	write(serializeVersion)
	write(e.shared.seed)
	write(uint32(e.shared.rows))
	write(uint32(e.shared.cols))
	write(uint32(e.local.agentIdx))
	write(e.local.hash)
	write(e.local.rewardColour)
	write(e.local.rewardIndex)
	if e.local.holding {
		write(uint8(1))
		write(uint8(e.local.inventory))
	} else {
		write(uint8(0))
		write(uint8(0))
	}

	for _, el := range e.local.board {
		write(uint8(el))
	}

	writeIndexSet := func(set map[int]struct{}) {
		indices := make([]int, 0, len(set))
		for idx := range set {
			indices = append(indices, idx)
		}
		sort.Ints(indices)
		write(uint32(len(indices)))
		for _, idx := range indices {
			write(uint32(idx))
		}
	}
	writeIndexSet(e.local.keyIndices)
	writeIndexSet(e.local.lockIndices)

	return buf.Bytes()
}

// Deserialize reconstructs an engine from bytes produced by Serialize. The
// result is hash-equal and behaviourally identical to the encoded instance.
// The decoded board layout becomes the reset point (SetResetConfig can swap
// it back to the original level); the inventory is not part of the board
// string, so Reset empties it. Malformed input yields ErrInvalidFormat
// (wrapped).
func Deserialize(data []byte) (*GameEngine, error) {
	buf := bytes.NewReader(data)
	fail := func(field string) error {
		return fmt.Errorf("%w: serialized state truncated at %s", ErrInvalidFormat, field)
	}

	var version uint16
	if err := binary.Read(buf, binary.LittleEndian, &version); err != nil {
		return nil, fail("version")
	}
	if version != serializeVersion {
		return nil, fmt.Errorf("%w: unsupported state version %d", ErrInvalidFormat, version)
	}

	var seed int64
	var rows, cols, agentIdx uint32
	var hash, rewardColour, rewardIndex uint64
	var holding, inventory uint8
	for _, field := range []struct {
		name string
		dst  any
	}{
		{"seed", &seed},
		{"rows", &rows},
		{"cols", &cols},
		{"agent index", &agentIdx},
		{"hash", &hash},
		{"reward colour", &rewardColour},
		{"reward index", &rewardIndex},
		{"inventory flag", &holding},
		{"inventory", &inventory},
	} {
		if err := binary.Read(buf, binary.LittleEndian, field.dst); err != nil {
			return nil, fail(field.name)
		}
	}

	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("%w: serialized board dimensions must be positive", ErrInvalidFormat)
	}
	flatSize := int(rows) * int(cols)
	if int(agentIdx) >= flatSize {
		return nil, fmt.Errorf("%w: agent index %d outside %dx%d board", ErrInvalidFormat, agentIdx, rows, cols)
	}
	if holding == 1 && !Element(inventory).IsColour() {
		return nil, fmt.Errorf("%w: inventory code %d is not a colour", ErrInvalidFormat, inventory)
	}

	board := make([]Element, flatSize)
	for i := range board {
		var code uint8
		if err := binary.Read(buf, binary.LittleEndian, &code); err != nil {
			return nil, fail("board")
		}
		if code >= NumBoardElements {
			return nil, fmt.Errorf("%w: unknown element code %d at cell %d", ErrInvalidFormat, code, i)
		}
		board[i] = Element(code)
	}

	readIndexSet := func(name string) (map[int]struct{}, error) {
		var count uint32
		if err := binary.Read(buf, binary.LittleEndian, &count); err != nil {
			return nil, fail(name)
		}
		if int(count) > flatSize {
			return nil, fmt.Errorf("%w: %s has %d entries for a %d-cell board", ErrInvalidFormat, name, count, flatSize)
		}
		set := make(map[int]struct{}, count)
		for i := uint32(0); i < count; i++ {
			var idx uint32
			if err := binary.Read(buf, binary.LittleEndian, &idx); err != nil {
				return nil, fail(name)
			}
			if int(idx) >= flatSize {
				return nil, fmt.Errorf("%w: %s index %d outside board", ErrInvalidFormat, name, idx)
			}
			set[int(idx)] = struct{}{}
		}
		return set, nil
	}
	keyIndices, err := readIndexSet("key indices")
	if err != nil {
		return nil, err
	}
	lockIndices, err := readIndexSet("lock indices")
	if err != nil {
		return nil, err
	}

	e := &GameEngine{
		shared: &sharedState{
			seed: seed,
			rows: int(rows),
			cols: int(cols),
		},
		local: localState{
			hash:         hash,
			rewardColour: rewardColour,
			rewardIndex:  rewardIndex,
			agentIdx:     int(agentIdx),
			board:        board,
			inventory:    Element(inventory),
			holding:      holding == 1,
			keyIndices:   keyIndices,
			lockIndices:  lockIndices,
		},
	}
	// The decoded snapshot becomes the engine's reset point.
	e.shared.config = &GameConfig{
		Name:        "restored",
		Description: "state restored from serialized snapshot",
		Board:       e.boardString(),
		Seed:        seed,
	}
	e.initZobrist()
	return e, nil
}
