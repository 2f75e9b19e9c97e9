package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// parseBoard converts the configured wire-format string into the flat board
// slice and records the agent position. It knows nothing about keys or
// locks; classification happens in initKeyLockIndices.
func (e *GameEngine) parseBoard() error {
	tokens := strings.Split(e.shared.config.Board, "|")
	if len(tokens) < 3 {
		return fmt.Errorf("%w: board string needs at least rows, cols and one cell", ErrInvalidFormat)
	}

	rows, err := strconv.Atoi(tokens[0])
	if err != nil {
		return fmt.Errorf("%w: rows token %q is not a number", ErrInvalidFormat, tokens[0])
	}
	cols, err := strconv.Atoi(tokens[1])
	if err != nil {
		return fmt.Errorf("%w: cols token %q is not a number", ErrInvalidFormat, tokens[1])
	}
	if rows <= 0 || cols <= 0 {
		return fmt.Errorf("%w: board dimensions must be positive, got %dx%d", ErrInvalidFormat, rows, cols)
	}
	if len(tokens) != rows*cols+2 {
		return fmt.Errorf("%w: board declares %dx%d cells but has %d tokens",
			ErrInvalidFormat, rows, cols, len(tokens)-2)
	}

	board := make([]Element, 0, rows*cols)
	agentIdx := -1
	for i, token := range tokens[2:] {
		code, err := strconv.Atoi(token)
		if err != nil {
			return fmt.Errorf("%w: cell token %q is not a number", ErrInvalidFormat, token)
		}
		if code < 0 || code >= NumBoardElements {
			return fmt.Errorf("%w: unknown element code %d at cell %d", ErrInvalidFormat, code, i)
		}
		el := Element(code)
		if el == Agent {
			if agentIdx != -1 {
				return fmt.Errorf("%w: board has more than one agent", ErrInvalidFormat)
			}
			agentIdx = i
		}
		board = append(board, el)
	}
	if agentIdx == -1 {
		return fmt.Errorf("%w: board has no agent", ErrInvalidFormat)
	}

	e.shared.rows = rows
	e.shared.cols = cols
	e.local.board = board
	e.local.agentIdx = agentIdx
	return nil
}

// initKeyLockIndices classifies every colour cell once per reset. A cell is
// a lock iff its left neighbour is also a colour cell (the pair's key is
// always immediately left of its lock); it is a bare key iff neither
// horizontal neighbour is a colour cell. The sets are maintained
// incrementally afterwards, never rebuilt.
func (e *GameEngine) initKeyLockIndices() {
	e.local.keyIndices = make(map[int]struct{})
	e.local.lockIndices = make(map[int]struct{})

	for idx, el := range e.local.board {
		if el == Empty || el == Agent {
			continue
		}
		leftColour := e.neighbourIsColour(idx, Left)
		rightColour := e.neighbourIsColour(idx, Right)
		if leftColour {
			e.local.lockIndices[idx] = struct{}{}
		} else if !rightColour {
			e.local.keyIndices[idx] = struct{}{}
		}
	}
}

// neighbourIsColour reports whether the cell one step in the given direction
// is in bounds and holds a colour element.
func (e *GameEngine) neighbourIsColour(index int, action Action) bool {
	if !e.inBounds(index, action) {
		return false
	}
	return e.local.board[e.indexFromAction(index, action)].IsColour()
}

// indexFromAction returns the flat index one step from index in the given
// direction. The caller must have checked inBounds first.
func (e *GameEngine) indexFromAction(index int, action Action) int {
	offset := actionOffsets[action]
	col := index%e.shared.cols + offset.dCol
	row := index/e.shared.cols + offset.dRow
	return row*e.shared.cols + col
}

// inBounds reports whether one step from index in the given direction stays
// on the board.
func (e *GameEngine) inBounds(index int, action Action) bool {
	offset := actionOffsets[action]
	col := index%e.shared.cols + offset.dCol
	row := index/e.shared.cols + offset.dRow
	return col >= 0 && col < e.shared.cols && row >= 0 && row < e.shared.rows
}

// boardString re-encodes the current board into wire format. Used when a
// deserialized engine needs a config to reset back to its snapshot.
func (e *GameEngine) boardString() string {
	tokens := make([]string, 0, len(e.local.board)+2)
	tokens = append(tokens, strconv.Itoa(e.shared.rows), strconv.Itoa(e.shared.cols))
	for _, el := range e.local.board {
		tokens = append(tokens, fmt.Sprintf("%02d", int(el)))
	}
	return strings.Join(tokens, "|")
}
