package engine

import "math/rand"

// initZobrist fills the hash tables from the shared seed: one 64-bit
// value per (element, cell) fact plus one per holdable colour. The table is
// part of the shared per-episode configuration, so clones reuse it and two
// engines with equal seed and dimensions hash identically.
func (e *GameEngine) initZobrist() {
	rng := rand.New(rand.NewSource(e.shared.seed))
	flatSize := e.shared.rows * e.shared.cols

	e.shared.zobristBoard = make([]uint64, NumElements*flatSize)
	for i := range e.shared.zobristBoard {
		e.shared.zobristBoard[i] = rng.Uint64()
	}
	for i := range e.shared.zobristInventory {
		e.shared.zobristInventory[i] = rng.Uint64()
	}
}

// boardFact returns the hash contribution of "element el occupies cell
// index". XORing the same fact twice cancels, which is what lets every
// mutator maintain the hash in O(1) instead of rescanning the board.
func (e *GameEngine) boardFact(el Element, index int) uint64 {
	return e.shared.zobristBoard[int(el)*e.shared.rows*e.shared.cols+index]
}

// recomputeHash rebuilds the hash from scratch over every occupied cell and
// the inventory. Only tests use it; the engine itself maintains the hash
// incrementally through the mutators.
func (e *GameEngine) recomputeHash() uint64 {
	var h uint64
	for i, el := range e.local.board {
		if el != Empty {
			h ^= e.boardFact(el, i)
		}
	}
	if e.local.holding {
		h ^= e.shared.zobristInventory[e.local.inventory]
	}
	return h
}
