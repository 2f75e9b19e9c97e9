package engine

// ApplyAction applies one of the four directions to the state. It is total:
// out-of-bounds moves and blocked cells are absorbed as no-ops rather than
// errors, so external policies never need to pre-filter actions. The whole
// step is atomic; either the bounds check rejects it up front or every
// mutation below completes.
func (e *GameEngine) ApplyAction(action Action) {
	e.local.rewardColour = 0
	e.local.rewardIndex = 0

	agentIdx := e.local.agentIdx
	if !e.inBounds(agentIdx, action) {
		return
	}
	target := e.indexFromAction(agentIdx, action)

	switch {
	case e.local.board[target] == Empty:
		// Plain move. An empty cell is never a registered key or lock, so
		// there is nothing further to resolve.
		e.moveAgent(target)

	case e.isKey(target):
		// Bare key: pick it up and step onto the vacated cell.
		delete(e.local.keyIndices, target)
		e.local.rewardColour = uint64(e.local.board[target]) + 1
		e.addToInventory(target)
		e.moveAgent(target)
		e.local.rewardIndex = uint64(e.local.agentIdx) + 1

	case e.isLock(target) && e.heldKeyOpens(target):
		// Matching lock: the held key is consumed and the box's contents,
		// stored in the key cell immediately left of the lock, become the
		// new inventory.
		delete(e.local.lockIndices, target)
		e.local.rewardColour = uint64(e.local.board[target]) + 1
		e.removeFromInventory()
		e.removeLock(target)
		e.addToInventory(e.indexFromAction(target, Left))
		e.moveAgent(target)
		e.local.rewardIndex = uint64(e.local.agentIdx) + 1
	}
	// Anything else (a lock without the matching key, the key half of a
	// pair) blocks the move with no mutation and zero reward.
}

// isKey reports whether the index is a remaining bare key.
func (e *GameEngine) isKey(index int) bool {
	_, ok := e.local.keyIndices[index]
	return ok
}

// isLock reports whether the index is a remaining lock.
func (e *GameEngine) isLock(index int) bool {
	_, ok := e.local.lockIndices[index]
	return ok
}

// heldKeyOpens reports whether the inventory holds the colour of the lock at
// the given index.
func (e *GameEngine) heldKeyOpens(lockIdx int) bool {
	return e.local.holding && e.local.inventory == e.local.board[lockIdx]
}

// moveAgent moves the agent onto target, which must already be Empty. The
// hash is updated for both affected facts.
func (e *GameEngine) moveAgent(target int) {
	old := e.local.agentIdx
	e.local.hash ^= e.boardFact(Agent, old)
	e.local.board[old] = Empty
	e.local.board[target] = Agent
	e.local.agentIdx = target
	e.local.hash ^= e.boardFact(Agent, target)
}

// addToInventory moves the colour at index off the board and into the
// inventory. The inventory must be empty; level authoring guarantees a
// second key never becomes reachable while one is held.
func (e *GameEngine) addToInventory(index int) {
	colour := e.local.board[index]
	e.local.hash ^= e.boardFact(colour, index)
	e.local.board[index] = Empty
	e.local.inventory = colour
	e.local.holding = true
	e.local.hash ^= e.shared.zobristInventory[colour]
}

// removeFromInventory consumes the held key.
func (e *GameEngine) removeFromInventory() {
	e.local.hash ^= e.shared.zobristInventory[e.local.inventory]
	e.local.holding = false
}

// removeLock clears an opened lock cell.
func (e *GameEngine) removeLock(index int) {
	e.local.hash ^= e.boardFact(e.local.board[index], index)
	e.local.board[index] = Empty
}
