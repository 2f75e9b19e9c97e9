package engine

import "testing"

func TestOutOfBoundsIsNoOp(t *testing.T) {
	e := NewEngineWithDefaults()
	// Agent starts at index 2: top-right corner.
	hash := e.GetHash()
	agent := e.GetAgentIndex()

	e.ApplyAction(Up)
	if e.GetAgentIndex() != agent {
		t.Error("expected agent to stay put on out-of-bounds move")
	}
	if e.GetHash() != hash {
		t.Error("expected hash unchanged on out-of-bounds move")
	}
	if e.GetRewardSignal(true) != 0 || e.GetRewardSignal(false) != 0 {
		t.Error("expected zero reward on out-of-bounds move")
	}

	e.ApplyAction(Right)
	if e.GetAgentIndex() != agent || e.GetHash() != hash {
		t.Error("expected right move off the board to be a no-op")
	}
}

func TestEmptyMoveCycleRestoresState(t *testing.T) {
	e := NewEngineWithDefaults()
	hash := e.GetHash()
	agent := e.GetAgentIndex()
	board := make([]Element, e.Rows()*e.Cols())
	for i := range board {
		board[i] = e.GetItem(i)
	}

	// Four empty moves in a cycle back to the start.
	for _, a := range []Action{Down, Left, Up, Right} {
		e.ApplyAction(a)
	}

	if e.GetAgentIndex() != agent {
		t.Errorf("expected agent back at %d, got %d", agent, e.GetAgentIndex())
	}
	if e.GetHash() != hash {
		t.Errorf("expected hash restored after cycle: initial %d, got %d", hash, e.GetHash())
	}
	for i := range board {
		if e.GetItem(i) != board[i] {
			t.Errorf("cell %d changed across cycle: %v -> %v", i, board[i], e.GetItem(i))
		}
	}
}

func TestBareKeyPickup(t *testing.T) {
	e, err := NewEngine(testConfig("2|5|14|14|14|14|14|13|02|14|04|02"))
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	e.ApplyAction(Right)

	if got := e.GetRewardSignal(true); got != uint64(Colour2)+1 {
		t.Errorf("expected reward-by-colour %d, got %d", uint64(Colour2)+1, got)
	}
	if got := e.GetRewardSignal(false); got != uint64(e.GetAgentIndex())+1 {
		t.Errorf("expected reward-by-index %d, got %d", uint64(e.GetAgentIndex())+1, got)
	}
	if e.GetAgentIndex() != 6 {
		t.Errorf("expected agent on the vacated key cell 6, got %d", e.GetAgentIndex())
	}
	if e.isKey(6) || e.KeyCount() != 0 {
		t.Error("expected key removed from the index set")
	}
	colour, holding := e.GetInventory()
	if !holding || colour != Colour2 {
		t.Errorf("expected inventory to hold colour c, got %v (holding=%v)", colour, holding)
	}
}

func TestLockWithoutKeyBlocks(t *testing.T) {
	// Agent directly left of the pair's key half; lock right of that.
	e, err := NewEngine(testConfig("1|3|13|04|02"))
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	hash := e.GetHash()

	// The key half of a pair is not collectible, so the move is blocked.
	e.ApplyAction(Right)
	if e.GetAgentIndex() != 0 {
		t.Error("expected blocked move onto pair key half")
	}
	if e.GetHash() != hash {
		t.Error("expected hash unchanged on blocked move")
	}
	if e.GetRewardSignal(true) != 0 {
		t.Error("expected zero reward on blocked move")
	}
}

func TestLockOpening(t *testing.T) {
	e, err := NewEngine(testConfig("2|5|14|14|14|14|14|13|02|14|04|02"))
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	// Collect the bare key, walk around, open the lock from above.
	for _, a := range []Action{Right, Up, Right, Right, Right} {
		e.ApplyAction(a)
	}
	if e.GetAgentIndex() != 4 {
		t.Fatalf("setup walk failed, agent at %d", e.GetAgentIndex())
	}

	e.ApplyAction(Down)

	if got := e.GetRewardSignal(true); got != uint64(Colour2)+1 {
		t.Errorf("expected reward-by-colour %d for opened lock, got %d", uint64(Colour2)+1, got)
	}
	if e.LockCount() != 0 {
		t.Error("expected lock removed from the index set")
	}
	if e.GetAgentIndex() != 9 {
		t.Errorf("expected agent on the opened lock cell 9, got %d", e.GetAgentIndex())
	}
	// The box's contents, stored left of the lock, become the new inventory.
	colour, holding := e.GetInventory()
	if !holding || colour != Colour4 {
		t.Errorf("expected inventory to hold the box contents (colour e), got %v (holding=%v)", colour, holding)
	}
	if e.GetItem(8) != Empty || e.GetItem(9) != Agent {
		t.Error("expected both pair cells resolved after opening")
	}
}

func TestLockWithWrongKeyBlocks(t *testing.T) {
	// Bare key colour f (5), lock colour c (2): no match.
	e, err := NewEngine(testConfig("2|5|14|14|14|14|14|13|05|14|04|02"))
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	for _, a := range []Action{Right, Up, Right, Right, Right} {
		e.ApplyAction(a)
	}
	hash := e.GetHash()

	e.ApplyAction(Down)
	if e.GetAgentIndex() != 4 {
		t.Error("expected move onto non-matching lock to be blocked")
	}
	if e.GetHash() != hash {
		t.Error("expected hash unchanged when lock does not open")
	}
	if e.LockCount() != 1 {
		t.Error("expected lock to remain")
	}
}

func TestKeyLockConservation(t *testing.T) {
	e, err := NewEngine(testConfig("2|5|14|14|14|14|14|13|02|14|04|02"))
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	prev := e.KeyCount() + e.LockCount()
	for _, a := range []Action{Right, Up, Right, Right, Right, Down, Left, Left} {
		e.ApplyAction(a)
		cur := e.KeyCount() + e.LockCount()
		if cur > prev {
			t.Fatalf("key+lock count increased from %d to %d", prev, cur)
		}
		prev = cur
	}
	if prev != 0 {
		t.Errorf("expected all keys and locks consumed, %d remain", prev)
	}
}

func TestSolutionAndTerminalStability(t *testing.T) {
	// The lock's box contains the goal colour.
	e, err := NewEngine(testConfig("2|5|14|14|14|14|14|13|03|14|12|03"))
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	for _, a := range []Action{Right, Up, Right, Right, Right, Down} {
		e.ApplyAction(a)
	}
	if !e.IsSolution() {
		t.Fatal("expected solved state after opening the goal box")
	}

	// Further actions keep moving but never unsolve the state.
	for _, a := range []Action{Left, Up, Right, Down, Down, Left} {
		e.ApplyAction(a)
		if !e.IsSolution() {
			t.Fatal("solved state did not persist across further actions")
		}
	}
}
