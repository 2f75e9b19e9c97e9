package engine

import (
	"math/rand"
	"testing"
)

const hashTestBoard = "2|5|14|14|14|14|14|13|02|14|04|02"

func TestHashMatchesFullRecomputation(t *testing.T) {
	e, err := NewEngine(testConfig(hashTestBoard))
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	if got := e.recomputeHash(); got != e.GetHash() {
		t.Fatalf("initial hash mismatch: maintained %d, recomputed %d", e.GetHash(), got)
	}

	// A long random walk must keep the incremental hash in sync at every
	// step, across plain moves, pickups, lock openings, and no-ops.
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		e.ApplyAction(Action(rng.Intn(NumActions)))
		if got := e.recomputeHash(); got != e.GetHash() {
			t.Fatalf("hash diverged at step %d: maintained %d, recomputed %d", i, e.GetHash(), got)
		}
	}
}

func TestHashConsistencyThroughDistractorTrade(t *testing.T) {
	// The "hard" level layout: a bare c0 key, a distractor lock that trades
	// it for a useless c2 key, and the real c0 -> c1 -> goal chain. The
	// inventory changes hands twice; the maintained hash must track every
	// step.
	board := "5|5|14|02|00|14|14|00|14|14|01|00|14|14|13|14|14|12|01|14|14|14|14|14|14|14|14"
	e, err := NewEngine(testConfig(board))
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	// Collect the bare key at cell 5, then open the distractor lock at
	// cell 2, swapping the held c0 for the boxed c2.
	for i, act := range []Action{Left, Left, Up, Right, Right, Up} {
		e.ApplyAction(act)
		if got := e.recomputeHash(); got != e.GetHash() {
			t.Fatalf("hash diverged at step %d: maintained %d, recomputed %d", i, e.GetHash(), got)
		}
	}

	held, holding := e.GetInventory()
	if !holding || held != Colour2 {
		t.Fatalf("expected to hold the distractor colour c2, got %v (holding=%v)", held, holding)
	}
	if e.KeyCount() != 0 || e.LockCount() != 2 {
		t.Errorf("expected 0 keys and 2 locks remaining, got %d and %d", e.KeyCount(), e.LockCount())
	}
}

func TestHashPathIndependence(t *testing.T) {
	a, err := NewEngine(testConfig(hashTestBoard))
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	b, err := NewEngine(testConfig(hashTestBoard))
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	// Two different action sequences reaching the same configuration.
	for _, act := range []Action{Right, Up, Right, Right, Right, Down} {
		a.ApplyAction(act)
	}
	for _, act := range []Action{Up, Down, Right, Up, Right, Right, Right, Down} {
		b.ApplyAction(act)
	}

	if !a.Equal(b) {
		t.Fatal("expected both paths to reach the same configuration")
	}
	if a.GetHash() != b.GetHash() {
		t.Errorf("equal configurations hash differently: %d vs %d", a.GetHash(), b.GetHash())
	}
}

func TestHashDistinguishesStates(t *testing.T) {
	a := NewEngineWithDefaults()
	b := NewEngineWithDefaults()

	b.ApplyAction(Down)
	if a.GetHash() == b.GetHash() {
		t.Error("expected differing agent positions to hash differently")
	}

	// Holding a key vs. not holding one.
	c, err := NewEngine(testConfig("1|3|13|04|02"))
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	before := c.GetHash()
	if err := c.SetKey(Colour2); err != nil {
		t.Fatalf("SetKey failed: %v", err)
	}
	if c.GetHash() == before {
		t.Error("expected inventory change to alter the hash")
	}
}

func TestHashDeterministicAcrossInstances(t *testing.T) {
	a, _ := NewEngine(testConfig(hashTestBoard))
	b, _ := NewEngine(testConfig(hashTestBoard))
	if a.GetHash() != b.GetHash() {
		t.Error("expected identical seed and board to produce identical hashes")
	}

	other := testConfig(hashTestBoard)
	other.Seed = 99
	c, _ := NewEngine(other)
	if a.GetHash() == c.GetHash() {
		t.Error("expected a different seed to produce a different hash table")
	}
}
