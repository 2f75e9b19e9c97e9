package main

import (
	"log"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"

	"github.com/gridgames/boxworld/game/engine"
)

// Solver searches for an action sequence that solves a board. It runs a
// breadth-first search over game states deduplicated by the engine's state
// hash, and falls back to softmax-weighted random rollouts when the search
// budget runs out before a solution is found.
type Solver struct {
	maxStates   int
	maxDepth    int
	rollouts    int
	rolloutLen  int
	temperature float64
	rand        rand.Source
	verbose     bool
}

// SolverOptions configures the search budgets and the rollout sampler.
type SolverOptions struct {
	MaxStates   int
	MaxDepth    int
	Rollouts    int
	RolloutLen  int
	Temperature float64
	Seed        uint64
	Verbose     bool
}

func NewSolver(opts SolverOptions) *Solver {
	if opts.MaxStates <= 0 {
		opts.MaxStates = 500000
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = 200
	}
	if opts.RolloutLen <= 0 {
		opts.RolloutLen = 500
	}
	if opts.Temperature <= 0 {
		opts.Temperature = 1.0
	}
	return &Solver{
		maxStates:   opts.MaxStates,
		maxDepth:    opts.MaxDepth,
		rollouts:    opts.Rollouts,
		rolloutLen:  opts.RolloutLen,
		temperature: opts.Temperature,
		rand:        rand.NewSource(opts.Seed),
		verbose:     opts.Verbose,
	}
}

type searchNode struct {
	eng  *engine.GameEngine
	path []engine.Action
}

// Solve returns a solving action sequence, or nil when none was found within
// the budgets. The BFS result is a shortest solution; a rollout result is
// merely a solution.
func (s *Solver) Solve(eng *engine.GameEngine) []engine.Action {
	if eng.IsSolution() {
		return []engine.Action{}
	}

	if path := s.bfs(eng); path != nil {
		return path
	}

	for i := 0; i < s.rollouts; i++ {
		if path := s.rollout(eng); path != nil {
			log.Printf("🎲 Rollout %d/%d found a solution (%d steps)", i+1, s.rollouts, len(path))
			return path
		}
	}
	return nil
}

// bfs explores states in breadth-first order. Blocked moves leave the hash
// unchanged, so the transposition table prunes them for free.
func (s *Solver) bfs(start *engine.GameEngine) []engine.Action {
	seen := map[uint64]bool{start.GetHash(): true}
	queue := []searchNode{{eng: start.Clone(), path: nil}}
	expanded := 0

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		if len(node.path) >= s.maxDepth {
			continue
		}

		for _, action := range engine.AllActions {
			child := node.eng.Clone()
			child.ApplyAction(action)

			hash := child.GetHash()
			if seen[hash] {
				continue
			}
			seen[hash] = true

			path := append(append([]engine.Action{}, node.path...), action)
			if child.IsSolution() {
				log.Printf("🔍 BFS solved: %d steps, %d states explored", len(path), len(seen))
				return path
			}
			queue = append(queue, searchNode{eng: child, path: path})
		}

		expanded++
		if expanded >= s.maxStates {
			log.Printf("⚠️  BFS budget exhausted after %d states", expanded)
			return nil
		}
		if s.verbose && expanded%10000 == 0 {
			log.Printf("BFS progress: %d expanded, %d seen, frontier %d", expanded, len(seen), len(queue))
		}
	}

	log.Printf("❌ State space exhausted (%d states) without a solution", len(seen))
	return nil
}

// rollout walks the board with softmax-weighted action sampling. Actions are
// scored by a one-step lookahead: solving is best, opening a lock or picking
// up a key is good, plain movement is neutral, blocked moves and revisited
// states are penalized.
func (s *Solver) rollout(start *engine.GameEngine) []engine.Action {
	eng := start.Clone()
	visited := map[uint64]int{eng.GetHash(): 1}
	path := make([]engine.Action, 0, s.rolloutLen)

	for step := 0; step < s.rolloutLen; step++ {
		weights := make([]float64, len(engine.AllActions))
		children := make([]*engine.GameEngine, len(engine.AllActions))

		for i, action := range engine.AllActions {
			child := eng.Clone()
			child.ApplyAction(action)
			children[i] = child
			weights[i] = math.Exp(s.scoreAction(eng, child, visited) / s.temperature)
		}

		idx, ok := sampleuv.NewWeighted(weights, s.rand).Take()
		if !ok {
			return nil
		}

		eng = children[idx]
		path = append(path, engine.AllActions[idx])
		visited[eng.GetHash()]++

		if eng.IsSolution() {
			return path
		}
	}
	return nil
}

func (s *Solver) scoreAction(parent, child *engine.GameEngine, visited map[uint64]int) float64 {
	if child.IsSolution() {
		return 10
	}

	hash := child.GetHash()
	if hash == parent.GetHash() {
		// Blocked move
		return -4
	}

	score := 0.0
	if child.LockCount() < parent.LockCount() {
		score += 4
	}
	_, parentHolds := parent.GetInventory()
	_, childHolds := child.GetInventory()
	if childHolds && !parentHolds {
		score += 2
	}

	// Discourage pacing over the same cells
	score -= float64(visited[hash])
	return score
}

// directions converts an action sequence to the wire direction names used by
// the REST API.
func directions(path []engine.Action) []string {
	out := make([]string, len(path))
	for i, a := range path {
		out[i] = a.String()
	}
	return out
}
