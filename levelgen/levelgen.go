// Package levelgen generates random solvable boards in the wire format the
// engine consumes. A board carries one goal path (a chain of key/lock pairs
// ending in the goal gem) and optionally several distractor chains rooted on
// goal-path colours that lead nowhere.
package levelgen

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/gridgames/boxworld/game/engine"
)

// numKeyColours is the number of distinct key colours available to the
// generator; the goal colour is reserved for the final box.
const numKeyColours = engine.NumColours - 1

// Params control the shape of generated boards.
type Params struct {
	// Size is the board side length; boards are always square.
	Size int
	// GoalLength is the number of keys on the goal path, the final one being
	// the goal gem. A length of 2 means one bare key and one lock.
	GoalLength int
	// NumDistractors is the number of dead-end chains.
	NumDistractors int
	// DistractorLength is the number of key/lock pairs per dead-end chain.
	DistractorLength int
}

// DefaultParams mirrors the canonical level-set shape: 10x10 boards with a
// three-step goal path and two dead-end chains of two pairs each.
func DefaultParams() Params {
	return Params{
		Size:             10,
		GoalLength:       3,
		NumDistractors:   2,
		DistractorLength: 2,
	}
}

func (p Params) validate() error {
	if p.Size < 3 {
		return fmt.Errorf("levelgen: board size must be at least 3, got %d", p.Size)
	}
	if p.Size > engine.MaxBoardSize {
		return fmt.Errorf("levelgen: board size must be at most %d, got %d", engine.MaxBoardSize, p.Size)
	}
	if p.GoalLength < 2 {
		return fmt.Errorf("levelgen: goal length must be at least 2, got %d", p.GoalLength)
	}
	if p.GoalLength-1 > numKeyColours {
		return fmt.Errorf("levelgen: goal length %d needs more than %d colours", p.GoalLength, numKeyColours)
	}
	if p.NumDistractors < 0 {
		return fmt.Errorf("levelgen: distractor count must not be negative, got %d", p.NumDistractors)
	}
	if p.NumDistractors > 0 {
		if p.DistractorLength < 1 {
			return fmt.Errorf("levelgen: distractor length must be at least 1, got %d", p.DistractorLength)
		}
		if p.DistractorLength > numKeyColours-(p.GoalLength-1) {
			return fmt.Errorf("levelgen: distractor length %d exceeds the colours left over from the goal path", p.DistractorLength)
		}
	}
	return nil
}

// pairCount is the total number of key/lock pairs a board needs.
func (p Params) pairCount() int {
	return p.GoalLength - 1 + p.DistractorLength*p.NumDistractors
}

type cell struct{ row, col int }

// Generate produces one board for the given seed. The same params and seed
// always yield the same board.
func Generate(p Params, seed int64) (string, error) {
	if err := p.validate(); err != nil {
		return "", err
	}
	rng := rand.New(rand.NewSource(seed))
	n := p.Size

	board := make([]int, n*n)
	for i := range board {
		board[i] = int(engine.Empty)
	}

	goalColours := sampleColours(rng, p.GoalLength-1, nil)
	distractorColours := make([][]int, p.NumDistractors)
	distractorRoots := make([]int, p.NumDistractors)
	for i := range distractorColours {
		distractorColours[i] = sampleColours(rng, p.DistractorLength, goalColours)
		distractorRoots[i] = rng.Intn(p.GoalLength - 1)
	}

	keys, locks, firstKey, agent, err := samplingPairs(p.pairCount(), n, rng)
	if err != nil {
		return "", err
	}

	at := func(c cell) *int { return &board[c.row*n+c.col] }

	// Goal path: each pair's lock carries the previous colour and its box
	// holds the next one, the last box holding the goal gem.
	for i := 1; i < p.GoalLength; i++ {
		colour := int(engine.ColourGoal)
		if i < p.GoalLength-1 {
			colour = goalColours[i]
		}
		*at(keys[i-1]) = colour
		*at(locks[i-1]) = goalColours[i-1]
	}
	*at(firstKey) = goalColours[0]

	// Dead-end chains: the first pair is locked with a goal-path colour, the
	// rest chain within the distractor's own colours.
	for i, colours := range distractorColours {
		chain := keys[p.GoalLength-1+i*p.DistractorLength : p.GoalLength-1+(i+1)*p.DistractorLength]
		*at(cell{chain[0].row, chain[0].col + 1}) = goalColours[distractorRoots[i]]
		*at(chain[0]) = colours[0]
		for k, key := range chain[1:] {
			prev := (k - 1 + len(colours)) % len(colours)
			*at(key) = colours[prev]
			*at(cell{key.row, key.col + 1}) = colours[k]
		}
	}

	*at(agent) = int(engine.Agent)

	tokens := make([]string, 0, n*n+2)
	tokens = append(tokens, fmt.Sprintf("%02d", n), fmt.Sprintf("%02d", n))
	for _, code := range board {
		tokens = append(tokens, fmt.Sprintf("%02d", code))
	}
	return strings.Join(tokens, "|"), nil
}

// samplingPairs picks non-overlapping key/lock cell pairs plus the agent and
// first-key cells. Candidates exclude the last column so a lock always fits
// to the right of its key, and placing a pair removes up to two cells on
// either side so pairs never touch horizontally.
func samplingPairs(numPairs, n int, rng *rand.Rand) (keys, locks []cell, firstKey, agent cell, err error) {
	possibilities := make(map[int]struct{}, n*(n-1))
	for i := 1; i < n*(n-1); i++ {
		possibilities[i] = struct{}{}
	}

	for p := 0; p < numPairs; p++ {
		if len(possibilities) == 0 {
			return nil, nil, cell{}, cell{}, fmt.Errorf("levelgen: board too small for %d pairs", numPairs)
		}
		pick := sampleFromSet(possibilities, rng)
		row, col := pick/(n-1), pick%(n-1)

		delete(possibilities, pick)
		for i := 1; i <= min(2, n-2-col); i++ {
			delete(possibilities, row*(n-1)+col+i)
		}
		for i := 1; i <= min(2, col); i++ {
			delete(possibilities, row*(n-1)+col-i)
		}

		keys = append(keys, cell{row, col})
		locks = append(locks, cell{row, col + 1})
	}

	if len(possibilities) < 2 {
		return nil, nil, cell{}, cell{}, fmt.Errorf("levelgen: no room left for the agent and first key")
	}
	pick := sampleFromSet(possibilities, rng)
	delete(possibilities, pick)
	agent = cell{pick / (n - 1), pick % (n - 1)}

	pick = sampleFromSet(possibilities, rng)
	firstKey = cell{pick / (n - 1), pick % (n - 1)}

	return keys, locks, firstKey, agent, nil
}

func sampleFromSet(set map[int]struct{}, rng *rand.Rand) int {
	items := make([]int, 0, len(set))
	for v := range set {
		items = append(items, v)
	}
	sort.Ints(items)
	return items[rng.Intn(len(items))]
}

// sampleColours picks count distinct colour codes, skipping any in exclude.
func sampleColours(rng *rand.Rand, count int, exclude []int) []int {
	excluded := make(map[int]bool, len(exclude))
	for _, c := range exclude {
		excluded[c] = true
	}
	pool := make([]int, 0, numKeyColours)
	for c := 0; c < numKeyColours; c++ {
		if !excluded[c] {
			pool = append(pool, c)
		}
	}
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return pool[:count]
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// GenerateSet produces count boards with consecutive seeds starting at
// startSeed, spread across a worker pool. Boards come back in seed order.
func GenerateSet(p Params, count int, startSeed int64, workers int) ([]string, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	boards := make([]string, count)
	errs := make([]error, count)
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				boards[i], errs[i] = Generate(p, startSeed+int64(i))
			}
		}()
	}
	for i := 0; i < count; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return boards, nil
}

// WriteSet writes the train and test splits as train.txt and test.txt in
// dir, one board per line. The directory is created when missing.
func WriteSet(dir string, train, test []string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("levelgen: create export dir: %w", err)
	}
	if err := writeLines(filepath.Join(dir, "train.txt"), train); err != nil {
		return err
	}
	return writeLines(filepath.Join(dir, "test.txt"), test)
}

func writeLines(path string, lines []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("levelgen: create %s: %w", path, err)
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(f, line); err != nil {
			f.Close()
			return fmt.Errorf("levelgen: write %s: %w", path, err)
		}
	}
	return f.Close()
}
