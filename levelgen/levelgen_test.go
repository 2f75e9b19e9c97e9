package levelgen

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/gridgames/boxworld/game/engine"
)

func TestGenerate_Deterministic(t *testing.T) {
	params := DefaultParams()

	first, err := Generate(params, 42)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	second, err := Generate(params, 42)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if first != second {
		t.Error("Same params and seed produced different boards")
	}

	other, err := Generate(params, 43)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if first == other {
		t.Error("Different seeds produced identical boards")
	}
}

func TestGenerate_BoardParses(t *testing.T) {
	params := DefaultParams()

	for seed := int64(0); seed < 20; seed++ {
		board, err := Generate(params, seed)
		if err != nil {
			t.Fatalf("Generate(seed=%d) failed: %v", seed, err)
		}

		eng, err := engine.NewEngine(&engine.GameConfig{
			Name:  "generated",
			Board: board,
			Seed:  seed,
		})
		if err != nil {
			t.Fatalf("Generated board %d does not parse: %v\n%s", seed, err, board)
		}

		if eng.Rows() != params.Size || eng.Cols() != params.Size {
			t.Errorf("Board %d is %dx%d, want %dx%d", seed, eng.Rows(), eng.Cols(), params.Size, params.Size)
		}
		if eng.KeyCount() == 0 {
			t.Errorf("Board %d has no bare keys", seed)
		}
		if eng.LockCount() != params.pairCount() {
			t.Errorf("Board %d has %d locks, want %d", seed, eng.LockCount(), params.pairCount())
		}
		if goals := eng.GetIndices(engine.ColourGoal); len(goals) != 1 {
			t.Errorf("Board %d has %d goal cells, want 1", seed, len(goals))
		}
	}
}

func TestGenerate_GoalChainSolvable(t *testing.T) {
	params := Params{Size: 8, GoalLength: 4, NumDistractors: 1, DistractorLength: 2}

	for seed := int64(0); seed < 10; seed++ {
		board, err := Generate(params, seed)
		if err != nil {
			t.Fatalf("Generate(seed=%d) failed: %v", seed, err)
		}

		if !chainSolvable(t, board) {
			t.Errorf("Board %d has no colour chain to the goal:\n%s", seed, board)
		}
	}
}

// chainSolvable runs the obtainable-colour fixpoint over a wire board.
func chainSolvable(t *testing.T, board string) bool {
	t.Helper()
	tokens := strings.Split(board, "|")
	cols, err := strconv.Atoi(tokens[1])
	if err != nil {
		t.Fatalf("Bad cols token: %v", err)
	}
	codes := make([]int, len(tokens)-2)
	for i, tok := range tokens[2:] {
		codes[i], err = strconv.Atoi(tok)
		if err != nil {
			t.Fatalf("Bad cell token: %v", err)
		}
	}

	isColour := func(c int) bool { return c <= int(engine.ColourGoal) }
	obtainable := map[int]bool{}
	type lock struct{ colour, content int }
	var locks []lock
	for idx, code := range codes {
		if !isColour(code) {
			continue
		}
		col := idx % cols
		switch {
		case col > 0 && isColour(codes[idx-1]):
			locks = append(locks, lock{colour: code, content: codes[idx-1]})
		case col == cols-1 || !isColour(codes[idx+1]):
			obtainable[code] = true
		}
	}
	for {
		progress := false
		for _, l := range locks {
			if obtainable[l.colour] && !obtainable[l.content] {
				obtainable[l.content] = true
				progress = true
			}
		}
		if !progress {
			break
		}
	}
	return obtainable[int(engine.ColourGoal)]
}

func TestGenerate_InvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		params Params
	}{
		{"tiny board", Params{Size: 2, GoalLength: 2}},
		{"goal too short", Params{Size: 10, GoalLength: 1}},
		{"too many goal colours", Params{Size: 10, GoalLength: 14}},
		{"distractors exhaust colours", Params{Size: 10, GoalLength: 12, NumDistractors: 1, DistractorLength: 5}},
		{"negative distractors", Params{Size: 10, GoalLength: 3, NumDistractors: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Generate(tt.params, 1); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

func TestGenerate_BoardTooSmallForPairs(t *testing.T) {
	params := Params{Size: 3, GoalLength: 3, NumDistractors: 2, DistractorLength: 2}
	if _, err := Generate(params, 1); err == nil {
		t.Error("Expected an error for an overloaded 3x3 board")
	}
}

func TestGenerateSet(t *testing.T) {
	params := Params{Size: 6, GoalLength: 2, NumDistractors: 0}

	boards, err := GenerateSet(params, 16, 100, 4)
	if err != nil {
		t.Fatalf("GenerateSet failed: %v", err)
	}
	if len(boards) != 16 {
		t.Fatalf("Expected 16 boards, got %d", len(boards))
	}

	// Seed ordering: element i must match a direct Generate with seed 100+i
	for i := 0; i < 16; i++ {
		want, err := Generate(params, 100+int64(i))
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if boards[i] != want {
			t.Errorf("Board %d does not match its seed", i)
		}
	}
}

func TestWriteSet(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "levels")
	train := []string{"2|2|13|12|14|14", "2|2|14|13|12|14"}
	test := []string{"2|2|12|13|14|14"}

	if err := WriteSet(dir, train, test); err != nil {
		t.Fatalf("WriteSet failed: %v", err)
	}

	trainData, err := os.ReadFile(filepath.Join(dir, "train.txt"))
	if err != nil {
		t.Fatalf("Failed to read train.txt: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(trainData)), "\n")
	if len(lines) != 2 || lines[0] != train[0] || lines[1] != train[1] {
		t.Errorf("train.txt content mismatch: %q", string(trainData))
	}

	testData, err := os.ReadFile(filepath.Join(dir, "test.txt"))
	if err != nil {
		t.Fatalf("Failed to read test.txt: %v", err)
	}
	if strings.TrimSpace(string(testData)) != test[0] {
		t.Errorf("test.txt content mismatch: %q", string(testData))
	}
}
