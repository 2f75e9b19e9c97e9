// Command validate provides a small CLI that validates board configuration
// JSON files in the ../configs directory. It checks:
//   - JSON structure and required fields
//   - Board string format (rows|cols|cell|cell|...) and allowed element codes
//   - Exactly one agent on the board
//   - At most one bare key (a second pickup would overwrite the held key)
//   - Presence of a goal gem, bare or locked inside a box
//   - Key/lock pairing consistency (every lock has its content cell to the left)
//   - Colour-chain solvability: the goal colour is obtainable starting from
//     the bare keys and following lock openings
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Element codes used in board strings. Codes 0-11 are key colours, 12 is the
// goal gem, 13 the agent, 14 an empty cell.
const (
	codeGoal  = 12
	codeAgent = 13
	codeEmpty = 14
	numCodes  = 15
)

// Config mirrors the JSON schema for a board configuration.
type Config struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Board       string `json:"board"`
	Seed        int64  `json:"seed"`
}

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validateConfig loads and validates a single configuration JSON file.
// It performs structural checks, board parsing, key/lock classification,
// and colour-chain solvability analysis.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid JSON: %v", err))
		return result
	}

	if config.Name == "" {
		result.Valid = false
		result.Errors = append(result.Errors, "Missing required field: name")
	}
	if config.Board == "" {
		result.Valid = false
		result.Errors = append(result.Errors, "Missing required field: board")
		return result
	}

	board, rows, cols, parseErrs := parseBoard(config.Board)
	if len(parseErrs) > 0 {
		result.Valid = false
		result.Errors = append(result.Errors, parseErrs...)
		return result
	}

	// Exactly one agent
	agentCount := 0
	for _, code := range board {
		if code == codeAgent {
			agentCount++
		}
	}
	if agentCount != 1 {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Board must have exactly 1 agent, got %d", agentCount))
	}

	keys, locks, contents := classifyCells(board, cols)

	// At most one bare key: picking up a second key while holding one would
	// overwrite the held key and desynchronise the engine's incremental hash
	if len(keys) > 1 {
		result.Valid = false
		result.Errors = append(result.Errors,
			fmt.Sprintf("Board has %d bare keys at cells %v; at most 1 is allowed", len(keys), keys))
	}

	// Every lock needs its content cell immediately to the left
	for _, lock := range locks {
		if lock%cols == 0 {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Lock at cell %d has no content cell to its left", lock))
		}
	}

	// A goal gem must exist somewhere
	goalCount := 0
	for _, code := range board {
		if code == codeGoal {
			goalCount++
		}
	}
	if goalCount == 0 {
		result.Valid = false
		result.Errors = append(result.Errors, "Board has no goal gem")
	}

	// Colour-chain solvability
	if result.Valid {
		chainResult := validateColourChain(board, cols, keys, locks)
		if !chainResult.Valid {
			result.Valid = false
		}
		result.Errors = append(result.Errors, chainResult.Errors...)
	}

	// Add informational data
	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", config.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Board: %dx%d", rows, cols))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Bare keys: %d", len(keys)))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Locks: %d", len(locks)))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Box contents: %d", len(contents)))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Seed: %d", config.Seed))
	}

	return result
}

// parseBoard splits the wire-format board string and validates its tokens.
func parseBoard(boardStr string) (board []int, rows, cols int, errs []string) {
	tokens := strings.Split(boardStr, "|")
	if len(tokens) < 3 {
		return nil, 0, 0, []string{"Board string needs at least rows, cols and one cell"}
	}

	rows, err := strconv.Atoi(tokens[0])
	if err != nil {
		return nil, 0, 0, []string{fmt.Sprintf("Rows token %q is not a number", tokens[0])}
	}
	cols, err = strconv.Atoi(tokens[1])
	if err != nil {
		return nil, 0, 0, []string{fmt.Sprintf("Cols token %q is not a number", tokens[1])}
	}
	if rows <= 0 || cols <= 0 {
		return nil, 0, 0, []string{fmt.Sprintf("Board dimensions must be positive, got %dx%d", rows, cols)}
	}
	if len(tokens) != rows*cols+2 {
		return nil, 0, 0, []string{fmt.Sprintf("Board declares %dx%d cells but has %d tokens", rows, cols, len(tokens)-2)}
	}

	board = make([]int, 0, rows*cols)
	for i, token := range tokens[2:] {
		code, err := strconv.Atoi(token)
		if err != nil {
			errs = append(errs, fmt.Sprintf("Cell token %q at index %d is not a number", token, i))
			continue
		}
		if code < 0 || code >= numCodes {
			errs = append(errs, fmt.Sprintf("Invalid element code %d at cell %d", code, i))
			continue
		}
		board = append(board, code)
	}
	if len(errs) > 0 {
		return nil, 0, 0, errs
	}
	return board, rows, cols, nil
}

// isColourCode reports whether a code is a key colour or the goal colour.
func isColourCode(code int) bool {
	return code <= codeGoal
}

// classifyCells splits coloured cells into bare keys, locks, and box
// contents using the horizontal-neighbour rule: a colour with a colour to
// its left is a lock; a colour with no colour to its right is a bare key;
// the rest are box contents.
func classifyCells(board []int, cols int) (keys, locks, contents []int) {
	for idx, code := range board {
		if !isColourCode(code) {
			continue
		}
		col := idx % cols
		leftColour := col > 0 && isColourCode(board[idx-1])
		rightColour := col < cols-1 && isColourCode(board[idx+1])
		switch {
		case leftColour:
			locks = append(locks, idx)
		case !rightColour:
			keys = append(keys, idx)
		default:
			contents = append(contents, idx)
		}
	}
	return keys, locks, contents
}

// validateColourChain checks that the goal colour is obtainable: starting
// from the bare key colours, repeatedly open any lock whose colour is
// already obtainable and add its content colour, until a fixpoint. This
// ignores key consumption and ordering, so it is a necessary condition for
// solvability rather than a full search.
func validateColourChain(board []int, cols int, keys, locks []int) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	obtainable := make(map[int]bool)
	for _, idx := range keys {
		obtainable[board[idx]] = true
	}

	opened := make(map[int]bool)
	for {
		progress := false
		for _, lock := range locks {
			if opened[lock] || !obtainable[board[lock]] {
				continue
			}
			opened[lock] = true
			obtainable[board[lock-1]] = true
			progress = true
		}
		if !progress {
			break
		}
	}

	if !obtainable[codeGoal] {
		result.Valid = false
		result.Errors = append(result.Errors,
			fmt.Sprintf("Colour-chain failure: goal gem unobtainable (%d/%d locks openable)", len(opened), len(locks)))
		for _, lock := range locks {
			if !opened[lock] {
				result.Errors = append(result.Errors,
					fmt.Sprintf("Unopenable: lock c%d at cell %d", board[lock], lock))
			}
		}
	} else {
		result.Errors = append(result.Errors,
			fmt.Sprintf("✓ Colour chain: goal obtainable, %d/%d locks openable", len(opened), len(locks)))
	}

	return result
}

// main scans ../configs for *.json files and validates each one, printing a
// concise report and exiting with non-zero status if any are invalid.
func main() {
	configDir := "../configs"
	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
