package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Board and seed constraints for configuration validation.
const (
	MinBoardSize = 1
	MaxBoardSize = 64
)

// DefaultBoard is the smallest solvable level: a bare key, and a lock pair
// whose box contains the goal key.
const DefaultBoard = "3|3|00|14|13|14|14|14|12|00|14"

// DefaultGameConfig returns the configuration used when none is supplied.
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Name:        "default",
		Description: "Minimal 3x3 board with one key and one lock",
		Board:       DefaultBoard,
		Seed:        0,
	}
}

// ValidateGameConfig validates a game configuration for correctness:
// required fields, board dimensions, and the at-most-one-bare-key authoring
// rule. Malformed cell tokens are not reported here; the board parser
// rejects them at engine construction.
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is required")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Board == "" {
		return fmt.Errorf("config validation: board is required")
	}

	tokens := strings.SplitN(config.Board, "|", 3)
	if len(tokens) < 3 {
		return fmt.Errorf("config validation: board must have rows, cols and cells separated by '|'")
	}
	var rows, cols int
	if _, err := fmt.Sscanf(tokens[0], "%d", &rows); err != nil {
		return fmt.Errorf("config validation: board rows %q is not a number", tokens[0])
	}
	if _, err := fmt.Sscanf(tokens[1], "%d", &cols); err != nil {
		return fmt.Errorf("config validation: board cols %q is not a number", tokens[1])
	}
	if rows < MinBoardSize || rows > MaxBoardSize || cols < MinBoardSize || cols > MaxBoardSize {
		return fmt.Errorf("config validation: board dimensions must be between %d and %d, got %dx%d",
			MinBoardSize, MaxBoardSize, rows, cols)
	}

	// Cell-level checks run only when every token parses cleanly; malformed
	// cells are left to the board parser, which reports ErrInvalidFormat.
	if codes, ok := parseCellCodes(config.Board, rows*cols); ok {
		if bare := countBareKeys(codes, cols); bare > 1 {
			return fmt.Errorf("config validation: board has %d bare keys, at most 1 is supported (picking up a second key would overwrite the held one)", bare)
		}
	}
	return nil
}

// parseCellCodes splits the cell tokens of a board string into element codes.
// The second return is false when any token is missing, non-numeric, or out
// of range.
func parseCellCodes(board string, flatSize int) ([]int, bool) {
	tokens := strings.Split(board, "|")[2:]
	if len(tokens) != flatSize {
		return nil, false
	}
	codes := make([]int, flatSize)
	for i, token := range tokens {
		code, err := strconv.Atoi(token)
		if err != nil || code < 0 || code >= NumBoardElements {
			return nil, false
		}
		codes[i] = code
	}
	return codes, true
}

// countBareKeys counts colour cells with no colour neighbour on either
// horizontal side. Collecting a key stores it into the inventory
// unconditionally, so a level carries at most one bare key: walking onto a
// second one while holding would overwrite the held key and desynchronise
// the incremental hash.
func countBareKeys(codes []int, cols int) int {
	isColour := func(idx int) bool {
		return codes[idx] <= int(ColourGoal)
	}
	bare := 0
	for idx, code := range codes {
		if code > int(ColourGoal) {
			continue
		}
		col := idx % cols
		if col > 0 && isColour(idx-1) {
			continue // lock
		}
		if col < cols-1 && isColour(idx+1) {
			continue // box content
		}
		bare++
	}
	return bare
}

// LoadGameConfig loads a game configuration from a JSON file.
func LoadGameConfig(filename string) (*GameConfig, error) {
	// Support CONFIG_DIR environment variable for an alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadConfigByName loads a game configuration by name from the configs
// directory, appending the .json extension when missing.
func LoadConfigByName(configName string) (*GameConfig, error) {
	if !strings.HasSuffix(configName, ".json") {
		configName = configName + ".json"
	}
	return LoadGameConfig(filepath.Join("configs", configName))
}
