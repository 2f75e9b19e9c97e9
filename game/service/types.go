package service

import (
	"time"

	"github.com/gridgames/boxworld/game/engine"
)

// MaxBulkActions caps the number of actions a single bulk call may execute.
const MaxBulkActions = 1000

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *GameState         `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// GameState is a JSON-friendly snapshot of an engine instance.
type GameState struct {
	Rows       int    `json:"rows"`
	Cols       int    `json:"cols"`
	Board      []int  `json:"board"` // element codes, row-major
	BoardText  string `json:"board_text"`
	AgentIndex int    `json:"agent_index"`
	HoldingKey bool   `json:"holding_key"`
	Inventory  string `json:"inventory,omitempty"` // notation of the held colour
	// Hash is the state hash in decimal. Encoded as a string because JSON
	// numbers cannot carry a full 64-bit value.
	Hash           string   `json:"hash"`
	Solved         bool     `json:"solved"`
	KeysRemaining  int      `json:"keys_remaining"`
	LocksRemaining int      `json:"locks_remaining"`
	TargetIndices  []int    `json:"target_indices"`
	RewardColour   uint64   `json:"reward_colour"`
	RewardIndex    uint64   `json:"reward_index"`
	PossibleMoves  []string `json:"possible_moves"`
}

// StepResult contains the result of a single step operation
type StepResult struct {
	Success   bool        `json:"success"`
	GameState *GameState  `json:"game_state"`
	Message   string      `json:"message,omitempty"`
	Events    []GameEvent `json:"events,omitempty"`
	Step      *StepInfo   `json:"step,omitempty"`
}

// BulkStepResult contains the result of multiple steps
type BulkStepResult struct {
	// Summary
	StepsExecuted  int         `json:"steps_executed"`
	RequestedSteps int         `json:"requested_steps"`
	Success        bool        `json:"success"`
	GameState      *GameState  `json:"game_state"`
	Events         []GameEvent `json:"events"`
	StoppedReason  string      `json:"stopped_reason,omitempty"`
	StopReasonCode string      `json:"stop_reason_code,omitempty"` // solved|invalid_direction
	StoppedOnStep  int         `json:"stopped_on_step,omitempty"`  // 1-based
	Truncated      bool        `json:"truncated,omitempty"`
	Limit          int         `json:"limit,omitempty"`

	// Start/end snapshot
	StartIndex  int    `json:"start_index"`
	EndIndex    int    `json:"end_index"`
	StartHash   string `json:"start_hash"`
	EndHash     string `json:"end_hash"`
	RewardTotal uint64 `json:"reward_total"`
	Solved      bool   `json:"solved"`

	// Per-step compact trace (only for this call)
	Steps []StepInfo `json:"steps,omitempty"`

	Message string `json:"message,omitempty"`
}

// StepInfo is a compact record for each executed action in a bulk call
type StepInfo struct {
	Idx       int    `json:"idx"`
	Dir       string `json:"dir"`
	From      int    `json:"from"`
	To        int    `json:"to"`
	Moved     bool   `json:"moved"`
	Reward    uint64 `json:"reward,omitempty"`
	Collected bool   `json:"collected,omitempty"`
	Opened    bool   `json:"opened,omitempty"`
	Solved    bool   `json:"solved,omitempty"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string    `json:"type"` // "move", "key_collected", "lock_opened", "solved", "reset"
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Index     int       `json:"index,omitempty"` // board index the event refers to
}

// Observation is a flat feature tensor with its shape.
type Observation struct {
	Shape [3]int    `json:"shape"` // channels, width, height
	Data  []float32 `json:"data"`
}

// Image is a rendered RGB frame. Data is base64-encoded in JSON.
type Image struct {
	Shape [3]int `json:"shape"` // height, width, channels
	Data  []byte `json:"data"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Rows        int    `json:"rows"`
	Cols        int    `json:"cols"`
	Seed        int64  `json:"seed"`
}
