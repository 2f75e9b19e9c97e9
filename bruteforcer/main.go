// Command bruteforcer solves a board offline with BFS over the engine's
// state space, then optionally replays the solution against a running server
// session through the REST API.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gridgames/boxworld/game/engine"
)

// GameState mirrors the server's JSON snapshot of a session.
type GameState struct {
	Rows           int    `json:"rows"`
	Cols           int    `json:"cols"`
	Board          []int  `json:"board"`
	AgentIndex     int    `json:"agent_index"`
	HoldingKey     bool   `json:"holding_key"`
	Inventory      string `json:"inventory,omitempty"`
	Hash           string `json:"hash"`
	Solved         bool   `json:"solved"`
	KeysRemaining  int    `json:"keys_remaining"`
	LocksRemaining int    `json:"locks_remaining"`
}

type SessionResponse struct {
	ID         string     `json:"id"`
	ConfigName string     `json:"config_name"`
	GameState  *GameState `json:"game_state"`
}

type BulkStepResponse struct {
	StepsExecuted  int        `json:"steps_executed"`
	RequestedSteps int        `json:"requested_steps"`
	Success        bool       `json:"success"`
	GameState      *GameState `json:"game_state"`
	StoppedReason  string     `json:"stopped_reason,omitempty"`
	StartHash      string     `json:"start_hash"`
	EndHash        string     `json:"end_hash"`
	RewardTotal    uint64     `json:"reward_total"`
	Solved         bool       `json:"solved"`
}

type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) CreateSession(configName string) (*GameState, error) {
	var reqBody []byte
	var err error

	if configName != "" {
		reqBody, err = json.Marshal(map[string]string{"config_name": configName})
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
	}

	resp, err := c.client.Post(c.baseURL+"/api/sessions", "application/json", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("create session failed: %s - %s", resp.Status, string(body))
	}

	var session SessionResponse
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("parse session response: %w", err)
	}

	c.sessionID = session.ID
	return session.GameState, nil
}

func (c *Client) Reset() (*GameState, error) {
	url := fmt.Sprintf("%s/api/sessions/%s/reset", c.baseURL, c.sessionID)
	resp, err := c.client.Post(url, "application/json", nil)
	if err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	defer resp.Body.Close()

	var state GameState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return nil, fmt.Errorf("parse reset response: %w", err)
	}

	return &state, nil
}

func (c *Client) BulkStep(dirs []string) (*BulkStepResponse, error) {
	body, err := json.Marshal(map[string]interface{}{"directions": dirs})
	if err != nil {
		return nil, fmt.Errorf("marshal bulk step: %w", err)
	}

	url := fmt.Sprintf("%s/api/sessions/%s/bulk-step", c.baseURL, c.sessionID)
	resp, err := c.client.Post(url, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("bulk step: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bulk step failed: %s - %s", resp.Status, string(raw))
	}

	var bulkResp BulkStepResponse
	if err := json.Unmarshal(raw, &bulkResp); err != nil {
		return nil, fmt.Errorf("parse bulk step response: %w", err)
	}

	return &bulkResp, nil
}

func main() {
	configName := flag.String("config", "default", "Board configuration name (resolved in the configs directory)")
	configFile := flag.String("config-file", "", "Board configuration file path (overrides -config)")
	serverURL := flag.String("url", "", "Server URL to replay the solution against (empty = offline only)")
	maxStates := flag.Int("max-states", 500000, "Maximum states expanded by BFS")
	maxDepth := flag.Int("max-depth", 200, "Maximum solution length considered by BFS")
	rollouts := flag.Int("rollouts", 50, "Random rollout attempts after BFS budget exhaustion")
	rolloutLen := flag.Int("rollout-len", 500, "Maximum steps per rollout")
	temperature := flag.Float64("temp", 1.0, "Softmax temperature for rollout action sampling")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "Rollout RNG seed")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	var config *engine.GameConfig
	var err error
	if *configFile != "" {
		config, err = engine.LoadGameConfig(*configFile)
	} else {
		config, err = engine.LoadConfigByName(*configName)
		if err != nil && os.IsNotExist(err) && *configName == "default" {
			config, err = engine.DefaultGameConfig(), nil
		}
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	eng, err := engine.NewEngine(config)
	if err != nil {
		log.Fatalf("Failed to build engine: %v", err)
	}
	log.Printf("🎮 Board %q: %dx%d, %d keys, %d locks",
		config.Name, eng.Rows(), eng.Cols(), eng.KeyCount(), eng.LockCount())

	solver := NewSolver(SolverOptions{
		MaxStates:   *maxStates,
		MaxDepth:    *maxDepth,
		Rollouts:    *rollouts,
		RolloutLen:  *rolloutLen,
		Temperature: *temperature,
		Seed:        *seed,
		Verbose:     *verbose,
	})

	path := solver.Solve(eng)
	if path == nil {
		log.Printf("❌ No solution found within budget")
		os.Exit(1)
	}

	dirs := directions(path)
	log.Printf("✅ Solution: %d steps", len(dirs))
	fmt.Println(strings.Join(dirs, " "))

	// Sanity replay on a fresh engine
	replay := eng.Clone()
	if err := replay.Reset(); err != nil {
		log.Fatalf("Failed to reset for replay: %v", err)
	}
	for _, action := range path {
		replay.ApplyAction(action)
	}
	if !replay.IsSolution() {
		log.Fatalf("Replay did not reach the solved state - solver bug")
	}
	log.Printf("Replay verified, final hash %d", replay.GetHash())

	if *serverURL == "" {
		return
	}

	// Drive a live session with the solution
	log.Printf("Connecting to server at %s", *serverURL)
	client := NewClient(*serverURL)

	if _, err := client.CreateSession(config.Name); err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}
	log.Printf("✨ Session created: %s", client.sessionID)

	result, err := client.BulkStep(dirs)
	if err != nil {
		log.Fatalf("Failed to execute solution: %v", err)
	}

	log.Printf("Executed %d/%d steps, reward %d, hash %s → %s",
		result.StepsExecuted, result.RequestedSteps, result.RewardTotal,
		result.StartHash, result.EndHash)
	if result.Solved {
		log.Printf("🎉 SOLVED on session %s", client.sessionID)
	} else {
		log.Printf("⚠️  Session not solved: %s", result.StoppedReason)
		os.Exit(1)
	}
}
