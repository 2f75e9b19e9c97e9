package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gridgames/boxworld/game/engine"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

// StateFromEngine builds the JSON snapshot of an engine instance.
func StateFromEngine(e *engine.GameEngine) *GameState {
	flatSize := e.Rows() * e.Cols()
	board := make([]int, flatSize)
	for i := 0; i < flatSize; i++ {
		board[i] = int(e.GetItem(i))
	}

	state := &GameState{
		Rows:           e.Rows(),
		Cols:           e.Cols(),
		Board:          board,
		BoardText:      e.String(),
		AgentIndex:     e.GetAgentIndex(),
		Hash:           strconv.FormatUint(e.GetHash(), 10),
		Solved:         e.IsSolution(),
		KeysRemaining:  e.KeyCount(),
		LocksRemaining: e.LockCount(),
		TargetIndices:  e.GetTargetIndices(),
		RewardColour:   e.GetRewardSignal(true),
		RewardIndex:    e.GetRewardSignal(false),
	}
	if colour, holding := e.GetInventory(); holding {
		state.HoldingKey = true
		state.Inventory = colour.String()
	}
	for _, act := range e.LegalActions() {
		state.PossibleMoves = append(state.PossibleMoves, act.String())
	}
	return state
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Load configuration
	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			// Provide helpful error message with available options
			if strings.Contains(err.Error(), "configuration not found") {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s' not found. Available configs: %v", configName, configIDs)
				}
				return nil, fmt.Errorf("config '%s' not found. Use /api/configs to list available configurations", configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	session, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	// Prefer the input configName if provided, otherwise look up the
	// config_id by display name
	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	return &SessionInfo{
		ID:             session.ID,
		ConfigName:     configID,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      StateFromEngine(session.Engine),
		GameConfig:     session.Config,
	}, nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	return &SessionInfo{
		ID:             session.ID,
		ConfigName:     s.getConfigID(session.Config.Name),
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      StateFromEngine(session.Engine),
		GameConfig:     session.Config,
	}, nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))

	for _, sess := range sessions {
		result = append(result, &SessionInfo{
			ID:             sess.ID,
			ConfigName:     s.getConfigID(sess.Config.Name),
			CreatedAt:      sess.CreatedAt,
			LastAccessedAt: sess.LastAccessedAt,
			GameState:      StateFromEngine(sess.Engine),
			GameConfig:     sess.Config,
		})
	}

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// applyStep runs one action on a session and records what happened.
func (s *gameServiceImpl) applyStep(sess *Session, idx int, direction string) (StepInfo, []GameEvent, error) {
	action, err := engine.ParseAction(strings.ToLower(direction))
	if err != nil {
		return StepInfo{}, nil, fmt.Errorf("invalid direction %q: %w", direction, err)
	}

	eng := sess.Engine
	from := eng.GetAgentIndex()
	keysBefore := eng.KeyCount()
	locksBefore := eng.LockCount()

	eng.ApplyAction(action)

	to := eng.GetAgentIndex()
	step := StepInfo{
		Idx:       idx,
		Dir:       action.String(),
		From:      from,
		To:        to,
		Moved:     from != to,
		Reward:    eng.GetRewardSignal(true),
		Collected: eng.KeyCount() < keysBefore,
		Opened:    eng.LockCount() < locksBefore,
		Solved:    eng.IsSolution(),
	}

	events := []GameEvent{{
		Type:      "move",
		Message:   fmt.Sprintf("Moved %s to index %d", step.Dir, to),
		Timestamp: time.Now(),
		Index:     to,
	}}
	if step.Collected {
		events = append(events, GameEvent{
			Type:      "key_collected",
			Message:   fmt.Sprintf("Collected key at index %d", to),
			Timestamp: time.Now(),
			Index:     to,
		})
	}
	if step.Opened {
		events = append(events, GameEvent{
			Type:      "lock_opened",
			Message:   fmt.Sprintf("Opened lock at index %d", to),
			Timestamp: time.Now(),
			Index:     to,
		})
	}
	if step.Solved {
		events = append(events, GameEvent{
			Type:      "solved",
			Message:   "Goal key collected",
			Timestamp: time.Now(),
			Index:     to,
		})
	}
	return step, events, nil
}

// Step executes a single action for a session
func (s *gameServiceImpl) Step(ctx context.Context, sessionID, direction string, reset bool) (*StepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	events := []GameEvent{}
	if reset {
		if err := sess.Engine.Reset(); err != nil {
			return nil, fmt.Errorf("failed to reset session: %w", err)
		}
		events = append(events, GameEvent{
			Type:      "reset",
			Message:   "Game reset to initial state",
			Timestamp: time.Now(),
		})
	}

	step, stepEvents, err := s.applyStep(sess, 1, direction)
	if err != nil {
		return nil, err
	}
	events = append(events, stepEvents...)

	result := &StepResult{
		Success:   true,
		GameState: StateFromEngine(sess.Engine),
		Events:    events,
		Step:      &step,
	}
	if !step.Moved {
		result.Message = "blocked"
	}

	// Auto-save session after the step
	if err := s.sessions.Save(sessionID); err != nil {
		fmt.Printf("Warning: Failed to persist session %s after step: %v\n", sessionID, err)
	}

	return result, nil
}

// BulkStep executes multiple actions in sequence. Blocked actions are no-ops
// and do not stop the run; solving the level does.
func (s *gameServiceImpl) BulkStep(ctx context.Context, sessionID string, directions []string, reset bool) (*BulkStepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	result := &BulkStepResult{
		RequestedSteps: len(directions),
		Events:         make([]GameEvent, 0),
		Success:        true,
	}

	if reset {
		if err := sess.Engine.Reset(); err != nil {
			return nil, fmt.Errorf("failed to reset session: %w", err)
		}
		result.Events = append(result.Events, GameEvent{
			Type:      "reset",
			Message:   "Game reset to initial state",
			Timestamp: time.Now(),
		})
	}

	result.StartIndex = sess.Engine.GetAgentIndex()
	result.StartHash = strconv.FormatUint(sess.Engine.GetHash(), 10)

	// Limit actions to prevent abuse
	if len(directions) > MaxBulkActions {
		result.Truncated = true
		result.Limit = MaxBulkActions
		directions = directions[:MaxBulkActions]
	}

	for i, direction := range directions {
		if sess.Engine.IsSolution() {
			result.StoppedReason = "level already solved"
			result.StopReasonCode = "solved"
			result.StoppedOnStep = i + 1
			break
		}

		step, events, err := s.applyStep(sess, i+1, direction)
		if err != nil {
			result.Success = false
			result.StoppedReason = fmt.Sprintf("step %d: invalid direction %q", i+1, direction)
			result.StopReasonCode = "invalid_direction"
			result.StoppedOnStep = i + 1
			break
		}

		result.StepsExecuted++
		result.RewardTotal += step.Reward
		result.Steps = append(result.Steps, step)
		result.Events = append(result.Events, events...)
	}

	result.GameState = StateFromEngine(sess.Engine)
	result.EndIndex = sess.Engine.GetAgentIndex()
	result.EndHash = strconv.FormatUint(sess.Engine.GetHash(), 10)
	result.Solved = sess.Engine.IsSolution()
	if result.Solved {
		result.Message = "Goal key collected"
	}

	// Auto-save session after bulk steps
	if err := s.sessions.Save(sessionID); err != nil {
		fmt.Printf("Warning: Failed to persist session %s after bulk steps: %v\n", sessionID, err)
	}

	return result, nil
}

// Reset resets a game session to initial state
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	if err := sess.Engine.Reset(); err != nil {
		return nil, fmt.Errorf("failed to reset session: %w", err)
	}

	// Auto-save session after reset
	if err := s.sessions.Save(sessionID); err != nil {
		fmt.Printf("Warning: Failed to persist session %s after reset: %v\n", sessionID, err)
	}

	return StateFromEngine(sess.Engine), nil
}

// SetKey places a colour directly into the session's inventory. The colour
// may be given as a decimal element code or as single-character notation.
func (s *gameServiceImpl) SetKey(ctx context.Context, sessionID, colour string) (*GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	var element engine.Element
	if code, convErr := strconv.Atoi(colour); convErr == nil {
		if code < 0 || code >= engine.NumColours {
			return nil, fmt.Errorf("colour code %d out of range: %w", code, engine.ErrInvalidArgument)
		}
		element = engine.Element(code)
	} else {
		element, err = engine.ParseElement(colour)
		if err != nil {
			return nil, fmt.Errorf("unknown colour %q: %w", colour, err)
		}
	}

	s.sessions.UpdateLastAccessed(sessionID)
	if err := sess.Engine.SetKey(element); err != nil {
		return nil, fmt.Errorf("cannot set key %q: %w", colour, err)
	}

	if err := s.sessions.Save(sessionID); err != nil {
		fmt.Printf("Warning: Failed to persist session %s after set-key: %v\n", sessionID, err)
	}

	return StateFromEngine(sess.Engine), nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return StateFromEngine(sess.Engine), nil
}

// GetObservation returns the feature-tensor encoding of the current state
func (s *gameServiceImpl) GetObservation(ctx context.Context, sessionID string) (*Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return &Observation{
		Shape: sess.Engine.ObservationShape(),
		Data:  sess.Engine.GetObservation(),
	}, nil
}

// GetImage returns the rendered RGB frame of the current state
func (s *gameServiceImpl) GetImage(ctx context.Context, sessionID string) (*Image, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return &Image{
		Shape: sess.Engine.ImageShape(),
		Data:  sess.Engine.ToImage(),
	}, nil
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}
