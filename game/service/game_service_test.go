package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/gridgames/boxworld/game/engine"
	"github.com/gridgames/boxworld/game/service"
)

// testBoard has a bare key, a boxed key, and a lock reachable from above:
// the agent starts at index 5, the bare key sits at 6, and the lock pair
// occupies 8 and 9.
const testBoard = "2|5|14|14|14|14|14|13|02|14|04|02"

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	sessions map[string]*service.Session
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{
		sessions: make(map[string]*service.Session),
	}
}

func (m *MockSessionManager) Create(id string, config *engine.GameConfig) (*service.Session, error) {
	// Generate ID if empty (mimics real session manager behavior)
	if id == "" {
		id = fmt.Sprintf("test_%d", len(m.sessions)+1)
	}

	if _, exists := m.sessions[id]; exists {
		return nil, errors.New("session already exists")
	}

	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, err
	}

	session := &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         config,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}

	m.sessions[id] = session
	return session, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	session, exists := m.sessions[id]
	if !exists {
		return nil, errors.New("session not found")
	}
	return session, nil
}

func (m *MockSessionManager) GetOrCreate(id string, config *engine.GameConfig) (*service.Session, error) {
	if session, exists := m.sessions[id]; exists {
		return session, nil
	}
	return m.Create(id, config)
}

func (m *MockSessionManager) List() []*service.Session {
	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	if session, exists := m.sessions[id]; exists {
		session.LastAccessedAt = time.Now()
		return nil
	}
	return errors.New("session not found")
}

func (m *MockSessionManager) Save(id string) error {
	if _, exists := m.sessions[id]; !exists {
		return errors.New("session not found")
	}
	// Mock save - in real implementation this would persist to disk
	return nil
}

// MockConfigManager implements service.ConfigManager for testing
type MockConfigManager struct {
	configs map[string]*engine.GameConfig
}

func NewMockConfigManager() *MockConfigManager {
	defaultConfig := &engine.GameConfig{
		Name:        "test",
		Description: "Test configuration",
		Board:       testBoard,
		Seed:        1,
	}

	return &MockConfigManager{
		configs: map[string]*engine.GameConfig{
			"test":    defaultConfig,
			"default": defaultConfig,
		},
	}
}

func (m *MockConfigManager) LoadConfig(name string) (*engine.GameConfig, error) {
	config, exists := m.configs[name]
	if !exists {
		return nil, errors.New("config not found")
	}
	return config, nil
}

func (m *MockConfigManager) ListConfigs() ([]*service.ConfigInfo, error) {
	result := make([]*service.ConfigInfo, 0, len(m.configs))
	for name, config := range m.configs {
		result = append(result, &service.ConfigInfo{
			Filename:    name + ".json",
			ConfigID:    name,
			Name:        config.Name,
			Description: config.Description,
			Seed:        config.Seed,
		})
	}
	return result, nil
}

func (m *MockConfigManager) GetDefault() *engine.GameConfig {
	return m.configs["default"]
}

func (m *MockConfigManager) SaveConfig(name string, config *engine.GameConfig) error {
	m.configs[name] = config
	return nil
}

// Test cases
func TestGameService_CreateSession(t *testing.T) {
	ctx := context.Background()
	sessions := NewMockSessionManager()
	configs := NewMockConfigManager()
	svc := service.NewGameService(sessions, configs)

	tests := []struct {
		name       string
		configName string
		wantErr    bool
	}{
		{
			name:       "create with default config",
			configName: "",
			wantErr:    false,
		},
		{
			name:       "create with specific config",
			configName: "test",
			wantErr:    false,
		},
		{
			name:       "create with invalid config",
			configName: "nonexistent",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := svc.CreateSession(ctx, tt.configName)
			if (err != nil) != tt.wantErr {
				t.Errorf("CreateSession() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr {
				if session == nil {
					t.Fatal("CreateSession() returned nil session")
				}
				if session.GameState == nil || session.GameState.AgentIndex != 5 {
					t.Errorf("CreateSession() state = %+v", session.GameState)
				}
			}
		})
	}
}

func TestGameService_Step(t *testing.T) {
	ctx := context.Background()
	sessions := NewMockSessionManager()
	configs := NewMockConfigManager()
	svc := service.NewGameService(sessions, configs)

	sessionInfo, err := svc.CreateSession(ctx, "test")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	tests := []struct {
		name      string
		sessionID string
		direction string
		reset     bool
		wantErr   bool
	}{
		{
			name:      "valid step up",
			sessionID: sessionInfo.ID,
			direction: "up",
			reset:     false,
			wantErr:   false,
		},
		{
			name:      "valid step with reset",
			sessionID: sessionInfo.ID,
			direction: "right",
			reset:     true,
			wantErr:   false,
		},
		{
			name:      "invalid session",
			sessionID: "nonexistent",
			direction: "up",
			reset:     false,
			wantErr:   true,
		},
		{
			name:      "invalid direction",
			sessionID: sessionInfo.ID,
			direction: "diagonal",
			reset:     false,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.Step(ctx, tt.sessionID, tt.direction, tt.reset)
			if (err != nil) != tt.wantErr {
				t.Errorf("Step() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && result == nil {
				t.Error("Step() returned nil result")
			}
		})
	}

	// A step onto the bare key reports the pickup.
	if _, err := svc.Reset(ctx, sessionInfo.ID); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	res, err := svc.Step(ctx, sessionInfo.ID, "right", false)
	if err != nil {
		t.Fatalf("Step right failed unexpectedly: %v", err)
	}
	if res.Step == nil || !res.Step.Moved || !res.Step.Collected {
		t.Errorf("Expected a collecting step, got %+v", res.Step)
	}
	if !res.GameState.HoldingKey || res.GameState.Inventory != engine.Colour2.String() {
		t.Errorf("Expected inventory to hold the key, state = %+v", res.GameState)
	}

	// A blocked step is a no-op, not an error.
	res, err = svc.Step(ctx, sessionInfo.ID, "down", false)
	if err != nil {
		t.Fatalf("Step down failed unexpectedly: %v", err)
	}
	if res.Step.Moved {
		t.Error("Expected a blocked step at the board edge")
	}
	if res.Message != "blocked" {
		t.Errorf("Expected blocked message, got %q", res.Message)
	}
}

func TestGameService_BulkStep(t *testing.T) {
	ctx := context.Background()
	sessions := NewMockSessionManager()
	configs := NewMockConfigManager()
	svc := service.NewGameService(sessions, configs)

	sessionInfo, err := svc.CreateSession(ctx, "test")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	tests := []struct {
		name      string
		sessionID string
		steps     []string
		reset     bool
		wantErr   bool
	}{
		{
			name:      "valid bulk steps",
			sessionID: sessionInfo.ID,
			steps:     []string{"up", "right", "down", "left"},
			reset:     false,
			wantErr:   false,
		},
		{
			name:      "bulk steps with reset",
			sessionID: sessionInfo.ID,
			steps:     []string{"up", "up"},
			reset:     true,
			wantErr:   false,
		},
		{
			name:      "empty steps",
			sessionID: sessionInfo.ID,
			steps:     []string{},
			reset:     false,
			wantErr:   false,
		},
		{
			name:      "invalid session",
			sessionID: "nonexistent",
			steps:     []string{"up"},
			reset:     false,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.BulkStep(ctx, tt.sessionID, tt.steps, tt.reset)
			if (err != nil) != tt.wantErr {
				t.Errorf("BulkStep() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && result == nil {
				t.Error("BulkStep() returned nil result")
			}
			if !tt.wantErr && result != nil {
				if result.RequestedSteps != len(tt.steps) {
					t.Errorf("BulkStep() RequestedSteps = %v, want %v", result.RequestedSteps, len(tt.steps))
				}
			}
		})
	}

	// Walking the full opening sequence reports the pickup and the unlock.
	if _, err := svc.Reset(ctx, sessionInfo.ID); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	res, err := svc.BulkStep(ctx, sessionInfo.ID, []string{"right", "up", "right", "right", "right", "down"}, false)
	if err != nil {
		t.Fatalf("BulkStep opening sequence failed: %v", err)
	}
	if res.StepsExecuted != 6 {
		t.Errorf("Expected 6 executed steps, got %d", res.StepsExecuted)
	}
	if !res.Steps[0].Collected {
		t.Errorf("Expected step 1 to collect the bare key, got %+v", res.Steps[0])
	}
	last := res.Steps[len(res.Steps)-1]
	if !last.Opened {
		t.Errorf("Expected the final step to open the lock, got %+v", last)
	}
	if res.RewardTotal == 0 {
		t.Error("Expected a non-zero reward total")
	}
	if res.StartHash == res.EndHash {
		t.Error("Expected the hash to change over the run")
	}

	// An unknown direction stops the run with a diagnostic.
	res, err = svc.BulkStep(ctx, sessionInfo.ID, []string{"left", "sideways", "left"}, true)
	if err != nil {
		t.Fatalf("BulkStep with bad direction failed: %v", err)
	}
	if res.Success {
		t.Error("Expected failure on an unknown direction")
	}
	if res.StopReasonCode != "invalid_direction" || res.StoppedOnStep != 2 {
		t.Errorf("Expected invalid_direction at step 2, got code=%s step=%d", res.StopReasonCode, res.StoppedOnStep)
	}
	if res.StepsExecuted != 1 {
		t.Errorf("Expected 1 executed step before the stop, got %d", res.StepsExecuted)
	}
}

func TestGameService_SetKey(t *testing.T) {
	ctx := context.Background()
	sessions := NewMockSessionManager()
	configs := NewMockConfigManager()
	svc := service.NewGameService(sessions, configs)

	sessionInfo, err := svc.CreateSession(ctx, "test")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	// Rejected while a bare key remains on the board.
	if _, err := svc.SetKey(ctx, sessionInfo.ID, "4"); err == nil {
		t.Error("Expected SetKey to fail while a bare key is uncollected")
	}

	// Collect the bare key, open the lock, then drop-in a colour is still
	// rejected because a key is held.
	if _, err := svc.BulkStep(ctx, sessionInfo.ID, []string{"right"}, false); err != nil {
		t.Fatalf("BulkStep failed: %v", err)
	}
	if _, err := svc.SetKey(ctx, sessionInfo.ID, "c"); err == nil {
		t.Error("Expected SetKey to fail while a key is held")
	}
}

func TestGameService_ObservationAndImage(t *testing.T) {
	ctx := context.Background()
	sessions := NewMockSessionManager()
	configs := NewMockConfigManager()
	svc := service.NewGameService(sessions, configs)

	sessionInfo, err := svc.CreateSession(ctx, "test")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	obs, err := svc.GetObservation(ctx, sessionInfo.ID)
	if err != nil {
		t.Fatalf("GetObservation() error = %v", err)
	}
	if len(obs.Data) != obs.Shape[0]*obs.Shape[1]*obs.Shape[2] {
		t.Errorf("Observation data length %d does not match shape %v", len(obs.Data), obs.Shape)
	}

	img, err := svc.GetImage(ctx, sessionInfo.ID)
	if err != nil {
		t.Fatalf("GetImage() error = %v", err)
	}
	if len(img.Data) != img.Shape[0]*img.Shape[1]*img.Shape[2] {
		t.Errorf("Image data length %d does not match shape %v", len(img.Data), img.Shape)
	}

	if _, err := svc.GetObservation(ctx, "nonexistent"); err == nil {
		t.Error("Expected an error for a missing session")
	}
}

func TestGameService_ListSessions(t *testing.T) {
	ctx := context.Background()
	sessions := NewMockSessionManager()
	configs := NewMockConfigManager()
	svc := service.NewGameService(sessions, configs)

	for i := 0; i < 3; i++ {
		_, err := svc.CreateSession(ctx, "test")
		if err != nil {
			t.Fatalf("Failed to create session %d: %v", i, err)
		}
	}

	sessionList, err := svc.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions() error = %v", err)
	}

	if len(sessionList) != 3 {
		t.Errorf("ListSessions() returned %d sessions, want 3", len(sessionList))
	}
}

func TestGameService_Reset(t *testing.T) {
	ctx := context.Background()
	sessions := NewMockSessionManager()
	configs := NewMockConfigManager()
	svc := service.NewGameService(sessions, configs)

	sessionInfo, err := svc.CreateSession(ctx, "test")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	if _, err := svc.Step(ctx, sessionInfo.ID, "right", false); err != nil {
		t.Fatalf("Failed to step: %v", err)
	}

	state, err := svc.Reset(ctx, sessionInfo.ID)
	if err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	if state == nil {
		t.Fatal("Reset() returned nil state")
	}
	if state.AgentIndex != 5 || state.HoldingKey {
		t.Errorf("Reset() did not restore the starting state: %+v", state)
	}
}
