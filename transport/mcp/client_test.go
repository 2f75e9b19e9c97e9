package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gridgames/boxworld/game/engine"
	"github.com/gridgames/boxworld/game/service"
	"github.com/mark3labs/mcp-go/mcp"
)

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL)

	if client == nil {
		t.Fatal("Expected client to be created")
	}

	if client.baseURL != baseURL {
		t.Errorf("Expected baseURL %s, got %s", baseURL, client.baseURL)
	}

	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}

	if client.mcpServer == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	// Create a test server that returns a known response
	expectedResponse := map[string]interface{}{
		"id":          "test-session",
		"agent_index": 4,
		"solved":      false,
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(expectedResponse)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var response map[string]interface{}
	err := client.apiCall("GET", "/api", nil, &response)
	if err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}

	// Check that we got the expected response
	if response["id"] != expectedResponse["id"] {
		t.Errorf("Expected id %v, got %v", expectedResponse["id"], response["id"])
	}
}

func TestClient_apiCall_Error(t *testing.T) {
	client := NewClient("http://invalid-url-that-does-not-exist:9999")

	err := client.apiCall("GET", "/api", nil, nil)
	if err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.apiCall("GET", "/api", nil, nil)
	if err == nil {
		t.Error("Expected error for HTTP 500 response")
	}

	if !strings.Contains(err.Error(), "API error") {
		t.Errorf("Expected 'API error' in error message, got: %v", err)
	}
}

func TestClient_createSession(t *testing.T) {
	// Mock server that responds to session creation
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/sessions" {
			t.Errorf("Expected POST /api/sessions, got %s %s", r.Method, r.URL.Path)
		}

		resp := service.SessionInfo{
			ID:         "test-session-123",
			ConfigName: "classic",
			GameState: &service.GameState{
				AgentIndex: 12,
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()

	// Test create session without config
	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      "create_session",
			Arguments: map[string]interface{}{},
		},
	}

	result, err := client.handleCreateSession(ctx, request)
	if err != nil {
		t.Fatalf("createSession failed: %v", err)
	}

	if result == nil {
		t.Fatal("Expected result, got nil")
	}

	// Check that the result contains the session ID
	resultStr, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}

	if !strings.Contains(resultStr.Text, "test-session-123") {
		t.Errorf("Expected session ID in result, got: %s", resultStr.Text)
	}
}

func TestFormatGameState(t *testing.T) {
	gameState := &service.GameState{
		Rows: 3,
		Cols: 3,
		Board: []int{
			int(engine.Colour0), int(engine.Empty), int(engine.Agent),
			int(engine.Empty), int(engine.Empty), int(engine.Empty),
			int(engine.ColourGoal), int(engine.Colour0), int(engine.Empty),
		},
		AgentIndex:     2,
		HoldingKey:     true,
		Inventory:      "c0",
		Hash:           "123456789",
		KeysRemaining:  1,
		LocksRemaining: 1,
		PossibleMoves:  []string{"down", "left"},
	}

	result := formatGameState(gameState)

	expectedFields := []string{
		"Agent: cell 2",
		"Inventory: c0",
		"Hash: 123456789",
		"@@",
		"GG",
		"c0",
		"Possible moves: down,left",
	}

	for _, field := range expectedFields {
		if !strings.Contains(result, field) {
			t.Errorf("Expected field '%s' in formatted output, got: %s", field, result)
		}
	}

	if strings.Contains(result, "SOLVED") {
		t.Error("Unsolved board should not report SOLVED")
	}
}

func TestFormatGameState_Solved(t *testing.T) {
	gameState := &service.GameState{
		Rows:       1,
		Cols:       2,
		Board:      []int{int(engine.Agent), int(engine.Empty)},
		AgentIndex: 0,
		HoldingKey: true,
		Inventory:  "goal",
		Solved:     true,
	}

	result := formatGameState(gameState)

	if !strings.Contains(result, "SOLVED!") {
		t.Errorf("Expected 'SOLVED!' in result, got: %s", result)
	}
}

func TestFormatStepResult(t *testing.T) {
	stepResult := &service.StepResult{
		Success: true,
		GameState: &service.GameState{
			Rows:       1,
			Cols:       3,
			Board:      []int{int(engine.Empty), int(engine.Agent), int(engine.Empty)},
			AgentIndex: 1,
		},
		Step: &service.StepInfo{Dir: "right", From: 0, To: 1, Moved: true},
		Events: []service.GameEvent{
			{Type: "move", Message: "moved right"},
		},
	}

	result := formatStepResult(stepResult)

	expectedFields := []string{
		"✓ Step applied",
		"Step: right 0→1 moved",
		"move: moved right",
		"Agent: cell 1",
	}

	for _, field := range expectedFields {
		if !strings.Contains(result, field) {
			t.Errorf("Expected field '%s' in formatted output, got: %s", field, result)
		}
	}
}

func TestFormatStepResult_Blocked(t *testing.T) {
	stepResult := &service.StepResult{
		Success: true,
		Message: "blocked",
		GameState: &service.GameState{
			Rows:       1,
			Cols:       1,
			Board:      []int{int(engine.Agent)},
			AgentIndex: 0,
		},
		Step: &service.StepInfo{Dir: "up", From: 0, To: 0, Moved: false},
	}

	result := formatStepResult(stepResult)

	if !strings.Contains(result, "blocked") {
		t.Errorf("Expected 'blocked' in result, got: %s", result)
	}
}

func TestClassifyColourCell(t *testing.T) {
	// agent | bare c2 | empty | content c4 | lock c2
	state := &service.GameState{
		Rows: 1,
		Cols: 5,
		Board: []int{
			int(engine.Agent), int(engine.Colour2), int(engine.Empty),
			int(engine.Colour4), int(engine.Colour2),
		},
	}

	tests := []struct {
		index int
		want  string
	}{
		{1, "key"},
		{3, "content"},
		{4, "lock"},
	}

	for _, tt := range tests {
		if got := classifyColourCell(state, tt.index); got != tt.want {
			t.Errorf("classifyColourCell(%d) = %s, want %s", tt.index, got, tt.want)
		}
	}
}

func TestClient_handleGameInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080")
	ctx := context.Background()

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      "game_instructions",
			Arguments: map[string]interface{}{},
		},
	}

	result, err := client.handleGameInstructions(ctx, request)
	if err != nil {
		t.Fatalf("handleGameInstructions failed: %v", err)
	}

	if result == nil {
		t.Fatal("Expected result, got nil")
	}

	// Check that the result contains game instructions
	resultStr, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}

	expectedContent := []string{
		"BoxWorld Puzzle - Complete Instructions",
		"GAME OBJECTIVE:",
		"BOARD REPRESENTATION:",
		"KEY/LOCK CLASSIFICATION",
		"MOVEMENT RULES:",
		"STRATEGY NOTES:",
		"MOVEMENT COMMANDS:",
		"SESSION MANAGEMENT:",
	}

	for _, content := range expectedContent {
		if !strings.Contains(resultStr.Text, content) {
			t.Errorf("Expected '%s' in instructions, got: %s", content, resultStr.Text)
		}
	}
}

func TestClient_Integration(t *testing.T) {
	// Integration test that verifies the client can be created and initialized without errors
	client := NewClient("http://localhost:8080")

	if client == nil {
		t.Fatal("Failed to create client")
	}

	// Test that the MCP server has been properly configured with tools
	if client.mcpServer == nil {
		t.Fatal("MCP server not initialized")
	}

	if client.baseURL == "" {
		t.Error("Base URL not set")
	}

	if client.httpClient == nil {
		t.Error("HTTP client not initialized")
	}
}
