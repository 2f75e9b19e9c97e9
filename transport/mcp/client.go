package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gridgames/boxworld/game/engine"
	"github.com/gridgames/boxworld/game/service"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"BoxWorld Puzzle Server",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`BoxWorld Puzzle Server - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Collect keys, open matching locks, and reach the goal gem. The puzzle is
solved when the goal colour enters your inventory.

AVAILABLE TOOLS:
- game_state: Get current board state
- step: Single step (up/down/left/right) - requires intent explanation
- bulk_step: Multiple steps at once - requires intent explanation
- reset_game: Reset board to starting layout
- set_key: Override the held key colour (debugging aid)
- create_session: Create new game session
- get_session: Get session details
- list_sessions: List all active sessions
- list_configs: List available board configurations
- game_instructions: Get comprehensive game rules
- describe_cell: Classify a board cell (bare key, lock, or box content)

NOTE: The 'intent' parameter on step/bulk_step tools serves as rubber duck debugging - explain your reasoning!`),
	)

	// Register all tools
	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_name": map[string]interface{}{
					"type":        "string",
					"description": "Name of the board config to use (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID to retrieve",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current board state",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "step",
		Description: "Move the agent one cell in a direction",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"up", "down", "left", "right"},
					"description": "Direction to step",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this step (serves as a rubber duck to help explain your reasoning)",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset before stepping",
				},
			},
			Required: []string{"session_id", "direction"},
		},
	}, c.handleStep)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_step",
		Description: "Execute multiple steps in sequence",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"directions": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
						"enum": []string{"up", "down", "left", "right"},
					},
					"description": "Array of directions",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this sequence of steps (serves as a rubber duck to help explain your reasoning)",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset before stepping",
				},
			},
			Required: []string{"session_id", "directions"},
		},
	}, c.handleBulkStep)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Reset the board to its starting layout",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "set_key",
		Description: "Override the held key colour. Accepts colour notation (c0-c11) or a numeric code.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"colour": map[string]interface{}{
					"type":        "string",
					"description": "Key colour to hold, e.g. c3",
				},
			},
			Required: []string{"session_id", "colour"},
		},
	}, c.handleSetKey)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available board configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Classify a board cell by flat index: bare key, lock, box content, agent, goal, or empty. Useful for verifying which keys are safe to collect.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"index": map[string]interface{}{
					"type":        "integer",
					"description": "Flat cell index (row*cols + col, 0-based)",
				},
			},
			Required: []string{"session_id", "index"},
		},
	}, c.handleDescribeCell)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	configName, _ := args["config_name"].(string)

	body := map[string]string{}
	if configName != "" {
		body["config_name"] = configName
	}

	var session service.SessionInfo
	err := c.apiCall("POST", "/api/sessions", body, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n", session.ID, session.ConfigName)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	err := c.apiCall("GET", "/api/sessions", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		result += fmt.Sprintf("- %s (Config: %s, Created: %s)\n",
			s.ID, s.ConfigName, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var session service.SessionInfo
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s", sessionID), nil, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatSessionInfo(&session)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var state service.GameState
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/state", sessionID), nil, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatGameState(&state)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	direction, _ := args["direction"].(string)
	intent, _ := args["intent"].(string)
	reset, _ := args["reset"].(bool)

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = intent

	body := map[string]interface{}{
		"direction": direction,
		"reset":     reset,
	}

	var result service.StepResult
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/step", sessionID), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := formatStepResult(&result)
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleBulkStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	directionsRaw, _ := args["directions"].([]interface{})
	intent, _ := args["intent"].(string)
	reset, _ := args["reset"].(bool)

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = intent

	// Convert directions to string array
	directions := make([]string, 0, len(directionsRaw))
	for _, d := range directionsRaw {
		if dir, ok := d.(string); ok {
			directions = append(directions, dir)
		}
	}

	body := map[string]interface{}{
		"directions": directions,
		"reset":      reset,
	}

	var result service.BulkStepResult
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/bulk-step", sessionID), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := formatBulkStepResult(sessionID, &result)
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var state service.GameState
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/reset", sessionID), nil, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Board reset to starting layout\n\n" + formatGameState(&state)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleSetKey(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	colour, _ := args["colour"].(string)

	body := map[string]interface{}{
		"colour": colour,
	}

	var state service.GameState
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/key", sessionID), body, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Inventory set to %s\n\n%s", colour, formatGameState(&state))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count   int                   `json:"count"`
		Configs []service.ConfigInfo `json:"configs"`
	}
	err := c.apiCall("GET", "/api/configs", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Configurations:\n\n"
	for _, config := range response.Configs {
		result += fmt.Sprintf("• %s\n  %s\n  Board: %dx%d, Seed: %d\n\n",
			config.Name, config.Description, config.Rows, config.Cols, config.Seed)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `BoxWorld Puzzle - Complete Instructions

GAME OBJECTIVE:
Collect keys, open matching locks, and obtain the goal gem. The puzzle is
solved when the goal colour enters your inventory.

BOARD REPRESENTATION:
The board is a grid of cells. Each cell holds one element:
• c0-c11 - Coloured key or lock (twelve colours)
• GG     - Goal gem (collecting it solves the puzzle)
• @@     - Agent (your position)
• ..     - Empty cell

KEY/LOCK CLASSIFICATION (READ CAREFULLY):
The same colour codes are used for keys and locks. Classification depends
entirely on horizontal neighbours:
• A coloured cell whose LEFT neighbour is also a colour is a LOCK.
• A coloured cell whose RIGHT neighbour is NOT a colour is a BARE KEY
  (free to pick up).
• Otherwise the cell is BOX CONTENT - the left half of a lock pair. You
  cannot step onto it directly; it is released when the lock opens.
Use the describe_cell tool whenever unsure.

MOVEMENT RULES:
• Stepping onto an empty cell or the goal just moves the agent.
• Stepping onto a bare key picks it up - but only if your inventory is
  EMPTY. Holding a key blocks further pickups.
• Stepping onto a lock opens it only when your held key colour matches the
  lock colour. The box content replaces your inventory.
• All other steps are no-ops: the agent stays put and nothing changes.

STRATEGY NOTES:
• Keys are single-use: opening a lock consumes the held key.
• Picking up the wrong bare key can dead-end the puzzle, since you cannot
  drop a key. Plan the full key-lock chain before collecting anything.
• The content hash in game_state uniquely identifies a board position.
  Identical hashes mean identical positions - useful for loop detection.
• bulk_step is more efficient than repeated step calls. Blocked steps do
  not stop a bulk run; only solving the board or an invalid direction does.

MOVEMENT COMMANDS:
- up, down, left, right - single steps in cardinal directions
- bulk_step - execute a whole walk in one call
- Reset parameter available for fresh starts

SESSION MANAGEMENT:
- Multiple puzzle sessions can run simultaneously
- Each session has a unique 4-character ID
- Sessions maintain independent board state and configuration

Remember: classify every coloured cell before touching it. The most common
failure is grabbing a bare key that belongs later in the chain.`

	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	index := int(args["index"].(float64))

	var state service.GameState
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/state", sessionID), nil, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if index < 0 || index >= len(state.Board) {
		return mcp.NewToolResultError(fmt.Sprintf("Index %d is out of bounds. Board has %d cells (0-%d)",
			index, len(state.Board), len(state.Board)-1)), nil
	}

	elem := engine.Element(state.Board[index])
	row := index / state.Cols
	col := index % state.Cols

	var cellType, description string
	switch {
	case elem == engine.Agent:
		cellType = "Agent"
		description = "Your current position"
	case elem == engine.Empty:
		cellType = "Empty"
		description = "Empty cell - safe to step onto"
	case elem.IsColour():
		// The goal colour participates in key/lock classification like any
		// other colour: it can be a bare pickup or locked inside a box.
		switch classifyColourCell(&state, index) {
		case "lock":
			cellType = "Lock"
			description = fmt.Sprintf("Lock of colour %s - opens only while holding a %s key; releases the cell to its left", elem, elem)
		case "key":
			if elem == engine.ColourGoal {
				cellType = "Goal"
				description = "Goal gem, free to collect - stepping onto it solves the puzzle"
			} else {
				cellType = "Bare key"
				description = fmt.Sprintf("Bare key of colour %s - picked up on step when inventory is empty", elem)
			}
		default:
			if elem == engine.ColourGoal {
				cellType = "Goal (boxed)"
				description = "Goal gem locked inside a box - released when the lock to its right opens"
			} else {
				cellType = "Box content"
				description = fmt.Sprintf("Box content of colour %s - left half of a lock pair, released when the lock to its right opens", elem)
			}
		}
	default:
		cellType = "Unknown"
		description = "Unrecognised element code"
	}

	result := fmt.Sprintf(`Cell %d (row %d, col %d):
Element: %s
Type: %s
Description: %s`,
		index, row, col, elem, cellType, description)

	return mcp.NewToolResultText(result), nil
}

// classifyColourCell mirrors the board's key/lock classification: a colour
// with a colour to its left is a lock, a colour with a non-colour to its
// right is a bare key, anything else is box content.
func classifyColourCell(state *service.GameState, index int) string {
	col := index % state.Cols
	if col > 0 && engine.Element(state.Board[index-1]).IsColour() {
		return "lock"
	}
	if col == state.Cols-1 || !engine.Element(state.Board[index+1]).IsColour() {
		return "key"
	}
	return "content"
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatGameState(state *service.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var result strings.Builder

	inventory := "empty"
	if state.HoldingKey {
		inventory = state.Inventory
	}
	result.WriteString(fmt.Sprintf("Agent: cell %d | Inventory: %s | Keys: %d | Locks: %d | Hash: %s\n\n",
		state.AgentIndex, inventory, state.KeysRemaining, state.LocksRemaining, state.Hash))

	result.WriteString(renderBoard(state))

	if len(state.PossibleMoves) > 0 {
		result.WriteString(fmt.Sprintf("\nPossible moves: %s\n", strings.Join(state.PossibleMoves, ",")))
	}

	if state.Solved {
		result.WriteString("\nSOLVED!")
	}

	return result.String()
}

// renderBoard renders the board as a grid of short element tokens
func renderBoard(state *service.GameState) string {
	var b strings.Builder
	for r := 0; r < state.Rows; r++ {
		for c := 0; c < state.Cols; c++ {
			if c > 0 {
				b.WriteString(" ")
			}
			b.WriteString(cellToken(engine.Element(state.Board[r*state.Cols+c])))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func cellToken(e engine.Element) string {
	switch {
	case e == engine.Agent:
		return "@@"
	case e == engine.Empty:
		return ".."
	case e == engine.ColourGoal:
		return "GG"
	case e.IsColour():
		return fmt.Sprintf("c%d", int(e))
	default:
		return "??"
	}
}

func formatStepResult(result *service.StepResult) string {
	response := ""
	if result.Success {
		response = "✓ Step applied\n"
	} else {
		response = "✗ Step failed\n"
	}

	s := result.Step
	status := "blocked"
	if s.Moved {
		status = "moved"
	}
	response += fmt.Sprintf("Step: %s %d→%d %s reward=%d\n", s.Dir, s.From, s.To, status, s.Reward)

	if len(result.Events) > 0 {
		response += "Events:\n"
		for _, event := range result.Events {
			response += fmt.Sprintf("- %s: %s\n", event.Type, event.Message)
		}
	}

	response += "\n" + formatGameState(result.GameState)
	return response
}

func formatBulkStepResult(sessionID string, result *service.BulkStepResult) string {
	var b strings.Builder

	boardDims := ""
	if result.GameState != nil {
		boardDims = fmt.Sprintf("%dx%d", result.GameState.Rows, result.GameState.Cols)
	}
	b.WriteString(fmt.Sprintf("Session: %s • Board: %s\n", sessionID, boardDims))

	b.WriteString(fmt.Sprintf("Executed %d/%d steps • reward %d\n",
		result.StepsExecuted, result.RequestedSteps, result.RewardTotal))
	if result.StoppedReason != "" {
		b.WriteString(fmt.Sprintf("Stopped: %s\n", result.StoppedReason))
	}

	if len(result.Events) > 0 {
		b.WriteString("\nEvents:\n")
		for _, event := range result.Events {
			b.WriteString(fmt.Sprintf("- %s: %s\n", event.Type, event.Message))
		}
	}

	if len(result.Steps) > 0 {
		b.WriteString("\nSteps (this call):\n")
		for _, s := range result.Steps {
			status := "blocked"
			switch {
			case s.Solved:
				status = "solved"
			case s.Opened:
				status = "opened lock"
			case s.Collected:
				status = "collected key"
			case s.Moved:
				status = "moved"
			}
			b.WriteString(fmt.Sprintf("%d. %s %d→%d %s\n", s.Idx+1, s.Dir, s.From, s.To, status))
		}
	}

	if result.StartHash != "" && result.EndHash != "" {
		b.WriteString(fmt.Sprintf("\nHash: %s → %s\n", result.StartHash, result.EndHash))
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}
