// Package mcp provides a Model Context Protocol interface for the BoxWorld puzzle server.
//
// The mcp package implements:
//   - MCP server for AI agent integration
//   - Tool definitions for board operations
//   - Session-aware command execution
//   - Stdio transport for local MCP clients
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - game_state: Get current board state with grid rendering
//   - step: Execute a single directional step
//   - bulk_step: Execute multiple steps in sequence
//   - reset_game: Reset the board to its starting layout
//   - set_key: Override the held key colour
//   - describe_cell: Classify a cell as bare key, lock, or box content
//   - create_session: Create new game session with config selection
//   - get_session: Get specific session details
//   - list_sessions: List all active sessions
//   - list_configs: List available board configurations
//   - game_instructions: Full rules reference
//
// Architecture:
//
// The client is a thin proxy: every tool call becomes a REST API request
// against the running server, so the MCP process carries no game state of
// its own and multiple MCP clients can share sessions.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
// AI Integration:
//
// The MCP interface enables AI agents to:
//   - Autonomously solve puzzle boards
//   - Verify key/lock classification before committing to a pickup
//   - Track board positions via the content hash
//   - Manage multiple puzzle sessions independently
package mcp
