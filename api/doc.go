// Package api provides HTTP REST API handlers for the BoxWorld puzzle server.
//
// The api package implements:
//   - RESTful endpoints for board operations
//   - Session management endpoints
//   - Board configuration listing and saving
//   - WebSocket upgrade handling
//   - Static file serving
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session
//   - GET /api/sessions - List all sessions (sort, order, limit params)
//   - GET /api/sessions/unified - Dashboard summary of all sessions
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session
//
// Board Operations:
//   - GET /api/sessions/{id}/state - Current board state
//   - POST /api/sessions/{id}/step - Apply one action
//   - POST /api/sessions/{id}/bulk-step - Apply a sequence of actions
//   - POST /api/sessions/{id}/reset - Reset board to starting layout
//   - POST /api/sessions/{id}/key - Override the held key colour
//   - GET /api/sessions/{id}/observation - Padded multi-channel tensor view
//   - GET /api/sessions/{id}/image - RGB sprite rendering
//
// Configuration:
//   - GET /api/configs - List available board configurations
//   - POST /api/configs - Save a board configuration
//   - GET /api/configs/{name} - Get one configuration
//
// Request/Response Format:
//
// All endpoints accept and return JSON. Steps are sent as POST with a
// JSON body:
//
//	{
//	  "direction": "up|down|left|right",
//	  "directions": ["up", "right"], // for bulk steps
//	  "reset": true|false            // optional reset before stepping
//	}
//
// The content hash in responses is a decimal string so 64-bit values
// survive JSON number precision.
//
// Error Handling:
//
// Errors are returned as JSON with appropriate HTTP status codes:
//
//	{
//	  "error": "error message"
//	}
package api
