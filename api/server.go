package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/gridgames/boxworld/game/engine"
	"github.com/gridgames/boxworld/game/service"
	"github.com/gridgames/boxworld/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server
func NewServer(gameService service.GameService, hub *websocket.Hub) *Server {
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	// API routes with clean REST patterns
	api := s.router.PathPrefix("/api").Subrouter()

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	// Unified sessions for multi-session view (must be before {id} pattern)
	api.HandleFunc("/sessions/unified", s.handleUnifiedSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Game operations
	api.HandleFunc("/sessions/{id}/state", s.handleGetGameState).Methods("GET")
	api.HandleFunc("/sessions/{id}/step", s.handleStep).Methods("POST")
	api.HandleFunc("/sessions/{id}/bulk-step", s.handleBulkStep).Methods("POST")
	api.HandleFunc("/sessions/{id}/reset", s.handleReset).Methods("POST")
	api.HandleFunc("/sessions/{id}/key", s.handleSetKey).Methods("POST")

	// Agent-facing views of the board
	api.HandleFunc("/sessions/{id}/observation", s.handleGetObservation).Methods("GET")
	api.HandleFunc("/sessions/{id}/image", s.handleGetImage).Methods("GET")

	// Configuration
	api.HandleFunc("/configs", s.handleListConfigs).Methods("GET")
	api.HandleFunc("/configs", s.handleSaveConfig).Methods("POST")
	api.HandleFunc("/configs/{name}", s.handleGetConfig).Methods("GET")

	// Health check
	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// WebSocket endpoint
	s.router.HandleFunc("/ws", s.handleWebSocket)

	// Static files for the web UI
	s.router.PathPrefix("/").Handler(http.FileServer(http.Dir("./static/")))
}

// Router returns the configured router
func (s *Server) Router() *mux.Router {
	return s.router
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// respondJSON writes a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError writes a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// handleCreateSession creates a new game session
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConfigName string `json:"config_name"`
	}

	// Empty body means default config
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	info, err := s.service.CreateSession(r.Context(), req.ConfigName)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, info)
}

// handleListSessions lists active sessions, optionally sorted and limited
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	sortBy := r.URL.Query().Get("sort")
	order := r.URL.Query().Get("order")

	switch sortBy {
	case "created":
		sort.Slice(sessions, func(i, j int) bool {
			if order == "desc" {
				return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
			}
			return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
		})
	case "accessed":
		sort.Slice(sessions, func(i, j int) bool {
			if order == "desc" {
				return sessions[i].LastAccessedAt.After(sessions[j].LastAccessedAt)
			}
			return sessions[i].LastAccessedAt.Before(sessions[j].LastAccessedAt)
		})
	default:
		sort.Slice(sessions, func(i, j int) bool {
			return sessions[i].ID < sessions[j].ID
		})
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 && limit < len(sessions) {
			sessions = sessions[:limit]
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// handleUnifiedSessions returns a dashboard-friendly summary of all sessions
func (s *Server) handleUnifiedSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	solved := 0
	inProgress := 0
	summaries := make([]map[string]interface{}, 0, len(sessions))
	for _, info := range sessions {
		summary := map[string]interface{}{
			"id":            info.ID,
			"config_name":   info.ConfigName,
			"created_at":    info.CreatedAt,
			"last_accessed": info.LastAccessedAt,
		}
		if info.GameState != nil {
			summary["solved"] = info.GameState.Solved
			summary["holding_key"] = info.GameState.HoldingKey
			summary["keys_remaining"] = info.GameState.KeysRemaining
			summary["locks_remaining"] = info.GameState.LocksRemaining
			if info.GameState.Solved {
				solved++
			} else {
				inProgress++
			}
		}
		summaries = append(summaries, summary)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sessions":    summaries,
		"count":       len(summaries),
		"solved":      solved,
		"in_progress": inProgress,
	})
}

// handleGetSession returns session info
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["id"]

	info, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, info)
}

// handleDeleteSession deletes a session
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// handleGetGameState returns the current game state
func (s *Server) handleGetGameState(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["id"]

	state, err := s.service.GetGameState(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, state)
}

// handleStep applies a single action to the board
func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["id"]

	var req struct {
		Direction string `json:"direction"`
		Reset     bool   `json:"reset"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Direction == "" {
		respondError(w, http.StatusBadRequest, "Direction is required")
		return
	}

	result, err := s.service.Step(r.Context(), sessionID, req.Direction, req.Reset)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if result.GameState != nil {
		fmt.Printf("[STEP] session=%s dir=%s from=%d to=%d solved=%v\n",
			sessionID, strings.ToLower(req.Direction),
			result.Step.From, result.Step.To, result.GameState.Solved)
		s.hub.BroadcastToSession(sessionID, result.GameState)
	}

	respondJSON(w, http.StatusOK, result)
}

// handleBulkStep applies a sequence of actions to the board
func (s *Server) handleBulkStep(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["id"]

	var req struct {
		Directions []string `json:"directions"`
		Reset      bool     `json:"reset"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if len(req.Directions) == 0 {
		respondError(w, http.StatusBadRequest, "Directions list is required")
		return
	}

	result, err := s.service.BulkStep(r.Context(), sessionID, req.Directions, req.Reset)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if result.GameState != nil {
		fmt.Printf("[BULK] session=%s steps=%d/%d reward=%d solved=%v\n",
			sessionID, result.StepsExecuted, result.RequestedSteps,
			result.RewardTotal, result.Solved)
		s.hub.BroadcastToSession(sessionID, result.GameState)
	}

	respondJSON(w, http.StatusOK, result)
}

// handleReset resets the board to its starting layout
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["id"]

	state, err := s.service.Reset(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	s.hub.BroadcastToSession(sessionID, state)

	respondJSON(w, http.StatusOK, state)
}

// handleSetKey overrides the held key colour
func (s *Server) handleSetKey(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["id"]

	var req struct {
		Colour string `json:"colour"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Colour == "" {
		respondError(w, http.StatusBadRequest, "Colour is required")
		return
	}

	state, err := s.service.SetKey(r.Context(), sessionID, req.Colour)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.hub.BroadcastToSession(sessionID, state)

	respondJSON(w, http.StatusOK, state)
}

// handleGetObservation returns the padded multi-channel tensor view
func (s *Server) handleGetObservation(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["id"]

	obs, err := s.service.GetObservation(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, obs)
}

// handleGetImage returns the RGB sprite rendering of the board
func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["id"]

	img, err := s.service.GetImage(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, img)
}

// handleListConfigs lists available board configurations
func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.service.ListConfigs(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"configs": configs,
		"count":   len(configs),
	})
}

// handleGetConfig returns a single board configuration
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	name := strings.TrimSuffix(vars["name"], ".json")

	config, err := s.service.LoadConfig(r.Context(), name)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, config)
}

// handleSaveConfig saves a board configuration
func (s *Server) handleSaveConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Filename string             `json:"filename"`
		Config   *engine.GameConfig `json:"config"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Filename == "" {
		respondError(w, http.StatusBadRequest, "Filename is required")
		return
	}

	if req.Config == nil {
		respondError(w, http.StatusBadRequest, "Config is required")
		return
	}

	if err := s.service.SaveConfig(r.Context(), req.Filename, req.Config); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"message": "Config saved"})
}

// handleWebSocket upgrades the connection and subscribes it to a session
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "Session ID is required")
		return
	}

	// Verify the session exists before upgrading
	if _, err := s.service.GetSession(r.Context(), sessionID); err != nil {
		respondError(w, http.StatusNotFound, "Session not found")
		return
	}

	s.hub.ServeWS(w, r, sessionID)
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
