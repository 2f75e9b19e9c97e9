// Command desktop is a windowed client for playing boards interactively. It
// renders the active session's board, supports several concurrent sessions
// switched with the number keys, and receives live state over WebSocket with
// a polling fallback.
package main

import (
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/gridgames/boxworld/game/engine"
)

const (
	cellSize          = 48
	headerHeight      = 80
	screenWidth       = 800
	screenHeight      = 720
	baseURL           = "http://localhost:8080"
	animationDuration = 150 * time.Millisecond
	blockedDuration   = 400 * time.Millisecond
)

// ScreenType represents different screens in the app
type ScreenType int

const (
	ScreenWelcome ScreenType = iota
	ScreenGame
)

// colourPalette maps the twelve key colours to display colours. The goal gem,
// agent and empty cell have dedicated colours below.
var colourPalette = []color.RGBA{
	{220, 60, 60, 255},   // c0 red
	{60, 120, 220, 255},  // c1 blue
	{60, 190, 80, 255},   // c2 green
	{230, 210, 60, 255},  // c3 yellow
	{200, 70, 200, 255},  // c4 magenta
	{70, 200, 200, 255},  // c5 cyan
	{240, 150, 40, 255},  // c6 orange
	{140, 70, 200, 255},  // c7 purple
	{240, 150, 190, 255}, // c8 pink
	{150, 200, 70, 255},  // c9 lime
	{120, 80, 50, 255},   // c10 brown
	{160, 160, 200, 255}, // c11 slate
}

var (
	goalColour  = color.RGBA{255, 215, 0, 255}
	agentColour = color.RGBA{240, 240, 240, 255}
	emptyColour = color.RGBA{40, 40, 50, 255}
)

// GameState mirrors the server's session snapshot.
type GameState struct {
	Rows           int      `json:"rows"`
	Cols           int      `json:"cols"`
	Board          []int    `json:"board"`
	AgentIndex     int      `json:"agent_index"`
	HoldingKey     bool     `json:"holding_key"`
	Inventory      string   `json:"inventory,omitempty"`
	Hash           string   `json:"hash"`
	Solved         bool     `json:"solved"`
	KeysRemaining  int      `json:"keys_remaining"`
	LocksRemaining int      `json:"locks_remaining"`
	PossibleMoves  []string `json:"possible_moves"`
}

// WSMessage represents WebSocket message wrapper
type WSMessage struct {
	SessionID string     `json:"session_id"`
	GameState *GameState `json:"game_state,omitempty"`
	Event     string     `json:"event,omitempty"`
}

// SessionData holds data for a single session
type SessionData struct {
	sessionID     string
	configName    string
	state         *GameState
	wsConn        *websocket.Conn
	lastUpdate    time.Time
	prevIndex     int       // previous agent cell for interpolation
	targetIndex   int       // target agent cell for interpolation
	moveStartTime time.Time // when the move started
	animationTime float64   // animation progress 0.0 to 1.0
	blockedTime   time.Time // when a blocked move happened
	isBlocked     bool      // currently showing the blocked shake
}

// SessionListItem represents a session from the server
type SessionListItem struct {
	ID         string     `json:"id"`
	ConfigName string     `json:"config_name"`
	GameState  *GameState `json:"game_state"`
}

// ConfigListItem represents a board configuration
type ConfigListItem struct {
	Filename    string `json:"filename"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Game represents the desktop client
type Game struct {
	sessions         []*SessionData
	activeSession    int
	stateMutex       sync.RWMutex
	currentScreen    ScreenType
	welcomeScreen    *WelcomeScreen
	selectedSessions map[string]bool
}

// WelcomeScreen manages the welcome screen state
type WelcomeScreen struct {
	availableSessions []SessionListItem
	availableConfigs  []ConfigListItem
	scrollOffset      int
	cursorPos         int
	loading           bool
	errorMsg          string
	newSessionConfig  string
}

// NewGame creates a new client with any initial sessions passed on the
// command line. With none, the welcome screen handles selection.
func NewGame(sessionIDs []string) *Game {
	g := &Game{
		sessions:         make([]*SessionData, 0),
		activeSession:    0,
		currentScreen:    ScreenWelcome,
		selectedSessions: make(map[string]bool),
		welcomeScreen: &WelcomeScreen{
			availableSessions: make([]SessionListItem, 0),
			availableConfigs:  make([]ConfigListItem, 0),
		},
	}

	if len(sessionIDs) > 0 {
		for _, sid := range sessionIDs {
			g.addSession(sid)
		}
		g.currentScreen = ScreenGame
	} else {
		g.loadWelcomeData()
	}

	return g
}

// addSession adds a session to the client, creating one server-side when the
// ID is empty.
func (g *Game) addSession(sessionID string) {
	session := &SessionData{
		sessionID:  sessionID,
		lastUpdate: time.Now(),
	}

	if sessionID == "" {
		configName := ""
		if len(g.sessions) > 0 {
			configName = g.sessions[0].configName
		}
		if err := g.createSessionWithConfig(session, configName); err != nil {
			log.Printf("Failed to create session: %v", err)
			return
		}
	}

	g.sessions = append(g.sessions, session)

	if err := g.connectWebSocket(session); err != nil {
		log.Printf("Failed to connect WebSocket for %s: %v (falling back to polling)", session.sessionID, err)
	} else {
		go g.listenWebSocket(session)
	}

	g.fetchGameState(session)
}

// createSessionWithConfig creates a new server session with a specific config
func (g *Game) createSessionWithConfig(session *SessionData, configName string) error {
	url := fmt.Sprintf("%s/api/sessions", baseURL)

	payload := "{}"
	if configName != "" {
		payload = fmt.Sprintf(`{"config_name":"%s"}`, configName)
	}

	resp, err := http.Post(url, "application/json", strings.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var result struct {
		ID         string `json:"id"`
		ConfigName string `json:"config_name"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse session response: %v (body: %s)", err, string(body))
	}

	session.sessionID = result.ID
	session.configName = result.ConfigName
	log.Printf("Created new session: %s (config: %s)", session.sessionID, configName)
	return nil
}

// connectWebSocket establishes the live update connection
func (g *Game) connectWebSocket(session *SessionData) error {
	if session.sessionID == "" {
		return fmt.Errorf("no session ID set")
	}

	wsURL := url.URL{Scheme: "ws", Host: "localhost:8080", Path: "/ws"}
	q := wsURL.Query()
	q.Set("session", session.sessionID)
	wsURL.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
	if err != nil {
		return err
	}

	session.wsConn = conn
	log.Printf("WebSocket connected for session %s", session.sessionID)
	return nil
}

// listenWebSocket applies state pushed by the server
func (g *Game) listenWebSocket(session *SessionData) {
	defer func() {
		if session.wsConn != nil {
			session.wsConn.Close()
		}
	}()

	for {
		_, message, err := session.wsConn.ReadMessage()
		if err != nil {
			log.Printf("WebSocket read error for %s: %v", session.sessionID, err)
			return
		}

		var wsMsg WSMessage
		if err := json.Unmarshal(message, &wsMsg); err != nil {
			log.Printf("WebSocket JSON parse error: %v", err)
			continue
		}

		if wsMsg.GameState == nil {
			continue
		}

		g.stateMutex.Lock()
		g.applyState(session, wsMsg.GameState)
		g.stateMutex.Unlock()
	}
}

// applyState installs a new snapshot and decides the animation: a changed
// agent cell starts a slide, an unchanged hash after a step is a blocked
// move. Callers hold stateMutex.
func (g *Game) applyState(session *SessionData, state *GameState) {
	if session.state != nil {
		oldIndex := session.state.AgentIndex
		if oldIndex != state.AgentIndex {
			session.prevIndex = oldIndex
			session.targetIndex = state.AgentIndex
			session.moveStartTime = time.Now()
			session.animationTime = 0.0
			session.isBlocked = false
		} else if session.state.Hash == state.Hash {
			session.blockedTime = time.Now()
			session.isBlocked = true
		}
	} else {
		session.prevIndex = state.AgentIndex
		session.targetIndex = state.AgentIndex
		session.animationTime = 1.0
	}
	session.state = state
	session.lastUpdate = time.Now()
}

// fetchGameState polls the current state from the server
func (g *Game) fetchGameState(session *SessionData) error {
	if session.sessionID == "" {
		return fmt.Errorf("no session ID set")
	}

	url := fmt.Sprintf("%s/api/sessions/%s/state", baseURL, session.sessionID)
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var state GameState
	if err := json.Unmarshal(body, &state); err != nil {
		return fmt.Errorf("failed to parse JSON: %v (body: %s)", err, string(body))
	}

	g.stateMutex.Lock()
	g.applyState(session, &state)
	g.stateMutex.Unlock()

	return nil
}

// loadWelcomeData fetches available sessions and configs from the server
func (g *Game) loadWelcomeData() {
	g.welcomeScreen.loading = true
	g.welcomeScreen.errorMsg = ""

	resp, err := http.Get(fmt.Sprintf("%s/api/sessions", baseURL))
	if err != nil {
		g.welcomeScreen.errorMsg = fmt.Sprintf("Error loading sessions: %v", err)
		g.welcomeScreen.loading = false
		return
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	var sessionsResp struct {
		Sessions []SessionListItem `json:"sessions"`
	}
	if err := json.Unmarshal(body, &sessionsResp); err == nil {
		g.welcomeScreen.availableSessions = sessionsResp.Sessions
	}

	resp, err = http.Get(fmt.Sprintf("%s/api/configs", baseURL))
	if err != nil {
		g.welcomeScreen.errorMsg = fmt.Sprintf("Error loading configs: %v", err)
		g.welcomeScreen.loading = false
		return
	}
	defer resp.Body.Close()

	body, _ = io.ReadAll(resp.Body)
	var configsResp struct {
		Configs []ConfigListItem `json:"configs"`
	}
	if err := json.Unmarshal(body, &configsResp); err == nil {
		g.welcomeScreen.availableConfigs = configsResp.Configs
	}

	g.welcomeScreen.loading = false
}

// createNewSessionFromWelcome creates a session with the selected config
func (g *Game) createNewSessionFromWelcome() error {
	session := &SessionData{}
	if err := g.createSessionWithConfig(session, g.welcomeScreen.newSessionConfig); err != nil {
		return err
	}

	g.selectedSessions[session.sessionID] = true
	g.loadWelcomeData()
	return nil
}

// startGameWithSelectedSessions transitions to the game screen
func (g *Game) startGameWithSelectedSessions() {
	if len(g.selectedSessions) == 0 {
		g.welcomeScreen.errorMsg = "Please select at least one session"
		return
	}

	for sessionID := range g.selectedSessions {
		g.addSession(sessionID)
	}

	g.currentScreen = ScreenGame
}

// sendAction sends a step or reset for the active session
func (g *Game) sendAction(action string) error {
	if len(g.sessions) == 0 {
		return fmt.Errorf("no sessions available")
	}

	session := g.sessions[g.activeSession]
	if session.sessionID == "" {
		return fmt.Errorf("no session ID set")
	}

	var url string
	var payload string

	if action == "reset" {
		url = fmt.Sprintf("%s/api/sessions/%s/reset", baseURL, session.sessionID)
		payload = "{}"
	} else {
		url = fmt.Sprintf("%s/api/sessions/%s/step", baseURL, session.sessionID)
		payload = fmt.Sprintf(`{"direction":"%s"}`, action)
	}

	resp, err := http.Post(url, "application/json", strings.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return g.fetchGameState(session)
}

// Update updates client logic
func (g *Game) Update() error {
	switch g.currentScreen {
	case ScreenWelcome:
		return g.updateWelcomeScreen()
	case ScreenGame:
		return g.updateGameScreen()
	}
	return nil
}

// updateWelcomeScreen handles welcome screen input
func (g *Game) updateWelcomeScreen() error {
	ws := g.welcomeScreen

	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		g.loadWelcomeData()
	}

	totalItems := len(ws.availableSessions)
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
		ws.cursorPos++
		if ws.cursorPos >= totalItems {
			ws.cursorPos = totalItems - 1
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
		ws.cursorPos--
		if ws.cursorPos < 0 {
			ws.cursorPos = 0
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if ws.cursorPos < len(ws.availableSessions) {
			sessionID := ws.availableSessions[ws.cursorPos].ID
			g.selectedSessions[sessionID] = !g.selectedSessions[sessionID]
			if !g.selectedSessions[sessionID] {
				delete(g.selectedSessions, sessionID)
			}
		}
	}

	// Cycle through configs with Tab
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		if len(ws.availableConfigs) > 0 {
			currentIdx := -1
			for i, cfg := range ws.availableConfigs {
				if cfg.Name == ws.newSessionConfig {
					currentIdx = i
					break
				}
			}
			currentIdx++
			if currentIdx >= len(ws.availableConfigs) {
				ws.newSessionConfig = ""
			} else {
				ws.newSessionConfig = ws.availableConfigs[currentIdx].Name
			}
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		if err := g.createNewSessionFromWelcome(); err != nil {
			ws.errorMsg = fmt.Sprintf("Failed to create session: %v", err)
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.startGameWithSelectedSessions()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) && len(g.sessions) > 0 {
		g.currentScreen = ScreenGame
	}

	return nil
}

// updateGameScreen handles game screen input
func (g *Game) updateGameScreen() error {
	if len(g.sessions) == 0 {
		return nil
	}

	g.stateMutex.Lock()
	for _, session := range g.sessions {
		if session.animationTime < 1.0 {
			elapsed := time.Since(session.moveStartTime)
			session.animationTime = float64(elapsed) / float64(animationDuration)
			if session.animationTime > 1.0 {
				session.animationTime = 1.0
			}
		}

		if session.isBlocked && time.Since(session.blockedTime) > blockedDuration {
			session.isBlocked = false
		}
	}
	g.stateMutex.Unlock()

	// Poll sessions when WebSocket is not connected
	for _, session := range g.sessions {
		if session.wsConn == nil {
			if session.state == nil || time.Since(session.lastUpdate) > 500*time.Millisecond {
				if err := g.fetchGameState(session); err != nil {
					log.Printf("Error fetching state for %s: %v", session.sessionID, err)
				}
			}
		}
	}

	// Session switching with number keys (1-9)
	for i := ebiten.Key1; i <= ebiten.Key9; i++ {
		if inpututil.IsKeyJustPressed(i) {
			sessionIdx := int(i - ebiten.Key1)
			if sessionIdx < len(g.sessions) {
				g.activeSession = sessionIdx
				log.Printf("Switched to session %d: %s", sessionIdx+1, g.sessions[sessionIdx].sessionID)
			}
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		if len(g.sessions) < 9 {
			g.addSession("")
			log.Printf("Added new session (total: %d)", len(g.sessions))
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) || inpututil.IsKeyJustPressed(ebiten.KeyW) {
		g.sendAction("up")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) || inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.sendAction("down")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) || inpututil.IsKeyJustPressed(ebiten.KeyA) {
		g.sendAction("left")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) || inpututil.IsKeyJustPressed(ebiten.KeyD) {
		g.sendAction("right")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.sendAction("reset")
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.currentScreen = ScreenWelcome
		g.loadWelcomeData()
	}

	return nil
}

// Draw renders the client
func (g *Game) Draw(screen *ebiten.Image) {
	switch g.currentScreen {
	case ScreenWelcome:
		g.drawWelcomeScreen(screen)
	case ScreenGame:
		g.drawGameScreen(screen)
	}
}

// drawWelcomeScreen renders the session selection screen
func (g *Game) drawWelcomeScreen(screen *ebiten.Image) {
	ws := g.welcomeScreen

	screen.Fill(color.RGBA{20, 20, 30, 255})

	y := 20
	ebitenutil.DebugPrintAt(screen, "=== BOXWORLD - SESSION SELECT ===", 250, y)
	y += 30

	if ws.loading {
		ebitenutil.DebugPrintAt(screen, "Loading sessions...", 20, y)
		return
	}

	if ws.errorMsg != "" {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("ERROR: %s", ws.errorMsg), 20, y)
		y += 20
	}

	ebitenutil.DebugPrintAt(screen, "Available Sessions:", 20, y)
	y += 20

	if len(ws.availableSessions) == 0 {
		ebitenutil.DebugPrintAt(screen, "  No sessions found. Press N to create one.", 20, y)
		y += 20
	} else {
		for i, session := range ws.availableSessions {
			cursor := "  "
			if i == ws.cursorPos {
				cursor = "> "
			}

			checkbox := "[ ]"
			if g.selectedSessions[session.ID] {
				checkbox = "[X]"
			}

			status := ""
			if session.GameState != nil {
				status = fmt.Sprintf(" | Keys:%d Locks:%d", session.GameState.KeysRemaining, session.GameState.LocksRemaining)
				if session.GameState.Solved {
					status = " SOLVED"
				}
			}

			line := fmt.Sprintf("%s%s %s | %s%s",
				cursor, checkbox, session.ID, session.ConfigName, status)

			ebitenutil.DebugPrintAt(screen, line, 20, y)
			y += 15
		}
	}

	y += 20
	ebitenutil.DebugPrintAt(screen, "─────────────────────────────────────────", 20, y)
	y += 20

	ebitenutil.DebugPrintAt(screen, "Create New Session:", 20, y)
	y += 20

	configDisplay := "default"
	if ws.newSessionConfig != "" {
		configDisplay = ws.newSessionConfig
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("  Selected Config: %s", configDisplay), 20, y)
	y += 15

	ebitenutil.DebugPrintAt(screen, "  Available Configs:", 20, y)
	y += 15
	for _, cfg := range ws.availableConfigs {
		marker := "  "
		if cfg.Name == ws.newSessionConfig {
			marker = "→ "
		}
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("    %s%s - %s", marker, cfg.Name, cfg.Description), 20, y)
		y += 15
	}

	y += 20
	ebitenutil.DebugPrintAt(screen, "─────────────────────────────────────────", 20, y)
	y += 20

	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Selected: %d session(s)", len(g.selectedSessions)), 20, y)
	y += 30

	ebitenutil.DebugPrintAt(screen, "CONTROLS:", 20, y)
	y += 20
	ebitenutil.DebugPrintAt(screen, "  ↑/↓      - Navigate sessions", 20, y)
	y += 15
	ebitenutil.DebugPrintAt(screen, "  SPACE    - Toggle session selection", 20, y)
	y += 15
	ebitenutil.DebugPrintAt(screen, "  TAB      - Cycle config for new session", 20, y)
	y += 15
	ebitenutil.DebugPrintAt(screen, "  N        - Create new session with selected config", 20, y)
	y += 15
	ebitenutil.DebugPrintAt(screen, "  ENTER    - Start game with selected sessions", 20, y)
	y += 15
	ebitenutil.DebugPrintAt(screen, "  F5       - Refresh session list", 20, y)
	y += 15
	if len(g.sessions) > 0 {
		ebitenutil.DebugPrintAt(screen, "  ESC      - Back to game", 20, y)
	}
}

// drawGameScreen renders the active session's board
func (g *Game) drawGameScreen(screen *ebiten.Image) {
	g.stateMutex.RLock()
	defer g.stateMutex.RUnlock()

	if len(g.sessions) == 0 {
		ebitenutil.DebugPrint(screen, "No sessions available. Press ESC to go to session select.")
		return
	}

	session := g.sessions[g.activeSession]
	if session.state == nil {
		ebitenutil.DebugPrint(screen, "Loading...")
		return
	}

	screen.Fill(color.RGBA{20, 20, 30, 255})
	g.drawSessionStats(screen)

	state := session.state
	gridOffsetY := headerHeight

	for idx, code := range state.Board {
		row, col := idx/state.Cols, idx%state.Cols
		x := float64(col * cellSize)
		y := float64(row*cellSize + gridOffsetY)

		elem := engine.Element(code)
		switch {
		case elem == engine.Agent:
			// The agent cell reads as empty; the marker is drawn on top with
			// interpolation.
			ebitenutil.DrawRect(screen, x, y, cellSize-1, cellSize-1, emptyColour)
		case elem == engine.Empty:
			ebitenutil.DrawRect(screen, x, y, cellSize-1, cellSize-1, emptyColour)
		case elem.IsColour():
			ebitenutil.DrawRect(screen, x, y, cellSize-1, cellSize-1, cellColour(elem))
			label := cellLabel(state, idx)
			if label != "" {
				ebitenutil.DebugPrintAt(screen, label, int(x)+4, int(y)+4)
			}
		}
	}

	// Agent marker with slide interpolation and blocked-move shake
	t := session.animationTime
	if t > 1.0 {
		t = 1.0
	}
	prevRow, prevCol := session.prevIndex/state.Cols, session.prevIndex%state.Cols
	targetRow, targetCol := session.targetIndex/state.Cols, session.targetIndex%state.Cols
	displayCol := float64(prevCol)*(1.0-t) + float64(targetCol)*t
	displayRow := float64(prevRow)*(1.0-t) + float64(targetRow)*t

	marker := agentColour
	var shakeX, shakeY float64
	if session.isBlocked {
		progress := time.Since(session.blockedTime).Seconds() / blockedDuration.Seconds()
		intensity := 4.0 * (1.0 - progress)
		shakeX = intensity * math.Sin(progress*40)
		shakeY = intensity * math.Cos(progress*40)
		flash := (1.0 - progress) * 0.7
		marker.G = uint8(float64(marker.G) * (1.0 - flash))
		marker.B = uint8(float64(marker.B) * (1.0 - flash))
	}

	screenX := displayCol*cellSize + 6 + shakeX
	screenY := displayRow*cellSize + float64(gridOffsetY) + 6 + shakeY
	ebitenutil.DrawRect(screen, screenX, screenY, cellSize-12, cellSize-12, marker)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%d", g.activeSession+1), int(screenX)+14, int(screenY)+12)

	// Inventory swatch next to the footer
	footerY := screenHeight - 40
	if state.HoldingKey {
		held, err := engine.ParseElement(state.Inventory)
		if err == nil {
			ebitenutil.DrawRect(screen, 10, float64(footerY), 20, 20, cellColour(held))
		}
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Holding: %s", state.Inventory), 36, footerY+4)
	} else {
		ebitenutil.DebugPrintAt(screen, "Holding: nothing", 10, footerY+4)
	}

	if state.Solved {
		ebitenutil.DebugPrintAt(screen, ">>> SOLVED <<<", screenWidth/2-50, footerY+4)
	}

	ebitenutil.DebugPrintAt(screen, "1-9: Switch Session | N: New Session | Arrow/WASD: Move | R: Reset | ESC: Menu", 10, screenHeight-20)
}

// drawSessionStats draws per-session stats in the header
func (g *Game) drawSessionStats(screen *ebiten.Image) {
	headerY := 5
	for idx, session := range g.sessions {
		if session.state == nil {
			continue
		}

		y := headerY + (idx * 15)

		activeMarker := ""
		if idx == g.activeSession {
			activeMarker = ">>>"
		}

		connStatus := "POLL"
		if session.wsConn != nil {
			connStatus = "WS"
		}

		inv := session.state.Inventory
		if inv == "" {
			inv = "-"
		}

		info := fmt.Sprintf("%s [%d] %s [%s] INV:%s KEYS:%d LOCKS:%d",
			activeMarker,
			idx+1,
			session.sessionID,
			connStatus,
			inv,
			session.state.KeysRemaining,
			session.state.LocksRemaining)

		if session.state.Solved {
			info += " SOLVED!"
		}

		ebitenutil.DebugPrintAt(screen, info, 20, y)
	}
}

// Layout returns the client screen size
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

// cellColour maps a colour element to its display colour.
func cellColour(e engine.Element) color.Color {
	if e == engine.ColourGoal {
		return goalColour
	}
	if int(e) < len(colourPalette) {
		return colourPalette[e]
	}
	return color.RGBA{50, 50, 50, 255}
}

// cellLabel marks a coloured cell by its role: locks get an L, bare keys a
// K, box contents stay unmarked. The goal gem is marked with a star.
func cellLabel(state *GameState, idx int) string {
	col := idx % state.Cols
	isColour := func(i int) bool { return engine.Element(state.Board[i]).IsColour() }

	leftColour := col > 0 && isColour(idx-1)
	rightColour := col < state.Cols-1 && isColour(idx+1)

	role := ""
	switch {
	case leftColour:
		role = "L"
	case !rightColour:
		role = "K"
	}

	if engine.Element(state.Board[idx]) == engine.ColourGoal {
		if role == "L" {
			return "L"
		}
		return "*"
	}
	return role
}

func main() {
	sessionIDs := []string{}
	if len(os.Args) > 1 {
		sessionIDs = os.Args[1:]
	}

	game := NewGame(sessionIDs)

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("BoxWorld - Desktop Client")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
