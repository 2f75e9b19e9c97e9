// Command boxworld serves the puzzle engine over three transports: a REST
// API under /api, per-session WebSocket state pushes under /ws, and an MCP
// endpoint under /mcp. The same binary doubles as an MCP stdio server for
// tool hosts that spawn their MCP servers as subprocesses.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gridgames/boxworld/api"
	"github.com/gridgames/boxworld/game/config"
	"github.com/gridgames/boxworld/game/service"
	"github.com/gridgames/boxworld/game/session"
	"github.com/gridgames/boxworld/transport/mcp"
	"github.com/gridgames/boxworld/transport/websocket"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

const (
	Version = "1.0.0"
	AppName = "BoxWorld Puzzle Server"
)

// Session housekeeping intervals. Sessions persist to disk, so expiry only
// prunes the in-memory copies of boards nobody is playing.
const (
	sessionSweepInterval = 1 * time.Hour
	sessionRetention     = 24 * time.Hour
	fsSyncInterval       = 5 * time.Second
)

var (
	port         = flag.Int("port", 8080, "HTTP listen port")
	host         = flag.String("host", "localhost", "HTTP listen host")
	configDir    = flag.String("config-dir", getConfigDirDefault(), "Directory holding board configuration files")
	debug        = flag.Bool("debug", false, "Log with file:line prefixes")
	version      = flag.Bool("version", false, "Print the version and exit")
	ngrokEnabled = flag.Bool("ngrok", false, "Expose the server through an ngrok tunnel")
	ngrokAuth    = flag.String("ngrok-auth", "", "ngrok auth token (NGROK_AUTHTOKEN env var also works)")
	ngrokDomain  = flag.String("ngrok-domain", "", "Reserved ngrok domain to bind, if any")
)

// getConfigDirDefault resolves the board-config directory: the CONFIG_DIR
// environment variable wins, then ./configs.
func getConfigDirDefault() string {
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		return configDir
	}
	return "configs"
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [MODE]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "%s v%s\n\n", AppName, Version)
		fmt.Fprintf(os.Stderr, "Modes:\n")
		fmt.Fprintf(os.Stderr, "  server, http     Serve the REST API, WebSocket hub, and /mcp endpoint (default)\n")
		fmt.Fprintf(os.Stderr, "  stdio-mcp        Serve MCP over stdio, backed by an HTTP API\n")
		fmt.Fprintf(os.Stderr, "  mcp-stdio, mcp   Aliases for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -port 9090               # serve boards on port 9090\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -config-dir ./levels     # serve a custom level directory\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s mcp                      # stdio MCP for tool hosts\n", os.Args[0])
	}
}

func main() {
	// A .env file is optional; anything in it feeds the NGROK_* and
	// CONFIG_DIR lookups below.
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Could not load .env file: %v", err)
		}
	} else {
		log.Println("Loaded .env file")
	}

	flag.Parse()

	if *version {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	if *debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}

	mode := "server"
	if args := flag.Args(); len(args) > 0 {
		mode = args[0]
	}

	log.Printf("%s v%s starting in %s mode, boards from %s", AppName, Version, mode, *configDir)

	gameService, err := initializeServices()
	if err != nil {
		log.Fatalf("Service initialization failed: %v", err)
	}

	switch mode {
	case "stdio-mcp", "mcp-stdio", "mcp":
		runStdioMCPWithInternalServer(gameService)

	case "server", "http":
		runHTTPServer(gameService)

	default:
		log.Fatalf("Unknown mode %q; want server (default) or stdio-mcp", mode)
	}
}

// runHTTPServer serves the REST API, the WebSocket hub, and the /mcp
// endpoint on one listener, with an optional ngrok tunnel in front. Blocks
// until SIGINT/SIGTERM, then shuts down gracefully.
func runHTTPServer(gameService service.GameService) {
	hub := websocket.NewHub()
	go hub.Run()

	apiServer := api.NewServer(gameService, hub)
	addr := fmt.Sprintf("%s:%d", *host, *port)

	// The MCP tools talk to the game through the REST API rather than the
	// service directly, so the same tool definitions work against any
	// running server.
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("Serving boards on %s", addr)
		log.Printf("  REST      http://%s/api", addr)
		log.Printf("  WebSocket ws://%s/ws?session=<session_id>", addr)
		log.Printf("  MCP       http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	ngrokShouldRun := *ngrokEnabled
	if !ngrokShouldRun {
		if envEnabled := os.Getenv("NGROK_ENABLED"); envEnabled == "true" || envEnabled == "1" {
			ngrokShouldRun = true
		}
	}

	if ngrokShouldRun {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, mainRouter)
		}()
	}

	sig := <-stop
	log.Printf("Caught %v, shutting down", sig)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("Server stopped")
}

// runNgrokTunnel provisions a public tunnel and serves the same router
// through it until the context is cancelled. Errors are logged, never
// fatal: the local listener keeps serving either way.
func runNgrokTunnel(ctx context.Context, handler http.Handler) {
	authToken := *ngrokAuth
	if authToken == "" {
		authToken = os.Getenv("NGROK_AUTHTOKEN")
		if authToken == "" {
			authToken = os.Getenv("NGROK_AUTH_TOKEN")
		}
	}
	if authToken == "" {
		log.Println("ngrok requested but no auth token set; skipping tunnel (-ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	domain := *ngrokDomain
	if domain == "" {
		domain = os.Getenv("NGROK_DOMAIN")
	}

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Printf("Binding reserved ngrok domain %s", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Printf("ngrok tunnel failed to start: %v", err)
		return
	}
	defer func() {
		if err := tun.Close(); err != nil {
			log.Printf("ngrok tunnel close error: %v", err)
		}
	}()

	log.Printf("🚀 Public URL: %s", tun.URL())

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed {
		log.Printf("ngrok serve error: %v", err)
	}
	log.Println("ngrok tunnel closed")
}

// initializeServices builds the config manager, the persisted session
// store, and the game service over them, and starts the background
// housekeeping loops.
func initializeServices() (service.GameService, error) {
	configManager, err := config.NewManager(*configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	persistence, err := session.NewFilePersistence("sessions", configManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	sessionManager := session.NewManagerWithPersistence(persistence)
	if err := sessionManager.LoadPersistedSessions(); err != nil {
		log.Printf("Could not restore persisted sessions: %v", err)
	}

	gameService := service.NewGameService(sessionManager, configManager)

	go sessionCleanupRoutine(sessionManager)
	go filesystemSyncRoutine(sessionManager, persistence)

	return gameService, nil
}

// sessionCleanupRoutine drops in-memory sessions that have gone untouched
// past the retention window. Their files stay on disk for later restore.
func sessionCleanupRoutine(manager *session.Manager) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()

	for range ticker.C {
		if removed := manager.CleanupExpiredSessions(sessionRetention); removed > 0 {
			log.Printf("Expired %d idle sessions", removed)
		}
	}
}

// filesystemSyncRoutine mirrors on-disk deletions into memory: removing a
// session file is the operator's way of killing a session, and the next
// sweep makes the server agree.
func filesystemSyncRoutine(manager *session.Manager, persistence session.SessionPersistence) {
	ticker := time.NewTicker(fsSyncInterval)
	defer ticker.Stop()

	for range ticker.C {
		if persistence == nil {
			continue
		}

		pruned := 0
		for _, s := range manager.List() {
			if persistence.Exists(s.ID) {
				continue
			}
			if err := manager.DeleteFromMemory(s.ID); err == nil {
				pruned++
			}
		}
		if pruned > 0 {
			log.Printf("Pruned %d sessions whose files were deleted", pruned)
		}
	}
}

// runStdioMCPWithInternalServer serves MCP over stdio. The MCP tools need
// an HTTP API to talk to: an already-running server on localhost:8080 is
// reused when one answers, otherwise a private API is started on a random
// loopback port.
func runStdioMCPWithInternalServer(gameService service.GameService) {
	var baseURL string

	externalURL := "http://localhost:8080"
	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/api")
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		log.Printf("Reusing running API server at %s", externalURL)
		baseURL = externalURL
	} else {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			log.Fatalf("Could not bind a loopback port: %v", err)
		}
		internalAddr := listener.Addr().String()
		log.Printf("No running API server found; starting a private one on %s", internalAddr)

		hub := websocket.NewHub()
		go hub.Run()

		internal := &http.Server{Handler: api.NewServer(gameService, hub)}
		go func() {
			if err := internal.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Printf("Internal HTTP server error: %v", err)
			}
		}()

		// Give the listener goroutine a beat before the first tool call.
		time.Sleep(100 * time.Millisecond)
		baseURL = fmt.Sprintf("http://%s", internalAddr)
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Printf("MCP stdio server ready against %s", baseURL)

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		log.Fatalf("MCP stdio server error: %v", err)
	}
}
