// Command lionengine-sub021 serves tile maps: A* path queries for units with
// mover profiles, tile painting with circuit resolution and circuit tables.
//
// Modes:
//
//	server (default, alias http)   REST API, WebSocket and a /mcp JSON-RPC endpoint
//	stdio-mcp (aliases mcp-stdio, mcp)   MCP over stdio, backed by a running server
//	                                     on -port or by an internal one
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/b3dgs/lionengine-sub021/api"
	"github.com/b3dgs/lionengine-sub021/game/config"
	"github.com/b3dgs/lionengine-sub021/game/service"
	"github.com/b3dgs/lionengine-sub021/game/session"
	"github.com/b3dgs/lionengine-sub021/transport/mcp"
	"github.com/b3dgs/lionengine-sub021/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Tile Map Pathfinding Server"
)

var (
	port         = flag.Int("port", 8080, "HTTP server port")
	host         = flag.String("host", "localhost", "HTTP server host")
	configDir    = flag.String("config-dir", envOrDefault("CONFIG_DIR", "configs"), "Directory containing map configurations")
	sessionsDir  = flag.String("sessions-dir", envOrDefault("SESSIONS_DIR", "sessions"), "Directory where sessions are persisted")
	sessionTTL   = flag.Duration("session-ttl", envDuration("SESSION_TTL", 24*time.Hour), "Idle time after which a session leaves memory")
	syncInterval = flag.Duration("sync-interval", 5*time.Second, "How often expired and deleted sessions are dropped from memory")
	debug        = flag.Bool("debug", false, "Enable debug logging")
	version      = flag.Bool("version", false, "Show version information")
	ngrokEnabled = flag.Bool("ngrok", false, "Expose the server through an ngrok tunnel (or NGROK_ENABLED=true)")
	ngrokAuth    = flag.String("ngrok-auth", "", "Ngrok auth token (or NGROK_AUTHTOKEN)")
	ngrokDomain  = flag.String("ngrok-domain", "", "Custom ngrok domain (or NGROK_DOMAIN)")
)

// envOrDefault returns the environment variable when set, fallback otherwise
func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// envDuration parses a duration from the environment, fallback when unset or invalid
func envDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		log.Printf("Warning: ignoring %s=%q: expected a positive duration", key, value)
		return fallback
	}
	return d
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s v%s\n\n", AppName, Version)
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [server|stdio-mcp]\n\nOptions:\n", os.Args[0])
		flag.PrintDefaults()
	}
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	flag.Parse()

	if *version {
		fmt.Printf("%s v%s\n", AppName, Version)
		return
	}

	if *debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	mode := "server"
	if flag.NArg() > 0 {
		mode = flag.Arg(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApp(*configDir, *sessionsDir)
	if err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}
	log.Printf("Starting %s v%s (mode: %s, maps: %s, %d sessions)",
		AppName, Version, mode, *configDir, app.sessions.Count())

	go app.maintain(ctx, *sessionTTL, *syncInterval)

	switch mode {
	case "server", "http":
		err = app.serveHTTP(ctx, fmt.Sprintf("%s:%d", *host, *port))
	case "stdio-mcp", "mcp-stdio", "mcp":
		err = app.serveStdio(ctx, fmt.Sprintf("http://localhost:%d", *port))
	default:
		log.Fatalf("Unknown mode: %s. Use 'server' (default) or 'stdio-mcp'", mode)
	}

	if saveErr := app.sessions.SaveAllSessions(); saveErr != nil {
		log.Printf("Warning: %v", saveErr)
	}
	if err != nil {
		log.Fatal(err)
	}
}

// app holds the long-lived services shared by every mode
type app struct {
	mapService service.MapService
	sessions   *session.Manager
}

// newApp wires the config manager, persisted sessions and the map service
func newApp(configDir, sessionsDir string) (*app, error) {
	configManager, err := config.NewManager(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	persistence, err := session.NewFilePersistence(sessionsDir, configManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	sessions := session.NewManagerWithPersistence(persistence)
	if err := sessions.LoadPersistedSessions(); err != nil {
		log.Printf("Warning: Failed to load persisted sessions: %v", err)
	}

	return &app{
		mapService: service.NewMapService(sessions, configManager),
		sessions:   sessions,
	}, nil
}

// maintain drops sessions idle for longer than ttl and sessions whose file
// was deleted, every interval until ctx is done
func (a *app) maintain(ctx context.Context, ttl, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := a.sessions.CleanupExpiredSessions(ttl); removed > 0 {
				log.Printf("Expired %d sessions idle for more than %s", removed, ttl)
			}
			for _, id := range a.sessions.PruneDeleted() {
				log.Printf("Dropped session %s, its file was deleted", id)
			}
		}
	}
}

// handler builds the full HTTP surface with its own WebSocket hub. The MCP
// endpoint calls the REST API back at baseURL.
func (a *app) handler(baseURL string) http.Handler {
	hub := websocket.NewHub()
	go hub.Run()
	return newRouter(api.NewServer(a.mapService, hub), mcp.NewClient(baseURL))
}

// newRouter mounts the API at the root and the MCP JSON-RPC endpoint at /mcp
func newRouter(apiServer http.Handler, mcpClient *mcp.Client) *http.ServeMux {
	router := http.NewServeMux()
	router.Handle("/", apiServer)
	router.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		defer r.Body.Close()
		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			log.Printf("Failed to write MCP response: %v", err)
		}
	})
	return router
}

// serveHTTP runs the server mode until ctx is done, with an optional tunnel
func (a *app) serveHTTP(ctx context.Context, addr string) error {
	handler := a.handler("http://" + addr)
	httpServer := newHTTPServer(handler)
	httpServer.Addr = addr

	errs := make(chan error, 2)
	go func() {
		log.Printf("Listening on http://%s (REST /api, WebSocket /ws?session=<id>, MCP /mcp)", addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	if settings, ok := tunnelSettings(); ok {
		go func() {
			if err := serveTunnel(ctx, settings, handler); err != nil {
				log.Printf("Ngrok tunnel stopped: %v", err)
			}
		}()
	}

	var err error
	select {
	case <-ctx.Done():
		log.Println("Shutting down...")
	case err = <-errs:
	}
	return errors.Join(err, shutdown(httpServer))
}

// serveStdio speaks MCP on stdin/stdout. It reuses the server answering on
// externalURL, otherwise it starts an internal one on a loopback port.
func (a *app) serveStdio(ctx context.Context, externalURL string) error {
	baseURL := externalURL
	if apiHealthy(externalURL) {
		log.Printf("Using the API server at %s", externalURL)
	} else {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to open internal listener: %w", err)
		}
		baseURL = "http://" + listener.Addr().String()
		internal := newHTTPServer(a.handler(baseURL))
		go func() {
			if err := internal.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
				log.Printf("Internal HTTP server error: %v", err)
			}
		}()
		defer shutdown(internal)
		log.Printf("Started internal API server at %s", baseURL)
	}

	mcpServer := mcp.NewClient(baseURL).GetMCPServer()
	if err := server.ServeStdio(mcpServer); err != nil {
		return fmt.Errorf("MCP stdio server: %w", err)
	}
	return nil
}

func newHTTPServer(handler http.Handler) *http.Server {
	return &http.Server{
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func shutdown(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// apiHealthy reports whether a map server answers its health check at baseURL
func apiHealthy(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/api/health")
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	var health struct {
		Status string `json:"status"`
	}
	if resp.StatusCode != http.StatusOK || json.NewDecoder(resp.Body).Decode(&health) != nil {
		return false
	}
	return health.Status == "healthy"
}

// tunnel describes the ngrok endpoint to open
type tunnel struct {
	authToken string
	domain    string
}

// tunnelSettings reads the ngrok flags, then the environment. ok is false
// when the tunnel is disabled or has no auth token.
func tunnelSettings() (tunnel, bool) {
	enabled := *ngrokEnabled
	if v := os.Getenv("NGROK_ENABLED"); v == "true" || v == "1" {
		enabled = true
	}
	if !enabled {
		return tunnel{}, false
	}

	settings := tunnel{
		authToken: firstNonEmpty(*ngrokAuth, os.Getenv("NGROK_AUTHTOKEN"), os.Getenv("NGROK_AUTH_TOKEN")),
		domain:    firstNonEmpty(*ngrokDomain, os.Getenv("NGROK_DOMAIN")),
	}
	if settings.authToken == "" {
		log.Println("WARNING: ngrok enabled without an auth token (-ngrok-auth, NGROK_AUTHTOKEN or NGROK_AUTH_TOKEN)")
		return tunnel{}, false
	}
	return settings, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// serveTunnel serves handler through an ngrok HTTP endpoint until ctx is done
func serveTunnel(ctx context.Context, settings tunnel, handler http.Handler) error {
	var opts []ngrokConfig.HTTPEndpointOption
	if settings.domain != "" {
		opts = append(opts, ngrokConfig.WithDomain(settings.domain))
	}

	tun, err := ngrok.Listen(ctx, ngrokConfig.HTTPEndpoint(opts...), ngrok.WithAuthtoken(settings.authToken))
	if err != nil {
		return fmt.Errorf("failed to start ngrok tunnel: %w", err)
	}
	log.Printf("Ngrok tunnel established: %s (REST %[1]s/api, MCP %[1]s/mcp)", tun.URL())

	srv := newHTTPServer(handler)
	go func() {
		<-ctx.Done()
		shutdown(srv)
	}()
	if err := srv.Serve(tun); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
