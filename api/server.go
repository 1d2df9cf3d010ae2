package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/b3dgs/lionengine-sub021/game/circuit"
	"github.com/b3dgs/lionengine-sub021/game/engine"
	"github.com/b3dgs/lionengine-sub021/game/service"
	"github.com/b3dgs/lionengine-sub021/game/tilemap"
	"github.com/b3dgs/lionengine-sub021/transport/websocket"
)

// maxBodySize bounds request bodies, circuit documents included
const maxBodySize = 1 << 20

// Server represents the REST API server
type Server struct {
	service service.MapService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server
func NewServer(mapService service.MapService, hub *websocket.Hub) *Server {
	s := &Server{
		service: mapService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Map state
	api.HandleFunc("/sessions/{id}/state", s.handleGetState).Methods("GET")
	api.HandleFunc("/sessions/{id}/reset", s.handleReset).Methods("POST")
	api.HandleFunc("/sessions/{id}/history", s.handleGetHistory).Methods("GET")

	// Units and paths
	api.HandleFunc("/sessions/{id}/units", s.handleAddUnit).Methods("POST")
	api.HandleFunc("/sessions/{id}/units/{unit}", s.handleRemoveUnit).Methods("DELETE")
	api.HandleFunc("/sessions/{id}/units/{unit}/move", s.handleMoveUnit).Methods("POST")
	api.HandleFunc("/sessions/{id}/path", s.handleFindPath).Methods("POST")

	// Tiles and circuits
	api.HandleFunc("/sessions/{id}/tiles/{x:[0-9]+}/{y:[0-9]+}", s.handleDescribeTile).Methods("GET")
	api.HandleFunc("/sessions/{id}/tiles/{x:[0-9]+}/{y:[0-9]+}", s.handlePaintTile).Methods("PUT")
	api.HandleFunc("/sessions/{id}/circuits", s.handleSessionCircuits).Methods("GET")
	api.HandleFunc("/circuits/extract", s.handleExtractCircuits).Methods("POST")

	// Configuration
	api.HandleFunc("/configs", s.handleListConfigs).Methods("GET")
	api.HandleFunc("/configs", s.handleCreateConfig).Methods("POST")
	api.HandleFunc("/configs/{name}", s.handleGetConfig).Methods("GET")
	api.HandleFunc("/configs/{name}/circuits", s.handleConfigCircuits).Methods("GET")
	api.HandleFunc("/configs/{name}/circuits", s.handleSaveCircuits).Methods("PUT")

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func respondXML(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	w.Write(data)
}

// respondServiceError maps domain errors to HTTP status codes
func respondServiceError(w http.ResponseWriter, err error) {
	respondError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrConfigNotFound),
		errors.Is(err, engine.ErrUnknownUnit):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, tilemap.ErrInvalidConfig),
		errors.Is(err, engine.ErrOutOfBounds),
		errors.Is(err, engine.ErrUnknownProfile),
		errors.Is(err, engine.ErrInvalidUnitID),
		errors.Is(err, circuit.ErrMalformedCircuits),
		errors.Is(err, circuit.ErrUnknownCircuitType):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrUnitExists),
		errors.Is(err, engine.ErrTileOccupied),
		errors.Is(err, engine.ErrTileBlocked),
		errors.Is(err, engine.ErrTooManyUnits):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", service.ErrInvalidRequest, err)
	}
	return nil
}

// broadcast pushes the new state, then an optional event, to the session clients
func (s *Server) broadcast(sessionID string, state *engine.State, event string, data any) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToSession(sessionID, state)
	if event != "" {
		s.hub.BroadcastEvent(sessionID, event, data)
	}
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConfigID string `json:"config_id,omitempty"`
	}
	// An empty body selects the default configuration
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := s.service.CreateSession(r.Context(), req.ConfigID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	query := r.URL.Query()
	sortBy := query.Get("sort") // "created", "accessed" (default)
	order := query.Get("order") // "asc", "desc" (default)
	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}
	total := len(sessions)

	sort.Slice(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}
		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	if l, err := strconv.Atoi(query.Get("limit")); err == nil && l > 0 && l < len(sessions) {
		sessions = sessions[:l]
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.service.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Map State Handlers

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	state, err := s.service.GetState(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	state, err := s.service.Reset(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcast(sessionID, state, "", nil)
	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Map reset successfully",
		"state":   state,
	})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	opts := service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}

	query := r.URL.Query()
	if p, err := strconv.Atoi(query.Get("page")); err == nil && p > 0 {
		opts.Page = p
	}
	if l, err := strconv.Atoi(query.Get("limit")); err == nil && l > 0 {
		opts.Limit = l
	}
	if order := query.Get("order"); order == "asc" || order == "desc" {
		opts.Order = order
	}

	history, err := s.service.GetHistory(r.Context(), mux.Vars(r)["id"], opts)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, history)
}

// Unit Handlers

func (s *Server) handleAddUnit(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		ID      string `json:"id"`
		Profile string `json:"profile"`
		X       int    `json:"x"`
		Y       int    `json:"y"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, err)
		return
	}

	result, err := s.service.AddUnit(r.Context(), sessionID, req.ID, req.Profile, req.X, req.Y)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcast(sessionID, result.State, "", nil)
	respondJSON(w, http.StatusCreated, result)
}

func (s *Server) handleRemoveUnit(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	state, err := s.service.RemoveUnit(r.Context(), vars["id"], vars["unit"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcast(vars["id"], state, "", nil)
	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleMoveUnit(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID, unitID := vars["id"], vars["unit"]

	var req struct {
		X        int `json:"x"`
		Y        int `json:"y"`
		MaxSteps int `json:"max_steps,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, err)
		return
	}

	result, err := s.service.MoveUnit(r.Context(), sessionID, unitID, req.X, req.Y, req.MaxSteps)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcast(sessionID, result.State, websocket.EventUnitMoved, result.Move)

	m := result.Move
	status := "FAIL"
	if result.Success {
		status = "OK"
	}
	fmt.Printf("[MOVE] session=%s unit=%s (%d,%d)->(%d,%d) target=(%d,%d) steps=%d arrived=%t status=%s\n",
		sessionID, unitID, m.From.X, m.From.Y, m.To.X, m.To.Y, m.Target.X, m.Target.Y, m.Steps, m.Arrived, status)

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleFindPath(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req service.PathRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, err)
		return
	}

	result, err := s.service.FindPath(r.Context(), sessionID, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	fmt.Printf("[PATH] session=%s profile=%s (%d,%d)->(%d,%d) found=%t length=%d cost=%.2f\n",
		sessionID, result.Profile, result.From.X, result.From.Y, result.To.X, result.To.Y,
		result.Found, result.Length, result.Cost)

	respondJSON(w, http.StatusOK, result)
}

// Tile Handlers

// tileCoords reads the x/y route variables, digits only per the route pattern
func tileCoords(r *http.Request) (int, int) {
	vars := mux.Vars(r)
	x, _ := strconv.Atoi(vars["x"])
	y, _ := strconv.Atoi(vars["y"])
	return x, y
}

func (s *Server) handleDescribeTile(w http.ResponseWriter, r *http.Request) {
	x, y := tileCoords(r)
	info, err := s.service.DescribeTile(r.Context(), mux.Vars(r)["id"], x, y)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handlePaintTile(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	x, y := tileCoords(r)

	var ref tilemap.TileRef
	if err := decodeJSON(r, &ref); err != nil {
		respondServiceError(w, err)
		return
	}

	result, err := s.service.PaintTile(r.Context(), sessionID, x, y, ref)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcast(sessionID, result.State, websocket.EventTilesChanged, result.Changed)
	fmt.Printf("[PAINT] session=%s tile=(%d,%d) ref=%s changed=%d\n", sessionID, x, y, ref, len(result.Changed))

	respondJSON(w, http.StatusOK, result)
}

// Circuit Handlers

func (s *Server) handleSessionCircuits(w http.ResponseWriter, r *http.Request) {
	data, err := s.service.ExportCircuits(r.Context(), mux.Vars(r)["id"], "")
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondXML(w, http.StatusOK, data)
}

func (s *Server) handleConfigCircuits(w http.ResponseWriter, r *http.Request) {
	data, err := s.service.ExportCircuits(r.Context(), "", mux.Vars(r)["name"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondXML(w, http.StatusOK, data)
}

func (s *Server) handleSaveCircuits(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	table, err := circuit.Import(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if _, err := s.service.LoadConfig(r.Context(), name); err != nil {
		respondServiceError(w, err)
		return
	}
	if err := s.service.SaveCircuits(r.Context(), name, table); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message":  "Circuits saved successfully",
		"config":   name,
		"circuits": table.Len(),
	})
}

func (s *Server) handleExtractCircuits(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Configs []string `json:"configs"`
		SaveAs  string   `json:"save_as,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, err)
		return
	}

	table, err := s.service.ExtractCircuits(r.Context(), req.Configs)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if req.SaveAs != "" {
		if err := s.service.SaveCircuits(r.Context(), req.SaveAs, table); err != nil {
			respondServiceError(w, err)
			return
		}
	}

	var buf bytes.Buffer
	if err := circuit.Export(&buf, table); err != nil {
		respondServiceError(w, err)
		return
	}
	fmt.Printf("[CIRCUITS] extracted=%d from=%s\n", table.Len(), strings.Join(req.Configs, ","))
	respondXML(w, http.StatusOK, buf.Bytes())
}

// Configuration Handlers

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.service.ListConfigs(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, configs)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	config, err := s.service.LoadConfig(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, config)
}

func (s *Server) handleCreateConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConfigID string          `json:"config_id"`
		Config   *tilemap.Config `json:"config"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, err)
		return
	}
	if req.Config == nil {
		respondError(w, http.StatusBadRequest, "config is required")
		return
	}
	if req.ConfigID == "" {
		req.ConfigID = req.Config.Name
	}
	if req.ConfigID == "" || strings.ContainsAny(req.ConfigID, `/\.`) {
		respondError(w, http.StatusBadRequest, "config_id must be a plain file name")
		return
	}

	if err := s.service.SaveConfig(r.Context(), req.ConfigID, req.Config); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"message":   "Configuration saved successfully",
		"config_id": req.ConfigID,
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}
	if s.hub == nil {
		http.Error(w, "WebSocket not available", http.StatusServiceUnavailable)
		return
	}
	if _, err := s.service.GetSession(r.Context(), sessionID); err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, sessionID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
