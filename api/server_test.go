package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/b3dgs/lionengine-sub021/game/circuit"
	"github.com/b3dgs/lionengine-sub021/game/engine"
	"github.com/b3dgs/lionengine-sub021/game/service"
	"github.com/b3dgs/lionengine-sub021/game/tilemap"
	"github.com/b3dgs/lionengine-sub021/transport/websocket"
)

// MockMapService implements service.MapService for testing
type MockMapService struct {
	// Session Management
	CreateSessionFunc func(ctx context.Context, configName string) (*service.SessionInfo, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error

	// Map Operations
	AddUnitFunc      func(ctx context.Context, sessionID, unitID, profile string, x, y int) (*service.UnitResult, error)
	RemoveUnitFunc   func(ctx context.Context, sessionID, unitID string) (*engine.State, error)
	FindPathFunc     func(ctx context.Context, sessionID string, req service.PathRequest) (*service.PathResult, error)
	MoveUnitFunc     func(ctx context.Context, sessionID, unitID string, x, y, maxSteps int) (*service.MoveResult, error)
	PaintTileFunc    func(ctx context.Context, sessionID string, x, y int, ref tilemap.TileRef) (*service.PaintResult, error)
	DescribeTileFunc func(ctx context.Context, sessionID string, x, y int) (*engine.TileInfo, error)
	ResetFunc        func(ctx context.Context, sessionID string) (*engine.State, error)

	// Map State
	GetStateFunc   func(ctx context.Context, sessionID string) (*engine.State, error)
	GetHistoryFunc func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error)

	// Circuits
	ExtractCircuitsFunc func(ctx context.Context, configNames []string) (*circuit.Table, error)
	ExportCircuitsFunc  func(ctx context.Context, sessionID, configName string) ([]byte, error)
	SaveCircuitsFunc    func(ctx context.Context, configName string, table *circuit.Table) error

	// Configuration
	ListConfigsFunc func(ctx context.Context) ([]*service.ConfigInfo, error)
	LoadConfigFunc  func(ctx context.Context, configName string) (*tilemap.Config, error)
	SaveConfigFunc  func(ctx context.Context, configName string, config *tilemap.Config) error
}

func (m *MockMapService) CreateSession(ctx context.Context, configName string) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, configName)
	}
	return &service.SessionInfo{ID: "test-session", ConfigName: configName, CreatedAt: time.Now()}, nil
}

func (m *MockMapService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{ID: sessionID, ConfigName: "meadow", CreatedAt: time.Now()}, nil
}

func (m *MockMapService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockMapService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockMapService) AddUnit(ctx context.Context, sessionID, unitID, profile string, x, y int) (*service.UnitResult, error) {
	if m.AddUnitFunc != nil {
		return m.AddUnitFunc(ctx, sessionID, unitID, profile, x, y)
	}
	return &service.UnitResult{
		Unit:  engine.Unit{ID: unitID, Profile: profile, X: x, Y: y},
		State: &engine.State{},
	}, nil
}

func (m *MockMapService) RemoveUnit(ctx context.Context, sessionID, unitID string) (*engine.State, error) {
	if m.RemoveUnitFunc != nil {
		return m.RemoveUnitFunc(ctx, sessionID, unitID)
	}
	return &engine.State{}, nil
}

func (m *MockMapService) FindPath(ctx context.Context, sessionID string, req service.PathRequest) (*service.PathResult, error) {
	if m.FindPathFunc != nil {
		return m.FindPathFunc(ctx, sessionID, req)
	}
	return &service.PathResult{To: req.To}, nil
}

func (m *MockMapService) MoveUnit(ctx context.Context, sessionID, unitID string, x, y, maxSteps int) (*service.MoveResult, error) {
	if m.MoveUnitFunc != nil {
		return m.MoveUnitFunc(ctx, sessionID, unitID, x, y, maxSteps)
	}
	return &service.MoveResult{
		Success: true,
		Move:    &engine.MoveResult{UnitID: unitID, Target: engine.Position{X: x, Y: y}},
		State:   &engine.State{},
	}, nil
}

func (m *MockMapService) PaintTile(ctx context.Context, sessionID string, x, y int, ref tilemap.TileRef) (*service.PaintResult, error) {
	if m.PaintTileFunc != nil {
		return m.PaintTileFunc(ctx, sessionID, x, y, ref)
	}
	return &service.PaintResult{State: &engine.State{}}, nil
}

func (m *MockMapService) DescribeTile(ctx context.Context, sessionID string, x, y int) (*engine.TileInfo, error) {
	if m.DescribeTileFunc != nil {
		return m.DescribeTileFunc(ctx, sessionID, x, y)
	}
	return &engine.TileInfo{}, nil
}

func (m *MockMapService) Reset(ctx context.Context, sessionID string) (*engine.State, error) {
	if m.ResetFunc != nil {
		return m.ResetFunc(ctx, sessionID)
	}
	return &engine.State{}, nil
}

func (m *MockMapService) GetState(ctx context.Context, sessionID string) (*engine.State, error) {
	if m.GetStateFunc != nil {
		return m.GetStateFunc(ctx, sessionID)
	}
	return &engine.State{}, nil
}

func (m *MockMapService) GetHistory(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
	if m.GetHistoryFunc != nil {
		return m.GetHistoryFunc(ctx, sessionID, opts)
	}
	return &service.HistoryResponse{
		Actions:    []engine.HistoryEntry{},
		Page:       opts.Page,
		PageSize:   opts.Limit,
		TotalPages: 1,
	}, nil
}

func (m *MockMapService) ExtractCircuits(ctx context.Context, configNames []string) (*circuit.Table, error) {
	if m.ExtractCircuitsFunc != nil {
		return m.ExtractCircuitsFunc(ctx, configNames)
	}
	return circuit.NewTable(), nil
}

func (m *MockMapService) ExportCircuits(ctx context.Context, sessionID, configName string) ([]byte, error) {
	if m.ExportCircuitsFunc != nil {
		return m.ExportCircuitsFunc(ctx, sessionID, configName)
	}
	return []byte("<circuits></circuits>"), nil
}

func (m *MockMapService) SaveCircuits(ctx context.Context, configName string, table *circuit.Table) error {
	if m.SaveCircuitsFunc != nil {
		return m.SaveCircuitsFunc(ctx, configName, table)
	}
	return nil
}

func (m *MockMapService) ListConfigs(ctx context.Context) ([]*service.ConfigInfo, error) {
	if m.ListConfigsFunc != nil {
		return m.ListConfigsFunc(ctx)
	}
	return []*service.ConfigInfo{}, nil
}

func (m *MockMapService) LoadConfig(ctx context.Context, configName string) (*tilemap.Config, error) {
	if m.LoadConfigFunc != nil {
		return m.LoadConfigFunc(ctx, configName)
	}
	return tilemap.DefaultConfig(), nil
}

func (m *MockMapService) SaveConfig(ctx context.Context, configName string, config *tilemap.Config) error {
	if m.SaveConfigFunc != nil {
		return m.SaveConfigFunc(ctx, configName, config)
	}
	return nil
}

// Test helpers
func setupTestServer(mockService *MockMapService) *Server {
	hub := websocket.NewHub()
	go hub.Run()
	return NewServer(mockService, hub)
}

func makeRequest(method, path string, body any) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
}

func serve(server *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

// Session Management Tests

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    any
		setupMock      func(*MockMapService)
		expectedStatus int
		expectedConfig string
	}{
		{
			name:           "Create session with default config",
			requestBody:    nil,
			expectedStatus: http.StatusCreated,
			expectedConfig: "",
		},
		{
			name:           "Create session with specific config",
			requestBody:    map[string]string{"config_id": "islands"},
			expectedStatus: http.StatusCreated,
			expectedConfig: "islands",
		},
		{
			name:        "Unknown config",
			requestBody: map[string]string{"config_id": "missing"},
			setupMock: func(m *MockMapService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("%w: %s", service.ErrConfigNotFound, configName)
				}
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "Handle service error",
			setupMock: func(m *MockMapService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("service error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockMapService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}
			server := setupTestServer(mockService)

			w := serve(server, makeRequest("POST", "/api/sessions", tt.requestBody))

			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if w.Code == http.StatusCreated {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.ConfigName != tt.expectedConfig {
					t.Errorf("Expected config %q, got %q", tt.expectedConfig, resp.ConfigName)
				}
			}
		})
	}
}

func TestCreateSessionMalformedBody(t *testing.T) {
	server := setupTestServer(&MockMapService{})
	req := httptest.NewRequest("POST", "/api/sessions", strings.NewReader("{not json"))

	w := serve(server, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestListSessions(t *testing.T) {
	now := time.Now()
	mockService := &MockMapService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "old", CreatedAt: now.Add(-2 * time.Hour), LastAccessedAt: now.Add(-time.Minute)},
				{ID: "new", CreatedAt: now, LastAccessedAt: now.Add(-time.Hour)},
				{ID: "mid", CreatedAt: now.Add(-time.Hour), LastAccessedAt: now},
			}, nil
		},
	}
	server := setupTestServer(mockService)

	tests := []struct {
		name     string
		query    string
		expected []string
		total    int
	}{
		{name: "Default sorts by last access desc", query: "", expected: []string{"mid", "old", "new"}},
		{name: "Created ascending", query: "?sort=created&order=asc", expected: []string{"old", "mid", "new"}},
		{name: "Limit", query: "?sort=created&limit=1", expected: []string{"new"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(server, makeRequest("GET", "/api/sessions"+tt.query, nil))
			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}

			var resp struct {
				Count    int                    `json:"count"`
				Total    int                    `json:"total"`
				Sessions []*service.SessionInfo `json:"sessions"`
			}
			parseResponse(t, w, &resp)

			if resp.Total != 3 {
				t.Errorf("Expected total 3, got %d", resp.Total)
			}
			if resp.Count != len(tt.expected) {
				t.Fatalf("Expected count %d, got %d", len(tt.expected), resp.Count)
			}
			for i, id := range tt.expected {
				if resp.Sessions[i].ID != id {
					t.Errorf("Session %d: expected %s, got %s", i, id, resp.Sessions[i].ID)
				}
			}
		})
	}
}

func TestGetAndDeleteSession(t *testing.T) {
	mockService := &MockMapService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			if sessionID != "abcd" {
				return nil, fmt.Errorf("%w: %s", service.ErrSessionNotFound, sessionID)
			}
			return &service.SessionInfo{ID: sessionID}, nil
		},
		DeleteSessionFunc: func(ctx context.Context, sessionID string) error {
			if sessionID != "abcd" {
				return fmt.Errorf("%w: %s", service.ErrSessionNotFound, sessionID)
			}
			return nil
		},
	}
	server := setupTestServer(mockService)

	tests := []struct {
		method   string
		path     string
		expected int
	}{
		{"GET", "/api/sessions/abcd", http.StatusOK},
		{"GET", "/api/sessions/nope", http.StatusNotFound},
		{"DELETE", "/api/sessions/abcd", http.StatusOK},
		{"DELETE", "/api/sessions/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := serve(server, makeRequest(tt.method, tt.path, nil))
			if w.Code != tt.expected {
				t.Errorf("Expected status %d, got %d", tt.expected, w.Code)
			}
		})
	}
}

// Map State Tests

func TestGetHistoryOptions(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected service.HistoryOptions
	}{
		{name: "Defaults", query: "", expected: service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
		{name: "Explicit", query: "?page=3&limit=5&order=asc", expected: service.HistoryOptions{Page: 3, Limit: 5, Order: "asc"}},
		{name: "Invalid values ignored", query: "?page=-1&limit=abc&order=sideways", expected: service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got service.HistoryOptions
			mockService := &MockMapService{
				GetHistoryFunc: func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
					got = opts
					return &service.HistoryResponse{}, nil
				},
			}
			server := setupTestServer(mockService)

			w := serve(server, makeRequest("GET", "/api/sessions/abcd/history"+tt.query, nil))
			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}
			if got != tt.expected {
				t.Errorf("Expected options %+v, got %+v", tt.expected, got)
			}
		})
	}
}

func TestResetBroadcastsState(t *testing.T) {
	hub := websocket.NewHub()
	server := NewServer(&MockMapService{
		ResetFunc: func(ctx context.Context, sessionID string) (*engine.State, error) {
			return &engine.State{ConfigName: "meadow"}, nil
		},
	}, hub)

	w := serve(server, makeRequest("POST", "/api/sessions/abcd/reset", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	// The hub is not running, so the update waits in its queue
	if queued := hub.Pending(); queued != 1 {
		t.Errorf("Expected 1 queued broadcast, got %d", queued)
	}
}

// Unit Tests

func TestAddUnit(t *testing.T) {
	tests := []struct {
		name           string
		body           any
		err            error
		expectedStatus int
	}{
		{
			name:           "Place unit",
			body:           map[string]any{"id": "w1", "profile": "walker", "x": 0, "y": 0},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Occupied tile",
			body:           map[string]any{"id": "w2", "profile": "walker", "x": 0, "y": 0},
			err:            fmt.Errorf("%w: (0,0)", engine.ErrTileOccupied),
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "Unknown profile",
			body:           map[string]any{"id": "w3", "profile": "flyer", "x": 0, "y": 0},
			err:            fmt.Errorf("%w: flyer", engine.ErrUnknownProfile),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Out of bounds",
			body:           map[string]any{"id": "w4", "profile": "walker", "x": 99, "y": 0},
			err:            fmt.Errorf("%w: (99,0)", engine.ErrOutOfBounds),
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockMapService{}
			if tt.err != nil {
				mockService.AddUnitFunc = func(ctx context.Context, sessionID, unitID, profile string, x, y int) (*service.UnitResult, error) {
					return nil, tt.err
				}
			}
			server := setupTestServer(mockService)

			w := serve(server, makeRequest("POST", "/api/sessions/abcd/units", tt.body))
			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestRemoveUnit(t *testing.T) {
	var removed string
	server := setupTestServer(&MockMapService{
		RemoveUnitFunc: func(ctx context.Context, sessionID, unitID string) (*engine.State, error) {
			if unitID == "ghost" {
				return nil, fmt.Errorf("%w: %s", engine.ErrUnknownUnit, unitID)
			}
			removed = unitID
			return &engine.State{}, nil
		},
	})

	if w := serve(server, makeRequest("DELETE", "/api/sessions/abcd/units/w1", nil)); w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if removed != "w1" {
		t.Errorf("Expected w1 to be removed, got %q", removed)
	}
	if w := serve(server, makeRequest("DELETE", "/api/sessions/abcd/units/ghost", nil)); w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestMoveUnit(t *testing.T) {
	var gotX, gotY, gotMax int
	mockService := &MockMapService{
		MoveUnitFunc: func(ctx context.Context, sessionID, unitID string, x, y, maxSteps int) (*service.MoveResult, error) {
			gotX, gotY, gotMax = x, y, maxSteps
			return &service.MoveResult{
				Success: true,
				Move: &engine.MoveResult{
					UnitID:  unitID,
					From:    engine.Position{X: 0, Y: 0},
					To:      engine.Position{X: x, Y: y},
					Target:  engine.Position{X: x, Y: y},
					Steps:   3,
					Found:   true,
					Arrived: true,
				},
				State: &engine.State{},
			}, nil
		},
	}
	server := setupTestServer(mockService)

	w := serve(server, makeRequest("POST", "/api/sessions/abcd/units/w1/move", map[string]int{"x": 3, "y": 0, "max_steps": 5}))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if gotX != 3 || gotY != 0 || gotMax != 5 {
		t.Errorf("Expected move to (3,0) max 5, got (%d,%d) max %d", gotX, gotY, gotMax)
	}

	var resp service.MoveResult
	parseResponse(t, w, &resp)
	if !resp.Success || !resp.Move.Arrived {
		t.Errorf("Expected arrived move, got %+v", resp.Move)
	}
}

func TestFindPath(t *testing.T) {
	var got service.PathRequest
	mockService := &MockMapService{
		FindPathFunc: func(ctx context.Context, sessionID string, req service.PathRequest) (*service.PathResult, error) {
			got = req
			return &service.PathResult{Found: true, Profile: req.Profile, From: *req.From, To: req.To, Length: 4, Cost: 3}, nil
		},
	}
	server := setupTestServer(mockService)

	body := map[string]any{
		"profile": "boat",
		"from":    map[string]int{"x": 0, "y": 3},
		"to":      map[string]int{"x": 9, "y": 3},
	}
	w := serve(server, makeRequest("POST", "/api/sessions/abcd/path", body))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if got.Profile != "boat" || got.From == nil || got.From.Y != 3 || got.To.X != 9 {
		t.Errorf("Request not forwarded: %+v", got)
	}

	var resp service.PathResult
	parseResponse(t, w, &resp)
	if !resp.Found || resp.Length != 4 {
		t.Errorf("Unexpected result %+v", resp)
	}
}

// Tile Tests

func TestTileRoutes(t *testing.T) {
	var paintedAt, describedAt [2]int
	var painted tilemap.TileRef
	mockService := &MockMapService{
		PaintTileFunc: func(ctx context.Context, sessionID string, x, y int, ref tilemap.TileRef) (*service.PaintResult, error) {
			paintedAt, painted = [2]int{x, y}, ref
			return &service.PaintResult{
				Changed: []tilemap.Tile{{X: x, Y: y, Ref: ref}},
				State:   &engine.State{},
			}, nil
		},
		DescribeTileFunc: func(ctx context.Context, sessionID string, x, y int) (*engine.TileInfo, error) {
			describedAt = [2]int{x, y}
			return &engine.TileInfo{X: x, Y: y}, nil
		},
	}
	server := setupTestServer(mockService)

	w := serve(server, makeRequest("PUT", "/api/sessions/abcd/tiles/4/2", tilemap.TileRef{Sheet: 0, Number: 5}))
	if w.Code != http.StatusOK {
		t.Fatalf("Paint: expected status 200, got %d", w.Code)
	}
	if paintedAt != [2]int{4, 2} || painted.Number != 5 {
		t.Errorf("Paint: got %v ref %v", paintedAt, painted)
	}

	w = serve(server, makeRequest("GET", "/api/sessions/abcd/tiles/7/1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Describe: expected status 200, got %d", w.Code)
	}
	if describedAt != [2]int{7, 1} {
		t.Errorf("Describe: got %v", describedAt)
	}

	w = serve(server, makeRequest("GET", "/api/sessions/abcd/tiles/x/1", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Non numeric coordinates: expected 404, got %d", w.Code)
	}
}

// Circuit Tests

func TestSessionCircuits(t *testing.T) {
	server := setupTestServer(&MockMapService{
		ExportCircuitsFunc: func(ctx context.Context, sessionID, configName string) ([]byte, error) {
			if sessionID != "abcd" || configName != "" {
				t.Errorf("Unexpected export target %q %q", sessionID, configName)
			}
			return []byte(`<circuits><circuit type="VERTICAL" in="water" out="grass"></circuit></circuits>`), nil
		},
	})

	w := serve(server, makeRequest("GET", "/api/sessions/abcd/circuits", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/xml" {
		t.Errorf("Expected XML content type, got %s", ct)
	}
	if !strings.Contains(w.Body.String(), `type="VERTICAL"`) {
		t.Errorf("Unexpected body %s", w.Body.String())
	}
}

func TestSaveCircuits(t *testing.T) {
	table := circuit.NewTable()
	table.Add(circuit.New(circuit.Vertical, "water", "grass"), tilemap.TileRef{Sheet: 0, Number: 12})
	var doc bytes.Buffer
	if err := circuit.Export(&doc, table); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var saved *circuit.Table
	server := setupTestServer(&MockMapService{
		LoadConfigFunc: func(ctx context.Context, configName string) (*tilemap.Config, error) {
			if configName != "meadow" {
				return nil, fmt.Errorf("%w: %s", service.ErrConfigNotFound, configName)
			}
			return tilemap.DefaultConfig(), nil
		},
		SaveCircuitsFunc: func(ctx context.Context, configName string, table *circuit.Table) error {
			saved = table
			return nil
		},
	})

	t.Run("Valid document", func(t *testing.T) {
		req := httptest.NewRequest("PUT", "/api/configs/meadow/circuits", bytes.NewReader(doc.Bytes()))
		w := serve(server, req)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		if saved == nil || !saved.Equal(table) {
			t.Error("Saved table differs from the uploaded one")
		}
	})

	t.Run("Malformed document", func(t *testing.T) {
		req := httptest.NewRequest("PUT", "/api/configs/meadow/circuits", strings.NewReader("<circuits><circuit"))
		w := serve(server, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("Oversized range", func(t *testing.T) {
		saved = nil
		body := `<circuits><circuit type="MIDDLE" in="water" out="water"><tiles sheet="1" start="0" end="20000000"/></circuit></circuits>`
		req := httptest.NewRequest("PUT", "/api/configs/meadow/circuits", strings.NewReader(body))
		w := serve(server, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
		if saved != nil {
			t.Error("Did not expect the table to be saved")
		}
	})

	t.Run("Unknown config", func(t *testing.T) {
		req := httptest.NewRequest("PUT", "/api/configs/nope/circuits", bytes.NewReader(doc.Bytes()))
		w := serve(server, req)
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})
}

func TestExtractCircuits(t *testing.T) {
	var savedAs string
	server := setupTestServer(&MockMapService{
		ExtractCircuitsFunc: func(ctx context.Context, configNames []string) (*circuit.Table, error) {
			if len(configNames) != 2 {
				t.Errorf("Expected 2 configs, got %v", configNames)
			}
			table := circuit.NewTable()
			table.Add(circuit.New(circuit.Horizontal, "water", "grass"), tilemap.TileRef{Sheet: 0, Number: 10})
			return table, nil
		},
		SaveCircuitsFunc: func(ctx context.Context, configName string, table *circuit.Table) error {
			savedAs = configName
			return nil
		},
	})

	body := map[string]any{"configs": []string{"meadow", "islands"}, "save_as": "meadow"}
	w := serve(server, makeRequest("POST", "/api/circuits/extract", body))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if savedAs != "meadow" {
		t.Errorf("Expected table saved as meadow, got %q", savedAs)
	}

	table, err := circuit.Import(w.Body)
	if err != nil {
		t.Fatalf("Response is not a circuits document: %v", err)
	}
	if table.Len() != 1 {
		t.Errorf("Expected 1 circuit, got %d", table.Len())
	}
}

// Configuration Tests

func TestCreateConfig(t *testing.T) {
	tests := []struct {
		name           string
		body           any
		saveErr        error
		expectedStatus int
	}{
		{
			name:           "Save config",
			body:           map[string]any{"config_id": "meadow2", "config": tilemap.DefaultConfig()},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Missing config",
			body:           map[string]any{"config_id": "meadow2"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Path in config id",
			body:           map[string]any{"config_id": "../etc", "config": tilemap.DefaultConfig()},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid config",
			body:           map[string]any{"config_id": "broken", "config": tilemap.DefaultConfig()},
			saveErr:        fmt.Errorf("%w: width must be positive", tilemap.ErrInvalidConfig),
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := setupTestServer(&MockMapService{
				SaveConfigFunc: func(ctx context.Context, configName string, config *tilemap.Config) error {
					return tt.saveErr
				},
			})

			w := serve(server, makeRequest("POST", "/api/configs", tt.body))
			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestListConfigs(t *testing.T) {
	server := setupTestServer(&MockMapService{
		ListConfigsFunc: func(ctx context.Context) ([]*service.ConfigInfo, error) {
			return []*service.ConfigInfo{{ConfigID: "meadow", Profiles: []string{"boat", "walker"}}}, nil
		},
	})

	w := serve(server, makeRequest("GET", "/api/configs", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp []*service.ConfigInfo
	parseResponse(t, w, &resp)
	if len(resp) != 1 || resp[0].ConfigID != "meadow" {
		t.Errorf("Unexpected configs %+v", resp)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err      error
		expected int
	}{
		{fmt.Errorf("wrap: %w", service.ErrSessionNotFound), http.StatusNotFound},
		{fmt.Errorf("wrap: %w", service.ErrConfigNotFound), http.StatusNotFound},
		{engine.ErrUnknownUnit, http.StatusNotFound},
		{service.ErrInvalidRequest, http.StatusBadRequest},
		{tilemap.ErrInvalidConfig, http.StatusBadRequest},
		{fmt.Errorf("import: %w", circuit.ErrMalformedCircuits), http.StatusBadRequest},
		{engine.ErrInvalidUnitID, http.StatusBadRequest},
		{engine.ErrUnitExists, http.StatusConflict},
		{engine.ErrTileBlocked, http.StatusConflict},
		{engine.ErrTooManyUnits, http.StatusConflict},
		{fmt.Errorf("disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	server := setupTestServer(&MockMapService{})

	w := serve(server, makeRequest("GET", "/api/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp map[string]string
	parseResponse(t, w, &resp)
	if resp["status"] != "healthy" {
		t.Errorf("Expected healthy, got %s", resp["status"])
	}
}

func TestWebSocketRequiresSession(t *testing.T) {
	server := setupTestServer(&MockMapService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			return nil, service.ErrSessionNotFound
		},
	})

	if w := serve(server, makeRequest("GET", "/ws", nil)); w.Code != http.StatusBadRequest {
		t.Errorf("Missing session: expected 400, got %d", w.Code)
	}
	if w := serve(server, makeRequest("GET", "/ws?session=nope", nil)); w.Code != http.StatusNotFound {
		t.Errorf("Unknown session: expected 404, got %d", w.Code)
	}
}
