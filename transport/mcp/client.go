package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/b3dgs/lionengine-sub021/game/engine"
	"github.com/b3dgs/lionengine-sub021/game/service"
	"github.com/b3dgs/lionengine-sub021/game/tilemap"
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
		baseURL: strings.TrimSuffix(baseURL, "/"),
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
		"Tile Map Pathfinding",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Tile Map Pathfinding - MCP Interface

This is a thin client that proxies all requests to the REST API server.

A session holds a tile map, the units moving on it and the circuit table used
to repaint transitions between tile groups. Units move with a mover profile
(walker, boat, ...) that decides which tile categories they can cross and at
what cost.

AVAILABLE TOOLS:
- create_session / get_session / list_sessions: manage sessions
- map_state: render the map with its units
- add_unit / remove_unit: place or remove a unit
- find_path: plan an A* path without moving
- move_unit: move a unit along its planned path
- paint_tile: paint a tile, neighbours are resolved with the circuit table
- describe_tile: group, category, circuit and occupants of a tile
- reset_map: restore the initial map and units
- action_history: past actions of a session
- list_configs: available maps
- extract_circuits: build a circuit table from maps
- map_instructions: coordinates and rules reference`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func coordProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": description,
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new map session with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Map configuration to use (optional, see list_configs)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active map sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session, including the rendered map",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Map operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "map_state",
		Description: "Get the current map with its units",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleMapState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "add_unit",
		Description: "Place a unit with a mover profile on a free tile it can stand on",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"unit_id": map[string]interface{}{
					"type":        "string",
					"description": "Unit identifier (letters, digits, - and _)",
				},
				"profile": map[string]interface{}{
					"type":        "string",
					"description": "Mover profile defined by the map (e.g. walker, boat)",
				},
				"x": coordProperty("Column (0-based)"),
				"y": coordProperty("Row (0-based, grows southward)"),
			},
			Required: []string{"session_id", "unit_id", "profile", "x", "y"},
		},
	}, c.handleAddUnit)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "remove_unit",
		Description: "Remove a unit from the map",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"unit_id": map[string]interface{}{
					"type":        "string",
					"description": "Unit identifier",
				},
			},
			Required: []string{"session_id", "unit_id"},
		},
	}, c.handleRemoveUnit)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "find_path",
		Description: "Plan an A* path. Starts from unit_id when given, otherwise from (from_x, from_y) with profile.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"unit_id": map[string]interface{}{
					"type":        "string",
					"description": "Unit to plan for (optional)",
				},
				"profile": map[string]interface{}{
					"type":        "string",
					"description": "Mover profile when no unit is given",
				},
				"from_x":     coordProperty("Start column when no unit is given"),
				"from_y":     coordProperty("Start row when no unit is given"),
				"x":          coordProperty("Destination column"),
				"y":          coordProperty("Destination row"),
				"ignore_ref": map[string]interface{}{"type": "boolean", "description": "Ignore other units while planning"},
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleFindPath)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_unit",
		Description: "Move a unit toward a destination along its A* path",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"unit_id": map[string]interface{}{
					"type":        "string",
					"description": "Unit to move",
				},
				"x":         coordProperty("Destination column"),
				"y":         coordProperty("Destination row"),
				"max_steps": coordProperty("Stop after this many steps (optional, 0 = whole path)"),
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of why the unit is moving there",
				},
			},
			Required: []string{"session_id", "unit_id", "x", "y"},
		},
	}, c.handleMoveUnit)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "paint_tile",
		Description: "Paint a tile with a tile reference; neighbouring transitions are updated",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"x":          coordProperty("Column"),
				"y":          coordProperty("Row"),
				"sheet":      coordProperty("Tile sheet"),
				"number":     coordProperty("Tile number in the sheet"),
			},
			Required: []string{"session_id", "x", "y", "sheet", "number"},
		},
	}, c.handlePaintTile)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_tile",
		Description: "Get the group, category, circuit and occupants of a tile",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"x":          coordProperty("Column (0-based)"),
				"y":          coordProperty("Row (0-based)"),
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleDescribeTile)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_map",
		Description: "Reset the map and units to their initial state",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "action_history",
		Description: "Get the action history of a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"page":       coordProperty("Page number"),
				"limit":      coordProperty("Items per page"),
			},
			Required: []string{"session_id"},
		},
	}, c.handleHistory)

	// Configuration and circuits
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available map configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "extract_circuits",
		Description: "Extract the circuit table of one or more maps and return it as XML",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"configs": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Configuration IDs to extract from",
				},
				"save_as": map[string]interface{}{
					"type":        "string",
					"description": "Store the table as the circuits of this configuration (optional)",
				},
			},
			Required: []string{"configs"},
		},
	}, c.handleExtractCircuits)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "map_instructions",
		Description: "Get the coordinate system and movement rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleMapInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	data, err := c.rawCall(method, path, body)
	if err != nil {
		return err
	}
	if result != nil {
		return json.Unmarshal(data, result)
	}
	return nil
}

// rawCall performs a request and returns the response body as is
func (c *Client) rawCall(method, path string, body interface{}) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		if json.Unmarshal(data, &errResp) == nil {
			if msg, ok := errResp["error"]; ok {
				return nil, fmt.Errorf("%s", msg)
			}
		}
		return nil, fmt.Errorf("API error: %d", resp.StatusCode)
	}
	return data, nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

// intArg reads a JSON number argument
func intArg(args map[string]interface{}, name string) (int, bool) {
	switch v := args[name].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configID, _ := args["config_id"].(string)

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall("POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s", session.ID, session.ConfigName,
		formatState(session.State, session.Config))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall("GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		units := 0
		if s.State != nil {
			units = len(s.State.Units)
		}
		fmt.Fprintf(&result, "- %s (Config: %s, Units: %d, Created: %s)\n",
			s.ID, s.ConfigName, units, s.CreatedAt.Format("15:04:05"))
	}
	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall("GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleMapState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	// The session carries the config, needed to draw the legend characters
	var session service.SessionInfo
	if err := c.apiCall("GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatState(session.State, session.Config)), nil
}

func (c *Client) handleAddUnit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	unitID, _ := args["unit_id"].(string)
	profile, _ := args["profile"].(string)
	x, _ := intArg(args, "x")
	y, _ := intArg(args, "y")

	body := map[string]interface{}{"id": unitID, "profile": profile, "x": x, "y": y}

	var result service.UnitResult
	if err := c.apiCall("POST", sessionPath(sessionID, "/units"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("✓ %s\nUnit %s (%s) at (%d,%d)",
		result.Message, result.Unit.ID, result.Unit.Profile, result.Unit.X, result.Unit.Y)), nil
}

func (c *Client) handleRemoveUnit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	unitID, _ := args["unit_id"].(string)

	if err := c.apiCall("DELETE", sessionPath(sessionID, "/units/"+url.PathEscape(unitID)), nil, nil); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("✓ Removed unit %s", unitID)), nil
}

func (c *Client) handleFindPath(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	req := service.PathRequest{}
	req.UnitID, _ = args["unit_id"].(string)
	req.Profile, _ = args["profile"].(string)
	req.IgnoreRef, _ = args["ignore_ref"].(bool)
	req.To.X, _ = intArg(args, "x")
	req.To.Y, _ = intArg(args, "y")
	if fx, ok := intArg(args, "from_x"); ok {
		fy, _ := intArg(args, "from_y")
		req.From = &engine.Position{X: fx, Y: fy}
	}

	var result service.PathResult
	if err := c.apiCall("POST", sessionPath(sessionID, "/path"), req, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatPathResult(&result)), nil
}

func (c *Client) handleMoveUnit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	unitID, _ := args["unit_id"].(string)
	x, _ := intArg(args, "x")
	y, _ := intArg(args, "y")
	maxSteps, _ := intArg(args, "max_steps")

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_, _ = args["intent"].(string)

	body := map[string]int{"x": x, "y": y, "max_steps": maxSteps}

	var result service.MoveResult
	if err := c.apiCall("POST", sessionPath(sessionID, "/units/"+url.PathEscape(unitID)+"/move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handlePaintTile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	x, _ := intArg(args, "x")
	y, _ := intArg(args, "y")
	var ref tilemap.TileRef
	ref.Sheet, _ = intArg(args, "sheet")
	ref.Number, _ = intArg(args, "number")

	var result service.PaintResult
	if err := c.apiCall("PUT", sessionPath(sessionID, fmt.Sprintf("/tiles/%d/%d", x, y)), ref, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var out strings.Builder
	fmt.Fprintf(&out, "✓ %s\n\nChanged tiles (%d):\n", result.Message, len(result.Changed))
	for _, tile := range result.Changed {
		fmt.Fprintf(&out, "  (%d,%d) -> %s\n", tile.X, tile.Y, tile.Ref)
	}
	return mcp.NewToolResultText(out.String()), nil
}

func (c *Client) handleDescribeTile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	x, _ := intArg(args, "x")
	y, _ := intArg(args, "y")

	var info engine.TileInfo
	if err := c.apiCall("GET", sessionPath(sessionID, fmt.Sprintf("/tiles/%d/%d", x, y)), nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatTileInfo(&info)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var response struct {
		Message string        `json:"message"`
		State   *engine.State `json:"state"`
	}
	if err := c.apiCall("POST", sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatState(response.State, nil))), nil
}

func (c *Client) handleHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	params := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		params.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		params.Set("limit", fmt.Sprint(limit))
	}
	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall("GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall("GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	result.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&result, "• %s (%s)\n  %s\n  Map: %dx%d, Profiles: %s, Circuits file: %t\n\n",
			config.ConfigID, config.Name, config.Description, config.Width, config.Height,
			strings.Join(config.Profiles, ", "), config.HasCircuits)
	}
	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleExtractCircuits(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	raw, _ := args["configs"].([]interface{})
	saveAs, _ := args["save_as"].(string)

	configs := make([]string, 0, len(raw))
	for _, v := range raw {
		if name, ok := v.(string); ok {
			configs = append(configs, name)
		}
	}

	body := map[string]interface{}{"configs": configs, "save_as": saveAs}
	data, err := c.rawCall("POST", "/api/circuits/extract", body)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (c *Client) handleMapInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Tile Map Pathfinding - Instructions

COORDINATES:
• x is the column, y the row, both 0-based
• y grows southward: (x, y+1) is the tile below (x, y)

MOVER PROFILES:
• Each map defines profiles (see list_configs), mapping tile categories to a speed
• A category missing from the profile, or with speed 0, blocks the mover
• Step cost is 1/speed of the destination tile; faster tiles are cheaper

PATHFINDING:
• find_path plans an A* path; nothing moves
• An unreachable destination is redirected to the closest tile the mover can stand on
• Other units block unless ignore_ref is set
• move_unit follows the plan, max_steps limits how far it goes per call

TILES AND CIRCUITS:
• Each tile belongs to a group (grass, water, ...)
• A transition tile sits between two groups; its circuit names the side pattern
• paint_tile repaints a tile and updates neighbouring transitions from the circuit table
• describe_tile shows the group, category and circuit of a tile`
	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatState(session.State, session.Config))
}

// formatState draws the grid with legend characters when the config is known.
// Units are drawn as '@'.
func formatState(state *engine.State, config *tilemap.Config) string {
	if state == nil {
		return "No map state available"
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Map: %s (%dx%d)\n", state.ConfigName, state.Width, state.Height)
	fmt.Fprintf(&result, "Actions: %d (since reset: %d)\n", state.TotalActions, state.CurrentActionsCount)
	if state.Message != "" {
		fmt.Fprintf(&result, "Message: %s\n", state.Message)
	}

	chars := legendChars(config)
	occupied := make(map[engine.Position]bool, len(state.Units))
	for _, u := range state.Units {
		occupied[u.Position()] = true
	}

	result.WriteString("\nGrid:\n")
	for y, row := range state.Grid {
		fmt.Fprintf(&result, "%2d ", y)
		for x, ref := range row {
			switch ch, ok := chars[ref]; {
			case occupied[engine.Position{X: x, Y: y}]:
				result.WriteByte('@')
			case ok:
				result.WriteString(ch)
			default:
				result.WriteByte('?')
			}
		}
		result.WriteByte('\n')
	}

	if len(state.Units) > 0 {
		result.WriteString("\nUnits:\n")
		for _, u := range state.Units {
			fmt.Fprintf(&result, "  %s (%s) at (%d,%d)\n", u.ID, u.Profile, u.X, u.Y)
		}
	}
	return result.String()
}

// legendChars inverts the config legend. When several characters share a
// reference the smallest one wins.
func legendChars(config *tilemap.Config) map[tilemap.TileRef]string {
	chars := make(map[tilemap.TileRef]string)
	if config == nil {
		return chars
	}
	keys := make([]string, 0, len(config.Legend))
	for k := range config.Legend {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ref := config.Legend[k]
		if _, exists := chars[ref]; !exists {
			chars[ref] = k
		}
	}
	return chars
}

func formatPathResult(result *service.PathResult) string {
	var out strings.Builder
	if !result.Found {
		fmt.Fprintf(&out, "✗ No path for %s from (%d,%d) to (%d,%d)\n",
			result.Profile, result.From.X, result.From.Y, result.To.X, result.To.Y)
		if result.Message != "" {
			out.WriteString(result.Message + "\n")
		}
		return out.String()
	}

	fmt.Fprintf(&out, "✓ Path for %s from (%d,%d) to (%d,%d)\n",
		result.Profile, result.From.X, result.From.Y, result.To.X, result.To.Y)
	if result.Destination != nil {
		fmt.Fprintf(&out, "Redirected to (%d,%d)\n", result.Destination.X, result.Destination.Y)
	}
	fmt.Fprintf(&out, "Length: %d, Cost: %.2f\nSteps:", result.Length, result.Cost)
	for _, step := range result.Steps {
		fmt.Fprintf(&out, " (%d,%d)", step.X, step.Y)
	}
	out.WriteByte('\n')
	return out.String()
}

func formatMoveResult(result *service.MoveResult) string {
	var out strings.Builder
	if result.Success {
		out.WriteString("✓ Move successful\n")
	} else {
		out.WriteString("✗ Move failed\n")
	}
	if result.Message != "" {
		out.WriteString(result.Message + "\n")
	}
	if m := result.Move; m != nil {
		fmt.Fprintf(&out, "Unit %s: (%d,%d) -> (%d,%d), target (%d,%d), steps %d, arrived %t\n",
			m.UnitID, m.From.X, m.From.Y, m.To.X, m.To.Y, m.Target.X, m.Target.Y, m.Steps, m.Arrived)
	}
	for _, event := range result.Events {
		fmt.Fprintf(&out, "  [%s] %s\n", event.Type, event.Message)
	}
	return out.String()
}

func formatTileInfo(info *engine.TileInfo) string {
	var out strings.Builder
	fmt.Fprintf(&out, "Tile at position (%d, %d):\n", info.X, info.Y)
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Fprintf(&out, "Reference: %s\n", info.Ref)
	fmt.Fprintf(&out, "Group: %s\n", orNone(info.Group))
	fmt.Fprintf(&out, "Category: %s\n", orNone(info.Category))
	if info.Circuit != nil {
		fmt.Fprintf(&out, "Circuit: %s\n", info.Circuit)
	} else {
		out.WriteString("Circuit: none (not a transition)\n")
	}
	if len(info.Occupants) > 0 {
		fmt.Fprintf(&out, "Occupants: %s\n", strings.Join(info.Occupants, ", "))
	}
	return out.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var out strings.Builder
	fmt.Fprintf(&out, "Action History (page %d/%d, %d total):\n\n",
		history.Page, history.TotalPages, history.TotalActions)
	for _, entry := range history.Actions {
		status := "✓"
		if !entry.Success {
			status = "✗"
		}
		fmt.Fprintf(&out, "#%d %s %s", entry.ActionNumber, status, entry.Action)
		if entry.UnitID != "" {
			fmt.Fprintf(&out, " %s", entry.UnitID)
		}
		fmt.Fprintf(&out, " (%d,%d)->(%d,%d)\n", entry.From.X, entry.From.Y, entry.To.X, entry.To.Y)
	}
	if history.HasNext {
		out.WriteString("\nMore actions on the next page\n")
	}
	return out.String()
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
