// Package api provides the HTTP REST API of the tile map server.
//
// Endpoints:
//
// Sessions:
//   - POST /api/sessions - Create a session ({"config_id": "meadow"}, optional)
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Map state:
//   - GET /api/sessions/{id}/state - Current map state
//   - POST /api/sessions/{id}/reset - Restore the initial map and units
//   - GET /api/sessions/{id}/history - Action history (?page=1&limit=20&order=desc)
//
// Units and paths:
//   - POST /api/sessions/{id}/units - Place a unit ({"id", "profile", "x", "y"})
//   - DELETE /api/sessions/{id}/units/{unit} - Remove a unit
//   - POST /api/sessions/{id}/units/{unit}/move - Move along an A* path ({"x", "y", "max_steps"})
//   - POST /api/sessions/{id}/path - Plan a path without moving
//
// Tiles and circuits:
//   - GET /api/sessions/{id}/tiles/{x}/{y} - Describe a tile and its circuit
//   - PUT /api/sessions/{id}/tiles/{x}/{y} - Paint a tile ({"sheet", "number"}), neighbors are resolved
//   - GET /api/sessions/{id}/circuits - Session circuit table as XML
//   - POST /api/circuits/extract - Extract circuits from maps ({"configs": [...], "save_as": ""})
//
// Configuration:
//   - GET /api/configs - List map configurations
//   - POST /api/configs - Save a configuration ({"config_id", "config"})
//   - GET /api/configs/{name} - Get a configuration
//   - GET|PUT /api/configs/{name}/circuits - Read or replace the circuit table (XML)
//
// Other:
//   - GET /api/health - Health check
//   - GET /ws?session={id} - WebSocket state updates
//
// Errors are returned as JSON with an HTTP status derived from the
// domain error:
//
//	{"error": "session not found: abcd"}
//
// Unknown sessions, units and configurations give 404, invalid input 400,
// and placement conflicts such as an occupied tile 409.
package api
