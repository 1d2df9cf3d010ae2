// Package mcp exposes the tile map server to AI agents over the Model
// Context Protocol.
//
// The client is a thin proxy: every tool call is translated into a REST
// request against a running API server and the JSON answer is rendered as
// text for the agent.
//
// MCP Tools:
//   - create_session, get_session, list_sessions: session management
//   - map_state: map drawn with legend characters, units as '@'
//   - add_unit, remove_unit: unit placement
//   - find_path: A* planning without moving
//   - move_unit: follow the planned path, optionally for max_steps
//   - paint_tile: paint a tile and resolve neighbouring transitions
//   - describe_tile: group, category, circuit and occupants of a tile
//   - reset_map, action_history: session state
//   - list_configs, extract_circuits: maps and circuit tables
//   - map_instructions: coordinate and movement reference
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
// API errors are returned as tool error results, never as Go errors, so the
// agent sees the message.
package mcp
