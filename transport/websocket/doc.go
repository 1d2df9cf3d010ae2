// Package websocket pushes session updates to browser clients.
//
// A Hub keeps the clients of every session and runs a single event loop
// handling registration and broadcasts. Clients attach with
// /ws?session=<id>; each state-changing API call then sends them a Message:
//
//	{"session_id": "ab12", "event": "state_update", "state": {...}}
//
// Incoming client messages are read only to detect disconnects.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	hub.BroadcastToSession(sessionID, state)
//
// Broadcasts never block the caller: when the queue is full the message is
// dropped and logged, and a client whose send buffer is full is disconnected.
package websocket
