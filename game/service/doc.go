// Package service provides the business logic layer for tile map sessions.
//
// The service package implements:
//   - Multi-session map management
//   - Configuration and circuit table loading
//   - Unit placement, path planning and movement
//   - Tile painting with transition resolution
//   - Action history tracking
//
// Core Interfaces:
//
// MapService is the main service interface providing high-level map operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages map configurations and their circuit tables.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the world engine, providing session isolation and configuration management.
// Each session owns its own engine instance with independent state.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr := config.NewManager("configs")
//	mapService := service.NewMapService(sessionMgr, configMgr)
//
//	sessionInfo, err := mapService.CreateSession(ctx, "meadow")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	_, err = mapService.AddUnit(ctx, sessionInfo.ID, "scout", "walker", 0, 0)
//	result, err := mapService.MoveUnit(ctx, sessionInfo.ID, "scout", 0, 4, 0)
//
// Sessions are identified by unique 4-character IDs.
package service
