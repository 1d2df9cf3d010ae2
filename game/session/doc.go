// Package session provides session management for tile map sessions.
//
// Manager stores sessions in memory under lowercase IDs and optionally
// mirrors them to a SessionPersistence. Generated IDs are 4 hexadecimal
// characters drawn from crypto/rand.
//
// FilePersistence writes one JSON file per session holding the config ID and
// the engine state. Loading rebuilds the engine from the config and its
// circuit table, then restores the grid, the units and the history.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", config, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sess.ID)
//
// The manager is safe for concurrent use. The engines it holds are not; the
// service layer serializes access to them.
package session
