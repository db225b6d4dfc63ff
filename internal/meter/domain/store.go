package domain

import "github.com/google/uuid"

// Store holds the live sessions. The engine owns no process-wide state of
// its own; a horizontally-scaled deployment can back this with an external
// store without touching the engine.
type Store interface {
	// Get returns the session or nil when unknown.
	Get(id uuid.UUID) *Session

	// Put registers a session; a second Put for the same id fails with
	// ErrAlreadyStarted.
	Put(s *Session) error

	Remove(id uuid.UUID)

	// List snapshots the live sessions, for the staleness reaper.
	List() []*Session
}
