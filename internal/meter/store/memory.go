// Package store provides the in-process session store, injected behind the
// domain.Store interface so deployments can swap the backing later.
package store

import (
	"sync"

	"github.com/google/uuid"

	"github.com/transpolabs/transpo/internal/meter/domain"
)

type Memory struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*domain.Session
}

func NewMemory() *Memory {
	return &Memory{sessions: make(map[uuid.UUID]*domain.Session)}
}

func (m *Memory) Get(id uuid.UUID) *domain.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

func (m *Memory) Put(s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ID()]; ok {
		return domain.ErrAlreadyStarted
	}
	m.sessions[s.ID()] = s
	return nil
}

func (m *Memory) Remove(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

func (m *Memory) List() []*domain.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}
