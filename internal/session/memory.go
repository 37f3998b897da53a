// Copyright (c) 2026 HS Architects
// All rights reserved. See LICENSE for details.

package session

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory. It is meant for tests and
// single-process development runs without Valkey.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]memoryEntry
}

type memoryEntry struct {
	data    Data
	expires time.Time
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{ttl: DefaultTTL, sessions: map[string]memoryEntry{}}
}

func (m *MemoryStore) Create(_ context.Context, w http.ResponseWriter, data *Data) (string, error) {
	id, err := generateID()
	if err != nil {
		return "", err
	}
	data.CreatedAt = time.Now()

	m.mu.Lock()
	m.sessions[id] = memoryEntry{data: *data, expires: data.CreatedAt.Add(m.ttl)}
	m.mu.Unlock()

	setCookie(w, id, m.ttl, false)
	return id, nil
}

func (m *MemoryStore) Get(_ context.Context, r *http.Request) (*Data, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[cookie.Value]
	if !ok {
		return nil, nil
	}
	if time.Now().After(e.expires) {
		delete(m.sessions, cookie.Value)
		return nil, nil
	}
	d := e.data
	return &d, nil
}

func (m *MemoryStore) Destroy(_ context.Context, w http.ResponseWriter, r *http.Request) error {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil
	}
	m.mu.Lock()
	delete(m.sessions, cookie.Value)
	m.mu.Unlock()

	clearCookie(w, false)
	return nil
}

func (m *MemoryStore) DestroyUser(_ context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.sessions {
		if e.data.UserID == userID {
			delete(m.sessions, id)
		}
	}
	return nil
}

// Len returns the number of live sessions.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
