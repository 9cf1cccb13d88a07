package auth

import (
	"context"
	"sync"
	"time"

	"medwaste-backend/internal/models"
	"medwaste-backend/internal/store"
)

// SessionStore sunucu tarafı oturum kayıtları. Get süresi dolmuş ya da
// bilinmeyen oturum için store.ErrNotFound döner.
type SessionStore interface {
	Create(ctx context.Context, sess models.Session) error
	Get(ctx context.Context, id string, now time.Time) (*models.Session, error)
	Delete(ctx context.Context, id string) error
}

// MemorySessionStore tek süreçli kurulumlar ve testler için. Süresi dolan
// kayıtlar Get sırasında ve her yeni oturumda temizlenir.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]models.Session
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]models.Session)}
}

func (m *MemorySessionStore) Create(_ context.Context, sess models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !sess.CreatedAt.IsZero() {
		m.deleteExpired(sess.CreatedAt)
	}
	if _, ok := m.sessions[sess.ID]; ok {
		return store.ErrDuplicate
	}
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string, now time.Time) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if !sess.ExpiresAt.After(now) {
		delete(m.sessions, id)
		return nil, store.ErrNotFound
	}
	return &sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

func (m *MemorySessionStore) deleteExpired(now time.Time) {
	for id, sess := range m.sessions {
		if !sess.ExpiresAt.After(now) {
			delete(m.sessions, id)
		}
	}
}
