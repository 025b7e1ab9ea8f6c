package store

import (
	"context"
	"strings"
	"sync"

	"signal-relay/internal/domain"
)

type memoryRecord struct {
	user domain.User
	hash string
}

// Memory is an in-process Users implementation, used when no database is
// configured and by tests. Records do not survive a restart.
type Memory struct {
	mu    sync.RWMutex
	users map[string]memoryRecord
}

func NewMemory() *Memory {
	return &Memory{users: make(map[string]memoryRecord)}
}

func (m *Memory) Create(ctx context.Context, email, passwordHash string) (*domain.User, error) {
	user, err := domain.NewUser(email)
	if err != nil {
		return nil, err
	}
	key := strings.ToLower(email)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[key]; ok {
		return nil, ErrEmailTaken
	}
	m.users[key] = memoryRecord{user: *user, hash: passwordHash}
	return user, nil
}

func (m *Memory) FindByEmail(ctx context.Context, email string) (*domain.User, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.users[strings.ToLower(email)]
	if !ok {
		return nil, "", ErrNotFound
	}
	user := rec.user
	return &user, rec.hash, nil
}
