// Package memory implementa core.Repository en memoria.
// Útil para desarrollo y testing; no persiste nada.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/tomora/internal/store/core"
)

type Store struct {
	mu        sync.RWMutex
	users     map[string]*core.User // por ID
	reminders map[string]*core.Reminder
}

func New() *Store {
	return &Store{
		users:     make(map[string]*core.User),
		reminders: make(map[string]*core.Reminder),
	}
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close()                     {}

func (s *Store) CreateUser(_ context.Context, u *core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range s.users {
		if existing.Email == email {
			return core.ErrConflict
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	u.Email = email

	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (s *Store) GetUserByID(_ context.Context, id string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) ListActiveReminders(_ context.Context, userID string, limit int) ([]core.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Reminder, 0, 8)
	for _, r := range s.reminders {
		if r.UserID == userID && r.Active {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ReminderTime.Before(out[j].ReminderTime)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) CreateReminder(_ context.Context, r *core.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[r.UserID]; !ok {
		return core.ErrNotFound
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	cp := *r
	s.reminders[r.ID] = &cp
	return nil
}
