package operator

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

type MemStore struct {
	mu      sync.RWMutex
	byEmail map[string]Operator
}

func NewMemStore() *MemStore {
	return &MemStore{byEmail: make(map[string]Operator)}
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) Create(ctx context.Context, email, password, role, id string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	password = strings.TrimSpace(password)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[email]; ok {
		return ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	s.byEmail[email] = Operator{ID: id, Email: email, Hash: hash, Role: role}
	return nil
}

func (s *MemStore) Verify(ctx context.Context, email, password string) (Operator, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	s.mu.RLock()
	op, ok := s.byEmail[email]
	s.mu.RUnlock()

	if !ok {
		return Operator{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(op.Hash, []byte(password)); err != nil {
		return Operator{}, ErrInvalidCredentials
	}

	return op, nil
}
