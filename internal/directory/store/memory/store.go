package memory

import (
	"context"
	"strings"
	"sync"

	"phonefix/internal/directory"
	"phonefix/pkg/sentinel"
)

// InMemory is a map-backed Gateway for tests and local dry runs. It applies
// the same leading-zero filter as the real backends.
type InMemory struct {
	mu       sync.RWMutex
	accounts map[string]directory.Account
}

func NewInMemory() *InMemory {
	return &InMemory{accounts: make(map[string]directory.Account)}
}

// Seed loads an account, keyed by its identity.
func (s *InMemory) Seed(acct directory.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[acct.Identity] = acct
}

func (s *InMemory) QueryCandidates(_ context.Context) ([]directory.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []directory.Account
	for _, acct := range s.accounts {
		if strings.HasPrefix(acct.OldNumber, directory.CandidatePrefix) {
			out = append(out, acct)
		}
	}
	return out, nil
}

func (s *InMemory) UpdateNumber(_ context.Context, identity, newValue string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[identity]
	if !ok {
		return sentinel.ErrNotFound
	}
	acct.OldNumber = newValue
	s.accounts[identity] = acct
	return nil
}

func (s *InMemory) Ping(_ context.Context) error {
	return nil
}

// Number returns the stored attribute value, for assertions in tests.
func (s *InMemory) Number(identity string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acct, ok := s.accounts[identity]
	return acct.OldNumber, ok
}
