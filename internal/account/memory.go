package account

import (
	"context"
	"fmt"
	"net/http"
	"sync"
)

// InMemory is a stand-in account service used when no remote URL is
// configured. It only enforces username uniqueness.
type InMemory struct {
	mu    sync.Mutex
	users map[string]Registration
}

func NewInMemory() *InMemory {
	return &InMemory{users: make(map[string]Registration)}
}

func (s *InMemory) Register(ctx context.Context, reg Registration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.users[reg.Username]; taken {
		return &RemoteError{
			StatusCode: http.StatusBadRequest,
			Message:    fmt.Sprintf("Username %q is already taken", reg.Username),
		}
	}
	s.users[reg.Username] = reg
	return nil
}

// Registered reports whether username has an account.
func (s *InMemory) Registered(username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.users[username]
	return ok
}
