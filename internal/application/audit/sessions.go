package audit

import (
	"sync"
	"time"

	"github.com/google/uuid"

	domain "github.com/affordableaudits/audit-api/internal/domain/audit"
	"github.com/affordableaudits/audit-api/internal/domain/payment"
)

// Registry holds the in-memory audit sessions. Nothing here survives the
// process; the pipeline keeps no state between runs.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
	gateway  payment.Gateway
}

func NewRegistry(gw payment.Gateway) *Registry {
	return &Registry{
		sessions: make(map[string]*domain.Session),
		gateway:  gw,
	}
}

// Begin creates a session with a fresh payment gate in Unpaid.
func (r *Registry) Begin(email string) *domain.Session {
	sess := &domain.Session{
		ID:        uuid.NewString(),
		Email:     email,
		Gate:      payment.NewGate(r.gateway),
		CreatedAt: time.Now(),
	}
	r.mu.Lock()
	r.sessions[sess.ID] = sess
	r.mu.Unlock()
	return sess
}

func (r *Registry) Get(id string) *domain.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[id]
}

// End discards a session's state after terminal completion.
func (r *Registry) End(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}
