package admin

import (
	"context"
	"sync"
	"time"

	"github.com/urocare/clinic/internal/auth"
)

// Registry keeps one Dashboard per admin access token.
type Registry struct {
	mu     sync.Mutex
	boards map[string]*Dashboard
	create func() *Dashboard
	now    func() time.Time
}

func NewRegistry(create func() *Dashboard) *Registry {
	return &Registry{
		boards: make(map[string]*Dashboard),
		create: create,
		now:    time.Now,
	}
}

// Enter runs the gate for token on a fresh dashboard. The dashboard is
// remembered only when the result is Authorized.
func (r *Registry) Enter(ctx context.Context, token string) (*Dashboard, auth.AuthorizationResult) {
	d := r.create()
	res := d.Enter(ctx, token)
	if _, ok := res.(auth.Authorized); !ok {
		r.Remove(token)
		return nil, res
	}

	r.mu.Lock()
	r.boards[token] = d
	r.mu.Unlock()
	return d, res
}

// Get returns the dashboard entered with token. Expired sessions are dropped.
func (r *Registry) Get(token string) (*Dashboard, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.boards[token]
	if !ok {
		return nil, false
	}
	if exp := d.Session().ExpiresAt; !exp.IsZero() && !exp.After(r.now()) {
		delete(r.boards, token)
		return nil, false
	}
	return d, true
}

func (r *Registry) Remove(token string) {
	r.mu.Lock()
	delete(r.boards, token)
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.boards)
}
