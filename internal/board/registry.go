package board

import (
	"context"
	"sync"
	"time"

	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/telemetry"
)

// Factory builds the controller of a new session.
type Factory func(ctx context.Context, sessionID string) (*Controller, error)

// Registry keeps one controller per BFF session.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*Controller
	idle    time.Duration
	now     func() time.Time
	metrics *telemetry.BoardMetrics
}

// NewRegistry returns a registry whose controllers expire after idle without use.
func NewRegistry(idle time.Duration, metrics *telemetry.BoardMetrics) *Registry {
	return &Registry{
		entries: map[string]*Controller{},
		idle:    idle,
		now:     time.Now,
		metrics: metrics,
	}
}

// Get returns the controller of sessionID, building it with factory on first use.
// The factory runs without the registry lock; if two requests race, the first
// stored controller wins.
func (r *Registry) Get(ctx context.Context, sessionID string, factory Factory) (*Controller, error) {
	r.mu.Lock()
	if c, ok := r.entries[sessionID]; ok {
		r.mu.Unlock()
		return c, nil
	}
	r.mu.Unlock()

	built, err := factory(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.entries[sessionID]; ok {
		built.Close()
		return c, nil
	}
	r.entries[sessionID] = built
	r.metrics.SetActiveSessions(len(r.entries))
	return built, nil
}

// Peek returns the controller of sessionID without building one.
func (r *Registry) Peek(sessionID string) (*Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.entries[sessionID]
	return c, ok
}

// Drop forgets sessionID.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.entries[sessionID]; ok {
		c.Close()
		delete(r.entries, sessionID)
	}
	r.metrics.SetActiveSessions(len(r.entries))
}

// Sweep drops controllers idle for longer than the registry's idle duration
// and returns how many were dropped.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.idle)

	r.mu.Lock()
	defer r.mu.Unlock()

	dropped := 0
	for id, c := range r.entries {
		if c.LastActivity().Before(cutoff) {
			c.Close()
			delete(r.entries, id)
			dropped++
		}
	}
	r.metrics.SetActiveSessions(len(r.entries))
	return dropped
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Len is the number of live controllers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
