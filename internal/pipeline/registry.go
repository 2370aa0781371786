package pipeline

import (
	"context"
	"errors"
	"sync"
)

// Registry keeps one orchestrator per authenticated user so each user has a
// single in-flight analysis. Anonymous callers get a fresh orchestrator per
// request and therefore have no retained state.
type Registry struct {
	deps  Deps
	mu    sync.RWMutex
	users map[string]*Orchestrator
}

func NewRegistry(deps Deps) *Registry {
	if deps.Tasks == nil {
		deps.Tasks = &sync.WaitGroup{}
	}
	return &Registry{
		deps:  deps,
		users: make(map[string]*Orchestrator),
	}
}

// For returns the orchestrator owned by userID, creating it on first use.
func (r *Registry) For(userID string) *Orchestrator {
	if userID == "" {
		return New(r.deps)
	}

	r.mu.RLock()
	o, ok := r.users[userID]
	r.mu.RUnlock()
	if ok {
		return o
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.users[userID]; ok {
		return o
	}
	o = New(r.deps)
	r.users[userID] = o
	return o
}

// Snapshot returns the user's current outcome without creating an orchestrator.
func (r *Registry) Snapshot(userID string) Outcome {
	r.mu.RLock()
	o, ok := r.users[userID]
	r.mu.RUnlock()
	if !ok {
		return Outcome{State: StateIdle}
	}
	return o.Snapshot()
}

// Submit runs req on the user's orchestrator. A submission that races an
// eviction retries on the user's replacement orchestrator.
func (r *Registry) Submit(ctx context.Context, userID string, req Request) (Outcome, error) {
	for {
		out, err := r.For(userID).Submit(ctx, req)
		if !errors.Is(err, errRetired) {
			return out, err
		}
	}
}

// Reset returns the user to Idle and evicts the user's orchestrator, so the
// registry only holds users with an analysis in flight or a result to poll.
func (r *Registry) Reset(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.users[userID]
	if !ok {
		return nil
	}
	if err := o.retire(); err != nil {
		return err
	}
	delete(r.users, userID)
	return nil
}

// Len reports how many users currently hold an orchestrator.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// Wait drains the detached persistence tasks of every orchestrator.
func (r *Registry) Wait() {
	r.deps.Tasks.Wait()
}
