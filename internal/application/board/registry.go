package board

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"activityboard/internal/observability"
)

// DefaultTTL is how long an idle board is kept.
const DefaultTTL = 30 * time.Minute

type entry struct {
	board    *Board
	lastSeen time.Time
}

// Registry holds one Board per visitor session.
type Registry struct {
	deps Deps
	ttl  time.Duration
	now  func() time.Time

	mu     sync.Mutex
	boards map[string]*entry
}

// NewRegistry creates an empty registry. A non-positive ttl uses DefaultTTL.
func NewRegistry(deps Deps, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Registry{
		deps:   deps,
		ttl:    ttl,
		now:    time.Now,
		boards: make(map[string]*entry),
	}
}

// Get returns the visitor's board, creating it on first use.
// PRE: id is non-empty
// POST: The board's idle clock is reset
func (r *Registry) Get(id string) *Board {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.boards[id]
	if !ok {
		b := New(r.deps)
		b.now = r.now
		e = &entry{board: b}
		r.boards[id] = e
		observability.SetActiveBoards(len(r.boards))
	}
	e.lastSeen = r.now()
	return e.board
}

// Sweep evicts boards idle longer than the TTL.
// POST: Returns the number of evicted boards
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	evicted := 0
	for id, e := range r.boards {
		if now.Sub(e.lastSeen) > r.ttl {
			delete(r.boards, id)
			evicted++
		}
	}
	observability.SetActiveBoards(len(r.boards))
	return evicted
}

// Len returns the number of boards held.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.boards)
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
			if n := r.Sweep(); n > 0 {
				slog.Info("board_event", "event", "boards_evicted", "count", n, "active", r.Len())
			}
		}
	}
}
