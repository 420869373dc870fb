// internal/app/features/systemusers/registry.go
package systemusers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dalemusser/adminusers/internal/domain/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrPanelNotFound is returned for an unknown or already closed panel id.
var ErrPanelNotFound = errors.New("systemusers: panel not found")

// Registry owns the open panels, keyed by a random id.
type Registry struct {
	deps Deps
	log  *zap.Logger

	mu     sync.RWMutex
	panels map[string]*Panel
	teams  []models.Team // from the most recent successful mount
}

// NewRegistry creates an empty registry. Every panel it creates shares deps.
func NewRegistry(deps Deps) *Registry {
	logger := deps.Log
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		deps:   deps,
		log:    logger,
		panels: make(map[string]*Panel),
	}
}

// Create opens a panel with the given initial filters and mounts it. The
// panel is registered even when its initial load fails remotely; such
// failures surface in its state.
func (r *Registry) Create(ctx context.Context, team models.TeamFilter, status models.StatusFilter) (*Panel, error) {
	id := uuid.NewString()
	p := NewPanel(id, r.deps)
	if err := p.reduce(setFilters{Team: team, Status: status}); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.panels[id] = p
	r.mu.Unlock()

	if err := p.Mount(ctx); err != nil {
		r.Close(id)
		return nil, err
	}
	if teams := p.Teams(); len(teams) > 0 {
		r.mu.Lock()
		r.teams = teams
		r.mu.Unlock()
	}
	r.log.Debug("panel opened", zap.String("panel_id", id))
	return p, nil
}

// Teams returns the team list fetched by the most recent mount.
func (r *Registry) Teams() []models.Team {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Team, len(r.teams))
	copy(out, r.teams)
	return out
}

// Get returns the open panel with id.
func (r *Registry) Get(id string) (*Panel, error) {
	r.mu.RLock()
	p, ok := r.panels[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrPanelNotFound
	}
	return p, nil
}

// Close closes and forgets the panel with id. It reports whether the
// panel was open.
func (r *Registry) Close(id string) bool {
	r.mu.Lock()
	p, ok := r.panels[id]
	delete(r.panels, id)
	r.mu.Unlock()

	if ok {
		p.Close()
	}
	return ok
}

// CloseIdle closes every panel unused for at least threshold and returns
// how many were closed.
func (r *Registry) CloseIdle(threshold time.Duration) int {
	cutoff := time.Now().Add(-threshold)

	r.mu.Lock()
	var idle []*Panel
	for id, p := range r.panels {
		if p.LastUsed().Before(cutoff) {
			idle = append(idle, p)
			delete(r.panels, id)
		}
	}
	r.mu.Unlock()

	for _, p := range idle {
		p.Close()
	}
	return len(idle)
}

// CloseAll closes every panel.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	all := r.panels
	r.panels = make(map[string]*Panel)
	r.mu.Unlock()

	for _, p := range all {
		p.Close()
	}
}

// Len returns the number of open panels.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.panels)
}
