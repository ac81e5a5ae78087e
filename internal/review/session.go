package review

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	reviewerrors "github.com/a3tai/mcp-idp-review/internal/errors"
	"github.com/a3tai/mcp-idp-review/internal/history"
	"github.com/a3tai/mcp-idp-review/internal/navigation"
	"github.com/a3tai/mcp-idp-review/internal/selection"
	"github.com/a3tai/mcp-idp-review/internal/workspace"
)

// Session is one batch under review. All access goes through the session lock.
type Session struct {
	ID         string
	Source     string
	ExportPath string
	CreatedAt  time.Time

	mu      sync.Mutex
	batch   *workspace.Batch
	history *history.History[*workspace.Batch]
	docs    *selection.State
	pages   *selection.State
	nav     *navigation.Navigator
}

func newSession(b *workspace.Batch, source, exportPath string, mode history.Mode, limit int) *Session {
	return &Session{
		ID:         uuid.NewString(),
		Source:     source,
		ExportPath: exportPath,
		CreatedAt:  time.Now(),
		batch:      b,
		history:    history.New(mode, limit, b, (*workspace.Batch).Clone),
		docs:       selection.NewState(),
		pages:      selection.NewState(),
		nav:        navigation.New(b),
	}
}

func (s *Session) selections() navigation.Selections {
	return navigation.Selections{Documents: s.docs, Pages: s.pages}
}

func (s *Session) state(view workspace.View) *selection.State {
	if view == workspace.ViewDocuments {
		return s.docs
	}
	return s.pages
}

// replace installs b as the current batch and drops selections and focus that no longer
// point at anything
func (s *Session) replace(b *workspace.Batch) {
	s.batch = b
	s.docs.Prune(b.Flatten(workspace.ViewDocuments))
	s.pages.Prune(b.Flatten(workspace.ViewPages))
	s.nav.Sync(b)
}

func (s *Session) info() SessionInfo {
	return SessionInfo{ID: s.ID, Name: s.batch.Name, Source: s.Source, Stats: s.batch.Stats()}
}

// Registry keeps the open sessions
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Add registers a session
func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
}

// Get returns the session with the given id
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, reviewerrors.Newf(reviewerrors.ErrorTypeNotFound, "session not found: %s", id)
	}
	return s, nil
}

// Remove closes a session
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.sessions[id]
	delete(r.sessions, id)
	return ok
}

// List returns the open sessions, oldest first
func (r *Registry) List() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Len returns the number of open sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
