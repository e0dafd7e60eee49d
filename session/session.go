// Package session ties an editor to its persisted flow for one owner.
//
// A Session tracks the two asynchronous operations an editing surface
// performs, loading the saved flow and saving the current one, and keeps
// them from trampling each other or the operator's edits:
//
//   - while a load is outstanding, edits are rejected;
//   - a load whose response arrives after the graph changed is discarded;
//   - a second save while one is outstanding is rejected;
//   - invalid graphs are never saved.
//
// The mutex guards only the loading/saving flags; store I/O runs outside it.
package session

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/meikuraledutech/flow"
	"github.com/meikuraledutech/flow/editor"
	"github.com/meikuraledutech/flow/persist"
	"github.com/meikuraledutech/flow/validate"
)

// Status is a snapshot of the session for the editing surface.
type Status struct {
	Loading bool
	Saving  bool
	Version uint64
	// Err is the outcome of the last load or save, nil on success.
	Err error
}

// Session is the editing session of one owner's flow.
type Session struct {
	owner   string
	ed      *editor.Editor
	adapter *persist.Adapter
	logger  *log.Logger

	mu      sync.Mutex
	loading bool
	saving  bool
	lastErr error
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session's logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// Open starts a session for ownerID over ed. Nothing is loaded until Load.
func Open(ownerID string, ed *editor.Editor, adapter *persist.Adapter, opts ...Option) *Session {
	s := &Session{
		owner:   ownerID,
		ed:      ed,
		adapter: adapter,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("owner", ownerID)
	return s
}

// Owner returns the owner id the session was opened for.
func (s *Session) Owner() string { return s.owner }

// Editor returns the underlying editor. Mutations should go through Edit.
func (s *Session) Editor() *editor.Editor { return s.ed }

// Edit runs fn against the editor unless a load is outstanding.
func (s *Session) Edit(fn func(*editor.Editor) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading {
		return flow.ErrLoadInProgress
	}
	return fn(s.ed)
}

// Load replaces the graph with the owner's saved flow, or with the default
// template when there is none or it could not be fetched. If the graph
// changed while the load was in flight, the response is discarded and
// flow.ErrStaleLoad returned.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return flow.ErrLoadInProgress
	}
	s.loading = true
	issued := s.ed.Version()
	s.mu.Unlock()

	g := s.adapter.Load(ctx, s.owner)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	if s.ed.Version() != issued {
		s.logger.Warn("discarding stale load", "issued", issued, "current", s.ed.Version())
		s.lastErr = flow.ErrStaleLoad
		return flow.ErrStaleLoad
	}
	s.lastErr = nil
	if g == nil {
		return s.reset()
	}
	if err := s.ed.Load(*g); err != nil {
		s.logger.Warn("saved flow rejected, using default", "err", err)
		return s.reset()
	}
	s.logger.Info("flow loaded", "nodes", len(g.Nodes), "edges", len(g.Edges))
	return nil
}

// reset falls back to the default template. Callers hold mu.
func (s *Session) reset() error {
	if err := s.ed.Reset(); err != nil {
		s.lastErr = err
		return err
	}
	return nil
}

// Save validates the current graph and stores it. Invalid graphs are
// refused with an error matching flow.ErrInvalidGraph; store failures are
// returned and never retried.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	switch {
	case s.saving:
		s.mu.Unlock()
		return flow.ErrSaveInProgress
	case s.loading:
		s.mu.Unlock()
		return flow.ErrLoadInProgress
	}
	g := s.ed.Graph()
	if err := validate.Graph(g).Err(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.saving = true
	s.mu.Unlock()

	err := s.adapter.Save(ctx, s.owner, &g)

	s.mu.Lock()
	s.saving = false
	s.lastErr = err
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("save failed", "err", err)
	}
	return err
}

// Validate runs the structural validator on the current graph.
func (s *Session) Validate() validate.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return validate.Graph(s.ed.Graph())
}

// Status returns the current session state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Loading: s.loading,
		Saving:  s.saving,
		Version: s.ed.Version(),
		Err:     s.lastErr,
	}
}
