// Package memory is an in-process flow.Store. Graphs are kept in their
// encoded form, so callers never share memory with the store.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/meikuraledutech/flow"
)

// Store is a flow.Store backed by a map. It is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	flows map[string][]byte
}

var _ flow.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{flows: make(map[string][]byte)}
}

// Load returns a copy of the owner's flow, or flow.ErrNotFound.
func (s *Store) Load(ctx context.Context, ownerID string) (*flow.Graph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	raw, ok := s.flows[ownerID]
	s.mu.RUnlock()
	if !ok {
		return nil, flow.ErrNotFound
	}
	return flow.Unmarshal(raw)
}

// Save replaces the owner's flow with a copy of g.
func (s *Store) Save(ctx context.Context, ownerID string, g *flow.Graph) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if g == nil {
		return fmt.Errorf("flow: save %s: %w", ownerID, flow.ErrInvalidGraph)
	}
	raw, err := flow.Marshal(*g)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.flows[ownerID] = raw
	s.mu.Unlock()
	return nil
}

// Delete removes the owner's flow.
func (s *Store) Delete(ctx context.Context, ownerID string) error {
	s.mu.Lock()
	delete(s.flows, ownerID)
	s.mu.Unlock()
	return nil
}
