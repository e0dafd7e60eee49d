// Package persist sits between an editing session and a flow.Store. Load
// failures never escape it: a missing or unreachable flow comes back as nil
// so the caller can fall back to the default template.
package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/meikuraledutech/flow"
)

// Adapter loads and saves flows through a store.
type Adapter struct {
	store  flow.Store
	logger *log.Logger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the logger load failures are reported to.
func WithLogger(l *log.Logger) Option {
	return func(a *Adapter) { a.logger = l }
}

// New returns an Adapter over store.
func New(store flow.Store, opts ...Option) *Adapter {
	a := &Adapter{store: store, logger: log.Default()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Load fetches the owner's flow. It returns nil when none was saved or the
// fetch failed.
func (a *Adapter) Load(ctx context.Context, ownerID string) *flow.Graph {
	g, err := a.store.Load(ctx, ownerID)
	switch {
	case errors.Is(err, flow.ErrNotFound):
		a.logger.Info("no saved flow", "owner", ownerID)
		return nil
	case err != nil:
		a.logger.Warn("load flow failed", "owner", ownerID, "err", err)
		return nil
	}
	return g
}

// Save stores g as the owner's flow. Callers validate g first. Failures the
// store did not classify are reported as flow.ErrNetwork.
func (a *Adapter) Save(ctx context.Context, ownerID string, g *flow.Graph) error {
	if g == nil {
		return fmt.Errorf("save %s: %w", ownerID, flow.ErrInvalidGraph)
	}
	err := a.store.Save(ctx, ownerID, g)
	if err == nil {
		a.logger.Debug("flow saved", "owner", ownerID, "nodes", len(g.Nodes), "edges", len(g.Edges))
		return nil
	}
	if errors.Is(err, flow.ErrNetwork) || errors.Is(err, flow.ErrInvalidGraph) {
		return err
	}
	return fmt.Errorf("save %s: %w: %w", ownerID, flow.ErrNetwork, err)
}
