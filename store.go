package flow

import "context"

// Store defines the contract for persisting and retrieving flows by owner.
// The owner id is supplied by the surrounding application and is opaque here.
type Store interface {
	// Load returns the saved flow, or ErrNotFound when the owner has none.
	Load(ctx context.Context, ownerID string) (*Graph, error)
	// Save replaces the owner's flow with g.
	Save(ctx context.Context, ownerID string, g *Graph) error
}
