package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/meikuraledutech/flow"
)

// Save replaces the owner's flow with g in a single transaction.
func (s *PGStore) Save(ctx context.Context, ownerID string, g *flow.Graph) error {
	if g == nil {
		return fmt.Errorf("flow: save %s: %w", ownerID, flow.ErrInvalidGraph)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("flow: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO flows (owner_id) VALUES ($1)
		 ON CONFLICT (owner_id) DO UPDATE SET updated_at = NOW()`, ownerID,
	); err != nil {
		return fmt.Errorf("flow: upsert flow: %w", err)
	}

	// Replace semantics: drop the previous graph before inserting.
	if _, err := tx.Exec(ctx, `DELETE FROM flow_edges WHERE owner_id = $1`, ownerID); err != nil {
		return fmt.Errorf("flow: delete edges: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM flow_nodes WHERE owner_id = $1`, ownerID); err != nil {
		return fmt.Errorf("flow: delete nodes: %w", err)
	}

	for i, n := range g.Nodes {
		if err := insertNode(ctx, tx, ownerID, i, n); err != nil {
			return err
		}
	}
	for i, e := range g.Edges {
		if err := insertEdge(ctx, tx, ownerID, i, e); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("flow: commit: %w", err)
	}
	return nil
}

// Load retrieves the owner's flow. It returns flow.ErrNotFound when the
// owner never saved one.
func (s *PGStore) Load(ctx context.Context, ownerID string) (*flow.Graph, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `SELECT TRUE FROM flows WHERE owner_id = $1`, ownerID).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, flow.ErrNotFound
		}
		return nil, fmt.Errorf("flow: find flow: %w", err)
	}

	nodes, err := listNodes(ctx, s.db, ownerID)
	if err != nil {
		return nil, err
	}
	edges, err := listEdges(ctx, s.db, ownerID)
	if err != nil {
		return nil, err
	}
	return &flow.Graph{Nodes: nodes, Edges: edges}, nil
}

// Delete removes the owner's flow. No error if it doesn't exist.
func (s *PGStore) Delete(ctx context.Context, ownerID string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM flows WHERE owner_id = $1`, ownerID); err != nil {
		return fmt.Errorf("flow: delete flow: %w", err)
	}
	return nil
}
