package postgres

import (
	"context"
	"fmt"

	"github.com/meikuraledutech/flow"
)

func insertEdge(ctx context.Context, q querier, ownerID string, seq int, e flow.Edge) error {
	if _, err := q.Exec(ctx,
		`INSERT INTO flow_edges (owner_id, id, seq, source, source_handle, target, target_handle)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		ownerID, e.ID, seq, e.Source, nullable(e.SourceHandle), e.Target, nullable(e.TargetHandle),
	); err != nil {
		return fmt.Errorf("flow: insert edge %s: %w", e.ID, err)
	}
	return nil
}

// listEdges returns the owner's edges in saved order.
// Returns an empty slice (not nil) if none found.
func listEdges(ctx context.Context, q querier, ownerID string) ([]flow.Edge, error) {
	rows, err := q.Query(ctx,
		`SELECT id, source, source_handle, target, target_handle
		 FROM flow_edges WHERE owner_id = $1 ORDER BY seq`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("flow: list edges: %w", err)
	}
	defer rows.Close()

	edges := []flow.Edge{}
	for rows.Next() {
		var (
			e      flow.Edge
			sh, th *string
		)
		if err := rows.Scan(&e.ID, &e.Source, &sh, &e.Target, &th); err != nil {
			return nil, fmt.Errorf("flow: scan edge: %w", err)
		}
		e.SourceHandle = handle(sh)
		e.TargetHandle = handle(th)
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("flow: rows edges: %w", err)
	}
	return edges, nil
}

// nullable stores the default port as NULL.
func nullable(h flow.Handle) *string {
	if h == flow.DefaultPort {
		return nil
	}
	s := string(h)
	return &s
}

func handle(s *string) flow.Handle {
	if s == nil {
		return flow.DefaultPort
	}
	return flow.Handle(*s)
}
