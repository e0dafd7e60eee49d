package postgres

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/meikuraledutech/flow"
)

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func insertNode(ctx context.Context, q querier, ownerID string, seq int, n flow.Node) error {
	data, err := json.Marshal(n.Data)
	if err != nil {
		return fmt.Errorf("flow: encode node %s: %w", n.ID, err)
	}
	if _, err := q.Exec(ctx,
		`INSERT INTO flow_nodes (owner_id, id, seq, type, pos_x, pos_y, data)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		ownerID, n.ID, seq, string(n.Type), n.Position.X, n.Position.Y, data,
	); err != nil {
		return fmt.Errorf("flow: insert node %s: %w", n.ID, err)
	}
	return nil
}

// listNodes returns the owner's nodes in saved order.
// Returns an empty slice (not nil) if none found.
func listNodes(ctx context.Context, q querier, ownerID string) ([]flow.Node, error) {
	rows, err := q.Query(ctx,
		`SELECT id, type, pos_x, pos_y, data FROM flow_nodes WHERE owner_id = $1 ORDER BY seq`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("flow: list nodes: %w", err)
	}
	defer rows.Close()

	nodes := []flow.Node{}
	for rows.Next() {
		var (
			n    flow.Node
			typ  string
			data []byte
		)
		if err := rows.Scan(&n.ID, &typ, &n.Position.X, &n.Position.Y, &data); err != nil {
			return nil, fmt.Errorf("flow: scan node: %w", err)
		}
		n.Type = flow.NodeType(typ)
		if n.Data, err = flow.DecodePayload(n.Type, data); err != nil {
			return nil, fmt.Errorf("flow: node %s: %w", n.ID, err)
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("flow: rows nodes: %w", err)
	}
	return nodes, nil
}
