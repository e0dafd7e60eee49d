// Package sqlite stores flows in a local SQLite file. It uses the pure-Go
// modernc.org/sqlite driver, so the CLI needs no cgo toolchain.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/meikuraledutech/flow"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS flows (
    owner_id   TEXT PRIMARY KEY,
    updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS flow_nodes (
    owner_id TEXT NOT NULL REFERENCES flows(owner_id) ON DELETE CASCADE,
    id       TEXT NOT NULL,
    seq      INTEGER NOT NULL,
    type     TEXT NOT NULL,
    pos_x    REAL NOT NULL DEFAULT 0,
    pos_y    REAL NOT NULL DEFAULT 0,
    data     TEXT NOT NULL DEFAULT '{}',
    PRIMARY KEY (owner_id, id)
);

CREATE TABLE IF NOT EXISTS flow_edges (
    owner_id      TEXT NOT NULL REFERENCES flows(owner_id) ON DELETE CASCADE,
    id            TEXT NOT NULL,
    seq           INTEGER NOT NULL,
    source        TEXT NOT NULL,
    source_handle TEXT,
    target        TEXT NOT NULL,
    target_handle TEXT,
    PRIMARY KEY (owner_id, id)
);
`

// Store implements flow.Store on a SQLite database.
type Store struct {
	db *sql.DB
}

var _ flow.Store = (*Store)(nil)

// Open opens (creating if needed) the database file at path and ensures the
// schema exists. Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string) (*Store, error) {
	params := url.Values{}
	params.Add("_pragma", "foreign_keys(1)")
	params.Add("_pragma", "busy_timeout(10000)")
	dsn := fmt.Sprintf("file:%s?%s", path, params.Encode())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("flow: open sqlite: %w", err)
	}
	// A single connection serializes writers and keeps ":memory:" databases
	// alive for the lifetime of the store.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("flow: ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("flow: create tables: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save replaces the owner's flow with g in a single transaction.
func (s *Store) Save(ctx context.Context, ownerID string, g *flow.Graph) error {
	if g == nil {
		return fmt.Errorf("flow: save %s: %w", ownerID, flow.ErrInvalidGraph)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("flow: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO flows (owner_id) VALUES (?)
		 ON CONFLICT (owner_id) DO UPDATE SET updated_at = CURRENT_TIMESTAMP`, ownerID,
	); err != nil {
		return fmt.Errorf("flow: upsert flow: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM flow_edges WHERE owner_id = ?`, ownerID); err != nil {
		return fmt.Errorf("flow: delete edges: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM flow_nodes WHERE owner_id = ?`, ownerID); err != nil {
		return fmt.Errorf("flow: delete nodes: %w", err)
	}

	for i, n := range g.Nodes {
		data, err := json.Marshal(n.Data)
		if err != nil {
			return fmt.Errorf("flow: encode node %s: %w", n.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO flow_nodes (owner_id, id, seq, type, pos_x, pos_y, data) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			ownerID, n.ID, i, string(n.Type), n.Position.X, n.Position.Y, string(data),
		); err != nil {
			return fmt.Errorf("flow: insert node %s: %w", n.ID, err)
		}
	}
	for i, e := range g.Edges {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO flow_edges (owner_id, id, seq, source, source_handle, target, target_handle) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			ownerID, e.ID, i, e.Source, nullable(e.SourceHandle), e.Target, nullable(e.TargetHandle),
		); err != nil {
			return fmt.Errorf("flow: insert edge %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("flow: commit: %w", err)
	}
	return nil
}

// Load retrieves the owner's flow, or flow.ErrNotFound.
func (s *Store) Load(ctx context.Context, ownerID string) (*flow.Graph, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM flows WHERE owner_id = ?`, ownerID).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, flow.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("flow: find flow: %w", err)
	}

	g := &flow.Graph{Nodes: []flow.Node{}, Edges: []flow.Edge{}}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, type, pos_x, pos_y, data FROM flow_nodes WHERE owner_id = ? ORDER BY seq`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("flow: query nodes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			n        flow.Node
			typ, raw string
		)
		if err := rows.Scan(&n.ID, &typ, &n.Position.X, &n.Position.Y, &raw); err != nil {
			return nil, fmt.Errorf("flow: scan node: %w", err)
		}
		n.Type = flow.NodeType(typ)
		if n.Data, err = flow.DecodePayload(n.Type, []byte(raw)); err != nil {
			return nil, fmt.Errorf("flow: node %s: %w", n.ID, err)
		}
		g.Nodes = append(g.Nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("flow: rows nodes: %w", err)
	}
	rows.Close()

	rows, err = s.db.QueryContext(ctx,
		`SELECT id, source, source_handle, target, target_handle FROM flow_edges WHERE owner_id = ? ORDER BY seq`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("flow: query edges: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			e      flow.Edge
			sh, th sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Source, &sh, &e.Target, &th); err != nil {
			return nil, fmt.Errorf("flow: scan edge: %w", err)
		}
		e.SourceHandle = flow.Handle(sh.String)
		e.TargetHandle = flow.Handle(th.String)
		g.Edges = append(g.Edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("flow: rows edges: %w", err)
	}
	return g, nil
}

// Delete removes the owner's flow. No error if it doesn't exist.
func (s *Store) Delete(ctx context.Context, ownerID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM flows WHERE owner_id = ?`, ownerID); err != nil {
		return fmt.Errorf("flow: delete flow: %w", err)
	}
	return nil
}

func nullable(h flow.Handle) sql.NullString {
	return sql.NullString{String: string(h), Valid: h != flow.DefaultPort}
}
