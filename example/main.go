package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meikuraledutech/flow"
	"github.com/meikuraledutech/flow/editor"
	"github.com/meikuraledutech/flow/memory"
	"github.com/meikuraledutech/flow/nodetype"
	"github.com/meikuraledutech/flow/persist"
	"github.com/meikuraledutech/flow/postgres"
	"github.com/meikuraledutech/flow/session"
)

const owner = "example-owner"

func main() {
	ctx := context.Background()
	logger := log.NewWithOptions(os.Stderr, log.Options{Level: log.DebugLevel})

	// Postgres when DATABASE_URL is set, otherwise an in-memory store.
	var store flow.Store = memory.New()
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		pool, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			logger.Fatal("connect", "err", err)
		}
		defer pool.Close()

		pg := postgres.New(pool)
		if err := pg.CreateSchema(ctx); err != nil {
			logger.Fatal("schema", "err", err)
		}
		defer pg.Delete(ctx, owner)
		store = pg
	}

	reg := nodetype.NewDefault(nodetype.WithLogger(logger))
	ed := editor.New(reg, editor.WithLogger(logger))
	s := session.Open(owner, ed, persist.New(store, persist.WithLogger(logger)), session.WithLogger(logger))

	// Nothing saved yet: the session falls back to Start → End.
	if err := s.Load(ctx); err != nil {
		logger.Fatal("load", "err", err)
	}
	g := ed.Graph()
	start, _ := g.First(flow.TypeStart)
	end, _ := g.First(flow.TypeEnd)

	// ── Build a branch: Start → Conditional → (path) → Instruction → End ──
	err := s.Edit(func(e *editor.Editor) error {
		e.DisconnectEdge(g.Edges[0].ID)

		branch, err := e.InsertNode(flow.TypeConditional, flow.Position{X: 300, Y: 100})
		if err != nil {
			return err
		}
		cond, _ := e.Catalog().Lookup("return_warranty")
		if err := e.SetCondition(branch, cond.Ref()); err != nil {
			return err
		}
		path, err := e.AddPath(branch, "Customer wants to return an item")
		if err != nil {
			return err
		}

		reply, err := e.InsertNode(flow.TypeInstruction, flow.Position{X: 600, Y: 100})
		if err != nil {
			return err
		}
		if err := e.UpdatePayload(reply, flow.Patch{"message": "Sorry to hear that! Here is our return policy."}); err != nil {
			return err
		}

		for _, p := range []editor.Proposal{
			{Source: start.ID, Target: branch},
			{Source: branch, SourceHandle: flow.Handle(path), Target: reply},
			{Source: reply, Target: end.ID},
		} {
			if _, err := e.Connect(p); err != nil {
				return err
			}
		}

		// End → Start is never a valid connection.
		if _, err := e.Connect(editor.Proposal{Source: end.ID, Target: start.ID}); err != nil {
			fmt.Printf("rejected: %v\n", err)
		}
		return nil
	})
	if err != nil {
		logger.Fatal("edit", "err", err)
	}

	report := s.Validate()
	fmt.Printf("\nvalid: %v\n", report.Valid)
	if err := s.Save(ctx); err != nil {
		logger.Fatal("save", "err", err)
	}
	fmt.Println("flow saved")

	// ── Retrieve ──────────────────────────────────────────────────────
	saved, err := store.Load(ctx, owner)
	if err != nil {
		logger.Fatal("load", "err", err)
	}
	fmt.Println("\nflow retrieved:")
	printJSON(saved)

	fmt.Println()
	fmt.Print(flow.Describe(*saved))
}

func printJSON(v any) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}
