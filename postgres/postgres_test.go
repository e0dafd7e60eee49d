package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meikuraledutech/flow"
)

func newStore(t *testing.T) *PGStore {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	s := New(pool)
	require.NoError(t, s.DropSchema(ctx))
	require.NoError(t, s.CreateSchema(ctx))
	return s
}

func branchFlow() *flow.Graph {
	return &flow.Graph{
		Nodes: []flow.Node{
			{ID: "s", Type: flow.TypeStart, Position: flow.Position{X: 0, Y: 100}, Data: &flow.StartData{Label: "Start"}},
			{ID: "c", Type: flow.TypeConditional, Position: flow.Position{X: 200, Y: 100}, Data: &flow.ConditionalData{
				Condition: &flow.ConditionRef{ID: "return_warranty", Label: "Returns"},
				Paths:     []flow.Path{{ID: "p1", Value: "Other inquiries"}},
			}},
			{ID: "i", Type: flow.TypeInstruction, Position: flow.Position{X: 400.5, Y: 80}, Data: &flow.InstructionData{Channel: "sms", Message: "Hi"}},
			{ID: "e", Type: flow.TypeEnd, Position: flow.Position{X: 600, Y: 100}, Data: &flow.EndData{Label: "End"}},
		},
		Edges: []flow.Edge{
			{ID: "e1", Source: "s", Target: "c"},
			{ID: "e2", Source: "c", SourceHandle: "p1", Target: "i"},
			{ID: "e3", Source: "i", Target: "e"},
		},
	}
}

func TestSaveLoad(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.Load(ctx, "owner-1")
	assert.ErrorIs(t, err, flow.ErrNotFound)

	g := branchFlow()
	require.NoError(t, s.Save(ctx, "owner-1", g))

	got, err := s.Load(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, g, got)
}

func TestSaveReplaces(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "owner-1", branchFlow()))
	def := flow.Default(nil)
	require.NoError(t, s.Save(ctx, "owner-1", &def))

	got, err := s.Load(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, &def, got)
}

func TestSaveEmptyGraph(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "owner-1", &flow.Graph{}))
	got, err := s.Load(ctx, "owner-1")
	require.NoError(t, err)
	assert.Empty(t, got.Nodes)
	assert.Empty(t, got.Edges)
}

func TestDelete(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "owner-1", branchFlow()))
	require.NoError(t, s.Delete(ctx, "owner-1"))
	require.NoError(t, s.Delete(ctx, "owner-1"))

	_, err := s.Load(ctx, "owner-1")
	assert.ErrorIs(t, err, flow.ErrNotFound)
}
