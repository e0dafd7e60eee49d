package persist

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meikuraledutech/flow"
	"github.com/meikuraledutech/flow/memory"
)

type failingStore struct{ err error }

func (f failingStore) Load(context.Context, string) (*flow.Graph, error) { return nil, f.err }
func (f failingStore) Save(context.Context, string, *flow.Graph) error  { return f.err }

func TestLoad(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	g := flow.Default(nil)
	require.NoError(t, store.Save(ctx, "owner-1", &g))

	a := New(store)

	got := a.Load(ctx, "owner-1")
	require.NotNil(t, got)
	assert.Equal(t, g, *got)
	assert.Nil(t, a.Load(ctx, "owner-2"))
}

func TestLoadFailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	a := New(failingStore{err: errors.New("connection refused")}, WithLogger(log.New(&buf)))

	assert.Nil(t, a.Load(context.Background(), "owner-1"))
	assert.Contains(t, buf.String(), "connection refused")
}

func TestSaveClassifiesErrors(t *testing.T) {
	g := flow.Default(nil)
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"Raw", errors.New("timeout"), flow.ErrNetwork},
		{"Network", flow.ErrNetwork, flow.ErrNetwork},
		{"Invalid", flow.ErrInvalidGraph, flow.ErrInvalidGraph},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(failingStore{err: tt.err})
			err := a.Save(context.Background(), "owner-1", &g)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestSave(t *testing.T) {
	store := memory.New()
	a := New(store)
	g := flow.Default(nil)

	require.NoError(t, a.Save(context.Background(), "owner-1", &g))
	assert.ErrorIs(t, a.Save(context.Background(), "owner-1", nil), flow.ErrInvalidGraph)

	got, err := store.Load(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.Equal(t, g, *got)
}
