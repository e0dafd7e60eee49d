package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meikuraledutech/flow"
)

func TestLoad(t *testing.T) {
	g := flow.Default(nil)
	raw, err := flow.Marshal(g)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		switch r.URL.EscapedPath() {
		case "/flow/owner-1":
			w.Header().Set("Content-Type", "application/json")
			w.Write(raw)
		case "/flow/missing":
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	c := New(srv.URL + "/")
	ctx := context.Background()

	got, err := c.Load(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, g, *got)

	_, err = c.Load(ctx, "missing")
	assert.ErrorIs(t, err, flow.ErrNotFound)

	_, err = c.Load(ctx, "other")
	assert.ErrorIs(t, err, flow.ErrNetwork)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.Code)
}

func TestSave(t *testing.T) {
	var received []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/flow/owner-1", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		received, _ = io.ReadAll(r.Body)
		w.Write(received)
	}))
	defer srv.Close()

	g := flow.Default(nil)
	require.NoError(t, New(srv.URL).Save(context.Background(), "owner-1", &g))

	decoded, err := flow.Unmarshal(received)
	require.NoError(t, err)
	assert.Equal(t, g, *decoded)
}

func TestSaveRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid graph"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	g := flow.Default(nil)
	err := New(srv.URL).Save(context.Background(), "owner-1", &g)
	assert.ErrorIs(t, err, flow.ErrNetwork)
	assert.ErrorIs(t, New(srv.URL).Save(context.Background(), "owner-1", nil), flow.ErrInvalidGraph)
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url, WithTimeout(time.Second)).Load(context.Background(), "owner-1")
	assert.ErrorIs(t, err, flow.ErrNetwork)
}
