// Package client talks to the collaborator service that persists flows:
// GET and PUT /flow/{ownerId}. It implements flow.Store so a session can use
// the remote service exactly like a local database.
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3/client"

	"github.com/meikuraledutech/flow"
)

// DefaultTimeout bounds every request made by a Client.
const DefaultTimeout = 10 * time.Second

// StatusError is an unexpected HTTP status from the service.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("flow: unexpected status %d: %s", e.Code, e.Body)
}

// Unwrap classifies every unexpected status as a network failure.
func (e *StatusError) Unwrap() error { return flow.ErrNetwork }

// Client is a flow.Store backed by the collaborator service.
type Client struct {
	base string
	http *client.Client
}

var _ flow.Store = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.SetTimeout(d) }
}

// New returns a client for the service at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: client.New().SetTimeout(DefaultTimeout),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) flowURL(ownerID string) string {
	return c.base + "/flow/" + url.PathEscape(ownerID)
}

// Load fetches the owner's flow. A 404 maps to flow.ErrNotFound; transport
// failures and other statuses match flow.ErrNetwork.
func (c *Client) Load(ctx context.Context, ownerID string) (*flow.Graph, error) {
	resp, err := c.http.R().SetContext(ctx).Get(c.flowURL(ownerID))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w: %w", ownerID, flow.ErrNetwork, err)
	}
	defer resp.Close()

	switch code := resp.StatusCode(); {
	case code == http.StatusNotFound:
		return nil, flow.ErrNotFound
	case code < 200 || code > 299:
		return nil, &StatusError{Code: code, Body: string(resp.Body())}
	}

	g, err := flow.Unmarshal(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", ownerID, err)
	}
	return g, nil
}

// Save replaces the owner's flow on the service.
func (c *Client) Save(ctx context.Context, ownerID string, g *flow.Graph) error {
	if g == nil {
		return fmt.Errorf("save %s: %w", ownerID, flow.ErrInvalidGraph)
	}
	body, err := flow.Marshal(*g)
	if err != nil {
		return fmt.Errorf("save %s: %w", ownerID, err)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetRawBody(body).
		Put(c.flowURL(ownerID))
	if err != nil {
		return fmt.Errorf("save %s: %w: %w", ownerID, flow.ErrNetwork, err)
	}
	defer resp.Close()

	if code := resp.StatusCode(); code < 200 || code > 299 {
		return &StatusError{Code: code, Body: string(resp.Body())}
	}
	return nil
}
