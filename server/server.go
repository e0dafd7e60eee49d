// Package server is the collaborator service that stores flows for the
// editor and hands their description to the conversation engine.
package server

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"

	"github.com/meikuraledutech/flow"
	"github.com/meikuraledutech/flow/nodetype"
	"github.com/meikuraledutech/flow/validate"
)

// SchemaStore is implemented by stores that manage their own tables.
type SchemaStore interface {
	CreateSchema(ctx context.Context) error
	DropSchema(ctx context.Context) error
}

// Deleter is implemented by stores that can remove a flow.
type Deleter interface {
	Delete(ctx context.Context, ownerID string) error
}

type options struct {
	logger   *log.Logger
	registry *nodetype.Registry
	catalog  *nodetype.Catalog
}

// Option configures the service.
type Option func(*options)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRegistry sets the node types advertised on /node-types.
func WithRegistry(r *nodetype.Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithCatalog sets the conditions advertised on /node-types.
func WithCatalog(c *nodetype.Catalog) Option {
	return func(o *options) { o.catalog = c }
}

type nodeTypeView struct {
	Type          flow.NodeType `json:"type"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Icon          string        `json:"icon"`
	PropertyPanel string        `json:"propertyPanel,omitempty"`
	Default       flow.Payload  `json:"default"`
}

// New builds the fiber app serving store.
func New(store flow.Store, opts ...Option) *fiber.App {
	o := options{logger: log.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = nodetype.NewDefault(nodetype.WithLogger(o.logger))
	}
	if o.catalog == nil {
		o.catalog = nodetype.DefaultCatalog()
	}

	app := fiber.New(fiber.Config{
		AppName:     "flow",
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
	})
	app.Use(requestLogger(o.logger))

	// ── Schema ────────────────────────────────────────────────────────
	if ss, ok := store.(SchemaStore); ok {
		app.Post("/schema", func(c fiber.Ctx) error {
			if err := ss.CreateSchema(c.Context()); err != nil {
				return c.Status(500).JSON(fiber.Map{"error": err.Error()})
			}
			return c.JSON(fiber.Map{"message": "schema created"})
		})

		app.Delete("/schema", func(c fiber.Ctx) error {
			if err := ss.DropSchema(c.Context()); err != nil {
				return c.Status(500).JSON(fiber.Map{"error": err.Error()})
			}
			return c.JSON(fiber.Map{"message": "schema dropped"})
		})
	}

	// ── Flow ──────────────────────────────────────────────────────────
	app.Get("/flow/:ownerId", func(c fiber.Ctx) error {
		g, err := store.Load(c.Context(), c.Params("ownerId"))
		if errors.Is(err, flow.ErrNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "flow not found"})
		}
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(g)
	})

	app.Put("/flow/:ownerId", func(c fiber.Ctx) error {
		g, err := flow.Unmarshal(c.Body())
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		if err := store.Save(c.Context(), c.Params("ownerId"), g); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(g)
	})

	if d, ok := store.(Deleter); ok {
		app.Delete("/flow/:ownerId", func(c fiber.Ctx) error {
			if err := d.Delete(c.Context(), c.Params("ownerId")); err != nil {
				return c.Status(500).JSON(fiber.Map{"error": err.Error()})
			}
			return c.SendStatus(204)
		})
	}

	// Validates the posted graph, or the saved one when the body is empty.
	app.Post("/flow/:ownerId/validate", func(c fiber.Ctx) error {
		var g *flow.Graph
		var err error
		if len(c.Body()) > 0 {
			if g, err = flow.Unmarshal(c.Body()); err != nil {
				return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
			}
		} else {
			g, err = store.Load(c.Context(), c.Params("ownerId"))
			if errors.Is(err, flow.ErrNotFound) {
				return c.Status(404).JSON(fiber.Map{"error": "flow not found"})
			}
			if err != nil {
				return c.Status(500).JSON(fiber.Map{"error": err.Error()})
			}
		}
		report := validate.Graph(*g)
		if report.Diagnostics == nil {
			report.Diagnostics = []validate.Diagnostic{}
		}
		return c.JSON(report)
	})

	app.Get("/flow/:ownerId/context", func(c fiber.Ctx) error {
		g, err := store.Load(c.Context(), c.Params("ownerId"))
		if errors.Is(err, flow.ErrNotFound) {
			g, err = &flow.Graph{}, nil
		}
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.SendString(flow.Describe(*g))
	})

	// ── Node types ────────────────────────────────────────────────────
	app.Get("/node-types", func(c fiber.Ctx) error {
		types := []nodeTypeView{}
		for _, m := range o.registry.ListPlaceable() {
			types = append(types, nodeTypeView{
				Type:          m.Type,
				Title:         m.Title,
				Description:   m.Description,
				Icon:          m.Icon,
				PropertyPanel: m.PropertyPanel,
				Default:       m.NewPayload(),
			})
		}
		return c.JSON(fiber.Map{
			"nodeTypes":  types,
			"conditions": o.catalog.All(),
			"channels":   nodetype.Channels(),
		})
	})

	return app
}

// requestLogger logs every request once its response is final. Handler
// errors go through the app's error handler first so the logged status is
// the one sent.
func requestLogger(l *log.Logger) fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		kv := []any{
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"took", time.Since(start),
		}
		if err != nil {
			kv = append(kv, "err", err)
			l.Warn("request", kv...)
			return nil
		}
		l.Info("request", kv...)
		return nil
	}
}
