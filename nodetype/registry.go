// Package nodetype holds the node type registry: the table mapping a node
// type tag to its display metadata, default payload and editing policy.
//
// A Registry is an explicit object built once at startup and handed to the
// editor and the server. NewDefault registers the four built-in types, each
// declared in its own file.
package nodetype

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/meikuraledutech/flow"
)

// Metadata describes a node type.
type Metadata struct {
	Type        flow.NodeType
	Title       string
	Description string
	Icon        string

	// Placeable types are offered to the operator for insertion.
	Placeable bool
	// Deletable is false for nodes every flow must keep.
	Deletable bool

	// Default is copied into every inserted node; it is never shared.
	Default flow.Payload

	// PropertyPanel names the property editor bound to the type, if any.
	PropertyPanel string
}

// NewPayload returns a deep copy of the default payload.
func (m Metadata) NewPayload() flow.Payload {
	if m.Default == nil {
		p, _ := flow.NewPayload(m.Type)
		return p
	}
	return m.Default.Clone()
}

// Registry maps node types to their metadata.
type Registry struct {
	types  map[flow.NodeType]Metadata
	order  []flow.NodeType
	logger *log.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used to report ignored registrations.
func WithLogger(l *log.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// New returns an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		types:  make(map[flow.NodeType]Metadata),
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewDefault returns a registry holding the built-in node types.
func NewDefault(opts ...Option) *Registry {
	r := New(opts...)
	for _, m := range builtins() {
		r.Register(m)
	}
	return r
}

func builtins() []Metadata {
	return []Metadata{startType(), endType(), conditionalType(), instructionType()}
}

// Register adds m. The first registration of a type wins: later ones are
// ignored and Register returns false, so load order does not matter.
func (r *Registry) Register(m Metadata) bool {
	if _, exists := r.types[m.Type]; exists {
		r.logger.Debug("node type already registered, ignoring", "type", m.Type)
		return false
	}
	r.types[m.Type] = m
	r.order = append(r.order, m.Type)
	return true
}

// Resolve returns the metadata registered for t.
func (r *Registry) Resolve(t flow.NodeType) (Metadata, error) {
	m, ok := r.types[t]
	if !ok {
		return Metadata{}, fmt.Errorf("%w: %q", flow.ErrUnknownType, t)
	}
	return m, nil
}

// ListPlaceable returns the user-insertable types in registration order.
func (r *Registry) ListPlaceable() []Metadata {
	var out []Metadata
	for _, t := range r.order {
		if m := r.types[t]; m.Placeable {
			out = append(out, m)
		}
	}
	return out
}

// List returns every registered type in registration order.
func (r *Registry) List() []Metadata {
	out := make([]Metadata, 0, len(r.order))
	for _, t := range r.order {
		out = append(out, r.types[t])
	}
	return out
}
