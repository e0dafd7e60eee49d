// Package editor is the authoritative in-memory flow being edited.
//
// An Editor owns a graph plus the editor-only state beside it: selection,
// per-node measured size and manual-positioning flags, and a version counter
// bumped by every mutation. All mutation goes through its methods. Mutations
// check only local invariants; whole-graph validation is an explicit step
// (package validate).
//
// An Editor belongs to a single editing session and is not safe for
// concurrent use.
package editor

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/meikuraledutech/flow"
	"github.com/meikuraledutech/flow/layout"
	"github.com/meikuraledutech/flow/nodetype"
)

// Phase is the measuring lifecycle of a node.
type Phase int

const (
	// Pending nodes have not been rendered yet; the layout adjuster
	// cannot use their size.
	Pending Phase = iota
	// Measured nodes have a known rendered size.
	Measured
)

type nodeState struct {
	phase  Phase
	size   flow.Size
	manual bool
}

// Editor holds the graph being edited.
type Editor struct {
	reg      *nodetype.Registry
	catalog  *nodetype.Catalog
	adjuster *layout.Adjuster
	logger   *log.Logger
	newID    func() string

	nodes []flow.Node
	edges []flow.Edge
	state map[string]*nodeState
	// issued holds every id this editor handed out or loaded, so identities
	// are never reused after deletion.
	issued   map[string]struct{}
	selected string
	version  uint64
}

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the editor's logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Editor) { e.logger = l }
}

// WithCatalog sets the condition catalog paths are checked against.
func WithCatalog(c *nodetype.Catalog) Option {
	return func(e *Editor) { e.catalog = c }
}

// WithAdjuster sets the layout adjuster run on size changes.
func WithAdjuster(a *layout.Adjuster) Option {
	return func(e *Editor) { e.adjuster = a }
}

// WithIDFunc sets the id generator. It defaults to random UUIDs. The
// generator must keep producing ids the editor has not seen.
func WithIDFunc(f func() string) Option {
	return func(e *Editor) { e.newID = f }
}

// New returns an editor holding an empty graph.
func New(reg *nodetype.Registry, opts ...Option) *Editor {
	e := &Editor{
		reg:      reg,
		catalog:  nodetype.DefaultCatalog(),
		adjuster: layout.New(layout.DefaultConfig()),
		logger:   log.Default(),
		newID:    uuid.NewString,
		nodes:    []flow.Node{},
		edges:    []flow.Edge{},
		state:    make(map[string]*nodeState),
		issued:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the node type registry the editor resolves types with.
func (e *Editor) Registry() *nodetype.Registry { return e.reg }

// Catalog returns the condition catalog, which may be nil.
func (e *Editor) Catalog() *nodetype.Catalog { return e.catalog }

// Version increases with every mutation.
func (e *Editor) Version() uint64 { return e.version }

// Graph returns a deep snapshot of the current graph.
func (e *Editor) Graph() flow.Graph {
	return flow.Graph{Nodes: e.nodes, Edges: e.edges}.Clone()
}

// Node returns a copy of node id.
func (e *Editor) Node(id string) (flow.Node, bool) {
	i := e.nodeIndex(id)
	if i < 0 {
		return flow.Node{}, false
	}
	return e.nodes[i].Clone(), true
}

// Load replaces the graph with g. It rejects graphs with duplicate ids,
// unregistered node types or edges to missing nodes; everything else is
// left to the structural validator. Every node starts Pending.
func (e *Editor) Load(g flow.Graph) error {
	seen := make(map[string]bool, len(g.Nodes)+len(g.Edges))
	for _, n := range g.Nodes {
		if seen[n.ID] || n.ID == "" {
			return fmt.Errorf("%w: duplicate or empty id %q", flow.ErrInvalidGraph, n.ID)
		}
		seen[n.ID] = true
		if _, err := e.reg.Resolve(n.Type); err != nil {
			return err
		}
		if n.Data == nil || n.Data.Kind() != n.Type {
			return fmt.Errorf("%w: node %q data does not match type %q", flow.ErrInvalidGraph, n.ID, n.Type)
		}
	}
	byID := make(map[string]flow.Node, len(g.Nodes))
	for _, n := range g.Nodes {
		byID[n.ID] = n
	}
	type port struct {
		node string
		h    flow.Handle
	}
	used := make(map[port]bool, len(g.Edges))
	for _, ed := range g.Edges {
		if seen[ed.ID] || ed.ID == "" {
			return fmt.Errorf("%w: duplicate or empty id %q", flow.ErrInvalidGraph, ed.ID)
		}
		seen[ed.ID] = true
		src, okSrc := byID[ed.Source]
		dst, okDst := byID[ed.Target]
		if !okSrc || !okDst {
			return fmt.Errorf("%w: edge %q references a missing node", flow.ErrInvalidGraph, ed.ID)
		}
		// End declares no outputs and Start no inputs, so this also keeps
		// edges out of End and into Start.
		if !src.HasOutput(ed.SourceHandle) || !dst.HasInput(ed.TargetHandle) {
			return fmt.Errorf("%w: edge %q uses an undeclared port", flow.ErrInvalidGraph, ed.ID)
		}
		pt := port{ed.Source, ed.SourceHandle}
		if used[pt] {
			return fmt.Errorf("%w: edge %q reuses an occupied port", flow.ErrInvalidGraph, ed.ID)
		}
		used[pt] = true
	}

	c := g.Clone()
	e.nodes = c.Nodes
	e.edges = c.Edges
	e.state = make(map[string]*nodeState, len(c.Nodes))
	for _, n := range c.Nodes {
		e.state[n.ID] = &nodeState{}
		e.issued[n.ID] = struct{}{}
		e.markPathsIssued(n)
	}
	for _, ed := range c.Edges {
		e.issued[ed.ID] = struct{}{}
	}
	e.selected = ""
	e.touch()
	e.logger.Debug("flow loaded", "nodes", len(e.nodes), "edges", len(e.edges))
	return nil
}

// Reset replaces the graph with the default Start→End template. It fails
// when the registry does not know the start and end types.
func (e *Editor) Reset() error {
	if err := e.Load(flow.Default(e.id)); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return nil
}

// Select marks id as the selected node. Unknown ids clear the selection.
func (e *Editor) Select(id string) {
	if e.nodeIndex(id) < 0 {
		id = ""
	}
	if e.selected != id {
		e.selected = id
		e.touch()
	}
}

// Selected returns the selected node id, or "".
func (e *Editor) Selected() string { return e.selected }

// maxIDAttempts bounds how often id asks the generator for a fresh value.
const maxIDAttempts = 64

// id returns a fresh identifier never issued before by this editor. It
// panics when the generator keeps returning used or empty ids.
func (e *Editor) id() string {
	for range maxIDAttempts {
		id := e.newID()
		if _, used := e.issued[id]; !used && id != "" {
			e.issued[id] = struct{}{}
			return id
		}
	}
	panic(fmt.Sprintf("editor: id generator returned no fresh id in %d attempts", maxIDAttempts))
}

func (e *Editor) touch() { e.version++ }

func (e *Editor) nodeIndex(id string) int {
	for i, n := range e.nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func (e *Editor) edgeIndex(id string) int {
	for i, ed := range e.edges {
		if ed.ID == id {
			return i
		}
	}
	return -1
}

func (e *Editor) markPathsIssued(n flow.Node) {
	if d, ok := n.Data.(*flow.ConditionalData); ok {
		for _, p := range d.Paths {
			e.issued[p.ID] = struct{}{}
		}
	}
}

// removeEdges drops every edge matching drop and returns how many went.
func (e *Editor) removeEdges(drop func(flow.Edge) bool) int {
	kept := e.edges[:0]
	removed := 0
	for _, ed := range e.edges {
		if drop(ed) {
			removed++
			continue
		}
		kept = append(kept, ed)
	}
	e.edges = kept
	return removed
}
