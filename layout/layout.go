// Package layout keeps a flow readable while nodes get measured.
//
// When a node's rendered size first becomes known, or changes, the Adjuster
// snaps that node to the grid and walks forward along outgoing edges, pushing
// each downstream node far enough along the flow direction that it no longer
// overlaps its parent. Nodes are only ever pushed forward, so running the
// adjuster again without intervening changes moves nothing.
package layout

import (
	"math"

	"github.com/meikuraledutech/flow"
)

// Orientation is the reading direction of the flow.
type Orientation int

const (
	// Horizontal flows left-to-right: depth grows along X.
	Horizontal Orientation = iota
	// Vertical flows top-to-bottom: depth grows along Y. Used on narrow layouts.
	Vertical
)

// Config configures an Adjuster.
type Config struct {
	Orientation Orientation
	// Grid is the snapping unit for adjusted positions.
	Grid float64
	// Gap is the minimum distance between a node and its successors.
	Gap float64
}

// DefaultConfig returns the horizontal layout used by the editor.
func DefaultConfig() Config {
	return Config{
		Orientation: Horizontal,
		Grid:        16,
		Gap:         48,
	}
}

// Canvas is the view of the graph the adjuster works on.
type Canvas interface {
	// Position returns the current position of node id.
	Position(id string) (flow.Position, bool)
	// Size returns the measured size of node id; false while still pending.
	Size(id string) (flow.Size, bool)
	// Manual reports whether the user moved id after its last auto-adjustment.
	Manual(id string) bool
	// Successors returns the targets of id's outgoing edges in edge order.
	Successors(id string) []string
}

// Move is a position change computed by the adjuster.
type Move struct {
	ID string
	To flow.Position
}

// Adjuster repositions nodes after size changes.
type Adjuster struct {
	cfg Config
}

// New returns an Adjuster. A non-positive grid disables snapping.
func New(cfg Config) *Adjuster {
	return &Adjuster{cfg: cfg}
}

// Config returns the adjuster's configuration.
func (a *Adjuster) Config() Config { return a.cfg }

// Adjust computes the moves needed after node root was measured. The canvas
// is not modified; moves are returned in the order they were decided.
func (a *Adjuster) Adjust(c Canvas, root string) []Move {
	pos, ok := c.Position(root)
	if !ok {
		return nil
	}

	r := &run{
		a:       a,
		c:       c,
		moved:   make(map[string]flow.Position),
		settled: make(map[string]flow.Position),
		onStack: make(map[string]bool),
	}
	if !c.Manual(root) {
		if snapped := a.snap(pos); snapped != pos {
			r.set(root, snapped)
		}
	}
	r.visit(root)

	moves := make([]Move, 0, len(r.order))
	for _, id := range r.order {
		moves = append(moves, Move{ID: id, To: r.moved[id]})
	}
	return moves
}

type run struct {
	a *Adjuster
	c Canvas

	moved map[string]flow.Position
	order []string
	// settled records the position a node had when its successors were
	// last propagated, so diamonds are walked again only when it moved.
	settled map[string]flow.Position
	onStack map[string]bool
}

func (r *run) position(id string) (flow.Position, bool) {
	if p, ok := r.moved[id]; ok {
		return p, true
	}
	return r.c.Position(id)
}

func (r *run) set(id string, p flow.Position) {
	if _, ok := r.moved[id]; !ok {
		r.order = append(r.order, id)
	}
	r.moved[id] = p
}

func (r *run) visit(id string) {
	size, ok := r.c.Size(id)
	if !ok {
		return
	}
	p, ok := r.position(id)
	if !ok {
		return
	}
	if last, done := r.settled[id]; done && last == p {
		return
	}
	r.settled[id] = p

	r.onStack[id] = true
	defer delete(r.onStack, id)

	need := r.a.required(p, size)
	for _, next := range r.c.Successors(id) {
		if r.onStack[next] {
			continue
		}
		np, ok := r.position(next)
		if !ok {
			continue
		}
		if !r.c.Manual(next) && r.a.primary(np) < need {
			r.set(next, r.a.withPrimary(np, need))
		}
		r.visit(next)
	}
}

// required is the smallest primary-axis coordinate a successor of a node at
// p with the given size may take.
func (a *Adjuster) required(p flow.Position, s flow.Size) float64 {
	edge := p.X + s.Width
	if a.cfg.Orientation == Vertical {
		edge = p.Y + s.Height
	}
	return a.ceil(edge + a.cfg.Gap)
}

func (a *Adjuster) primary(p flow.Position) float64 {
	if a.cfg.Orientation == Vertical {
		return p.Y
	}
	return p.X
}

func (a *Adjuster) withPrimary(p flow.Position, v float64) flow.Position {
	if a.cfg.Orientation == Vertical {
		p.Y = v
	} else {
		p.X = v
	}
	return p
}

func (a *Adjuster) snap(p flow.Position) flow.Position {
	if a.cfg.Grid <= 0 {
		return p
	}
	g := a.cfg.Grid
	return flow.Position{X: math.Round(p.X/g) * g, Y: math.Round(p.Y/g) * g}
}

func (a *Adjuster) ceil(v float64) float64 {
	if a.cfg.Grid <= 0 {
		return v
	}
	return math.Ceil(v/a.cfg.Grid) * a.cfg.Grid
}
