package editor

import (
	"fmt"

	"github.com/meikuraledutech/flow"
	"github.com/meikuraledutech/flow/layout"
)

// Phase returns the measuring phase of node id. Unknown nodes are Pending.
func (e *Editor) Phase(id string) Phase {
	if st, ok := e.state[id]; ok {
		return st.phase
	}
	return Pending
}

// Manual reports whether node id was positioned by hand since its last
// auto-adjustment.
func (e *Editor) Manual(id string) bool {
	st, ok := e.state[id]
	return ok && st.manual
}

// SetMeasuredSize records the rendered size of node id. The first
// measurement, and any later change, runs the layout adjuster from the node;
// the number of nodes it moved is returned.
func (e *Editor) SetMeasuredSize(id string, size flow.Size) (int, error) {
	st, ok := e.state[id]
	if !ok {
		return 0, fmt.Errorf("measure %q: %w", id, flow.ErrNodeNotFound)
	}
	if st.phase == Measured && st.size == size {
		return 0, nil
	}
	st.phase = Measured
	st.size = size
	e.touch()
	return e.adjust(id), nil
}

// AutoAdjust clears the manual flag of node id and of everything downstream
// of it, then lays them out again. It returns the number of nodes moved.
func (e *Editor) AutoAdjust(id string) int {
	if e.nodeIndex(id) < 0 {
		return 0
	}
	c := canvas{e}
	seen := map[string]bool{id: true}
	queue := []string{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		e.state[cur].manual = false
		for _, next := range c.Successors(cur) {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	e.touch()
	return e.adjust(id)
}

func (e *Editor) adjust(id string) int {
	if e.adjuster == nil {
		return 0
	}
	moves := e.adjuster.Adjust(canvas{e}, id)
	for _, m := range moves {
		if i := e.nodeIndex(m.ID); i >= 0 {
			e.nodes[i].Position = m.To
		}
	}
	if len(moves) > 0 {
		e.touch()
		e.logger.Debug("layout adjusted", "root", id, "moved", len(moves))
	}
	return len(moves)
}

// canvas exposes the editor to the layout adjuster.
type canvas struct{ e *Editor }

var _ layout.Canvas = canvas{}

func (c canvas) Position(id string) (flow.Position, bool) {
	i := c.e.nodeIndex(id)
	if i < 0 {
		return flow.Position{}, false
	}
	return c.e.nodes[i].Position, true
}

func (c canvas) Size(id string) (flow.Size, bool) {
	st, ok := c.e.state[id]
	if !ok || st.phase != Measured {
		return flow.Size{}, false
	}
	return st.size, true
}

func (c canvas) Manual(id string) bool { return c.e.Manual(id) }

func (c canvas) Successors(id string) []string {
	var out []string
	for _, ed := range c.e.edges {
		if ed.Source == id {
			out = append(out, ed.Target)
		}
	}
	return out
}
