package editor

import (
	"fmt"

	"github.com/meikuraledutech/flow"
)

// InsertNode adds a node of type t at pos and returns its id. The node gets
// a deep copy of the type's default payload.
func (e *Editor) InsertNode(t flow.NodeType, pos flow.Position) (string, error) {
	meta, err := e.reg.Resolve(t)
	if err != nil {
		return "", err
	}

	n := flow.Node{
		ID:       e.id(),
		Type:     t,
		Position: pos,
		Data:     meta.NewPayload(),
	}
	e.nodes = append(e.nodes, n)
	e.state[n.ID] = &nodeState{}
	e.markPathsIssued(n)
	e.touch()

	e.logger.Debug("node inserted", "id", n.ID, "type", t)
	return n.ID, nil
}

// MoveNode sets the position of node id and marks it as manually placed,
// so the layout adjuster leaves it alone. Unknown ids are ignored.
func (e *Editor) MoveNode(id string, pos flow.Position) {
	i := e.nodeIndex(id)
	if i < 0 {
		return
	}
	e.nodes[i].Position = pos
	e.state[id].manual = true
	e.touch()
}

// DeleteNode removes node id together with every edge touching it. Edges
// leaving the node's ports are removed first, then the remaining incident
// edges, so no edge outlives either endpoint.
func (e *Editor) DeleteNode(id string) error {
	i := e.nodeIndex(id)
	if i < 0 {
		return fmt.Errorf("delete %q: %w", id, flow.ErrNodeNotFound)
	}
	meta, err := e.reg.Resolve(e.nodes[i].Type)
	if err != nil {
		return err
	}
	if !meta.Deletable {
		return fmt.Errorf("delete %q: %w", id, flow.ErrForbidden)
	}

	ports := make(map[flow.Handle]bool)
	for _, h := range e.nodes[i].Outputs() {
		ports[h] = true
	}
	removed := e.removeEdges(func(ed flow.Edge) bool {
		return ed.Source == id && ports[ed.SourceHandle]
	})
	removed += e.removeEdges(func(ed flow.Edge) bool {
		return ed.Source == id || ed.Target == id
	})

	e.nodes = append(e.nodes[:i], e.nodes[i+1:]...)
	delete(e.state, id)
	if e.selected == id {
		e.selected = ""
	}
	e.touch()

	e.logger.Debug("node deleted", "id", id, "edges", removed)
	return nil
}

// UpdatePayload shallow-merges patch into the payload of node id. The node
// type never changes; keys the variant does not own, and structural keys
// such as paths, are rejected with flow.ErrInvalidPatch.
func (e *Editor) UpdatePayload(id string, patch flow.Patch) error {
	i := e.nodeIndex(id)
	if i < 0 {
		return fmt.Errorf("update %q: %w", id, flow.ErrNodeNotFound)
	}
	merged, err := flow.MergePayload(e.nodes[i].Data, patch)
	if err != nil {
		return fmt.Errorf("update %q: %w", id, err)
	}
	e.nodes[i].Data = merged
	e.touch()
	return nil
}
