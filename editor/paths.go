package editor

import (
	"fmt"
	"slices"

	"github.com/meikuraledutech/flow"
)

// branch returns the index and payload of conditional node id.
func (e *Editor) branch(id string) (int, *flow.ConditionalData, error) {
	i := e.nodeIndex(id)
	if i < 0 {
		return -1, nil, fmt.Errorf("branch %q: %w", id, flow.ErrNodeNotFound)
	}
	d, ok := e.nodes[i].Data.(*flow.ConditionalData)
	if !ok {
		return -1, nil, fmt.Errorf("branch %q: %w", id, flow.ErrNotBranch)
	}
	return i, d, nil
}

// AddPath appends a path with the given value to conditional node id and
// returns the new path id, which is also the id of its output port. When the
// node references a catalog condition, value must be one of the condition's
// path values not already used on the node.
func (e *Editor) AddPath(id, value string) (string, error) {
	i, d, err := e.branch(id)
	if err != nil {
		return "", err
	}
	if value == "" {
		return "", fmt.Errorf("add path to %q: %w: empty value", id, flow.ErrInvalidPath)
	}

	used := make([]string, 0, len(d.Paths))
	for _, p := range d.Paths {
		if p.Value == value {
			return "", fmt.Errorf("add path to %q: %w: %q already declared", id, flow.ErrInvalidPath, value)
		}
		used = append(used, p.Value)
	}
	if d.Condition != nil && e.catalog != nil {
		if _, known := e.catalog.Lookup(d.Condition.ID); known && !slices.Contains(e.catalog.Available(d.Condition.ID, used), value) {
			return "", fmt.Errorf("add path to %q: %w: %q is not offered by %s", id, flow.ErrInvalidPath, value, d.Condition.ID)
		}
	}

	next := d.Clone().(*flow.ConditionalData)
	p := flow.Path{ID: e.id(), Value: value}
	next.Paths = append(next.Paths, p)
	e.nodes[i].Data = next
	e.touch()
	return p.ID, nil
}

// RemovePath removes path pathID from conditional node id along with the
// edges leaving its port.
func (e *Editor) RemovePath(id, pathID string) error {
	i, d, err := e.branch(id)
	if err != nil {
		return err
	}
	k := d.PathIndex(pathID)
	if k < 0 {
		return fmt.Errorf("remove path %q from %q: %w", pathID, id, flow.ErrPathNotFound)
	}

	removed := e.removeEdges(func(ed flow.Edge) bool {
		return ed.Source == id && ed.SourceHandle == flow.Handle(pathID)
	})
	next := d.Clone().(*flow.ConditionalData)
	next.Paths = append(next.Paths[:k], next.Paths[k+1:]...)
	e.nodes[i].Data = next
	e.touch()

	e.logger.Debug("path removed", "node", id, "path", pathID, "edges", removed)
	return nil
}

// SetCondition points conditional node id at ref. Choosing a condition
// starts a fresh path list: existing paths and their edges are removed.
// A nil ref clears the condition.
func (e *Editor) SetCondition(id string, ref *flow.ConditionRef) error {
	i, d, err := e.branch(id)
	if err != nil {
		return err
	}

	ports := make(map[flow.Handle]bool, len(d.Paths))
	for _, p := range d.Paths {
		ports[flow.Handle(p.ID)] = true
	}
	e.removeEdges(func(ed flow.Edge) bool {
		return ed.Source == id && ports[ed.SourceHandle]
	})

	next := &flow.ConditionalData{Paths: []flow.Path{}}
	if ref != nil {
		c := *ref
		next.Condition = &c
	}
	e.nodes[i].Data = next
	e.touch()
	return nil
}
