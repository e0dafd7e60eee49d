package editor

import (
	"fmt"

	"github.com/meikuraledutech/flow"
)

// Proposal is a connection the operator is trying to draw.
type Proposal struct {
	Source       string      `json:"source"`
	SourceHandle flow.Handle `json:"sourceHandle"`
	Target       string      `json:"target"`
	TargetHandle flow.Handle `json:"targetHandle"`
}

// Reason explains why a connection was rejected.
type Reason string

const (
	ReasonIntoStart   Reason = "target is the start node"
	ReasonFromEnd     Reason = "source is the end node"
	ReasonSelfLoop    Reason = "source and target are the same node"
	ReasonUnknownNode Reason = "unknown node"
	ReasonUnknownPort Reason = "port is not declared"
	ReasonOccupied    Reason = "source port already connected"
	ReasonCycle       Reason = "edge would close a cycle"
)

// RejectError is returned when a proposal breaks a connection rule. It
// matches flow.ErrPortOccupied or flow.ErrInvalidConnection with errors.Is.
type RejectError struct {
	Proposal Proposal
	Reason   Reason
}

func (e *RejectError) Error() string {
	return fmt.Sprintf("%v: %s -> %s: %s", e.Unwrap(), e.Proposal.Source, e.Proposal.Target, e.Reason)
}

func (e *RejectError) Unwrap() error {
	if e.Reason == ReasonOccupied {
		return flow.ErrPortOccupied
	}
	return flow.ErrInvalidConnection
}

// ValidateConnection checks p against g. Rules are applied in order and the
// first failure is returned.
func ValidateConnection(g flow.Graph, p Proposal) error {
	reject := func(r Reason) error { return &RejectError{Proposal: p, Reason: r} }

	src, okSrc := g.Node(p.Source)
	dst, okDst := g.Node(p.Target)

	if okDst && dst.Type == flow.TypeStart {
		return reject(ReasonIntoStart)
	}
	if okSrc && src.Type == flow.TypeEnd {
		return reject(ReasonFromEnd)
	}
	if p.Source == p.Target {
		return reject(ReasonSelfLoop)
	}
	if !okSrc || !okDst {
		return reject(ReasonUnknownNode)
	}
	if !src.HasOutput(p.SourceHandle) || !dst.HasInput(p.TargetHandle) {
		return reject(ReasonUnknownPort)
	}

	// An identical edge necessarily occupies the source port, so duplicates
	// surface as ReasonOccupied.
	for _, e := range g.Edges {
		if e.Source == p.Source && e.SourceHandle == p.SourceHandle {
			return reject(ReasonOccupied)
		}
	}

	if reaches(g.Edges, p.Target, p.Source) {
		return reject(ReasonCycle)
	}
	return nil
}

// reaches reports whether to is reachable from from along edges.
func reaches(edges []flow.Edge, from, to string) bool {
	adj := make(map[string][]string)
	for _, e := range edges {
		adj[e.Source] = append(adj[e.Source], e.Target)
	}

	visited := make(map[string]bool)
	var dfs func(id string) bool
	dfs = func(id string) bool {
		if id == to {
			return true
		}
		visited[id] = true
		for _, next := range adj[id] {
			if !visited[next] && dfs(next) {
				return true
			}
		}
		return false
	}
	return dfs(from)
}

// Connect validates p and appends the edge, returning its id. A rejected
// proposal leaves the graph unchanged.
func (e *Editor) Connect(p Proposal) (string, error) {
	if err := ValidateConnection(flow.Graph{Nodes: e.nodes, Edges: e.edges}, p); err != nil {
		e.logger.Debug("connection rejected", "source", p.Source, "target", p.Target, "err", err)
		return "", err
	}
	ed := flow.Edge{
		ID:           e.id(),
		Source:       p.Source,
		SourceHandle: p.SourceHandle,
		Target:       p.Target,
		TargetHandle: p.TargetHandle,
	}
	e.edges = append(e.edges, ed)
	e.touch()
	return ed.ID, nil
}

// DisconnectEdge removes edge id. Nothing else is removed; unknown ids are
// ignored.
func (e *Editor) DisconnectEdge(id string) {
	i := e.edgeIndex(id)
	if i < 0 {
		return
	}
	e.edges = append(e.edges[:i], e.edges[i+1:]...)
	e.touch()
}
