// Package validate runs the whole-graph checks a flow must pass before it is
// saved: terminal nodes, edge integrity, port exclusivity, reachability from
// Start, a path to End, branch completeness and orphan detection.
//
// Graph is a pure function. Diagnostics come out in a fixed order (pass by
// pass, nodes and edges in graph order), so validating an unchanged graph
// twice yields identical reports.
package validate

import (
	"fmt"
	"strings"

	"github.com/meikuraledutech/flow"
)

// Kind classifies a diagnostic.
type Kind string

const (
	MissingStart  Kind = "MissingStart"
	MissingEnd    Kind = "MissingEnd"
	MultipleStart Kind = "MultipleStart"
	MultipleEnd   Kind = "MultipleEnd"
	DanglingEdge  Kind = "DanglingEdge"
	PortOccupied  Kind = "PortOccupied"
	Unreachable   Kind = "Unreachable"
	NoPathToEnd   Kind = "NoPathToEnd"
	DanglingPath  Kind = "DanglingPath"
	OrphanNode    Kind = "OrphanNode"
)

// Diagnostic is a single structural problem.
type Diagnostic struct {
	Kind   Kind   `json:"kind"`
	NodeID string `json:"nodeId,omitempty"`
	PathID string `json:"pathId,omitempty"`
	EdgeID string `json:"edgeId,omitempty"`
}

func (d Diagnostic) String() string {
	switch {
	case d.PathID != "":
		return fmt.Sprintf("%s(%s, %s)", d.Kind, d.NodeID, d.PathID)
	case d.NodeID != "":
		return fmt.Sprintf("%s(%s)", d.Kind, d.NodeID)
	case d.EdgeID != "":
		return fmt.Sprintf("%s(%s)", d.Kind, d.EdgeID)
	}
	return string(d.Kind)
}

// Report is the verdict of Graph.
type Report struct {
	Valid       bool         `json:"valid"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// Count returns how many diagnostics have kind k.
func (r Report) Count(k Kind) int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Kind == k {
			n++
		}
	}
	return n
}

// Err returns nil for a valid report, otherwise an *InvalidGraphError.
func (r Report) Err() error {
	if r.Valid {
		return nil
	}
	return &InvalidGraphError{Diagnostics: r.Diagnostics}
}

// InvalidGraphError carries the diagnostics that block a save.
type InvalidGraphError struct {
	Diagnostics []Diagnostic
}

func (e *InvalidGraphError) Error() string {
	parts := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		parts[i] = d.String()
	}
	return fmt.Sprintf("%v: %s", flow.ErrInvalidGraph, strings.Join(parts, ", "))
}

func (e *InvalidGraphError) Unwrap() error { return flow.ErrInvalidGraph }

// Graph validates g.
func Graph(g flow.Graph) Report {
	var diags []Diagnostic

	nodes := make(map[string]flow.Node, len(g.Nodes))
	for _, n := range g.Nodes {
		nodes[n.ID] = n
	}

	start, end := terminals(g, &diags)
	edges := integrity(g, nodes, &diags)
	edges = exclusive(edges, &diags)

	out := make(map[string][]string)
	linked := make(map[string]bool)
	for _, e := range edges {
		out[e.Source] = append(out[e.Source], e.Target)
		linked[e.Source] = true
		linked[e.Target] = true
	}

	if start != "" {
		seen := reach(start, out)
		for _, n := range g.Nodes {
			if !seen[n.ID] {
				diags = append(diags, Diagnostic{Kind: Unreachable, NodeID: n.ID})
			}
		}
		if end != "" && !seen[end] {
			diags = append(diags, Diagnostic{Kind: NoPathToEnd})
		}
	} else if end != "" {
		diags = append(diags, Diagnostic{Kind: NoPathToEnd})
	}

	for _, n := range g.Nodes {
		switch d := n.Data.(type) {
		case *flow.ConditionalData:
			for _, p := range d.Paths {
				if countPort(edges, n.ID, flow.Handle(p.ID)) == 0 {
					diags = append(diags, Diagnostic{Kind: DanglingPath, NodeID: n.ID, PathID: p.ID})
				}
			}
		case *flow.StartData, *flow.EndData, *flow.InstructionData:
		}
	}

	for _, n := range g.Nodes {
		if n.Type != flow.TypeStart && !linked[n.ID] {
			diags = append(diags, Diagnostic{Kind: OrphanNode, NodeID: n.ID})
		}
	}

	return Report{Valid: len(diags) == 0, Diagnostics: diags}
}

// terminals checks there is exactly one Start and one End and returns their
// ids when they are unique.
func terminals(g flow.Graph, diags *[]Diagnostic) (start, end string) {
	var starts, ends []string
	for _, n := range g.Nodes {
		switch n.Data.(type) {
		case *flow.StartData:
			starts = append(starts, n.ID)
		case *flow.EndData:
			ends = append(ends, n.ID)
		case *flow.ConditionalData, *flow.InstructionData:
		}
	}

	switch len(starts) {
	case 0:
		*diags = append(*diags, Diagnostic{Kind: MissingStart})
	case 1:
		start = starts[0]
	default:
		for _, id := range starts[1:] {
			*diags = append(*diags, Diagnostic{Kind: MultipleStart, NodeID: id})
		}
		start = starts[0]
	}
	switch len(ends) {
	case 0:
		*diags = append(*diags, Diagnostic{Kind: MissingEnd})
	case 1:
		end = ends[0]
	default:
		for _, id := range ends[1:] {
			*diags = append(*diags, Diagnostic{Kind: MultipleEnd, NodeID: id})
		}
		end = ends[0]
	}
	return start, end
}

// integrity reports edges whose endpoints or ports do not exist and returns
// the edges that are sound.
func integrity(g flow.Graph, nodes map[string]flow.Node, diags *[]Diagnostic) []flow.Edge {
	sound := make([]flow.Edge, 0, len(g.Edges))
	for _, e := range g.Edges {
		src, okSrc := nodes[e.Source]
		dst, okDst := nodes[e.Target]
		if !okSrc || !okDst || !src.HasOutput(e.SourceHandle) || !dst.HasInput(e.TargetHandle) {
			*diags = append(*diags, Diagnostic{Kind: DanglingEdge, EdgeID: e.ID})
			continue
		}
		sound = append(sound, e)
	}
	return sound
}

// exclusive reports every edge leaving a port that an earlier edge already
// uses and returns the first edge of each port.
func exclusive(edges []flow.Edge, diags *[]Diagnostic) []flow.Edge {
	type port struct {
		node string
		h    flow.Handle
	}
	used := make(map[port]bool, len(edges))
	kept := make([]flow.Edge, 0, len(edges))
	for _, e := range edges {
		p := port{e.Source, e.SourceHandle}
		if used[p] {
			*diags = append(*diags, Diagnostic{Kind: PortOccupied, EdgeID: e.ID})
			continue
		}
		used[p] = true
		kept = append(kept, e)
	}
	return kept
}

func reach(from string, out map[string][]string) map[string]bool {
	seen := map[string]bool{from: true}
	queue := []string{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range out[cur] {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return seen
}

func countPort(edges []flow.Edge, source string, h flow.Handle) int {
	n := 0
	for _, e := range edges {
		if e.Source == source && e.SourceHandle == h {
			n++
		}
	}
	return n
}
