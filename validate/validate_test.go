package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meikuraledutech/flow"
)

func node(id string, p flow.Payload) flow.Node {
	return flow.Node{ID: id, Type: p.Kind(), Data: p}
}

func edge(id, src string, h flow.Handle, dst string) flow.Edge {
	return flow.Edge{ID: id, Source: src, SourceHandle: h, Target: dst}
}

func branchGraph() flow.Graph {
	return flow.Graph{
		Nodes: []flow.Node{
			node("s", &flow.StartData{Label: "Start"}),
			node("c", &flow.ConditionalData{Paths: []flow.Path{{ID: "p1", Value: "a"}, {ID: "p2", Value: "b"}}}),
			node("i1", &flow.InstructionData{Channel: "sms"}),
			node("i2", &flow.InstructionData{Channel: "sms"}),
			node("e", &flow.EndData{Label: "End"}),
		},
		Edges: []flow.Edge{
			edge("e1", "s", "", "c"),
			edge("e2", "c", "p1", "i1"),
			edge("e3", "c", "p2", "i2"),
			edge("e4", "i1", "", "e"),
			edge("e5", "i2", "", "e"),
		},
	}
}

func TestDefaultTemplateIsValid(t *testing.T) {
	r := Graph(flow.Default(nil))
	assert.True(t, r.Valid)
	assert.Empty(t, r.Diagnostics)
	assert.NoError(t, r.Err())
}

func TestCompleteBranchIsValid(t *testing.T) {
	r := Graph(branchGraph())
	assert.True(t, r.Valid, r.Diagnostics)
}

func TestDanglingPath(t *testing.T) {
	g := branchGraph()
	g.Edges = append(g.Edges[:2], g.Edges[3:]...) // drop c/p2 -> i2

	r := Graph(g)

	assert.False(t, r.Valid)
	assert.Equal(t, 1, r.Count(DanglingPath))
	assert.Contains(t, r.Diagnostics, Diagnostic{Kind: DanglingPath, NodeID: "c", PathID: "p2"})
	assert.Contains(t, r.Diagnostics, Diagnostic{Kind: Unreachable, NodeID: "i2"})
}

func TestNoPathToEnd(t *testing.T) {
	g := flow.Graph{
		Nodes: []flow.Node{node("s", &flow.StartData{}), node("e", &flow.EndData{})},
	}

	r := Graph(g)

	assert.Equal(t, []Diagnostic{
		{Kind: Unreachable, NodeID: "e"},
		{Kind: NoPathToEnd},
		{Kind: OrphanNode, NodeID: "e"},
	}, r.Diagnostics)
}

func TestTerminals(t *testing.T) {
	tests := []struct {
		name  string
		nodes []flow.Node
		want  []Kind
	}{
		{"Empty", nil, []Kind{MissingStart, MissingEnd}},
		{"NoStart", []flow.Node{node("e", &flow.EndData{})}, []Kind{MissingStart, NoPathToEnd, OrphanNode}},
		{"TwoEnds", []flow.Node{node("s", &flow.StartData{}), node("e", &flow.EndData{}), node("e2", &flow.EndData{})},
			[]Kind{MultipleEnd, Unreachable, Unreachable, NoPathToEnd, OrphanNode, OrphanNode}},
		{"TwoStarts", []flow.Node{node("s", &flow.StartData{}), node("s2", &flow.StartData{}), node("e", &flow.EndData{})},
			[]Kind{MultipleStart, Unreachable, Unreachable, NoPathToEnd, OrphanNode}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Graph(flow.Graph{Nodes: tt.nodes})
			var kinds []Kind
			for _, d := range r.Diagnostics {
				kinds = append(kinds, d.Kind)
			}
			assert.Equal(t, tt.want, kinds)
		})
	}
}

func TestDanglingEdge(t *testing.T) {
	g := flow.Default(nil)
	g.Edges = append(g.Edges,
		edge("ghost", g.Nodes[0].ID, "", "missing"),
		edge("badport", g.Nodes[0].ID, "nope", g.Nodes[1].ID),
	)

	r := Graph(g)

	assert.Equal(t, []Diagnostic{
		{Kind: DanglingEdge, EdgeID: "ghost"},
		{Kind: DanglingEdge, EdgeID: "badport"},
	}, r.Diagnostics)
}

func TestPortOccupied(t *testing.T) {
	g := flow.Graph{
		Nodes: []flow.Node{
			node("s", &flow.StartData{}),
			node("i", &flow.InstructionData{Channel: "sms"}),
			node("j", &flow.InstructionData{Channel: "sms"}),
			node("e", &flow.EndData{}),
		},
		Edges: []flow.Edge{
			edge("e1", "s", "", "i"),
			edge("e2", "i", "", "e"),
			edge("e3", "i", "", "j"),
			edge("e4", "j", "", "e"),
		},
	}

	r := Graph(g)

	assert.False(t, r.Valid)
	assert.Equal(t, []Diagnostic{
		{Kind: PortOccupied, EdgeID: "e3"},
		{Kind: Unreachable, NodeID: "j"},
	}, r.Diagnostics)
}

func TestBranchPathUsedTwice(t *testing.T) {
	g := branchGraph()
	g.Edges = append(g.Edges, edge("e6", "c", "p1", "i2"))

	r := Graph(g)

	assert.Equal(t, []Diagnostic{{Kind: PortOccupied, EdgeID: "e6"}}, r.Diagnostics)
}

func TestOrphanNode(t *testing.T) {
	g := branchGraph()
	g.Nodes = append(g.Nodes, node("lonely", &flow.InstructionData{}))

	r := Graph(g)

	assert.Equal(t, []Diagnostic{
		{Kind: Unreachable, NodeID: "lonely"},
		{Kind: OrphanNode, NodeID: "lonely"},
	}, r.Diagnostics)
}

func TestIdempotent(t *testing.T) {
	g := branchGraph()
	g.Edges = g.Edges[:1]

	first := Graph(g)
	second := Graph(g)
	assert.Equal(t, first, second)
}

func TestErr(t *testing.T) {
	r := Graph(flow.Graph{})
	err := r.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, flow.ErrInvalidGraph)

	var ige *InvalidGraphError
	require.ErrorAs(t, err, &ige)
	assert.Len(t, ige.Diagnostics, 2)
	assert.Contains(t, err.Error(), "MissingStart")
}
