package flow

// NodeType tags a node's variant. The set is closed: every Payload
// implementation below corresponds to exactly one NodeType.
type NodeType string

const (
	TypeStart       NodeType = "start"
	TypeEnd         NodeType = "end"
	TypeConditional NodeType = "conditional"
	TypeInstruction NodeType = "instruction"
)

// Types lists the built-in node types in canonical order.
var Types = []NodeType{TypeStart, TypeEnd, TypeConditional, TypeInstruction}

// Graph is the persisted flow: the wire format exchanged with the
// collaborator's GET/PUT /flow/{ownerId} endpoints.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is a step in the flow.
type Node struct {
	ID       string   `json:"id"`
	Type     NodeType `json:"type"`
	Position Position `json:"position"`
	Data     Payload  `json:"data"`
}

// Edge is a directed connection between a source port and a target port.
// An empty Handle is the node's default port and is serialized as null.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	SourceHandle Handle `json:"sourceHandle"`
	Target       string `json:"target"`
	TargetHandle Handle `json:"targetHandle"`
}

// Position is a point on the unbounded editor canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a node's rendered size on the canvas.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Handle identifies a connection port on a node. Ports are stable: a
// conditional path's handle is its path id, generated once.
type Handle string

// DefaultPort is the single input/output port of non-branching nodes.
const DefaultPort Handle = ""

// Outputs returns the ports edges may leave this node through.
func (n Node) Outputs() []Handle {
	switch d := n.Data.(type) {
	case *StartData:
		return []Handle{DefaultPort}
	case *EndData:
		return nil
	case *ConditionalData:
		out := make([]Handle, 0, len(d.Paths))
		for _, p := range d.Paths {
			out = append(out, Handle(p.ID))
		}
		return out
	case *InstructionData:
		return []Handle{DefaultPort}
	}
	return nil
}

// Inputs returns the ports edges may enter this node through.
func (n Node) Inputs() []Handle {
	switch n.Data.(type) {
	case *StartData:
		return nil
	case *EndData, *ConditionalData, *InstructionData:
		return []Handle{DefaultPort}
	}
	return nil
}

// HasOutput reports whether h is a currently declared output port.
func (n Node) HasOutput(h Handle) bool {
	for _, o := range n.Outputs() {
		if o == h {
			return true
		}
	}
	return false
}

// HasInput reports whether h is a currently declared input port.
func (n Node) HasInput(h Handle) bool {
	for _, i := range n.Inputs() {
		if i == h {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	if n.Data != nil {
		n.Data = n.Data.Clone()
	}
	return n
}

// Clone returns a deep copy of the graph. Nil slices come back empty.
func (g Graph) Clone() Graph {
	out := Graph{
		Nodes: make([]Node, 0, len(g.Nodes)),
		Edges: make([]Edge, 0, len(g.Edges)),
	}
	for _, n := range g.Nodes {
		out.Nodes = append(out.Nodes, n.Clone())
	}
	out.Edges = append(out.Edges, g.Edges...)
	return out
}

// Node returns the node with the given id.
func (g Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Edge returns the edge with the given id.
func (g Graph) Edge(id string) (Edge, bool) {
	for _, e := range g.Edges {
		if e.ID == id {
			return e, true
		}
	}
	return Edge{}, false
}

// First returns the first node of type t, typically Start or End.
func (g Graph) First(t NodeType) (Node, bool) {
	for _, n := range g.Nodes {
		if n.Type == t {
			return n, true
		}
	}
	return Node{}, false
}

// Outgoing returns the edges leaving node id, in graph order.
func (g Graph) Outgoing(id string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.Source == id {
			out = append(out, e)
		}
	}
	return out
}

// Incoming returns the edges entering node id, in graph order.
func (g Graph) Incoming(id string) []Edge {
	var in []Edge
	for _, e := range g.Edges {
		if e.Target == id {
			in = append(in, e)
		}
	}
	return in
}
