package flow

import "github.com/google/uuid"

// Default returns the canonical two-node template: Start connected to End.
// newID supplies identifiers; nil uses random UUIDs.
func Default(newID func() string) Graph {
	if newID == nil {
		newID = uuid.NewString
	}
	start := Node{
		ID:       newID(),
		Type:     TypeStart,
		Position: Position{X: 0, Y: 100},
		Data:     &StartData{Label: "Start"},
	}
	end := Node{
		ID:       newID(),
		Type:     TypeEnd,
		Position: Position{X: 400, Y: 100},
		Data:     &EndData{Label: "End"},
	}
	return Graph{
		Nodes: []Node{start, end},
		Edges: []Edge{{ID: newID(), Source: start.ID, Target: end.ID}},
	}
}
