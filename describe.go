package flow

import (
	"fmt"
	"strings"
)

// Describe renders g as the plain-text flow description the reply engine
// reads: every node with its content, then every connection.
func Describe(g Graph) string {
	if len(g.Nodes) == 0 {
		return "No flow structure found.\n"
	}

	var b strings.Builder
	b.WriteString("Flow Structure:\n\nNodes:\n")
	for _, n := range g.Nodes {
		switch d := n.Data.(type) {
		case *StartData:
			fmt.Fprintf(&b, "- Start Node (%s): Beginning of the conversation flow\n", n.ID)
		case *EndData:
			fmt.Fprintf(&b, "- End Node (%s): End of the conversation flow\n", n.ID)
		case *InstructionData:
			msg := d.Message
			if msg == "" {
				msg = "No message"
			}
			fmt.Fprintf(&b, "- Instruction Node (%s): Send '%s' via %s\n", n.ID, msg, d.Channel)
		case *ConditionalData:
			label := "No condition"
			if d.Condition != nil {
				label = d.Condition.Label
			}
			fmt.Fprintf(&b, "- Conditional Node (%s): %s with %d paths\n", n.ID, label, len(d.Paths))
			for _, p := range d.Paths {
				fmt.Fprintf(&b, "  * Path: %s\n", p.Value)
			}
		}
	}

	b.WriteString("\nConnections:\n")
	for _, e := range g.Edges {
		if e.SourceHandle != DefaultPort {
			fmt.Fprintf(&b, "- %s [%s] → %s\n", e.Source, pathValue(g, e), e.Target)
			continue
		}
		fmt.Fprintf(&b, "- %s → %s\n", e.Source, e.Target)
	}
	return b.String()
}

func pathValue(g Graph, e Edge) string {
	n, ok := g.Node(e.Source)
	if !ok {
		return string(e.SourceHandle)
	}
	if d, ok := n.Data.(*ConditionalData); ok {
		if i := d.PathIndex(string(e.SourceHandle)); i >= 0 {
			return d.Paths[i].Value
		}
	}
	return string(e.SourceHandle)
}
