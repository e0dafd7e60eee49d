package flow

import (
	"bytes"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// MarshalJSON encodes the default port as null.
func (h Handle) MarshalJSON() ([]byte, error) {
	if h == DefaultPort {
		return []byte("null"), nil
	}
	return json.Marshal(string(h))
}

// UnmarshalJSON accepts a string or null.
func (h *Handle) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*h = DefaultPort
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("flow: handle: %w", err)
	}
	*h = Handle(s)
	return nil
}

// UnmarshalJSON decodes data into the payload variant selected by type.
func (n *Node) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID       string          `json:"id"`
		Type     NodeType        `json:"type"`
		Position Position        `json:"position"`
		Data     json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("flow: decode node: %w", err)
	}
	data, err := DecodePayload(raw.Type, raw.Data)
	if err != nil {
		return fmt.Errorf("flow: node %q: %w", raw.ID, err)
	}
	*n = Node{ID: raw.ID, Type: raw.Type, Position: raw.Position, Data: data}
	return nil
}

// Marshal encodes g in the wire format.
func Marshal(g Graph) ([]byte, error) {
	b, err := json.Marshal(wire(g))
	if err != nil {
		return nil, fmt.Errorf("flow: encode: %w", err)
	}
	return b, nil
}

// Unmarshal decodes a graph from the wire format.
func Unmarshal(b []byte) (*Graph, error) {
	return Decode(bytes.NewReader(b))
}

// Encode writes g as indented JSON.
func Encode(w io.Writer, g Graph) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(wire(g)); err != nil {
		return fmt.Errorf("flow: encode: %w", err)
	}
	return nil
}

// Decode reads a graph in the wire format from r.
func Decode(r io.Reader) (*Graph, error) {
	var g Graph
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return nil, fmt.Errorf("flow: decode: %w", err)
	}
	return &g, nil
}

// EncodeYAML writes g as YAML. The document mirrors the JSON wire format
// and is meant for people reading a flow, not for reloading it.
func EncodeYAML(w io.Writer, g Graph) error {
	b, err := Marshal(g)
	if err != nil {
		return err
	}
	var doc any
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("flow: yaml: %w", err)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("flow: yaml: %w", err)
	}
	return enc.Close()
}

// wire replaces nil slices so the document always carries arrays.
func wire(g Graph) Graph {
	if g.Nodes == nil {
		g.Nodes = []Node{}
	}
	if g.Edges == nil {
		g.Edges = []Edge{}
	}
	return g
}
