package flow

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Payload is the variant-specific data of a node. It is implemented only by
// StartData, EndData, ConditionalData and InstructionData.
type Payload interface {
	// Kind returns the node type this payload belongs to.
	Kind() NodeType
	// Clone returns a deep copy that shares no memory with the receiver.
	Clone() Payload

	isPayload()
}

// StartData is the payload of the single entry node.
type StartData struct {
	Label string `json:"label"`
}

// EndData is the payload of the single termination node.
type EndData struct {
	Label string `json:"label"`
}

// ConditionRef points at a condition definition in the condition catalog.
type ConditionRef struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Path is a labeled branch of a conditional node. Its ID doubles as the
// handle of the path's output port.
type Path struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// ConditionalData is the payload of a branching node.
type ConditionalData struct {
	Condition *ConditionRef `json:"condition"`
	Paths     []Path        `json:"paths"`
}

// InstructionData is the payload of a message step.
type InstructionData struct {
	Channel string `json:"channel"`
	Message string `json:"message"`
}

func (*StartData) Kind() NodeType       { return TypeStart }
func (*EndData) Kind() NodeType         { return TypeEnd }
func (*ConditionalData) Kind() NodeType { return TypeConditional }
func (*InstructionData) Kind() NodeType { return TypeInstruction }

func (*StartData) isPayload()       {}
func (*EndData) isPayload()         {}
func (*ConditionalData) isPayload() {}
func (*InstructionData) isPayload() {}

func (d *StartData) Clone() Payload { c := *d; return &c }
func (d *EndData) Clone() Payload   { c := *d; return &c }

func (d *InstructionData) Clone() Payload { c := *d; return &c }

func (d *ConditionalData) Clone() Payload {
	c := &ConditionalData{}
	if d.Condition != nil {
		ref := *d.Condition
		c.Condition = &ref
	}
	if d.Paths != nil {
		c.Paths = append(make([]Path, 0, len(d.Paths)), d.Paths...)
	}
	return c
}

// PathIndex returns the index of the path with the given id, or -1.
func (d *ConditionalData) PathIndex(id string) int {
	for i, p := range d.Paths {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// NewPayload returns a zero payload of the variant owned by t.
func NewPayload(t NodeType) (Payload, error) {
	switch t {
	case TypeStart:
		return &StartData{}, nil
	case TypeEnd:
		return &EndData{}, nil
	case TypeConditional:
		return &ConditionalData{}, nil
	case TypeInstruction:
		return &InstructionData{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
}

// DecodePayload decodes raw JSON into the variant owned by t.
func DecodePayload(t NodeType, raw []byte) (Payload, error) {
	p, err := NewPayload(t)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return p, nil
	}
	if err := json.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("flow: decode %s data: %w", t, err)
	}
	return p, nil
}

// Patch is a shallow set of payload fields keyed by their JSON name.
type Patch map[string]any

// structuralKeys may only change through dedicated editor operations,
// because changing them adds or removes ports.
var structuralKeys = map[string]bool{
	"paths":     true,
	"condition": true,
}

// MergePayload shallow-merges patch into a copy of p. The variant never
// changes; keys the variant does not own, or structural keys, are rejected.
func MergePayload(p Payload, patch Patch) (Payload, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("flow: encode %s data: %w", p.Kind(), err)
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("flow: encode %s data: %w", p.Kind(), err)
	}

	for key, value := range patch {
		if structuralKeys[key] {
			return nil, fmt.Errorf("%w: %q is structural", ErrInvalidPatch, key)
		}
		if _, ok := fields[key]; !ok {
			return nil, fmt.Errorf("%w: %s has no field %q", ErrInvalidPatch, p.Kind(), key)
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPatch, key, err)
		}
		fields[key] = encoded
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("flow: encode %s data: %w", p.Kind(), err)
	}
	out, err := DecodePayload(p.Kind(), merged)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	return out, nil
}
