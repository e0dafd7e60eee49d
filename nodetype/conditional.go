package nodetype

import "github.com/meikuraledutech/flow"

func conditionalType() Metadata {
	return Metadata{
		Type:        flow.TypeConditional,
		Title:       "Add condition",
		Description: "Add conditions so the assistant knows what to do in specific situations.",
		Icon:        "mynaui:git-branch",
		Placeable:   true,
		Deletable:   true,
		Default:     &flow.ConditionalData{Condition: nil, Paths: []flow.Path{}},
	}
}

// Condition is a condition definition a conditional node can reference,
// together with the path values an operator may declare under it.
type Condition struct {
	ID    string   `json:"id"`
	Label string   `json:"label"`
	Paths []string `json:"paths"`
}

// Ref returns the reference stored in a conditional node's payload.
func (c Condition) Ref() *flow.ConditionRef {
	return &flow.ConditionRef{ID: c.ID, Label: c.Label}
}

// Catalog is the fixed set of conditions offered by the editor.
type Catalog struct {
	conditions []Condition
}

// NewCatalog returns a catalog holding conds in order.
func NewCatalog(conds ...Condition) *Catalog {
	return &Catalog{conditions: conds}
}

// DefaultCatalog returns the built-in conditions.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		Condition{
			ID:    "return_warranty",
			Label: "Customer asks about returns & warranty",
			Paths: []string{
				"Customer wants to return an item",
				"Customer has a warranty question",
				"Other inquiries",
			},
		},
		Condition{
			ID:    "communication_style",
			Label: "Style and tone of voice",
			Paths: []string{
				"Open a conversation in a specific way",
				"Ask specific questions at the end of a conversation",
				"Use of emojis",
				"Way of communicating",
				"Other communication strategies",
			},
		},
	)
}

// All returns every condition in catalog order.
func (c *Catalog) All() []Condition {
	return append([]Condition(nil), c.conditions...)
}

// Lookup returns the condition with the given id.
func (c *Catalog) Lookup(id string) (Condition, bool) {
	for _, cond := range c.conditions {
		if cond.ID == id {
			return cond, true
		}
	}
	return Condition{}, false
}

// Available returns the path values of condition id not already in used.
func (c *Catalog) Available(id string, used []string) []string {
	cond, ok := c.Lookup(id)
	if !ok {
		return nil
	}
	taken := make(map[string]bool, len(used))
	for _, u := range used {
		taken[u] = true
	}
	var out []string
	for _, v := range cond.Paths {
		if !taken[v] {
			out = append(out, v)
		}
	}
	return out
}
