package nodetype

import "github.com/meikuraledutech/flow"

func endType() Metadata {
	return Metadata{
		Type:        flow.TypeEnd,
		Title:       "End",
		Description: "End the chatbot flow",
		Icon:        "mynaui:stop",
		Placeable:   false,
		Deletable:   false,
		Default:     &flow.EndData{Label: "End"},
	}
}
