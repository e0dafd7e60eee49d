package nodetype

import "github.com/meikuraledutech/flow"

func startType() Metadata {
	return Metadata{
		Type:        flow.TypeStart,
		Title:       "Start",
		Description: "Start the chatbot flow",
		Icon:        "mynaui:play",
		Placeable:   false,
		Deletable:   false,
		Default:     &flow.StartData{Label: "Start"},
	}
}
