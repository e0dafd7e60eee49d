package nodetype

import "github.com/meikuraledutech/flow"

// ChannelSMS is the default instruction channel.
const ChannelSMS = "sms"

// Channel is a messaging channel an instruction can target.
type Channel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// Channels lists the supported instruction channels.
func Channels() []Channel {
	return []Channel{
		{ID: ChannelSMS, Name: "Instruction", Icon: "mynaui:chat-messages"},
	}
}

func instructionType() Metadata {
	return Metadata{
		Type:          flow.TypeInstruction,
		Title:         "Instruction",
		Description:   "Send a text message to the user using different messaging platforms like WhatsApp, Messenger, etc.",
		Icon:          "mynaui:chat",
		Placeable:     true,
		Deletable:     true,
		Default:       &flow.InstructionData{Channel: ChannelSMS, Message: ""},
		PropertyPanel: "text-message",
	}
}
