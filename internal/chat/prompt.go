package chat

import (
	"strings"

	"google.golang.org/genai"
)

// systemInstruction is sent as the first user turn of every conversation.
const systemInstruction = `You are the friendly website assistant for our ministry.
Answer questions about service times, upcoming events, the music ministry, prayer requests and the shop.
Keep answers short, warm and encouraging. When a visitor asks for prayer, invite them to use the Prayer Requests page.
Quote scripture from the King James Version when it helps, and always give the reference.
If you do not know something about the ministry, say so and point the visitor to the Contact page instead of guessing.`

// Turn is one prior message in the conversation.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// buildContents orders the prompt: instruction, history, then the new message.
func buildContents(history []Turn, message string) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history)+2)
	contents = append(contents, genai.NewContentFromText(systemInstruction, genai.RoleUser))
	for _, turn := range history {
		if strings.TrimSpace(turn.Text) == "" {
			continue
		}
		contents = append(contents, genai.NewContentFromText(turn.Text, upstreamRole(turn.Role)))
	}
	contents = append(contents, genai.NewContentFromText(message, genai.RoleUser))
	return contents
}

func upstreamRole(role string) genai.Role {
	if role == RoleAssistant {
		return genai.RoleModel
	}
	return genai.RoleUser
}
