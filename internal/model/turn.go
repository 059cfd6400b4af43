package model

// Turn is one message in a conversation thread. Turns are immutable once
// appended; insertion order forms the transcript fed back to the generator.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Turn role constants.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
