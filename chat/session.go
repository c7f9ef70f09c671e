package chat

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// previewLimit caps session previews at 40 runes of the first user message.
const previewLimit = 40

// defaultPreview labels a session created before its first message.
const defaultPreview = "New chat"

// Message represents one turn in a conversation. A user message is created
// complete and never changes. An assistant message starts empty with
// IsStreaming true, accumulates thoughts and content while its exchange is
// in flight, and becomes immutable once IsStreaming is cleared.
type Message struct {
	ID          string   `json:"id"`
	Role        string   `json:"role"`
	Content     string   `json:"content"`
	Thoughts    Thoughts `json:"thoughts"`
	IsStreaming bool     `json:"isStreaming"`
}

// Session is a persisted conversation thread.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Preview   string    `json:"preview"`
	Messages  []Message `json:"messages"`
}

func newSession(preview string) Session {
	return Session{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
		Preview:   preview,
		Messages:  []Message{},
	}
}

func newUserMessage(text string) Message {
	return Message{
		ID:      uuid.New().String(),
		Role:    RoleUser,
		Content: text,
	}
}

func newAssistantMessage() Message {
	return Message{
		ID:          uuid.New().String(),
		Role:        RoleAssistant,
		IsStreaming: true,
	}
}

func truncatePreview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLimit {
		return text
	}
	return string(runes[:previewLimit])
}
