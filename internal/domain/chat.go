package domain

import "time"

// Roles de los participantes de una conversación.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Chat struct {
	ID        string    `json:"chat_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatSummary resume un chat para el listado de conversaciones.
type ChatSummary struct {
	ChatID       string    `json:"chat_id"`
	CreatedAt    time.Time `json:"created_at"`
	LastMessage  *string   `json:"last_message"`
	MessageCount int       `json:"message_count"`
}

type Message struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chat_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
