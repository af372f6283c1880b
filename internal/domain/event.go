package domain

import "time"

// Tipos de eventos salientes del canal de streaming.
const (
	EventUserMessage = "user_message"
	EventAIStart     = "ai_start"
	EventAIChunk     = "ai_chunk"
	EventAIComplete  = "ai_complete"
	EventError       = "error"
)

// Event es un frame saliente del canal websocket. Message se omite en los
// frames de tipo ai_chunk; Chunk se omite en el resto.
type Event struct {
	Type      string  `json:"type"`
	Message   *string `json:"message,omitempty"`
	Chunk     string  `json:"chunk,omitempty"`
	Timestamp string  `json:"timestamp"`
}

// NewEvent construye un frame con message y timestamp ISO-8601.
func NewEvent(eventType, message string) Event {
	return Event{
		Type:      eventType,
		Message:   &message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// NewChunkEvent construye un frame ai_chunk con un fragmento de respuesta.
func NewChunkEvent(chunk string) Event {
	return Event{
		Type:      EventAIChunk,
		Chunk:     chunk,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
