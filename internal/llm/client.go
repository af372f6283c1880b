package llm

import (
	"context"
	"errors"

	"chat-gateway/internal/domain"
)

// ErrProvider envuelve cualquier falla del backend de generación: timeout,
// auth, rate limit o respuesta malformada.
var ErrProvider = errors.New("llm provider error")

// FallbackReply se emite cuando el backend no devuelve contenido, para que
// la persistencia nunca vea una respuesta vacía.
const FallbackReply = "I'm not sure how to respond to that."

// StreamClient define la interfaz para generar respuestas en streaming.
// El canal de fragmentos es finito y no reiniciable: se consume una sola
// vez y se cierra al terminar. El canal de errores entrega a lo sumo un
// error y también se cierra al terminar.
type StreamClient interface {
	StreamChat(ctx context.Context, history []domain.Message, userMessage string) (<-chan string, <-chan error)
}
