package ws

import (
	"sync"

	"go.uber.org/zap"

	"chat-gateway/internal/domain"
)

// Channel representa una conexión duplex viva asociada a un chat.
type Channel interface {
	Send(ev domain.Event) error
	Close() error
}

// Registry mantiene a lo sumo un canal vivo por chat. El reemplazo es
// atómico: un Send usa el canal viejo o el nuevo, nunca una referencia
// intermedia.
type Registry struct {
	mu     sync.RWMutex
	chans  map[string]Channel
	logger *zap.Logger
}

func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		chans:  make(map[string]Channel),
		logger: logger,
	}
}

// Register guarda el canal del chat, cerrando y reemplazando cualquier
// canal previo (last-writer-wins).
func (r *Registry) Register(chatID string, ch Channel) {
	r.mu.Lock()
	prev := r.chans[chatID]
	r.chans[chatID] = ch
	r.mu.Unlock()

	if prev != nil {
		_ = prev.Close()
		r.logger.Info("channel replaced", zap.String("chat_id", chatID))
	}
}

// Unregister elimina y cierra el canal del chat si ch es el registrado;
// con ch nil elimina el que esté. El chequeo de identidad evita que una
// conexión reemplazada dé de baja a su sucesora al desconectarse.
func (r *Registry) Unregister(chatID string, ch Channel) {
	r.mu.Lock()
	current, ok := r.chans[chatID]
	if ok && (ch == nil || current == ch) {
		delete(r.chans, chatID)
	} else {
		ok = false
	}
	r.mu.Unlock()

	if ok {
		_ = current.Close()
		r.logger.Info("channel unregistered", zap.String("chat_id", chatID))
	}
}

// Send intenta entregar el evento al canal del chat. Ante cualquier falla
// de transporte da de baja el canal y devuelve false en lugar de propagar
// el error: la entrega es best-effort.
func (r *Registry) Send(chatID string, ev domain.Event) bool {
	r.mu.RLock()
	ch, ok := r.chans[chatID]
	r.mu.RUnlock()

	if !ok {
		return false
	}
	if err := ch.Send(ev); err != nil {
		r.logger.Warn("send failed, dropping channel",
			zap.String("chat_id", chatID),
			zap.String("event", ev.Type),
			zap.Error(err),
		)
		r.Unregister(chatID, ch)
		return false
	}
	return true
}

// IsActive indica si el chat tiene un canal registrado.
func (r *Registry) IsActive(chatID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.chans[chatID]
	return ok
}

// ActiveCount devuelve la cantidad de canales vivos.
func (r *Registry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.chans)
}
