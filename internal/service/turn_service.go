package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chat-gateway/internal/domain"
	"chat-gateway/internal/llm"
	"chat-gateway/internal/repository"
)

var (
	// ErrEmptyMessage indica un mensaje entrante sin texto usable; el turno
	// se descarta sin efecto visible.
	ErrEmptyMessage = errors.New("empty message")
	// ErrRateLimited indica que el chat superó el límite de turnos.
	ErrRateLimited = errors.New("rate limited")
	// ErrChannelClosed indica que el canal se cayó a mitad del turno; lo ya
	// persistido queda persistido y nada más se entrega ni se guarda.
	ErrChannelClosed = errors.New("channel closed")
)

// EventRegistry es lo que el orquestador necesita del registro de
// conexiones: entrega best-effort de eventos por chat.
type EventRegistry interface {
	Send(chatID string, ev domain.Event) bool
	IsActive(chatID string) bool
}

// ChatRateLimiter limita la cantidad de turnos por chat en una ventana.
type ChatRateLimiter interface {
	Allow(key string) bool
}

// TurnService orquesta un turno de conversación de punta a punta: persiste
// el mensaje del usuario, consume el stream del LLM fragmento a fragmento,
// persiste la respuesta armada y emite los eventos de ciclo de vida.
type TurnService struct {
	logger   *zap.Logger
	chats    repository.ChatRepository
	messages repository.MessageRepository
	llm      llm.StreamClient
	registry EventRegistry
	limiter  ChatRateLimiter
}

func NewTurnService(
	logger *zap.Logger,
	chats repository.ChatRepository,
	messages repository.MessageRepository,
	llmClient llm.StreamClient,
	registry EventRegistry,
	limiter ChatRateLimiter,
) *TurnService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TurnService{
		logger:   logger,
		chats:    chats,
		messages: messages,
		llm:      llmClient,
		registry: registry,
		limiter:  limiter,
	}
}

// Run ejecuta un turno sincrónico sin emitir eventos (camino REST) y
// devuelve el mensaje del asistente persistido.
func (s *TurnService) Run(ctx context.Context, chatID, userText string) (domain.Message, error) {
	return s.run(ctx, chatID, userText, false)
}

// RunStreaming ejecuta un turno emitiendo eventos al canal registrado del
// chat. Las fallas de entrega nunca se propagan como pánico: un canal
// caído termina el turno con ErrChannelClosed y deja el stream drenado.
func (s *TurnService) RunStreaming(ctx context.Context, chatID, userText string) error {
	_, err := s.run(ctx, chatID, userText, true)
	return err
}

func (s *TurnService) run(ctx context.Context, chatID, userText string, emit bool) (domain.Message, error) {
	userText = strings.TrimSpace(userText)
	if userText == "" {
		return domain.Message{}, ErrEmptyMessage
	}

	chat, err := s.chats.GetOrCreate(ctx, chatID)
	if err != nil {
		return domain.Message{}, fmt.Errorf("get or create chat: %w", err)
	}

	if s.limiter != nil && !s.limiter.Allow(chat.ID) {
		if emit {
			s.emit(chat.ID, domain.NewEvent(domain.EventError, "too many messages, slow down"))
		}
		return domain.Message{}, ErrRateLimited
	}

	// El historial se lee antes de agregar el mensaje nuevo: el proveedor
	// recibe historial y mensaje por separado.
	history, err := s.messages.ListByChatID(ctx, chat.ID)
	if err != nil {
		if emit {
			s.emit(chat.ID, domain.NewEvent(domain.EventError, "could not load history"))
		}
		return domain.Message{}, fmt.Errorf("list messages: %w", err)
	}

	userMsg := domain.Message{
		ID:        uuid.NewString(),
		ChatID:    chat.ID,
		Role:      domain.RoleUser,
		Content:   userText,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.messages.Create(ctx, userMsg); err != nil {
		if emit {
			s.emit(chat.ID, domain.NewEvent(domain.EventError, "could not save message"))
		}
		return domain.Message{}, fmt.Errorf("persist user message: %w", err)
	}

	if emit {
		// Best-effort: el mensaje ya está persistido, una falla de entrega
		// acá no aborta el turno.
		s.emit(chat.ID, domain.NewEvent(domain.EventUserMessage, userText))
		s.emit(chat.ID, domain.NewEvent(domain.EventAIStart, ""))
	}

	fragments, errs := s.llm.StreamChat(ctx, history, userText)

	var reply strings.Builder
	disconnected := false
	for fragment := range fragments {
		reply.WriteString(fragment)
		if emit && !disconnected {
			// Cada fragmento se entrega antes de pedir el siguiente: el
			// canal sin buffer del proveedor hace de backpressure.
			if !s.registry.Send(chat.ID, domain.NewChunkEvent(fragment)) {
				// Canal caído: se sigue drenando el stream sin entregar.
				disconnected = true
			}
		}
	}
	if err := <-errs; err != nil {
		if emit && !disconnected {
			s.emit(chat.ID, domain.NewEvent(domain.EventError, "generation failed: "+err.Error()))
		}
		return domain.Message{}, fmt.Errorf("stream completion: %w", err)
	}
	if disconnected {
		s.logger.Info("turn abandoned, channel gone", zap.String("chat_id", chat.ID))
		return domain.Message{}, ErrChannelClosed
	}

	content := strings.TrimSpace(reply.String())
	if content == "" {
		content = llm.FallbackReply
	}
	assistantMsg := domain.Message{
		ID:        uuid.NewString(),
		ChatID:    chat.ID,
		Role:      domain.RoleAssistant,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.messages.Create(ctx, assistantMsg); err != nil {
		if emit {
			s.emit(chat.ID, domain.NewEvent(domain.EventError, "could not save response"))
		}
		return domain.Message{}, fmt.Errorf("persist assistant message: %w", err)
	}

	if emit {
		s.emit(chat.ID, domain.NewEvent(domain.EventAIComplete, content))
	}

	s.logger.Info("turn completed",
		zap.String("chat_id", chat.ID),
		zap.Int("history_len", len(history)),
		zap.Int("reply_len", len(content)),
	)
	return assistantMsg, nil
}

// emit entrega un evento al canal registrado del chat; best-effort.
func (s *TurnService) emit(chatID string, ev domain.Event) bool {
	if s.registry == nil {
		return false
	}
	return s.registry.Send(chatID, ev)
}
