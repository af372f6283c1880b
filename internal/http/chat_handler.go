package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chat-gateway/internal/repository"
	"chat-gateway/internal/service"
)

// ChatHandler expone los endpoints REST del gateway.
type ChatHandler struct {
	logger   *zap.Logger
	chats    repository.ChatRepository
	messages repository.MessageRepository
	turns    *service.TurnService
}

// NewChatHandler crea una instancia de ChatHandler con dependencias necesarias.
func NewChatHandler(
	logger *zap.Logger,
	chats repository.ChatRepository,
	messages repository.MessageRepository,
	turns *service.TurnService,
) *ChatHandler {
	return &ChatHandler{
		logger:   logger,
		chats:    chats,
		messages: messages,
		turns:    turns,
	}
}

// Chat maneja POST /api/chat: ejecuta exactamente un turno sincrónico y
// responde con el mensaje completo del asistente.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req struct {
		Message string `json:"message" binding:"required"`
		ChatID  string `json:"chat_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid chat request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"detail": "message is required"})
		return
	}

	msg, err := h.turns.Run(c.Request.Context(), req.ChatID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyMessage):
			c.JSON(http.StatusBadRequest, gin.H{"detail": "message is required"})
		case errors.Is(err, service.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"detail": "too many messages"})
		default:
			h.logger.Error("chat turn failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   msg.Content,
		"chat_id":   msg.ChatID,
		"timestamp": msg.CreatedAt.Format(time.RFC3339),
	})
}

// ListChats maneja GET /api/chats.
func (h *ChatHandler) ListChats(c *gin.Context) {
	summaries, err := h.chats.ListSummaries(c.Request.Context())
	if err != nil {
		h.logger.Error("list chats failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "could not list chats"})
		return
	}
	c.JSON(http.StatusOK, summaries)
}

// GetChat maneja GET /api/chat/:chat_id.
func (h *ChatHandler) GetChat(c *gin.Context) {
	chatID := c.Param("chat_id")

	messages, err := h.messages.ListByChatID(c.Request.Context(), chatID)
	if err != nil {
		h.logger.Error("get chat failed", zap.Error(err), zap.String("chat_id", chatID))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "could not load chat"})
		return
	}
	if len(messages) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Chat not found"})
		return
	}

	out := make([]gin.H, 0, len(messages))
	for _, m := range messages {
		out = append(out, gin.H{
			"id":        m.ID,
			"role":      m.Role,
			"content":   m.Content,
			"timestamp": m.CreatedAt.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, gin.H{"chat_id": chatID, "messages": out})
}

// DeleteChat maneja DELETE /api/chat/:chat_id. Idempotente: borrar un chat
// inexistente también responde 200.
func (h *ChatHandler) DeleteChat(c *gin.Context) {
	chatID := c.Param("chat_id")

	if err := h.chats.Delete(c.Request.Context(), chatID); err != nil {
		h.logger.Error("delete chat failed", zap.Error(err), zap.String("chat_id", chatID))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "could not delete chat"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Chat deleted"})
}
