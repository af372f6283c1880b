package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"chat-gateway/internal/repository"
	"chat-gateway/internal/service"
	"chat-gateway/internal/ws"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler maneja el canal de streaming por chat.
type WSHandler struct {
	logger   *zap.Logger
	registry *ws.Registry
	chats    repository.ChatRepository
	turns    *service.TurnService
}

func NewWSHandler(
	logger *zap.Logger,
	registry *ws.Registry,
	chats repository.ChatRepository,
	turns *service.TurnService,
) *WSHandler {
	return &WSHandler{
		logger:   logger,
		registry: registry,
		chats:    chats,
		turns:    turns,
	}
}

// Serve maneja GET /ws/:chat_id. Los mensajes entrantes se procesan en
// estricto orden: un turno llega a estado terminal antes de leer el
// siguiente frame.
func (h *WSHandler) Serve(c *gin.Context) {
	chatID := strings.TrimSpace(c.Param("chat_id"))
	if chatID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "chat_id is required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	channel := ws.NewConn(conn)
	h.registry.Register(chatID, channel)
	defer h.registry.Unregister(chatID, channel)

	h.logger.Info("websocket connected", zap.String("chat_id", chatID))

	// El chat se materializa al conectar, no recién en el primer mensaje.
	if _, err := h.chats.GetOrCreate(c.Request.Context(), chatID); err != nil {
		h.logger.Error("ensure chat failed", zap.Error(err), zap.String("chat_id", chatID))
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			h.logger.Info("websocket disconnected",
				zap.String("chat_id", chatID),
				zap.String("reason", err.Error()),
			)
			return
		}

		// Frames malformados o sin texto usable se descartan en silencio.
		var frame struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(data, &frame); err != nil {
			continue
		}
		if strings.TrimSpace(frame.Message) == "" {
			continue
		}

		if err := h.turns.RunStreaming(c.Request.Context(), chatID, frame.Message); err != nil {
			if errors.Is(err, service.ErrChannelClosed) {
				return
			}
			// El turno quedó en Errored; el próximo mensaje arranca uno nuevo.
			h.logger.Warn("turn failed",
				zap.String("chat_id", chatID),
				zap.Error(err),
			)
		}
	}
}
