package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chat-gateway/internal/service"
	"chat-gateway/internal/ws"
)

// NewRouter configura el router de Gin con middlewares y rutas. Con
// jwtSvc nil los endpoints REST quedan abiertos; el canal websocket no se
// protege en ningún caso.
func NewRouter(
	logger *zap.Logger,
	chatH *ChatHandler,
	wsH *WSHandler,
	registry *ws.Registry,
	jwtSvc *service.JWTService,
) *gin.Engine {
	r := gin.New()

	r.Use(zapLoggerMiddleware(logger), gin.Recovery())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "chat gateway"})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":             "healthy",
			"active_connections": registry.ActiveCount(),
		})
	})

	api := r.Group("/api")
	api.Use(jsonContentTypeMiddleware())
	if jwtSvc != nil {
		api.Use(JWTAuthMiddleware(jwtSvc))
	}
	api.POST("/chat", chatH.Chat)
	api.GET("/chats", chatH.ListChats)
	api.GET("/chat/:chat_id", chatH.GetChat)
	api.DELETE("/chat/:chat_id", chatH.DeleteChat)

	r.GET("/ws/:chat_id", wsH.Serve)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
