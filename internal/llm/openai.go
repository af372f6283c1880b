package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"chat-gateway/internal/domain"
)

const defaultHistoryLimit = 10

// OpenAIClient implementa StreamClient contra una API compatible con
// OpenAI usando chat completions en streaming.
type OpenAIClient struct {
	client       *openai.Client
	model        string
	historyLimit int
	timeout      time.Duration
	logger       *zap.Logger
}

// NewOpenAIClient construye un cliente de streaming apuntando a la API de
// chat completions.
func NewOpenAIClient(baseURL, apiKey, model string, historyLimit int, timeout time.Duration, logger *zap.Logger) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if historyLimit <= 0 {
		historyLimit = defaultHistoryLimit
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenAIClient{
		client:       openai.NewClientWithConfig(cfg),
		model:        model,
		historyLimit: historyLimit,
		timeout:      timeout,
		logger:       logger,
	}
}

func (c *OpenAIClient) StreamChat(ctx context.Context, history []domain.Message, userMessage string) (<-chan string, <-chan error) {
	fragments := make(chan string)
	errs := make(chan error, 1)

	go func() {
		defer close(errs)
		defer close(fragments)

		ctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		req := openai.ChatCompletionRequest{
			Model:    c.model,
			Messages: buildMessages(history, userMessage, c.historyLimit),
			Stream:   true,
		}

		stream, err := c.client.CreateChatCompletionStream(ctx, req)
		if err != nil {
			c.logger.Warn("llm stream open failed", zap.Error(err))
			errs <- fmt.Errorf("%w: %v", ErrProvider, err)
			return
		}
		defer stream.Close()

		yielded := false
		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				c.logger.Warn("llm stream recv failed", zap.Error(err))
				errs <- fmt.Errorf("%w: %v", ErrProvider, err)
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			chunk := resp.Choices[0].Delta.Content
			if chunk == "" {
				continue
			}

			select {
			case fragments <- chunk:
				yielded = true
			case <-ctx.Done():
				errs <- fmt.Errorf("%w: %v", ErrProvider, ctx.Err())
				return
			}
		}

		if !yielded {
			select {
			case fragments <- FallbackReply:
			case <-ctx.Done():
			}
		}
	}()

	return fragments, errs
}

// buildMessages recorta el historial a los últimos limit mensajes (los más
// viejos se descartan primero) y agrega el mensaje nuevo al final. El
// mensaje nuevo nunca se descarta.
func buildMessages(history []domain.Message, userMessage string, limit int) []openai.ChatCompletionMessage {
	if len(history) > limit {
		history = history[len(history)-limit:]
	}

	out := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == domain.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: userMessage})
	return out
}
