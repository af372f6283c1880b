package llm

import (
	"context"

	"chat-gateway/internal/domain"
)

// MockStreamClient permite tests sin llamar a un LLM real. Emite los
// fragmentos en orden; con Err configurado falla después de FailAfter
// fragmentos.
type MockStreamClient struct {
	Fragments []string
	Err       error
	FailAfter int

	LastHistory []domain.Message
	LastMessage string
}

func (m *MockStreamClient) StreamChat(_ context.Context, history []domain.Message, userMessage string) (<-chan string, <-chan error) {
	m.LastHistory = history
	m.LastMessage = userMessage

	fragments := make(chan string)
	errs := make(chan error, 1)

	go func() {
		defer close(errs)
		defer close(fragments)

		for i, frag := range m.Fragments {
			if m.Err != nil && i == m.FailAfter {
				errs <- m.Err
				return
			}
			fragments <- frag
		}
		if m.Err != nil && m.FailAfter >= len(m.Fragments) {
			errs <- m.Err
		}
	}()

	return fragments, errs
}
