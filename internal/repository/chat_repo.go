package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"chat-gateway/internal/domain"
)

type ChatRepository interface {
	GetOrCreate(ctx context.Context, id string) (domain.Chat, error)
	ListSummaries(ctx context.Context) ([]domain.ChatSummary, error)
	Delete(ctx context.Context, id string) error
}

type PgChatRepository struct {
	pool *pgxpool.Pool
}

func NewPgChatRepository(pool *pgxpool.Pool) *PgChatRepository {
	return &PgChatRepository{pool: pool}
}

// GetOrCreate devuelve el chat con el id dado, creándolo si no existe.
// Con id vacío genera uno nuevo. El upsert hace la creación segura frente
// a primeros mensajes concurrentes sobre el mismo id.
func (r *PgChatRepository) GetOrCreate(ctx context.Context, id string) (domain.Chat, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		id = uuid.NewString()
	}

	const insert = `
		INSERT INTO chats (id, created_at)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := r.pool.Exec(ctx, insert, id, time.Now().UTC()); err != nil {
		return domain.Chat{}, err
	}

	const query = `
		SELECT id, created_at
		FROM chats
		WHERE id = $1
	`
	var chat domain.Chat
	err := r.pool.QueryRow(ctx, query, id).Scan(&chat.ID, &chat.CreatedAt)
	return chat, err
}

// ListSummaries devuelve los chats más recientes primero, con el último
// mensaje y la cantidad total de mensajes de cada uno.
func (r *PgChatRepository) ListSummaries(ctx context.Context) ([]domain.ChatSummary, error) {
	const query = `
		SELECT c.id,
		       c.created_at,
		       (SELECT m.content FROM messages m WHERE m.chat_id = c.id ORDER BY m.created_at DESC LIMIT 1),
		       (SELECT COUNT(*) FROM messages m WHERE m.chat_id = c.id)
		FROM chats c
		ORDER BY c.created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []domain.ChatSummary{}
	for rows.Next() {
		var s domain.ChatSummary
		if err := rows.Scan(&s.ChatID, &s.CreatedAt, &s.LastMessage, &s.MessageCount); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

// Delete elimina el chat y sus mensajes (cascade). Idempotente: no falla
// si el chat ya no existe.
func (r *PgChatRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM chats WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}
