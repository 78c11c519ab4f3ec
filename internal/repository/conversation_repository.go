package repository

import (
	"context"
	"fmt"
	"time"

	"coinsight/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// ConversationRepository persists per-chat advisor dialogue so prompts can
// carry recent history across restarts.
type ConversationRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewConversationRepository(pool PgxPool, tracer trace.Tracer) *ConversationRepository {
	return &ConversationRepository{pool: pool, tracer: tracer}
}

// AppendMessage records one message for a chat. Role is "user" or "assistant".
func (r *ConversationRepository) AppendMessage(ctx context.Context, chatID int64, role, content string) error {
	_, span := r.tracer.Start(ctx, "conversation-repo.append-message")
	defer span.End()

	if _, err := r.pool.Exec(ctx,
		`INSERT INTO conversation_messages (chat_id, role, content) VALUES ($1, $2, $3)`,
		chatID, role, content,
	); err != nil {
		return fmt.Errorf("append conversation message: %w", err)
	}
	return nil
}

// RecentMessages returns up to limit messages for a chat, oldest first.
// The inner query selects the newest rows, the outer one restores
// chronological order for prompt building.
func (r *ConversationRepository) RecentMessages(ctx context.Context, chatID int64, limit int) ([]domain.ConversationMessage, error) {
	_, span := r.tracer.Start(ctx, "conversation-repo.recent-messages")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT role, content, created_at FROM (
			SELECT role, content, created_at
			FROM conversation_messages
			WHERE chat_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		 ) recent
		 ORDER BY created_at ASC`,
		chatID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query conversation messages: %w", err)
	}
	defer rows.Close()

	var history []domain.ConversationMessage
	for rows.Next() {
		var msg domain.ConversationMessage
		var at time.Time
		if err := rows.Scan(&msg.Role, &msg.Content, &at); err != nil {
			return nil, fmt.Errorf("scan conversation message: %w", err)
		}
		msg.CreatedAt = at.UTC()
		history = append(history, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return history, nil
}
