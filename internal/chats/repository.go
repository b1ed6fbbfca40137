package chats

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hermes-renovation/hermes/internal/shared"
)

// Repository defines persistence operations for chat sessions and messages.
type Repository interface {
	CreateSession(ctx context.Context, session *Session) (*Session, error)
	GetSession(ctx context.Context, id int64) (*Session, error)
	ListSessions(ctx context.Context, ownerID int64, page, perPage int) ([]Session, int, error)
	UpdateSession(ctx context.Context, session *Session) (*Session, error)
	DeleteSession(ctx context.Context, id int64) error
	AddMessage(ctx context.Context, msg *Message) (*Message, error)
	ListMessages(ctx context.Context, sessionID int64) ([]Message, error)
}

// PGRepository provides PostgreSQL backed persistence.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func scanSession(row pgx.Row) (*Session, error) {
	var s Session
	err := row.Scan(&s.ID, &s.UserID, &s.Title, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// CreateSession opens a new conversation.
func (r *PGRepository) CreateSession(ctx context.Context, session *Session) (*Session, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO chat_sessions (user_id, title)
		 VALUES ($1, $2)
		 RETURNING id, user_id, title, created_at, updated_at`,
		session.UserID, session.Title)
	return scanSession(row)
}

// GetSession loads one session.
func (r *PGRepository) GetSession(ctx context.Context, id int64) (*Session, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`SELECT id, user_id, title, created_at, updated_at FROM chat_sessions WHERE id = $1`, id))
}

// ListSessions returns sessions scoped to their owner, most recent first.
func (r *PGRepository) ListSessions(ctx context.Context, ownerID int64, page, perPage int) ([]Session, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM chat_sessions WHERE ($1 = 0 OR user_id = $1)`, ownerID).Scan(&total); err != nil {
		return nil, 0, err
	}

	if perPage <= 0 {
		perPage = 20
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, title, created_at, updated_at
		 FROM chat_sessions WHERE ($1 = 0 OR user_id = $1)
		 ORDER BY updated_at DESC LIMIT $2 OFFSET $3`,
		ownerID, perPage, shared.Offset(page, perPage))
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, 0, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, total, rows.Err()
}

// UpdateSession renames a session.
func (r *PGRepository) UpdateSession(ctx context.Context, session *Session) (*Session, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE chat_sessions SET title = $2, updated_at = NOW() WHERE id = $1`,
		session.ID, session.Title)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, shared.ErrNotFound
	}
	return r.GetSession(ctx, session.ID)
}

// DeleteSession removes a session; its messages cascade.
func (r *PGRepository) DeleteSession(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM chat_sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// AddMessage appends a message and touches the session timestamp.
func (r *PGRepository) AddMessage(ctx context.Context, msg *Message) (*Message, error) {
	var out Message
	err := r.pool.QueryRow(ctx,
		`INSERT INTO chat_messages (session_id, role, text, image_url)
		 VALUES ($1, $2, $3, NULLIF($4, ''))
		 RETURNING id, session_id, role, text, COALESCE(image_url, ''), created_at`,
		msg.SessionID, msg.Role, msg.Text, msg.ImageURL).Scan(
		&out.ID, &out.SessionID, &out.Role, &out.Text, &out.ImageURL, &out.CreatedAt)
	if err != nil {
		return nil, err
	}
	_, err = r.pool.Exec(ctx, `UPDATE chat_sessions SET updated_at = NOW() WHERE id = $1`, msg.SessionID)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListMessages returns a session's messages in conversation order.
func (r *PGRepository) ListMessages(ctx context.Context, sessionID int64) ([]Message, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, session_id, role, text, COALESCE(image_url, ''), created_at
		 FROM chat_messages WHERE session_id = $1 ORDER BY created_at, id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Text, &m.ImageURL, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
