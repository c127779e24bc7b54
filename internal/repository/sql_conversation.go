package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/taskpilot/internal/db"
	"github.com/alexanderramin/taskpilot/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// SQLConversationRepo implements ConversationRepo on SQLite or PostgreSQL.
type SQLConversationRepo struct {
	db db.DBTX
}

// NewSQLConversationRepo creates a repo over a database or a transaction.
func NewSQLConversationRepo(conn db.DBTX) *SQLConversationRepo {
	return &SQLConversationRepo{db: conn}
}

type messageRow struct {
	SessionID string `db:"session_id"`
	Role      string `db:"role"`
	Content   string `db:"content"`
	CreatedAt string `db:"created_at"`
}

func (r *SQLConversationRepo) AddMessage(ctx context.Context, m *domain.Message) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO messages (id, session_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		uuid.New().String(),
		m.SessionID,
		string(m.Role),
		m.Content,
		formatTime(m.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}
	return nil
}

func (r *SQLConversationRepo) History(ctx context.Context, sessionID string, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		return []domain.Message{}, nil
	}
	query := `SELECT session_id, role, content, created_at FROM messages
		WHERE session_id = ?
		ORDER BY created_at DESC
		LIMIT ?`
	var rows []messageRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, r.db.Rebind(query), sessionID, limit); err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}

	out := make([]domain.Message, len(rows))
	for i, row := range rows {
		out[len(rows)-1-i] = domain.Message{
			SessionID: row.SessionID,
			Role:      domain.MessageRole(row.Role),
			Content:   row.Content,
			CreatedAt: parseTime(row.CreatedAt),
		}
	}
	return out, nil
}

func (r *SQLConversationRepo) SetLastProject(ctx context.Context, sessionID, projectName string, expiresAt time.Time) error {
	query := `INSERT INTO session_refs (session_id, project_name, expires_at) VALUES (?, ?, ?)
		ON CONFLICT (session_id) DO UPDATE SET project_name = excluded.project_name, expires_at = excluded.expires_at`
	_, err := r.db.ExecContext(ctx, r.db.Rebind(query), sessionID, projectName, formatTime(expiresAt))
	if err != nil {
		return fmt.Errorf("storing session reference: %w", err)
	}
	return nil
}

func (r *SQLConversationRepo) LastProject(ctx context.Context, sessionID string, now time.Time) (string, error) {
	var name string
	err := sqlx.GetContext(ctx, r.db, &name,
		r.db.Rebind(`SELECT project_name FROM session_refs WHERE session_id = ? AND expires_at > ?`),
		sessionID, formatTime(now))
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading session reference: %w", err)
	}
	return name, nil
}

func (r *SQLConversationRepo) Clear(ctx context.Context, sessionID string) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM messages WHERE session_id = ?`), sessionID); err != nil {
		return fmt.Errorf("clearing messages: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM session_refs WHERE session_id = ?`), sessionID); err != nil {
		return fmt.Errorf("clearing session reference: %w", err)
	}
	return nil
}
