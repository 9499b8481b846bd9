package vault

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/tabvault/tabvault/internal/types"
)

// AddSession persists a session and its items in one transaction. An empty
// ID is assigned a ULID, so IDs sort by creation time as a tie-break.
func (s *Store) AddSession(ctx context.Context, session *types.Session) error {
	if session.ID == "" {
		id, err := newULID()
		if err != nil {
			return fmt.Errorf("vault: generate session id: %w", err)
		}
		session.ID = id
	}
	if session.CreatedAt == 0 {
		session.CreatedAt = time.Now().UnixMilli()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("vault: begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, title, created_at, skipped_count) VALUES (?, ?, ?, ?)`,
		session.ID, session.Title, session.CreatedAt, session.SkippedCount)
	if err != nil {
		return fmt.Errorf("vault: insert session: %w", err)
	}

	for position, item := range session.Items {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO session_items (session_id, position, title, url, fav_icon_ref) VALUES (?, ?, ?, ?, ?)`,
			session.ID, position, item.Title, item.URL, item.FavIconRef)
		if err != nil {
			return fmt.Errorf("vault: insert item %d: %w", position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("vault: commit session: %w", err)
	}
	return nil
}

// ListSessions returns summaries of all sessions, newest first.
func (s *Store) ListSessions(ctx context.Context) ([]types.SessionSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.title, s.created_at, s.skipped_count, COUNT(i.url)
		FROM sessions s
		LEFT JOIN session_items i ON i.session_id = s.id
		GROUP BY s.id
		ORDER BY s.created_at DESC, s.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("vault: list sessions: %w", err)
	}
	defer rows.Close()

	summaries := make([]types.SessionSummary, 0)
	for rows.Next() {
		var sum types.SessionSummary
		if err := rows.Scan(&sum.ID, &sum.Title, &sum.CreatedAt, &sum.SkippedCount, &sum.ItemCount); err != nil {
			return nil, fmt.Errorf("vault: scan session: %w", err)
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// GetSession loads one session with its items in capture order.
func (s *Store) GetSession(ctx context.Context, id string) (*types.Session, error) {
	session := &types.Session{Items: []types.TabItem{}}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, created_at, skipped_count FROM sessions WHERE id = ?`, id).
		Scan(&session.ID, &session.Title, &session.CreatedAt, &session.SkippedCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.NewError(types.CodeSessionNotFound, fmt.Sprintf("session %s not found", id), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("vault: get session: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT title, url, fav_icon_ref FROM session_items WHERE session_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("vault: get items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item types.TabItem
		if err := rows.Scan(&item.Title, &item.URL, &item.FavIconRef); err != nil {
			return nil, fmt.Errorf("vault: scan item: %w", err)
		}
		session.Items = append(session.Items, item)
	}
	return session, rows.Err()
}

// RenameSession updates a session's title. Items are immutable.
func (s *Store) RenameSession(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return types.NewError(types.CodeValidation, "title must not be empty", nil)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE sessions SET title = ? WHERE id = ?`, title, id)
	if err != nil {
		return fmt.Errorf("vault: rename session: %w", err)
	}
	return s.requireRow(res, id)
}

// DeleteSession removes a session and, via cascade, its items.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("vault: delete session: %w", err)
	}
	return s.requireRow(res, id)
}

func (s *Store) requireRow(res sql.Result, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("vault: rows affected: %w", err)
	}
	if affected == 0 {
		return types.NewError(types.CodeSessionNotFound, fmt.Sprintf("session %s not found", id), nil)
	}
	return nil
}

func newULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
