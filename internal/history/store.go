// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

// Package history persists conversation turns in PostgreSQL so follow-up
// queries in the same thread carry their earlier context to the ranking
// oracle.
package history

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tomtom215/kuchikomi/internal/config"
	"github.com/tomtom215/kuchikomi/internal/logging"
	"github.com/tomtom215/kuchikomi/internal/metrics"
	"github.com/tomtom215/kuchikomi/internal/models"
)

// DefaultTimeout bounds a single history statement.
const DefaultTimeout = 5 * time.Second

// MaxRecent caps how many turns a single read returns.
const MaxRecent = 50

// ErrInvalidTurn is returned when a turn is missing its thread, user, or role.
var ErrInvalidTurn = errors.New("history: invalid turn")

const schemaSQL = `
CREATE TABLE IF NOT EXISTS conversation_turns (
	id         TEXT PRIMARY KEY,
	thread_id  TEXT NOT NULL,
	user_id    TEXT NOT NULL,
	role       TEXT NOT NULL CHECK (role IN ('user', 'assistant')),
	content    TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_conversation_turns_thread
	ON conversation_turns (thread_id, user_id, created_at DESC);`

// querier is the subset of pgxpool.Pool the store uses. pgxmock pools
// satisfy it in tests.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
	Close()
}

// Store reads and appends conversation turns.
type Store struct {
	db      querier
	timeout time.Duration
	now     func() time.Time
}

// New connects to PostgreSQL and ensures the turns table exists.
func New(ctx context.Context, cfg *config.HistoryConfig) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse history dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect history database: %w", err)
	}

	s := newStore(pool, cfg.Timeout)
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logging.Info().
		Str("host", poolCfg.ConnConfig.Host).
		Int32("max_conns", poolCfg.MaxConns).
		Msg("Conversation history store ready")
	return s, nil
}

func newStore(db querier, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Store{db: db, timeout: timeout, now: time.Now}
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Store) migrate(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create conversation_turns: %w", err)
	}
	return nil
}

// Append stores one turn. A blank ID is replaced with a fresh UUID and a
// zero CreatedAt with the current time.
func (s *Store) Append(ctx context.Context, turn models.Turn) (err error) {
	defer func() { metrics.RecordHistoryOperation("append", err) }()

	if strings.TrimSpace(turn.ThreadID) == "" || strings.TrimSpace(turn.UserID) == "" {
		return fmt.Errorf("%w: thread and user are required", ErrInvalidTurn)
	}
	if turn.Role != models.RoleUser && turn.Role != models.RoleAssistant {
		return fmt.Errorf("%w: role %q", ErrInvalidTurn, turn.Role)
	}
	if turn.ID == "" {
		turn.ID = uuid.NewString()
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = s.now().UTC()
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err = s.db.Exec(ctx, `
		INSERT INTO conversation_turns (id, thread_id, user_id, role, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		turn.ID, turn.ThreadID, turn.UserID, turn.Role, turn.Content, turn.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert turn: %w", err)
	}
	return nil
}

// Recent returns up to limit of the newest turns of a thread, oldest first.
func (s *Store) Recent(ctx context.Context, threadID, userID string, limit int) (turns []models.Turn, err error) {
	defer func() { metrics.RecordHistoryOperation("recent", err) }()

	if threadID == "" || userID == "" || limit <= 0 {
		return []models.Turn{}, nil
	}
	if limit > MaxRecent {
		limit = MaxRecent
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.Query(ctx, `
		SELECT id, thread_id, user_id, role, content, created_at
		FROM conversation_turns
		WHERE thread_id = $1 AND user_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3`,
		threadID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	turns = make([]models.Turn, 0, limit)
	for rows.Next() {
		var t models.Turn
		if err := rows.Scan(&t.ID, &t.ThreadID, &t.UserID, &t.Role, &t.Content, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turns: %w", err)
	}

	slices.Reverse(turns)
	return turns, nil
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.db.Ping(ctx)
}

// Close releases the pool.
func (s *Store) Close() {
	s.db.Close()
}
