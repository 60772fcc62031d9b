// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"

	"github.com/tomtom215/kuchikomi/internal/models"
)

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(mock.Close)

	s := newStore(mock, time.Second)
	s.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return s, mock
}

func TestStore_Migrate(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS conversation_turns").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	if err := s.migrate(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestStore_Append(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO conversation_turns").
		WithArgs(pgxmock.AnyArg(), "thread-1", "user-1", models.RoleUser, "ramen in shibuya",
			time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.Append(context.Background(), models.Turn{
		ThreadID: "thread-1",
		UserID:   "user-1",
		Role:     models.RoleUser,
		Content:  "ramen in shibuya",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestStore_AppendInvalid(t *testing.T) {
	s, mock := newMockStore(t)

	tests := []struct {
		name string
		turn models.Turn
	}{
		{"missing thread", models.Turn{UserID: "u", Role: models.RoleUser}},
		{"missing user", models.Turn{ThreadID: "t", Role: models.RoleUser}},
		{"bad role", models.Turn{ThreadID: "t", UserID: "u", Role: "system"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Append(context.Background(), tt.turn)
			if !errors.Is(err, ErrInvalidTurn) {
				t.Errorf("expected ErrInvalidTurn, got %v", err)
			}
		})
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("no statements expected: %v", err)
	}
}

func TestStore_AppendError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO conversation_turns").
		WillReturnError(errors.New("connection reset"))

	err := s.Append(context.Background(), models.Turn{ThreadID: "t", UserID: "u", Role: models.RoleAssistant})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestStore_RecentOldestFirst(t *testing.T) {
	s, mock := newMockStore(t)

	t1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)
	rows := pgxmock.NewRows([]string{"id", "thread_id", "user_id", "role", "content", "created_at"}).
		AddRow("b", "thread-1", "user-1", models.RoleAssistant, "try Ichiran", t2).
		AddRow("a", "thread-1", "user-1", models.RoleUser, "ramen", t1)

	mock.ExpectQuery("SELECT (.+) FROM conversation_turns").
		WithArgs("thread-1", "user-1", 10).
		WillReturnRows(rows)

	turns, err := s.Recent(context.Background(), "thread-1", "user-1", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].ID != "a" || turns[1].ID != "b" {
		t.Errorf("expected oldest first, got %s,%s", turns[0].ID, turns[1].ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestStore_RecentLimit(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT (.+) FROM conversation_turns").
		WithArgs("t", "u", MaxRecent).
		WillReturnRows(pgxmock.NewRows([]string{"id", "thread_id", "user_id", "role", "content", "created_at"}))

	turns, err := s.Recent(context.Background(), "t", "u", 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if turns == nil || len(turns) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", turns)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestStore_RecentNoThread(t *testing.T) {
	s, _ := newMockStore(t)

	turns, err := s.Recent(context.Background(), "", "u", 10)
	if err != nil || len(turns) != 0 {
		t.Errorf("expected empty result, got %v, %v", turns, err)
	}
}
