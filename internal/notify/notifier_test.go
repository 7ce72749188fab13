package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/contract-workflow/internal/model"
)

type captureStore struct {
	rows []model.Notification
	err  error
}

func (s *captureStore) InsertNotification(_ context.Context, n model.Notification) error {
	if s.err != nil {
		return s.err
	}
	s.rows = append(s.rows, n)
	return nil
}

func TestSendPersistsRow(t *testing.T) {
	store := &captureStore{}
	notifier := New(store, nil, "notifications.contracts", zerolog.Nop())

	userID := uuid.New()
	notifier.Send(context.Background(), userID, "Contract \"X\" awaits your review")

	if len(store.rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(store.rows))
	}
	if store.rows[0].UserID != userID {
		t.Errorf("user id = %s, want %s", store.rows[0].UserID, userID)
	}
	if store.rows[0].Message == "" {
		t.Error("empty message")
	}
}

func TestSendSwallowsStoreFailure(t *testing.T) {
	store := &captureStore{err: errors.New("db down")}
	notifier := New(store, nil, "notifications.contracts", zerolog.Nop())

	// Must not panic or propagate anything.
	notifier.Send(context.Background(), uuid.New(), "hello")
}
