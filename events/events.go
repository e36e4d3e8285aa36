// Package events defines the events emitted by the import pipeline.
package events

import (
	"context"
	"strconv"
	"time"

	"github.com/etnz/accounts"
	"github.com/google/uuid"
)

// TopicImportCompleted is the topic ImportCompleted events are published on.
const TopicImportCompleted = "import_completed"

// ImportCompleted is emitted after every import batch.
type ImportCompleted struct {
	EventID    string    `json:"event_id"`
	UserID     int       `json:"user_id"`
	AccountID  int       `json:"account_id"`
	Imported   int       `json:"imported"`
	Failed     int       `json:"failed"`
	Conflicts  int       `json:"conflicts"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher sends events to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, key string, event any) error
}

// Notifier adapts a Publisher to accounts.Notifier.
type Notifier struct {
	Publisher Publisher
}

// ImportCompleted implements accounts.Notifier.
func (n Notifier) ImportCompleted(ctx context.Context, account accounts.Account, result accounts.ImportResult, at time.Time) error {
	ev := ImportCompleted{
		EventID:    uuid.New().String(),
		UserID:     account.UserID,
		AccountID:  account.ID,
		Imported:   result.Imported,
		Failed:     result.Failed,
		Conflicts:  len(result.Conflicts),
		OccurredAt: at,
	}
	// keyed by account so that the events of an account stay ordered.
	return n.Publisher.Publish(ctx, TopicImportCompleted, strconv.Itoa(account.ID), ev)
}

var _ accounts.Notifier = Notifier{}
