package events

import (
	"context"
	"testing"
	"time"

	"github.com/etnz/accounts"
	"github.com/google/uuid"
)

type recorder struct {
	topics []string
	keys   []string
	events []any
}

func (r *recorder) Publish(_ context.Context, topic, key string, event any) error {
	r.topics = append(r.topics, topic)
	r.keys = append(r.keys, key)
	r.events = append(r.events, event)
	return nil
}

func TestNotifier(t *testing.T) {
	rec := new(recorder)
	n := Notifier{Publisher: rec}
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	account := accounts.Account{UserID: 3, ID: 5}
	result := accounts.ImportResult{AccountID: 5, Imported: 2, Failed: 1, Conflicts: make([]accounts.Conflict, 4)}

	for range 2 {
		if err := n.ImportCompleted(context.Background(), account, result, at); err != nil {
			t.Fatalf("ImportCompleted() returned unexpected error: %v", err)
		}
	}
	if len(rec.events) != 2 || rec.topics[0] != TopicImportCompleted {
		t.Fatalf("published %v on %v", rec.events, rec.topics)
	}
	ev := rec.events[0].(ImportCompleted)
	if ev.AccountID != 5 || ev.UserID != 3 || ev.Imported != 2 || ev.Failed != 1 || ev.Conflicts != 4 || !ev.OccurredAt.Equal(at) {
		t.Errorf("event = %+v", ev)
	}
	if _, err := uuid.Parse(ev.EventID); err != nil {
		t.Errorf("EventID %q is not a uuid: %v", ev.EventID, err)
	}
	if ev.EventID == rec.events[1].(ImportCompleted).EventID {
		t.Errorf("two events share the id %s", ev.EventID)
	}
	if rec.keys[0] != rec.keys[1] {
		t.Errorf("events of the same account have different keys %q and %q", rec.keys[0], rec.keys[1])
	}
}
