package accounts

import (
	"context"
	"fmt"

	"github.com/etnz/accounts/date"
)

// EntryRepository stores the entries of accounts.
//
// The Ledger works on snapshots read from a repository; writing mutations back
// is the caller's job (see Importer and Resolver).
type EntryRepository interface {
	// Get returns the entries of the account posted between start and end
	// (included), newest first.
	Get(ctx context.Context, accountID int, start, end date.Date) ([]Entry, error)
	// Add stores a new entry. It returns false if an entry with the same id
	// is already stored.
	Add(ctx context.Context, e Entry) (bool, error)
	// Update stores a modified entry. It returns false if the entry is unknown.
	Update(ctx context.Context, e Entry) (bool, error)
	// Delete removes an entry. It returns false if the entry is unknown.
	Delete(ctx context.Context, accountID, entryID int) (bool, error)
	// GetOldest returns the oldest entry of the account, or nil if it has none.
	GetOldest(ctx context.Context, accountID int) (*Entry, error)
}

// LoadLedger reads every entry of account from repo into a new Ledger.
// Balances are recomputed, stored values are not trusted.
func LoadLedger(ctx context.Context, repo EntryRepository, account Account) (*Ledger, error) {
	l, _, err := loadStored(ctx, repo, account)
	return l, err
}

// loadStored is LoadLedger also returning the entries as stored, so that
// saveChanged writes back every balance the recomputation fixed.
func loadStored(ctx context.Context, repo EntryRepository, account Account) (*Ledger, snapshot, error) {
	l := NewLedger(account)
	oldest, err := repo.GetOldest(ctx, account.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot read oldest entry of account %d: %w", account.ID, err)
	}
	if oldest == nil {
		return l, snapshot{}, nil
	}
	entries, err := repo.Get(ctx, account.ID, oldest.Day(), date.Max)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot read entries of account %d: %w", account.ID, err)
	}
	stored := make(snapshot, len(entries))
	for _, e := range entries {
		stored[e.ID] = e
	}
	if err := l.load(entries); err != nil {
		return nil, nil, err
	}
	return l, stored, nil
}

// snapshot captures entry values to later find which ones a mutation changed.
type snapshot map[int]Entry

// changed returns the entries that existed in the snapshot and differ now.
func (s snapshot) changed(l *Ledger) []Entry {
	var out []Entry
	for _, e := range l.entries {
		old, ok := s[e.ID]
		if !ok {
			continue
		}
		if !old.Value.Equal(e.Value) || !old.PostingDate.Equal(e.PostingDate) || !old.ValueChange.Equal(e.ValueChange) || old.Key != e.Key {
			out = append(out, e)
		}
	}
	return out
}

// saveChanged writes every entry changed since s back to repo.
func saveChanged(ctx context.Context, repo EntryRepository, l *Ledger, s snapshot) error {
	for _, e := range s.changed(l) {
		ok, err := repo.Update(ctx, e)
		if err != nil {
			return fmt.Errorf("cannot update entry %d: %w", e.ID, err)
		}
		if !ok {
			return &NotFoundError{AccountID: e.AccountID, EntryID: e.ID}
		}
	}
	return nil
}
