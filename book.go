package accounts

import (
	"context"
	"fmt"
)

// Book applies single mutations to ledgers stored in a repository and
// persists every balance they change.
//
// Callers serialize calls per account.
type Book struct {
	Repo EntryRepository
}

// Add stores e in account and returns it as stored, with its id and balance.
// A zero Entry is returned if the account's duplicate policy skipped it.
func (b *Book) Add(ctx context.Context, account Account, e Entry) (Entry, error) {
	ledger, before, err := loadStored(ctx, b.Repo, account)
	if err != nil {
		return Entry{}, err
	}
	i, err := ledger.Insert(e)
	if err != nil || i < 0 {
		return Entry{}, err
	}
	ledger.Recalculate(i, ledger.keyOf(ledger.entries[i]))
	added := ledger.entries[i]

	ok, err := b.Repo.Add(ctx, added)
	if err == nil && !ok {
		err = fmt.Errorf("%w: entry %d already stored", ErrInvalidInput, added.ID)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("cannot store entry: %w", err)
	}
	return added, saveChanged(ctx, b.Repo, ledger, before)
}

// Update replaces the stored entry with the same id.
func (b *Book) Update(ctx context.Context, account Account, e Entry) (Entry, error) {
	ledger, before, err := loadStored(ctx, b.Repo, account)
	if err != nil {
		return Entry{}, err
	}
	if err := ledger.Update(e); err != nil {
		return Entry{}, err
	}
	// the updated entry is part of the snapshot: saved with the others.
	if err := saveChanged(ctx, b.Repo, ledger, before); err != nil {
		return Entry{}, err
	}
	updated, _ := ledger.Entry(e.ID)
	return updated, nil
}

// Remove deletes the entry id from account and returns it.
func (b *Book) Remove(ctx context.Context, account Account, id int) (Entry, error) {
	ledger, before, err := loadStored(ctx, b.Repo, account)
	if err != nil {
		return Entry{}, err
	}
	removed, err := ledger.Remove(id)
	if err != nil {
		return Entry{}, err
	}
	ok, err := b.Repo.Delete(ctx, account.ID, id)
	if err == nil && !ok {
		err = &NotFoundError{AccountID: account.ID, EntryID: id}
	}
	if err != nil {
		return Entry{}, fmt.Errorf("cannot delete entry %d: %w", id, err)
	}
	delete(before, id)
	return removed, saveChanged(ctx, b.Repo, ledger, before)
}
