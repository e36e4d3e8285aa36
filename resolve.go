package accounts

import (
	"context"
	"fmt"
	"log"
)

// ResolvedConflict is the decision taken for one reported Conflict.
type ResolvedConflict struct {
	AccountID       int           `json:"accountId"`
	AddImported     bool          `json:"addImported"`
	ImportEntry     *ImportRecord `json:"importEntry,omitempty"`
	LeaveExisting   bool          `json:"leaveExisting"`
	ExistingEntryID *int          `json:"existingEntryId,omitempty"`
}

// Resolution returns the default decision for c: keep what is stored, add nothing.
func (c Conflict) Resolution() ResolvedConflict {
	r := ResolvedConflict{AccountID: c.AccountID, LeaveExisting: true, ImportEntry: c.Import}
	if c.Existing != nil {
		id := c.Existing.ID
		r.ExistingEntryID = &id
	}
	return r
}

// ResolutionResult counts what Apply did.
type ResolutionResult struct {
	AccountID int      `json:"accountId"`
	Removed   int      `json:"removedCount"`
	Added     int      `json:"addedCount"`
	Failed    int      `json:"failedCount"`
	Errors    []string `json:"errors"`
}

// Resolver applies conflict resolutions to ledgers stored in a repository.
type Resolver struct {
	Repo EntryRepository
}

// Apply executes every resolution for account.
//
// A resolution that does not leave the existing entry removes it, one that
// adds the imported record inserts it; both fix the running balances. A
// failing resolution is logged and counted, the others are still applied.
func (rs *Resolver) Apply(ctx context.Context, account Account, resolutions []ResolvedConflict) (ResolutionResult, error) {
	result := ResolutionResult{AccountID: account.ID, Errors: []string{}}
	ledger, before, err := loadStored(ctx, rs.Repo, account)
	if err != nil {
		return result, err
	}

	for i, r := range resolutions {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		removed, added, err := rs.apply(ctx, account, ledger, r)
		if removed {
			result.Removed++
			// gone from the store, no update to write.
			delete(before, *r.ExistingEntryID)
		}
		if added != nil {
			result.Added++
			before[added.ID] = *added
		}
		if err != nil {
			log.Printf("account %d: resolution %d failed: %v", account.ID, i, err)
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("resolution %d: %v", i, err))
		}
	}

	if err := saveChanged(ctx, rs.Repo, ledger, before); err != nil {
		result.Failed++
		result.Errors = append(result.Errors, err.Error())
	}
	return result, nil
}

func (rs *Resolver) apply(ctx context.Context, account Account, ledger *Ledger, r ResolvedConflict) (removed bool, added *Entry, err error) {
	if r.AccountID != 0 && r.AccountID != account.ID {
		return false, nil, fmt.Errorf("%w: resolution for account %d", ErrInvalidInput, r.AccountID)
	}
	if !r.LeaveExisting && r.ExistingEntryID != nil {
		id := *r.ExistingEntryID
		if _, ok := ledger.Entry(id); !ok {
			return false, nil, &NotFoundError{AccountID: account.ID, EntryID: id}
		}
		ok, err := rs.Repo.Delete(ctx, account.ID, id)
		if err == nil && !ok {
			err = &NotFoundError{AccountID: account.ID, EntryID: id}
		}
		if err != nil {
			return false, nil, fmt.Errorf("cannot delete entry %d: %w", id, err)
		}
		if _, err := ledger.Remove(id); err != nil {
			return false, nil, err
		}
		removed = true
	}
	if r.AddImported && r.ImportEntry != nil {
		i, err := ledger.Insert(r.ImportEntry.Entry(account.ID))
		if err != nil {
			return removed, nil, err
		}
		if i < 0 {
			return removed, nil, nil // skipped duplicate
		}
		e := ledger.entries[i]
		ledger.Recalculate(i, ledger.keyOf(e))
		e = ledger.entries[i]
		ok, err := rs.Repo.Add(ctx, e)
		if err == nil && !ok {
			err = fmt.Errorf("entry %d already stored", e.ID)
		}
		if err != nil {
			if _, rerr := ledger.Remove(e.ID); rerr != nil {
				log.Printf("account %d: %v", account.ID, rerr)
			}
			return removed, nil, fmt.Errorf("cannot store %s %s: %w", e.Day(), e.ValueChange, err)
		}
		added = &e
	}
	return removed, added, nil
}
