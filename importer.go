package accounts

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/etnz/accounts/date"
)

// ImportResult reports what an import did for one account.
type ImportResult struct {
	AccountID int        `json:"accountId"`
	Imported  int        `json:"importedCount"`
	Failed    int        `json:"failedCount"`
	Errors    []string   `json:"errors"`
	Conflicts []Conflict `json:"conflicts"`
}

// Notifier is told about every finished import.
type Notifier interface {
	ImportCompleted(ctx context.Context, account Account, result ImportResult, at time.Time) error
}

// Importer merges import batches into ledgers stored in a repository.
type Importer struct {
	Repo     EntryRepository
	Notifier Notifier // optional
}

// Import reconciles request against the account's ledger, adds the records of
// days that are safe to import and reports the others as conflicts.
//
// A request with a non-UTC posting date is rejected as a whole. After that,
// failures are per record: they are counted and described in the result and
// do not stop the batch.
func (im *Importer) Import(ctx context.Context, account Account, request ImportRequest) (ImportResult, error) {
	result := ImportResult{AccountID: account.ID, Errors: []string{}, Conflicts: []Conflict{}}
	if request.AccountID != 0 && request.AccountID != account.ID {
		return result, fmt.Errorf("%w: request for account %d sent to account %d", ErrInvalidInput, request.AccountID, account.ID)
	}
	if err := request.Validate(); err != nil {
		return result, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	span, ok := request.Span()
	if !ok {
		return result, nil
	}

	ledger, before, err := loadStored(ctx, im.Repo, account)
	if err != nil {
		return result, err
	}

	// the day around each end of the span is read as context only: Reconcile
	// returns it in Outside and never matches it.
	existing := ledger.GetRange(span.From.Add(-1), span.To.Add(1))
	rec := Reconcile(request.Records, existing)
	result.Conflicts = append(result.Conflicts, rec.Conflicts(account.ID)...)

	// Insert without recalculation, then fix balances once per key from the
	// oldest inserted position.
	var added []int
	for _, r := range rec.Importable() {
		i, err := ledger.Insert(r.Entry(account.ID))
		if err != nil {
			result.fail(fmt.Errorf("%s %s: %w", r.Day(), r.ValueChange, err))
			continue
		}
		if i >= 0 {
			added = append(added, ledger.entries[i].ID)
		}
	}
	oldest := make(map[string]int)
	for _, id := range added {
		i := ledger.indexOf(id)
		k := ledger.keyOf(ledger.entries[i])
		oldest[k] = max(oldest[k], i)
	}
	for k, i := range oldest {
		ledger.Recalculate(i, k)
	}

	for _, id := range added {
		e, _ := ledger.Entry(id)
		ok, err := im.Repo.Add(ctx, e)
		if err == nil && !ok {
			err = fmt.Errorf("entry %d already stored", e.ID)
		}
		if err != nil {
			result.fail(fmt.Errorf("cannot store %s %s: %w", e.Day(), e.ValueChange, err))
			// keep stored balances consistent with what is actually stored.
			if _, err := ledger.Remove(id); err != nil {
				log.Printf("account %d: %v", account.ID, err)
			}
			continue
		}
		// a later failure can still change its balance.
		before[e.ID] = e
		result.Imported++
	}
	if err := saveChanged(ctx, im.Repo, ledger, before); err != nil {
		result.fail(err)
	}

	if im.Notifier != nil {
		if err := im.Notifier.ImportCompleted(ctx, account, result, time.Now().UTC()); err != nil {
			log.Printf("account %d: cannot notify import completion: %v", account.ID, err)
		}
	}
	return result, nil
}

func (r *ImportResult) fail(err error) {
	r.Failed++
	r.Errors = append(r.Errors, err.Error())
}

// ConflictDays returns the days that have at least one conflict.
func (r ImportResult) ConflictDays() []date.Date {
	var days []date.Date
	for _, c := range r.Conflicts {
		var d date.Date
		if c.Import != nil {
			d = c.Import.Day()
		} else if c.Existing != nil {
			d = c.Existing.Day()
		}
		if len(days) == 0 || days[len(days)-1] != d {
			days = append(days, d)
		}
	}
	return days
}
