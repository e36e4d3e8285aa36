package accounts

import (
	"fmt"
	"iter"
	"log"
	"slices"

	"github.com/etnz/accounts/date"
	"github.com/shopspring/decimal"
)

// Ledger holds the entries of one account.
//
// In a Ledger entries are always newest-first, and every entry's Value is the
// running balance of its key. Single-stream ledgers (cash, loan) have a single
// key, multi-stream ledgers (stock, bond) one independent balance per key.
//
// A Ledger is not safe for concurrent mutation: callers serialize writes per
// account.
type Ledger struct {
	accountID int
	entries   []Entry
	keyOf     KeyFunc
	multi     bool
	policy    Policy
}

// NewSingleStreamLedger creates an empty ledger where every entry shares the same balance.
func NewSingleStreamLedger(accountID int) *Ledger {
	return &Ledger{
		accountID: accountID,
		keyOf:     singleKey,
		policy:    Currency.Policy(),
	}
}

// NewMultiStreamLedger creates an empty ledger partitioned by Entry.Key.
func NewMultiStreamLedger(accountID int, policy Policy) *Ledger {
	return &Ledger{
		accountID: accountID,
		keyOf:     entryKey,
		multi:     true,
		policy:    policy,
	}
}

// NewLedger creates the empty ledger matching the account kind.
func NewLedger(account Account) *Ledger {
	if account.Kind.MultiStream() {
		return NewMultiStreamLedger(account.ID, account.Kind.Policy())
	}
	return NewSingleStreamLedger(account.ID)
}

// AccountID returns the account owning this ledger.
func (l *Ledger) AccountID() int { return l.accountID }

// Len returns the number of entries.
func (l *Ledger) Len() int { return len(l.entries) }

// Entries returns a copy of all entries, newest first.
func (l *Ledger) Entries() []Entry { return slices.Clone(l.entries) }

// All iterates over the entries, newest first.
func (l *Ledger) All() iter.Seq2[int, Entry] {
	return func(yield func(int, Entry) bool) {
		for i, e := range l.entries {
			if !yield(i, e) {
				return
			}
		}
	}
}

// Entry returns the entry with this id.
func (l *Ledger) Entry(id int) (Entry, bool) {
	i := l.indexOf(id)
	if i < 0 {
		return Entry{}, false
	}
	return l.entries[i], true
}

// Oldest returns the oldest entry, if any.
func (l *Ledger) Oldest() (Entry, bool) {
	if len(l.entries) == 0 {
		return Entry{}, false
	}
	return l.entries[len(l.entries)-1], true
}

func (l *Ledger) indexOf(id int) int {
	return slices.IndexFunc(l.entries, func(e Entry) bool { return e.ID == id })
}

// position returns where e must be inserted: before the first entry that
// NewestFirst puts after it. Ids assigned by the ledger grow, so among entries
// posted at the same instant the most recently added one is the newest.
//
// Positioning is global (all keys) so that the whole ledger stays sorted;
// it is also correct for every key partition.
func (l *Ledger) position(e Entry) int {
	for i, x := range l.entries {
		if NewestFirst(e, x) < 0 {
			return i
		}
	}
	return len(l.entries)
}

func (l *Ledger) nextID() int {
	id := 0
	for _, e := range l.entries {
		id = max(id, e.ID)
	}
	return id + 1
}

// validate checks e can enter the ledger.
func (l *Ledger) validate(e Entry) error {
	if err := checkUTC(e.PostingDate); err != nil {
		return err
	}
	if e.AccountID != l.accountID {
		return fmt.Errorf("%w: entry belongs to account %d, not %d", ErrInvalidInput, e.AccountID, l.accountID)
	}
	if l.multi && e.Key == "" {
		return fmt.Errorf("%w: entry %d has no key", ErrInvalidInput, e.ID)
	}
	if !l.multi && e.Key != "" {
		return fmt.Errorf("%w: single stream ledger does not accept key %q", ErrInvalidInput, e.Key)
	}
	return nil
}

// duplicate returns the index of an entry on the same day, same key with the
// same value change, or -1.
func (l *Ledger) duplicate(e Entry) int {
	day := e.Day()
	return slices.IndexFunc(l.entries, func(x Entry) bool {
		return x.ID != e.ID && x.Day() == day && l.keyOf(x) == l.keyOf(e) && x.ValueChange.Equal(e.ValueChange)
	})
}

// Add inserts e at its chronological position and fixes the balances of e's key.
// It returns false if the duplicate policy skipped e.
//
// A zero e.ID is replaced by the next free id.
func (l *Ledger) Add(e Entry) (bool, error) {
	i, err := l.Insert(e)
	if err != nil || i < 0 {
		return false, err
	}
	l.Recalculate(i, l.keyOf(l.entries[i]))
	return true, nil
}

// Insert is like Add but leaves balances untouched. It returns the index where
// the entry was inserted, or -1 if the duplicate policy skipped it.
//
// Callers inserting many entries call Recalculate once, from the oldest
// inserted index.
func (l *Ledger) Insert(e Entry) (int, error) {
	if e.AccountID == 0 {
		e.AccountID = l.accountID
	}
	if err := l.validate(e); err != nil {
		return -1, err
	}
	if e.ID == 0 {
		e.ID = l.nextID()
	} else if l.indexOf(e.ID) >= 0 {
		return -1, fmt.Errorf("%w: entry id %d already exists in account %d", ErrInvalidInput, e.ID, l.accountID)
	}
	if l.policy.Duplicates != AllowDuplicates {
		if j := l.duplicate(e); j >= 0 {
			if l.policy.Duplicates == RejectDuplicates {
				return -1, fmt.Errorf("%w: %s %s %s already recorded as entry %d", ErrDuplicate, e.Day(), e.Key, e.ValueChange, l.entries[j].ID)
			}
			log.Printf("account %d: skipping duplicate %s %s %s (entry %d)", l.accountID, e.Day(), e.Key, e.ValueChange, l.entries[j].ID)
			return -1, nil
		}
	}
	i := l.position(e)
	l.entries = slices.Insert(l.entries, i, e)
	return i, nil
}

// Update replaces the entry with the same id, moves it to its new
// chronological position and fixes the balances.
func (l *Ledger) Update(e Entry) error {
	old := l.indexOf(e.ID)
	if old < 0 {
		return &NotFoundError{AccountID: l.accountID, EntryID: e.ID}
	}
	if e.AccountID == 0 {
		e.AccountID = l.accountID
	}
	if err := l.validate(e); err != nil {
		return err
	}
	prev := l.entries[old]
	oldKey, newKey := l.keyOf(prev), l.keyOf(e)
	if oldKey != newKey && l.policy.Rekey == RekeyForbidden {
		return fmt.Errorf("%w: entry %d cannot move from %q to %q, remove and add it instead", ErrInvalidInput, e.ID, oldKey, newKey)
	}
	if l.policy.Duplicates == RejectDuplicates && l.duplicate(e) >= 0 {
		return fmt.Errorf("%w: %s %s %s", ErrDuplicate, e.Day(), e.Key, e.ValueChange)
	}

	l.entries = slices.Delete(l.entries, old, old+1)
	i := l.position(e)
	l.entries = slices.Insert(l.entries, i, e)

	// Everything newer than the older of both positions may have changed.
	from := max(old, i)
	l.Recalculate(from, newKey)
	if oldKey != newKey {
		l.Recalculate(from, oldKey)
	}
	return nil
}

// Remove deletes the entry with this id and fixes the balances of its key.
func (l *Ledger) Remove(id int) (Entry, error) {
	i := l.indexOf(id)
	if i < 0 {
		return Entry{}, &NotFoundError{AccountID: l.accountID, EntryID: id}
	}
	removed := l.entries[i]
	l.entries = slices.Delete(l.entries, i, i+1)
	// i now points to the next-older entry, its own value is unchanged but
	// everything newer is.
	l.Recalculate(i, l.keyOf(removed))
	return removed, nil
}

// Recalculate fixes the balance of key from index start toward the newest entry.
func (l *Ledger) Recalculate(start int, key string) {
	RecalculateSuffix(l.entries, start, l.keyOf, key)
}

// Get returns the entries posted on day, or else the single next-older entry.
//
// It answers "what was the balance as of day".
func (l *Ledger) Get(day date.Date) []Entry {
	var on []Entry
	for _, e := range l.entries {
		d := e.Day()
		if d == day {
			on = append(on, e)
			continue
		}
		if d.Before(day) {
			if len(on) > 0 {
				return on
			}
			return []Entry{e}
		}
	}
	return on
}

// GetRange returns the entries posted between start and end, both included, newest first.
func (l *Ledger) GetRange(start, end date.Date) []Entry {
	r := date.NewRange(start, end)
	var in []Entry
	for _, e := range l.entries {
		if r.Contains(e.Day()) {
			in = append(in, e)
		}
	}
	return in
}

// BalanceAsOf returns the running balance of key at the end of day.
func (l *Ledger) BalanceAsOf(key string, day date.Date) decimal.Decimal {
	for _, e := range l.entries {
		if l.keyOf(e) == key && !e.Day().After(day) {
			return e.Value
		}
	}
	return decimal.Zero
}

// StoredKeys returns the distinct keys present in the ledger, sorted.
func (l *Ledger) StoredKeys() []string {
	var keys []string
	for _, e := range l.entries {
		if k := l.keyOf(e); !slices.Contains(keys, k) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

// load replaces the entries with a repository snapshot, sorting them and
// recomputing every balance.
func (l *Ledger) load(entries []Entry) error {
	for _, e := range entries {
		if err := l.validate(e); err != nil {
			return fmt.Errorf("cannot load entry %d: %w", e.ID, err)
		}
	}
	l.entries = slices.Clone(entries)
	slices.SortFunc(l.entries, NewestFirst)
	RecalculateAll(l.entries, l.keyOf)
	return nil
}
