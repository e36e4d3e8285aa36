package accounts

import (
	"cmp"
	"fmt"
	"time"

	"github.com/etnz/accounts/date"
	"github.com/shopspring/decimal"
)

// Entry is one movement of an account.
//
// ValueChange is supplied by the caller, Value is the running balance of the
// entry's key as of PostingDate and is always computed by the Ledger.
type Entry struct {
	AccountID   int             `json:"accountId"`
	ID          int             `json:"entryId"`
	PostingDate time.Time       `json:"postingDate"`
	Value       decimal.Decimal `json:"value"`
	ValueChange decimal.Decimal `json:"valueChange"`
	Key         string          `json:"key,omitempty"` // ticker or bond identifier, empty for currency accounts
}

// Day returns the calendar day of the entry.
func (e Entry) Day() date.Date { return date.Of(e.PostingDate) }

func (e Entry) String() string {
	if e.Key == "" {
		return fmt.Sprintf("#%d %s %s (%s)", e.ID, e.Day(), e.ValueChange, e.Value)
	}
	return fmt.Sprintf("#%d %s %s %s (%s)", e.ID, e.Day(), e.Key, e.ValueChange, e.Value)
}

// NewestFirst orders entries by posting date, newest first. Entries posted at
// the same instant are ordered by id, highest first.
func NewestFirst(a, b Entry) int {
	return cmp.Or(b.PostingDate.Compare(a.PostingDate), cmp.Compare(b.ID, a.ID))
}

// KeyFunc extracts the partition key of an entry.
type KeyFunc func(Entry) string

// singleKey puts every entry in the same partition.
func singleKey(Entry) string { return "" }

// entryKey partitions entries by their Key field.
func entryKey(e Entry) string { return e.Key }

// checkUTC returns an error if t is not expressed in UTC.
func checkUTC(t time.Time) error {
	if t.Location() != time.UTC {
		return fmt.Errorf("%w: posting date %v is not UTC", ErrInvalidInput, t)
	}
	return nil
}
