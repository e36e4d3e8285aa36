package accounts

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an Update or Remove targets an unknown entry.
	ErrNotFound = errors.New("entry not found")
	// ErrInvalidInput is returned for entries the ledger cannot accept.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDuplicate is returned by ledgers that reject duplicate entries.
	ErrDuplicate = errors.New("duplicate entry")
)

// NotFoundError reports the entry that could not be found.
type NotFoundError struct {
	AccountID int
	EntryID   int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("account %d: entry %d not found", e.AccountID, e.EntryID)
}

// Is makes NotFoundError match ErrNotFound.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// IgnoreNotFound returns nil if err is a not found error, err otherwise.
//
// It restores the silent no-op behavior on missing entries for callers that
// rely on it.
func IgnoreNotFound(err error) error {
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
