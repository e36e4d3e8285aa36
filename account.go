package accounts

import (
	"fmt"
	"strings"
)

// Kind is the closed set of account families handled by the engine.
type Kind int

const (
	// Currency accounts (cash, loan) hold a single running balance.
	Currency Kind = iota
	// Stock accounts hold one running quantity per ticker.
	Stock
	// Bond accounts hold one running quantity per bond identifier.
	Bond
)

func (k Kind) String() string {
	switch k {
	case Currency:
		return "currency"
	case Stock:
		return "stock"
	case Bond:
		return "bond"
	default:
		return "unknown"
	}
}

// ParseKind parses a string into a Kind. Labels "cash" and "loan" are
// currency accounts.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "currency", "cash", "loan":
		return Currency, nil
	case "stock", "stocks":
		return Stock, nil
	case "bond", "bonds":
		return Bond, nil
	default:
		return 0, fmt.Errorf("unknown account kind: %q", s)
	}
}

// MultiStream reports whether accounts of this kind partition their entries by key.
func (k Kind) MultiStream() bool { return k == Stock || k == Bond }

// Policy returns the mutation policy of accounts of this kind.
func (k Kind) Policy() Policy {
	switch k {
	case Stock:
		return Policy{Duplicates: RejectDuplicates, Rekey: RekeyForbidden}
	case Bond:
		return Policy{Duplicates: SkipDuplicates, Rekey: RekeyAllowed}
	default:
		return Policy{Duplicates: AllowDuplicates, Rekey: RekeyForbidden}
	}
}

// Account identifies a ledger owner. Account management (creation, renaming)
// belongs to the caller; the engine only needs the handle.
type Account struct {
	UserID int    `json:"userId"`
	ID     int    `json:"accountId"`
	Name   string `json:"name"`
	Label  string `json:"label"` // category, e.g. Cash, Loan, Stock, Bond
	Kind   Kind   `json:"kind"`
}

// DuplicatePolicy tells what a ledger does with an entry that has the same
// day, key and value change as an existing one.
type DuplicatePolicy int

const (
	AllowDuplicates DuplicatePolicy = iota
	RejectDuplicates
	SkipDuplicates
)

// RekeyPolicy tells whether Update may move an entry to another key.
type RekeyPolicy int

const (
	RekeyForbidden RekeyPolicy = iota
	RekeyAllowed
)

// Policy gathers the per account kind decisions applied by a Ledger.
type Policy struct {
	Duplicates DuplicatePolicy
	Rekey      RekeyPolicy
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}
