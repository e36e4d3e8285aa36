package accounts

import (
	"testing"
	"time"

	"github.com/etnz/accounts/date"
	"github.com/shopspring/decimal"
)

// on is a helper for test to create a posting date from a day string.
func on(day string) time.Time { return date.MustParse(day).Time() }

// dec is a helper for test to create decimals from const.
func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// cash is a helper for test to create a single stream entry.
func cash(id int, day string, change float64) Entry {
	return Entry{AccountID: 1, ID: id, PostingDate: on(day), ValueChange: dec(change)}
}

// stock is a helper for test to create a multi stream entry.
func stock(id int, day, key string, change float64) Entry {
	return Entry{AccountID: 1, ID: id, PostingDate: on(day), ValueChange: dec(change), Key: key}
}

// values returns the balances of entries, newest first.
func values(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Value.String()
	}
	return out
}

// checkBalances asserts the running balance invariant for every key.
func checkBalances(t *testing.T, l *Ledger) {
	t.Helper()
	for i, e := range l.entries {
		want := e.ValueChange
		for _, older := range l.entries[i+1:] {
			if l.keyOf(older) == l.keyOf(e) {
				want = older.Value.Add(e.ValueChange)
				break
			}
		}
		if !e.Value.Equal(want) {
			t.Errorf("entry %v: value = %s, want %s", e, e.Value, want)
		}
	}
}

// checkOrder asserts entries are newest first.
func checkOrder(t *testing.T, l *Ledger) {
	t.Helper()
	for i := 1; i < len(l.entries); i++ {
		if l.entries[i].PostingDate.After(l.entries[i-1].PostingDate) {
			t.Errorf("entry %v is older than %v but stored before it", l.entries[i-1], l.entries[i])
		}
	}
}
