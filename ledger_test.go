package accounts

import (
	"errors"
	"math/rand"
	"slices"
	"testing"
	"time"

	"github.com/etnz/accounts/date"
	"github.com/google/go-cmp/cmp"
)

func TestLedger_Add(t *testing.T) {
	testCases := []struct {
		name    string
		entries []Entry
		want    []string // values newest first
		wantIDs []int
	}{
		{
			name:    "chronological",
			entries: []Entry{cash(1, "2024-01-01", 100), cash(2, "2024-01-02", 50)},
			want:    []string{"150", "100"},
			wantIDs: []int{2, 1},
		},
		{
			name:    "reverse order",
			entries: []Entry{cash(2, "2024-01-02", 50), cash(1, "2024-01-01", 100)},
			want:    []string{"150", "100"},
			wantIDs: []int{2, 1},
		},
		{
			name:    "insert in the middle",
			entries: []Entry{cash(1, "2024-01-01", 100), cash(3, "2024-01-03", -30), cash(2, "2024-01-02", 50)},
			want:    []string{"120", "150", "100"},
			wantIDs: []int{3, 2, 1},
		},
		{
			name:    "same day goes before existing entries",
			entries: []Entry{cash(1, "2024-01-01", 100), cash(2, "2024-01-01", 100)},
			want:    []string{"200", "100"},
			wantIDs: []int{2, 1},
		},
		{
			name:    "zero id gets the next one",
			entries: []Entry{cash(7, "2024-01-01", 1), cash(0, "2024-01-02", 1)},
			want:    []string{"2", "1"},
			wantIDs: []int{8, 7},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			l := NewSingleStreamLedger(1)
			for _, e := range tc.entries {
				if _, err := l.Add(e); err != nil {
					t.Fatalf("Add(%v) returned unexpected error: %v", e, err)
				}
			}
			if diff := cmp.Diff(tc.want, values(l.Entries())); diff != "" {
				t.Errorf("values mismatch (-want +got):\n%s", diff)
			}
			var ids []int
			for _, e := range l.entries {
				ids = append(ids, e.ID)
			}
			if !slices.Equal(ids, tc.wantIDs) {
				t.Errorf("ids = %v, want %v", ids, tc.wantIDs)
			}
		})
	}
}

func TestLedger_AddInvalid(t *testing.T) {
	l := NewSingleStreamLedger(1)
	if _, err := l.Add(cash(1, "2024-01-01", 1)); err != nil {
		t.Fatal(err)
	}
	nonUTC := cash(2, "2024-01-01", 1)
	nonUTC.PostingDate = nonUTC.PostingDate.In(time.FixedZone("CET", 3600))

	testCases := []struct {
		name string
		e    Entry
	}{
		{"duplicate id", cash(1, "2024-01-02", 1)},
		{"not utc", nonUTC},
		{"key on single stream", stock(3, "2024-01-01", "AAPL", 1)},
		{"other account", Entry{AccountID: 2, ID: 4, PostingDate: on("2024-01-01")}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := l.Add(tc.e); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Add(%v) = %v, want ErrInvalidInput", tc.e, err)
			}
		})
	}
	if l.Len() != 1 {
		t.Errorf("Len() = %d, want 1", l.Len())
	}
}

func TestLedger_Update(t *testing.T) {
	l := NewSingleStreamLedger(1)
	for _, e := range []Entry{cash(1, "2024-01-01", 100), cash(2, "2024-01-02", 50), cash(3, "2024-01-03", 25)} {
		if _, err := l.Add(e); err != nil {
			t.Fatal(err)
		}
	}

	// move the oldest entry to the newest position and change its amount.
	if err := l.Update(cash(1, "2024-01-04", 10)); err != nil {
		t.Fatalf("Update() returned unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"85", "75", "50"}, values(l.Entries())); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
	checkOrder(t, l)
	checkBalances(t, l)

	// and back in the past.
	if err := l.Update(cash(1, "2023-12-31", 10)); err != nil {
		t.Fatalf("Update() returned unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"85", "60", "10"}, values(l.Entries())); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}

	err := l.Update(cash(42, "2024-01-01", 1))
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.EntryID != 42 {
		t.Errorf("Update(unknown) = %v, want NotFoundError for 42", err)
	}
	if IgnoreNotFound(err) != nil {
		t.Errorf("IgnoreNotFound(%v) != nil", err)
	}
}

func TestLedger_Remove(t *testing.T) {
	testCases := []struct {
		name   string
		remove int
		want   []string
	}{
		{"newest", 3, []string{"150", "100"}},
		{"middle", 2, []string{"125", "100"}},
		{"oldest", 1, []string{"75", "50"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			l := NewSingleStreamLedger(1)
			for _, e := range []Entry{cash(1, "2024-01-01", 100), cash(2, "2024-01-02", 50), cash(3, "2024-01-03", 25)} {
				if _, err := l.Add(e); err != nil {
					t.Fatal(err)
				}
			}
			removed, err := l.Remove(tc.remove)
			if err != nil {
				t.Fatalf("Remove(%d) returned unexpected error: %v", tc.remove, err)
			}
			if removed.ID != tc.remove {
				t.Errorf("Remove(%d) removed %v", tc.remove, removed)
			}
			if diff := cmp.Diff(tc.want, values(l.Entries())); diff != "" {
				t.Errorf("values mismatch (-want +got):\n%s", diff)
			}
		})
	}

	l := NewSingleStreamLedger(1)
	if _, err := l.Remove(1); !errors.Is(err, ErrNotFound) {
		t.Errorf("Remove() on empty ledger = %v, want ErrNotFound", err)
	}
	// removing the last entry leaves an empty ledger without panicking.
	if _, err := l.Add(cash(1, "2024-01-01", 1)); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Remove(1); err != nil || l.Len() != 0 {
		t.Errorf("Remove(only entry) = %v, Len() = %d", err, l.Len())
	}
}

func TestLedger_Get(t *testing.T) {
	l := NewSingleStreamLedger(1)
	for _, e := range []Entry{cash(1, "2024-01-01", 100), cash(2, "2024-01-05", 50), cash(3, "2024-01-05", 25)} {
		if _, err := l.Add(e); err != nil {
			t.Fatal(err)
		}
	}
	testCases := []struct {
		day     string
		wantIDs []int
	}{
		{"2023-12-31", nil},
		{"2024-01-01", []int{1}},
		{"2024-01-03", []int{1}},
		{"2024-01-05", []int{3, 2}},
		{"2024-02-01", []int{3}},
	}
	for _, tc := range testCases {
		t.Run(tc.day, func(t *testing.T) {
			var ids []int
			for _, e := range l.Get(date.MustParse(tc.day)) {
				ids = append(ids, e.ID)
			}
			if !slices.Equal(ids, tc.wantIDs) {
				t.Errorf("Get(%s) = %v, want %v", tc.day, ids, tc.wantIDs)
			}
		})
	}

	got := l.GetRange(date.MustParse("2024-01-02"), date.MustParse("2024-01-05"))
	if len(got) != 2 {
		t.Errorf("GetRange() returned %d entries, want 2", len(got))
	}
	if b := l.BalanceAsOf("", date.MustParse("2024-01-04")); !b.Equal(dec(100)) {
		t.Errorf("BalanceAsOf(2024-01-04) = %s, want 100", b)
	}
}

// TestRecalculateSuffix_OldestIndex pins the behavior at the oldest index: the
// oldest entry's value is its own change, and nothing past the end is read.
func TestRecalculateSuffix_OldestIndex(t *testing.T) {
	entries := []Entry{cash(2, "2024-01-02", 50), cash(1, "2024-01-01", 100)}
	for _, start := range []int{1, 2, 10} {
		RecalculateSuffix(entries, start, singleKey, "")
		if diff := cmp.Diff([]string{"150", "100"}, values(entries)); diff != "" {
			t.Errorf("RecalculateSuffix(start=%d) values mismatch (-want +got):\n%s", start, diff)
		}
	}
	RecalculateSuffix(nil, 0, singleKey, "")
}

func TestRecalculateSuffix_Idempotent(t *testing.T) {
	entries := []Entry{
		stock(5, "2024-01-05", "A", 1),
		stock(4, "2024-01-04", "B", 2),
		stock(3, "2024-01-03", "A", 3),
		stock(2, "2024-01-02", "B", 4),
		stock(1, "2024-01-01", "A", 5),
	}
	RecalculateSuffix(entries, 4, entryKey, "A")
	first := values(entries)
	RecalculateSuffix(entries, 4, entryKey, "A")
	if diff := cmp.Diff(first, values(entries)); diff != "" {
		t.Errorf("second recalculation changed values (-first +second):\n%s", diff)
	}
	// B entries were skipped, not computed.
	want := []string{"9", "0", "8", "0", "5"}
	if diff := cmp.Diff(want, first); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestLedger_RandomMutations(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for _, multi := range []bool{false, true} {
		var l *Ledger
		if multi {
			l = NewMultiStreamLedger(1, Bond.Policy())
		} else {
			l = NewSingleStreamLedger(1)
		}
		keys := []string{"A", "B", "C"}
		for i := range 300 {
			e := Entry{
				AccountID:   1,
				PostingDate: date.New(2024, 1, 1+r.Intn(60)).Time(),
				ValueChange: dec(float64(r.Intn(200) - 100)),
			}
			if multi {
				e.Key = keys[r.Intn(len(keys))]
			}
			switch {
			case l.Len() > 0 && i%5 == 3:
				id := l.entries[r.Intn(l.Len())].ID
				if _, err := l.Remove(id); err != nil {
					t.Fatalf("Remove(%d): %v", id, err)
				}
			case l.Len() > 0 && i%5 == 4:
				e.ID = l.entries[r.Intn(l.Len())].ID
				if err := l.Update(e); err != nil {
					t.Fatalf("Update(%v): %v", e, err)
				}
			default:
				if _, err := l.Add(e); err != nil {
					t.Fatalf("Add(%v): %v", e, err)
				}
			}
			checkOrder(t, l)
			checkBalances(t, l)
			if t.Failed() {
				t.FailNow()
			}
		}
	}
}

func TestLedger_SameInstantOrder(t *testing.T) {
	l := NewSingleStreamLedger(1)
	for _, e := range []Entry{cash(1, "2024-01-01", 10), cash(2, "2024-01-01", 20), cash(3, "2024-01-01", 30)} {
		if _, err := l.Add(e); err != nil {
			t.Fatal(err)
		}
	}
	if err := l.Update(cash(1, "2024-01-01", 5)); err != nil {
		t.Fatal(err)
	}
	var ids []int
	for _, e := range l.entries {
		ids = append(ids, e.ID)
	}
	if !slices.Equal(ids, []int{3, 2, 1}) {
		t.Errorf("ids = %v, want [3 2 1]", ids)
	}
	if diff := cmp.Diff([]string{"55", "25", "5"}, values(l.Entries())); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}

	// a snapshot in any order loads the same way.
	loaded := NewSingleStreamLedger(1)
	if err := loaded.load([]Entry{cash(2, "2024-01-01", 20), cash(1, "2024-01-01", 5), cash(3, "2024-01-01", 30)}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(values(l.Entries()), values(loaded.Entries())); diff != "" {
		t.Errorf("loaded values mismatch (-want +got):\n%s", diff)
	}
}
