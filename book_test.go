package accounts_test

import (
	"context"
	"errors"
	"testing"

	"github.com/etnz/accounts"
	"github.com/etnz/accounts/date"
	"github.com/etnz/accounts/store"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

func TestBook(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemory()
	book := &accounts.Book{Repo: repo}

	add := func(day string, change int64) accounts.Entry {
		t.Helper()
		e, err := book.Add(ctx, checking, record(day, change).Entry(checking.ID))
		if err != nil {
			t.Fatalf("Add(%s, %d) returned unexpected error: %v", day, change, err)
		}
		return e
	}
	add("2024-01-01", 100)
	second := add("2024-01-03", -30)
	if second.ID != 2 || !second.Value.Equal(decimal.NewFromInt(70)) {
		t.Errorf("Add() = %v, want entry 2 with a balance of 70", second)
	}
	// in the past: every newer stored balance moves.
	add("2024-01-02", 5)
	if diff := cmp.Diff([]string{"75", "105", "100"}, storedValues(t, repo, checking)); diff != "" {
		t.Errorf("after Add() mismatch (-want +got):\n%s", diff)
	}

	second.ValueChange = decimal.NewFromInt(-50)
	second.PostingDate = date.MustParse("2023-12-31").Time()
	updated, err := book.Update(ctx, checking, second)
	if err != nil {
		t.Fatalf("Update() returned unexpected error: %v", err)
	}
	if !updated.Value.Equal(decimal.NewFromInt(-50)) {
		t.Errorf("Update() = %v, want a balance of -50", updated)
	}
	if diff := cmp.Diff([]string{"55", "50", "-50"}, storedValues(t, repo, checking)); diff != "" {
		t.Errorf("after Update() mismatch (-want +got):\n%s", diff)
	}

	removed, err := book.Remove(ctx, checking, 1)
	if err != nil {
		t.Fatalf("Remove() returned unexpected error: %v", err)
	}
	if removed.ID != 1 {
		t.Errorf("Remove() = %v, want entry 1", removed)
	}
	if diff := cmp.Diff([]string{"-45", "-50"}, storedValues(t, repo, checking)); diff != "" {
		t.Errorf("after Remove() mismatch (-want +got):\n%s", diff)
	}

	if _, err := book.Remove(ctx, checking, 1); !errors.Is(err, accounts.ErrNotFound) {
		t.Errorf("Remove() of a missing entry = %v, want ErrNotFound", err)
	}
	if _, err := book.Update(ctx, checking, removed); !errors.Is(err, accounts.ErrNotFound) {
		t.Errorf("Update() of a missing entry = %v, want ErrNotFound", err)
	}
}

func TestBook_Policies(t *testing.T) {
	ctx := context.Background()
	book := &accounts.Book{Repo: store.NewMemory()}
	day := date.MustParse("2024-01-01").Time()

	stocks := accounts.Account{ID: 2, Kind: accounts.Stock}
	e := accounts.Entry{PostingDate: day, Key: "AAPL", ValueChange: decimal.NewFromInt(3)}
	if _, err := book.Add(ctx, stocks, e); err != nil {
		t.Fatal(err)
	}
	if _, err := book.Add(ctx, stocks, e); !errors.Is(err, accounts.ErrDuplicate) {
		t.Errorf("Add() of a stock duplicate = %v, want ErrDuplicate", err)
	}

	bonds := accounts.Account{ID: 3, Kind: accounts.Bond}
	e.Key = "FR001"
	if _, err := book.Add(ctx, bonds, e); err != nil {
		t.Fatal(err)
	}
	skipped, err := book.Add(ctx, bonds, e)
	if err != nil || skipped.ID != 0 {
		t.Errorf("Add() of a bond duplicate = %v, %v; want a skipped entry", skipped, err)
	}
}

// checkStored asserts that the balances stored in repo are running balances,
// in the order repo returns the entries.
func checkStored(t *testing.T, repo accounts.EntryRepository, account accounts.Account) []accounts.Entry {
	t.Helper()
	entries, err := repo.Get(context.Background(), account.ID, date.Min, date.Max)
	if err != nil {
		t.Fatal(err)
	}
	for i, e := range entries {
		want := e.ValueChange
		for _, older := range entries[i+1:] {
			if older.Key == e.Key {
				want = older.Value.Add(e.ValueChange)
				break
			}
		}
		if !e.Value.Equal(want) {
			t.Errorf("stored %v: value = %s, want %s", e, e.Value, want)
		}
	}
	return entries
}

func TestBook_SameInstant(t *testing.T) {
	file, err := store.NewFile(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for name, repo := range map[string]accounts.EntryRepository{
		"memory": store.NewMemory(),
		"file":   file,
	} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			book := &accounts.Book{Repo: repo}
			first, err := book.Add(ctx, checking, record("2024-01-01", 10).Entry(checking.ID))
			if err != nil {
				t.Fatal(err)
			}
			if _, err := book.Add(ctx, checking, record("2024-01-01", 20).Entry(checking.ID)); err != nil {
				t.Fatal(err)
			}

			first.ValueChange = decimal.NewFromInt(5)
			updated, err := book.Update(ctx, checking, first)
			if err != nil {
				t.Fatalf("Update() returned unexpected error: %v", err)
			}
			if !updated.Value.Equal(decimal.NewFromInt(5)) {
				t.Errorf("Update() = %v, want a balance of 5", updated)
			}

			entries := checkStored(t, repo, checking)
			var ids []int
			for _, e := range entries {
				ids = append(ids, e.ID)
			}
			if diff := cmp.Diff([]int{2, 1}, ids); diff != "" {
				t.Errorf("stored order mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff([]string{"25", "5"}, storedValues(t, repo, checking)); diff != "" {
				t.Errorf("values mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBook_RepairsStoredBalances(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemory()
	drifted := record("2024-01-01", 10).Entry(checking.ID)
	drifted.ID = 1
	drifted.Value = decimal.NewFromInt(99)
	if _, err := repo.Add(ctx, drifted); err != nil {
		t.Fatal(err)
	}

	book := &accounts.Book{Repo: repo}
	if _, err := book.Add(ctx, checking, record("2024-01-02", 1).Entry(checking.ID)); err != nil {
		t.Fatal(err)
	}
	checkStored(t, repo, checking)
}
