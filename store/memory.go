// Package store provides EntryRepository implementations.
package store

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/etnz/accounts"
	"github.com/etnz/accounts/date"
)

// Memory is an in-memory implementation of accounts.EntryRepository.
// It is safe for concurrent use.
type Memory struct {
	mu      sync.Mutex
	entries map[int][]accounts.Entry // per account, in insertion order
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{entries: make(map[int][]accounts.Entry)}
}

// newestFirst returns a sorted copy of entries, in the order ledgers use.
func newestFirst(entries []accounts.Entry) []accounts.Entry {
	out := slices.Clone(entries)
	slices.SortFunc(out, accounts.NewestFirst)
	return out
}

func inRange(entries []accounts.Entry, start, end date.Date) []accounts.Entry {
	r := date.NewRange(start, end)
	return slices.DeleteFunc(entries, func(e accounts.Entry) bool { return !r.Contains(e.Day()) })
}

// Get implements accounts.EntryRepository.
func (m *Memory) Get(ctx context.Context, accountID int, start, end date.Date) ([]accounts.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return inRange(newestFirst(m.entries[accountID]), start, end), nil
}

// Add implements accounts.EntryRepository.
func (m *Memory) Add(ctx context.Context, e accounts.Entry) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if slices.ContainsFunc(m.entries[e.AccountID], func(x accounts.Entry) bool { return x.ID == e.ID }) {
		return false, nil
	}
	m.entries[e.AccountID] = append(m.entries[e.AccountID], e)
	return true, nil
}

// Update implements accounts.EntryRepository.
func (m *Memory) Update(ctx context.Context, e accounts.Entry) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.entries[e.AccountID]
	i := slices.IndexFunc(list, func(x accounts.Entry) bool { return x.ID == e.ID })
	if i < 0 {
		return false, nil
	}
	list[i] = e
	return true, nil
}

// Delete implements accounts.EntryRepository.
func (m *Memory) Delete(ctx context.Context, accountID, entryID int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.entries[accountID]
	i := slices.IndexFunc(list, func(x accounts.Entry) bool { return x.ID == entryID })
	if i < 0 {
		return false, nil
	}
	m.entries[accountID] = slices.Delete(list, i, i+1)
	return true, nil
}

// GetOldest implements accounts.EntryRepository.
func (m *Memory) GetOldest(ctx context.Context, accountID int) (*accounts.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return oldest(m.entries[accountID]), nil
}

func oldest(entries []accounts.Entry) *accounts.Entry {
	if len(entries) == 0 {
		return nil
	}
	e := slices.MinFunc(entries, func(a, b accounts.Entry) int {
		return cmp.Or(a.PostingDate.Compare(b.PostingDate), cmp.Compare(a.ID, b.ID))
	})
	return &e
}

// Compile-time check: ensure Memory implements accounts.EntryRepository.
var _ accounts.EntryRepository = (*Memory)(nil)
