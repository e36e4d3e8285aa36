package store

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"

	"github.com/etnz/accounts"
	"github.com/etnz/accounts/date"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// File stores entries as JSONL, one file per account in a directory.
//
// Entries are written oldest first so that files are readable and diffable.
type File struct {
	dir string
	mu  sync.Mutex
}

// NewFile returns a repository storing files in dir, creating it if needed.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create store directory: %w", err)
	}
	return &File{dir: dir}, nil
}

func (f *File) path(accountID int) string {
	return filepath.Join(f.dir, strconv.Itoa(accountID)+".jsonl")
}

// DecodeEntries decodes entries from a stream of JSONL data.
func DecodeEntries(r io.Reader) ([]accounts.Entry, error) {
	var entries []accounts.Entry
	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		b := scanner.Bytes()
		if len(b) == 0 {
			continue // Skip empty lines
		}
		var e accounts.Entry
		if err := json.Unmarshal(b, &e); err != nil {
			return nil, fmt.Errorf("line %d: cannot decode entry %q: %w", line, string(b), err)
		}
		e.PostingDate = e.PostingDate.UTC()
		entries = append(entries, e)
	}
	return entries, scanner.Err()
}

// EncodeEntries writes entries as JSONL, oldest first.
func EncodeEntries(w io.Writer, entries []accounts.Entry) error {
	enc := json.NewEncoder(w)
	for _, e := range slices.Backward(newestFirst(entries)) {
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("cannot encode entry %d: %w", e.ID, err)
		}
	}
	return nil
}

func (f *File) read(accountID int) ([]accounts.Entry, error) {
	r, err := os.Open(f.path(accountID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer r.Close()
	entries, err := DecodeEntries(r)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", r.Name(), err)
	}
	return entries, nil
}

// write replaces the account file atomically.
func (f *File) write(accountID int, entries []accounts.Entry) error {
	tmp, err := os.CreateTemp(f.dir, ".entries-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	w := bufio.NewWriter(tmp)
	if err := EncodeEntries(w, entries); err != nil {
		tmp.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path(accountID))
}

// Get implements accounts.EntryRepository.
func (f *File) Get(ctx context.Context, accountID int, start, end date.Date) ([]accounts.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries, err := f.read(accountID)
	if err != nil {
		return nil, err
	}
	return inRange(newestFirst(entries), start, end), nil
}

// modify reads the account entries, applies fn and writes them back if fn reports a change.
func (f *File) modify(accountID int, fn func([]accounts.Entry) ([]accounts.Entry, bool)) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries, err := f.read(accountID)
	if err != nil {
		return false, err
	}
	// write sorts them again.
	entries, changed := fn(entries)
	if !changed {
		return false, nil
	}
	return true, f.write(accountID, entries)
}

func indexOf(entries []accounts.Entry, id int) int {
	return slices.IndexFunc(entries, func(x accounts.Entry) bool { return x.ID == id })
}

// Add implements accounts.EntryRepository.
func (f *File) Add(ctx context.Context, e accounts.Entry) (bool, error) {
	return f.modify(e.AccountID, func(entries []accounts.Entry) ([]accounts.Entry, bool) {
		if indexOf(entries, e.ID) >= 0 {
			return entries, false
		}
		return append(entries, e), true
	})
}

// Update implements accounts.EntryRepository.
func (f *File) Update(ctx context.Context, e accounts.Entry) (bool, error) {
	return f.modify(e.AccountID, func(entries []accounts.Entry) ([]accounts.Entry, bool) {
		i := indexOf(entries, e.ID)
		if i < 0 {
			return entries, false
		}
		entries[i] = e
		return entries, true
	})
}

// Delete implements accounts.EntryRepository.
func (f *File) Delete(ctx context.Context, accountID, entryID int) (bool, error) {
	return f.modify(accountID, func(entries []accounts.Entry) ([]accounts.Entry, bool) {
		i := indexOf(entries, entryID)
		if i < 0 {
			return entries, false
		}
		return slices.Delete(entries, i, i+1), true
	})
}

// GetOldest implements accounts.EntryRepository.
func (f *File) GetOldest(ctx context.Context, accountID int) (*accounts.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries, err := f.read(accountID)
	if err != nil {
		return nil, err
	}
	return oldest(entries), nil
}

var _ accounts.EntryRepository = (*File)(nil)
