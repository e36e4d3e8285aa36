package cmd

import (
	"fmt"
	"slices"

	"github.com/etnz/accounts"
)

// registry is the accounts file: the list of declared accounts.
type registry struct {
	path     string
	Accounts []accounts.Account `json:"accounts"`
}

// loadRegistry reads the accounts file, a missing file is an empty registry.
func loadRegistry(path string) (*registry, error) {
	r := &registry{path: path}
	if err := readJSON(path, r); err != nil && !isNotExist(err) {
		return nil, fmt.Errorf("cannot read accounts file %q: %w", path, err)
	}
	return r, nil
}

func (r *registry) account(id int) (accounts.Account, error) {
	i := slices.IndexFunc(r.Accounts, func(a accounts.Account) bool { return a.ID == id })
	if i < 0 {
		return accounts.Account{}, fmt.Errorf("%w: account %d is not declared in %q, use 'acc open'", accounts.ErrNotFound, id, r.path)
	}
	return r.Accounts[i], nil
}

// open declares a new account with the next free id.
func (r *registry) open(a accounts.Account) accounts.Account {
	a.ID = 1
	for _, x := range r.Accounts {
		a.ID = max(a.ID, x.ID+1)
	}
	r.Accounts = append(r.Accounts, a)
	return a
}

func (r *registry) save() error { return writeJSON(r.path, r) }
