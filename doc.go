// Package accounts tracks financial accounts (cash, loan, stock, bond) as
// date-ordered ledgers and merges bank exports into them.
//
// The core functionalities include:
//   - Ledger: entries stored newest-first, each carrying the caller supplied
//     ValueChange and the running balance Value computed by the ledger. Add,
//     Update and Remove keep every balance consistent, including when an entry
//     is inserted before the newest one.
//   - Multi-stream ledgers: stock and bond accounts partition entries by key
//     (ticker, bond identifier), each key having an independent balance.
//   - Valuation: daily value series of multi-stream ledgers from an injected
//     PriceLookup.
//   - Reconciliation: import records are compared day by day with existing
//     entries. Days already imported are skipped, new days are imported and
//     ambiguous days are reported as conflicts, to be settled with a Resolver.
//
// Ledgers are in-memory snapshots of an EntryRepository. They are not safe for
// concurrent mutation: writes to an account must be serialized by the caller,
// as the worker package does.
package accounts
