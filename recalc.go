package accounts

import "github.com/shopspring/decimal"

// RecalculateSuffix fixes the running balance of every entry of partition key
// that is newer than or equal to entries[start].
//
// entries are newest-first: index 0 is the newest entry, the last index the
// oldest. Each value depends on the next-older entry of the same key, so the
// walk starts from the next-older same-key balance and moves toward index 0.
// Entries of other keys are skipped without ending the walk. A start beyond
// the oldest index is clamped to it.
func RecalculateSuffix(entries []Entry, start int, keyOf KeyFunc, key string) {
	if len(entries) == 0 {
		return
	}
	start = min(max(start, 0), len(entries)-1)

	balance := decimal.Zero
	for i := start + 1; i < len(entries); i++ {
		if keyOf(entries[i]) == key {
			balance = entries[i].Value
			break
		}
	}

	for i := start; i >= 0; i-- {
		if keyOf(entries[i]) != key {
			continue
		}
		balance = balance.Add(entries[i].ValueChange)
		entries[i].Value = balance
	}
}

// RecalculateAll recomputes the running balance of every entry, for every key.
func RecalculateAll(entries []Entry, keyOf KeyFunc) {
	balances := make(map[string]decimal.Decimal)
	for i := len(entries) - 1; i >= 0; i-- {
		k := keyOf(entries[i])
		b := balances[k].Add(entries[i].ValueChange)
		entries[i].Value = b
		balances[k] = b
	}
}
