// Package renderer formats ledgers and import reports as markdown.
package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/accounts"
)

// Entries renders the entries of account, newest first.
func Entries(account accounts.Account, entries []accounts.Entry, currency string) string {
	var b strings.Builder
	multi := account.Kind.MultiStream()
	fmt.Fprintf(&b, "# %s\n\n", title(account))
	if len(entries) == 0 {
		fmt.Fprintln(&b, "No entries.")
		return b.String()
	}
	if multi {
		fmt.Fprintln(&b, "| ID | Date | Key | Change | Quantity |")
		fmt.Fprintln(&b, "|---:|:---|:---|---:|---:|")
		for _, e := range entries {
			fmt.Fprintf(&b, "| %d | %s | %s | %s | %s |\n", e.ID, e.Day(), e.Key, e.ValueChange, e.Value)
		}
		return b.String()
	}
	fmt.Fprintln(&b, "| ID | Date | Change | Balance |")
	fmt.Fprintln(&b, "|---:|:---|---:|---:|")
	for _, e := range entries {
		fmt.Fprintf(&b, "| %d | %s | %s | %s |\n", e.ID, e.Day(), Signed(e.ValueChange, currency), Amount(e.Value, currency))
	}
	return b.String()
}

func title(account accounts.Account) string {
	name := account.Name
	if name == "" {
		name = fmt.Sprintf("Account %d", account.ID)
	}
	if account.Label != "" {
		return fmt.Sprintf("%s (%s)", name, account.Label)
	}
	return name
}
