package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/etnz/accounts"
)

// ImportResult renders the outcome of an import, with its conflicts.
func ImportResult(r accounts.ImportResult, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Import into account %d\n\n", r.AccountID)
	fmt.Fprintln(&b, "| Imported | Failed | Conflicts |")
	fmt.Fprintln(&b, "|---:|---:|---:|")
	fmt.Fprintf(&b, "| %d | %d | %d |\n", r.Imported, r.Failed, len(r.Conflicts))

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprintf(w, "\n## Conflicts\n\n")
		fmt.Fprintln(w, "| # | Date | Reason | Imported | Existing |")
		fmt.Fprintln(w, "|---:|:---|:---|---:|---:|")
		for i, c := range r.Conflicts {
			fmt.Fprintf(w, "| %d | %s | %s | %s | %s |\n", i+1, conflictDay(c), c.Reason, imported(c, currency), existing(c, currency))
		}
		return len(r.Conflicts) > 0
	})
	errorList(&b, r.Errors)
	return b.String()
}

// ResolutionResult renders the outcome of applying conflict resolutions.
func ResolutionResult(r accounts.ResolutionResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Resolutions for account %d\n\n", r.AccountID)
	fmt.Fprintln(&b, "| Added | Removed | Failed |")
	fmt.Fprintln(&b, "|---:|---:|---:|")
	fmt.Fprintf(&b, "| %d | %d | %d |\n", r.Added, r.Removed, r.Failed)
	errorList(&b, r.Errors)
	return b.String()
}

// Conflict renders one conflict as a single line.
func Conflict(c accounts.Conflict, currency string) string {
	return fmt.Sprintf("%s %s: imported %s, existing %s", conflictDay(c), c.Reason, imported(c, currency), existing(c, currency))
}

func errorList(w io.Writer, errs []string) {
	ConditionalBlock(w, func(w io.Writer) bool {
		fmt.Fprintf(w, "\n## Errors\n\n")
		for _, e := range errs {
			fmt.Fprintf(w, "- %s\n", e)
		}
		return len(errs) > 0
	})
}

func conflictDay(c accounts.Conflict) string {
	if c.Import != nil {
		return c.Import.Day().String()
	}
	if c.Existing != nil {
		return c.Existing.Day().String()
	}
	return ""
}

func imported(c accounts.Conflict, currency string) string {
	if c.Import == nil {
		return "-"
	}
	s := Signed(c.Import.ValueChange, currency)
	if c.Import.Key != "" {
		s = c.Import.Key + " " + s
	}
	if c.Import.Description != "" {
		s += " " + c.Import.Description
	}
	return s
}

func existing(c accounts.Conflict, currency string) string {
	if c.Existing == nil {
		return "-"
	}
	s := fmt.Sprintf("#%d %s", c.Existing.ID, Signed(c.Existing.ValueChange, currency))
	if c.Existing.Key != "" {
		s = fmt.Sprintf("#%d %s %s", c.Existing.ID, c.Existing.Key, Signed(c.Existing.ValueChange, currency))
	}
	return s
}
