package accounts

import (
	"errors"
	"fmt"
	"time"

	"github.com/etnz/accounts/date"
	"github.com/shopspring/decimal"
)

// ImportRecord is one line of an external export (e.g. a bank CSV).
type ImportRecord struct {
	PostingDate       time.Time       `json:"postingDate"`
	ValueChange       decimal.Decimal `json:"valueChange"`
	ContractorDetails string          `json:"contractorDetails,omitempty"`
	Description       string          `json:"description,omitempty"`
	Key               string          `json:"key,omitempty"`
}

// Day returns the calendar day of the record.
func (r ImportRecord) Day() date.Date { return date.Of(r.PostingDate) }

// Entry converts the record into a new entry of account.
func (r ImportRecord) Entry(accountID int) Entry {
	return Entry{AccountID: accountID, PostingDate: r.PostingDate, ValueChange: r.ValueChange, Key: r.Key}
}

// ImportRequest is a batch of records for one account.
type ImportRequest struct {
	AccountID int            `json:"accountId"`
	Records   []ImportRecord `json:"records"`
}

// Validate returns an error if any record is not expressed in UTC.
func (r ImportRequest) Validate() error {
	var errs error
	for i, rec := range r.Records {
		if err := checkUTC(rec.PostingDate); err != nil {
			errs = errors.Join(errs, fmt.Errorf("record %d: %w", i, err))
		}
	}
	return errs
}

// Span returns the range of days covered by the records.
func (r ImportRequest) Span() (date.Range, bool) {
	if len(r.Records) == 0 {
		return date.Range{}, false
	}
	lo, hi := r.Records[0].Day(), r.Records[0].Day()
	for _, rec := range r.Records[1:] {
		d := rec.Day()
		if d.Before(lo) {
			lo = d
		}
		if d.After(hi) {
			hi = d
		}
	}
	return date.NewRange(lo, hi), true
}

// Reason tells why a record is reported as a conflict.
type Reason string

const (
	ExactMatch       Reason = "Exact match"
	ImportNotFound   Reason = "Import not found in existing"
	ExistingNotFound Reason = "Existing not found in import"
)

// Conflict is one record of a day that could not be imported automatically.
type Conflict struct {
	AccountID int           `json:"accountId"`
	Import    *ImportRecord `json:"import,omitempty"`
	Existing  *Entry        `json:"existing,omitempty"`
	Reason    Reason        `json:"reason"`
}

// DayStatus is the outcome of reconciling one day.
type DayStatus int

const (
	// DaySkipped days are fully matched: already imported.
	DaySkipped DayStatus = iota
	// DayImport days have no existing entries: every record is imported.
	DayImport
	// DayConflict days have unmatched records on either side: nothing is imported.
	DayConflict
)

func (s DayStatus) String() string {
	switch s {
	case DaySkipped:
		return "skipped"
	case DayImport:
		return "import"
	case DayConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Match pairs an import record with the existing entry it duplicates.
type Match struct {
	Import   ImportRecord
	Existing Entry
}

// DayReport is the classification of one day's records.
type DayReport struct {
	Day          date.Date
	Status       DayStatus
	Matches      []Match
	ImportOnly   []ImportRecord
	ExistingOnly []Entry
}

// Reconciliation is the outcome of Reconcile, days newest first.
type Reconciliation struct {
	Days []DayReport
	// Outside holds the existing entries posted out of the records' span.
	// They give context but are never matched nor reported.
	Outside []Entry
}

// Importable returns the records to add, newest day first, in input order within a day.
func (r Reconciliation) Importable() []ImportRecord {
	var out []ImportRecord
	for _, d := range r.Days {
		if d.Status == DayImport {
			out = append(out, d.ImportOnly...)
		}
	}
	return out
}

// Conflicts returns every record of every conflicting day.
func (r Reconciliation) Conflicts(accountID int) []Conflict {
	var out []Conflict
	for _, d := range r.Days {
		if d.Status != DayConflict {
			continue
		}
		for _, m := range d.Matches {
			out = append(out, Conflict{AccountID: accountID, Import: &m.Import, Existing: &m.Existing, Reason: ExactMatch})
		}
		for _, rec := range d.ImportOnly {
			out = append(out, Conflict{AccountID: accountID, Import: &rec, Reason: ImportNotFound})
		}
		for _, e := range d.ExistingOnly {
			out = append(out, Conflict{AccountID: accountID, Existing: &e, Reason: ExistingNotFound})
		}
	}
	return out
}

// groupKey identifies records that are interchangeable for matching.
type groupKey struct {
	key    string
	change string
}

func newGroupKey(key string, change decimal.Decimal) groupKey {
	// String() normalizes trailing zeros, 100 and 100.00 are the same group.
	return groupKey{key: key, change: change.String()}
}

// Reconcile classifies import records against existing entries, day by day,
// from the newest to the oldest day of the records.
//
// Within a day records are grouped by (key, value change) as multisets: as many
// pairs as the smaller side are exact matches, leftovers are import-only or
// existing-only. A day with no existing entry is imported, a fully matched day
// is skipped, any other day is a conflict and nothing from it is imported.
// Existing entries outside the records' span are returned in Outside.
//
// Reconcile does not mutate anything.
func Reconcile(records []ImportRecord, existing []Entry) Reconciliation {
	var rec Reconciliation
	span, ok := ImportRequest{Records: records}.Span()
	if !ok {
		rec.Outside = existing
		return rec
	}

	imports := make(map[date.Date][]ImportRecord)
	stored := make(map[date.Date][]Entry)
	for _, r := range records {
		imports[r.Day()] = append(imports[r.Day()], r)
	}
	for _, e := range existing {
		d := e.Day()
		if !span.Contains(d) {
			rec.Outside = append(rec.Outside, e)
			continue
		}
		stored[d] = append(stored[d], e)
	}

	for d := range span.Backward() {
		if len(imports[d]) == 0 && len(stored[d]) == 0 {
			continue
		}
		rec.Days = append(rec.Days, reconcileDay(d, imports[d], stored[d]))
	}
	return rec
}

func reconcileDay(day date.Date, imports []ImportRecord, existing []Entry) DayReport {
	report := DayReport{Day: day}
	if len(existing) == 0 {
		report.Status = DayImport
		report.ImportOnly = imports
		return report
	}

	// groups keep their first appearance order so that reports are stable.
	var order []groupKey
	byImport := make(map[groupKey][]ImportRecord)
	byExisting := make(map[groupKey][]Entry)
	for _, r := range imports {
		k := newGroupKey(r.Key, r.ValueChange)
		if _, ok := byImport[k]; !ok {
			if _, seen := byExisting[k]; !seen {
				order = append(order, k)
			}
		}
		byImport[k] = append(byImport[k], r)
	}
	for _, e := range existing {
		k := newGroupKey(e.Key, e.ValueChange)
		if _, ok := byExisting[k]; !ok {
			if _, seen := byImport[k]; !seen {
				order = append(order, k)
			}
		}
		byExisting[k] = append(byExisting[k], e)
	}

	for _, k := range order {
		is, es := byImport[k], byExisting[k]
		n := min(len(is), len(es))
		for i := range n {
			report.Matches = append(report.Matches, Match{Import: is[i], Existing: es[i]})
		}
		report.ImportOnly = append(report.ImportOnly, is[n:]...)
		report.ExistingOnly = append(report.ExistingOnly, es[n:]...)
	}

	if len(report.ImportOnly) == 0 && len(report.ExistingOnly) == 0 {
		report.Status = DaySkipped
	} else {
		report.Status = DayConflict
	}
	return report
}
