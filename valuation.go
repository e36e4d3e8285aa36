package accounts

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/etnz/accounts/date"
	"github.com/shopspring/decimal"
)

// Price is the unit price of a key at some point in time.
type Price struct {
	Value    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
}

// PriceLookup returns the price of key as of a given instant, or nil if unknown.
//
// It is only used for valuation, never by the ledger mutation path.
type PriceLookup func(ctx context.Context, key string, asOf time.Time) (*Price, error)

// Instrument holds the static details of a key (a ticker or a bond).
type Instrument struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
	// Multiplier converts a quantity times a price into a value, e.g. the
	// nominal of a bond quoted in percent. Zero means 1.
	Multiplier decimal.Decimal `json:"multiplier"`
}

func (i Instrument) multiplier() decimal.Decimal {
	if i.Multiplier.IsZero() {
		return decimal.NewFromInt(1)
	}
	return i.Multiplier
}

// DailyValue is the total value of a multi-stream ledger on one day.
type DailyValue struct {
	Day   date.Date       `json:"date"`
	Value decimal.Decimal `json:"value"`
}

// Holding is the position of one key on one day.
type Holding struct {
	Key      string          `json:"key"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Value    decimal.Decimal `json:"value"`
	Currency string          `json:"currency"`
}

// streams splits entries per key, oldest first.
func (l *Ledger) streams() map[string][]Entry {
	m := make(map[string][]Entry)
	for _, e := range slices.Backward(l.entries) {
		k := l.keyOf(e)
		m[k] = append(m[k], e)
	}
	return m
}

func (l *Ledger) instruments(keys []string, details map[string]Instrument) error {
	for _, k := range keys {
		if _, ok := details[k]; !ok {
			return fmt.Errorf("%w: no instrument details for key %q in account %d", ErrInvalidInput, k, l.accountID)
		}
	}
	return nil
}

// DailyValues returns, for every day between start and end, the sum over all
// keys of the quantity held at the end of that day times its price.
//
// The series is dense. A key with no entry on a day carries its last known
// quantity forward, a day without price carries the last known price of that
// key forward. The lookup is called day by day, then key by key in sorted
// order, and receives ctx.
func (l *Ledger) DailyValues(ctx context.Context, start, end date.Date, details map[string]Instrument, lookup PriceLookup) ([]DailyValue, error) {
	keys := l.StoredKeys()
	if err := l.instruments(keys, details); err != nil {
		return nil, err
	}
	streams := l.streams()

	next := make(map[string]int, len(keys))
	quantity := make(map[string]decimal.Decimal, len(keys))
	lastPrice := make(map[string]decimal.Decimal, len(keys))

	r := date.NewRange(start, end)
	values := make([]DailyValue, 0, r.Len())
	for day := range r.Days() {
		total := decimal.Zero
		for _, k := range keys {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			s := streams[k]
			for next[k] < len(s) && !s[next[k]].Day().After(day) {
				quantity[k] = s[next[k]].Value
				next[k]++
			}
			p, err := lookup(ctx, k, day.EndOfDay())
			if err != nil {
				return nil, fmt.Errorf("cannot get price of %q on %s: %w", k, day, err)
			}
			if p != nil {
				lastPrice[k] = p.Value
			}
			total = total.Add(quantity[k].Mul(lastPrice[k]).Mul(details[k].multiplier()))
		}
		values = append(values, DailyValue{Day: day, Value: total})
	}
	return values, nil
}

// Holdings returns the position of every key held at the end of day.
// Keys with a zero quantity are omitted.
func (l *Ledger) Holdings(ctx context.Context, day date.Date, details map[string]Instrument, lookup PriceLookup) ([]Holding, error) {
	keys := l.StoredKeys()
	if err := l.instruments(keys, details); err != nil {
		return nil, err
	}
	var holdings []Holding
	for _, k := range keys {
		q := l.BalanceAsOf(k, day)
		if q.IsZero() {
			continue
		}
		p, err := lookup(ctx, k, day.EndOfDay())
		if err != nil {
			return nil, fmt.Errorf("cannot get price of %q on %s: %w", k, day, err)
		}
		h := Holding{Key: k, Quantity: q, Currency: details[k].Currency}
		if p != nil {
			h.Price = p.Value
			h.Value = q.Mul(p.Value).Mul(details[k].multiplier())
			if p.Currency != "" {
				h.Currency = p.Currency
			}
		}
		holdings = append(holdings, h)
	}
	return holdings, nil
}
