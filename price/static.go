// Package price provides accounts.PriceLookup implementations.
package price

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/etnz/accounts"
	"github.com/etnz/accounts/date"
	"github.com/shopspring/decimal"
)

// Record is one line of a price file.
type Record struct {
	Date     date.Date       `json:"date"`
	Key      string          `json:"key"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency,omitempty"`
}

// Static holds known prices in memory.
type Static struct {
	prices   map[string]*date.History[decimal.Decimal]
	currency map[string]string
}

// NewStatic returns an empty Static.
func NewStatic() *Static {
	return &Static{
		prices:   make(map[string]*date.History[decimal.Decimal]),
		currency: make(map[string]string),
	}
}

// Set records the price of key on day. The last currency set for a key wins.
func (s *Static) Set(key string, day date.Date, price decimal.Decimal, currency string) {
	h, ok := s.prices[key]
	if !ok {
		h = new(date.History[decimal.Decimal])
		s.prices[key] = h
	}
	h.Append(day, price)
	if currency != "" {
		s.currency[key] = currency
	}
}

// Keys returns the number of keys with at least one price.
func (s *Static) Keys() int { return len(s.prices) }

// Lookup implements accounts.PriceLookup: it returns the price known on the day
// of asOf or the most recent one before, nil if there is none.
func (s *Static) Lookup(_ context.Context, key string, asOf time.Time) (*accounts.Price, error) {
	h, ok := s.prices[key]
	if !ok {
		return nil, nil
	}
	v, ok := h.ValueAsOf(date.Of(asOf))
	if !ok {
		return nil, nil
	}
	return &accounts.Price{Value: v, Currency: s.currency[key]}, nil
}

// ReadStatic decodes a JSONL stream of Records.
func ReadStatic(r io.Reader) (*Static, error) {
	s := NewStatic()
	dec := json.NewDecoder(bufio.NewReader(r))
	for line := 1; ; line++ {
		var rec Record
		err := dec.Decode(&rec)
		if err == io.EOF {
			return s, nil
		}
		if err != nil {
			return nil, fmt.Errorf("price record %d: %w", line, err)
		}
		if rec.Key == "" || rec.Date.IsZero() {
			return nil, fmt.Errorf("price record %d: %w: missing date or key", line, accounts.ErrInvalidInput)
		}
		s.Set(rec.Key, rec.Date, rec.Price, rec.Currency)
	}
}

// LoadStatic reads a price file.
func LoadStatic(path string) (*Static, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadStatic(f)
}

var _ accounts.PriceLookup = NewStatic().Lookup
