package price

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/etnz/accounts"
	"github.com/etnz/accounts/date"
)

func TestReadStatic(t *testing.T) {
	const jsonl = `{"date":"2024-01-02","key":"AAPL","price":185.5,"currency":"USD"}
{"date":"2024-01-05","key":"AAPL","price":"181.2","currency":"USD"}
{"date":"2024-01-03","key":"FR001","price":98.75}
`
	s, err := ReadStatic(strings.NewReader(jsonl))
	if err != nil {
		t.Fatalf("ReadStatic() returned unexpected error: %v", err)
	}
	if s.Keys() != 2 {
		t.Errorf("Keys() = %d, want 2", s.Keys())
	}

	tests := []struct {
		key      string
		day      string
		want     string // empty for no price
		currency string
	}{
		{"AAPL", "2024-01-01", "", ""},
		{"AAPL", "2024-01-02", "185.5", "USD"},
		{"AAPL", "2024-01-04", "185.5", "USD"},
		{"AAPL", "2024-01-05", "181.2", "USD"},
		{"AAPL", "2025-01-01", "181.2", "USD"},
		{"FR001", "2024-01-03", "98.75", ""},
		{"MSFT", "2024-01-03", "", ""},
	}
	for _, tt := range tests {
		p, err := s.Lookup(context.Background(), tt.key, date.MustParse(tt.day).EndOfDay())
		if err != nil {
			t.Fatalf("Lookup(%s, %s) returned unexpected error: %v", tt.key, tt.day, err)
		}
		if tt.want == "" {
			if p != nil {
				t.Errorf("Lookup(%s, %s) = %v, want nil", tt.key, tt.day, p)
			}
			continue
		}
		if p == nil || p.Value.String() != tt.want || p.Currency != tt.currency {
			t.Errorf("Lookup(%s, %s) = %v, want %s %s", tt.key, tt.day, p, tt.want, tt.currency)
		}
	}
}

func TestReadStatic_Invalid(t *testing.T) {
	for _, jsonl := range []string{
		`{"date":"2024-01-02","price":1}`,
		`{"key":"A","price":1}`,
		`{"date":"2024-01-02","key":"A","price":1`,
	} {
		if _, err := ReadStatic(strings.NewReader(jsonl)); err == nil {
			t.Errorf("ReadStatic(%s) succeeded, want an error", jsonl)
		}
	}
	_, err := ReadStatic(strings.NewReader(`{"key":"A","price":1}`))
	if !errors.Is(err, accounts.ErrInvalidInput) {
		t.Errorf("ReadStatic() = %v, want ErrInvalidInput", err)
	}
}
