package price

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/etnz/accounts/date"
)

func server(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/AAPL/2024-01-02":
			fmt.Fprint(w, `{"data":[{"close":184.25},{"close":185.5}]}`)
		case "/CW8/2024-01-02":
			fmt.Fprint(w, `{"data":[{"close":"512,30"}]}`)
		case "/EMPTY/2024-01-02":
			fmt.Fprint(w, `{"data":[]}`)
		case "/BAD/2024-01-02":
			fmt.Fprint(w, `{"data":[{"close":true}]}`)
		case "/DOWN/2024-01-02":
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTP_Lookup(t *testing.T) {
	var hits atomic.Int32
	srv := server(t, &hits)
	h := &HTTP{URL: srv.URL + "/{key}/{date}", Path: "$.data[-1:].close", Currency: "EUR", Client: daily(t.TempDir())}
	asOf := date.MustParse("2024-01-02").EndOfDay()
	ctx := context.Background()

	tests := []struct {
		key     string
		want    string
		wantErr bool
	}{
		{key: "AAPL", want: "185.5"},
		{key: "CW8", want: "512.3"},
		{key: "EMPTY"},
		{key: "MISSING"},
		{key: "BAD", wantErr: true},
		{key: "DOWN", wantErr: true},
	}
	for _, tt := range tests {
		p, err := h.Lookup(ctx, tt.key, asOf)
		if (err != nil) != tt.wantErr {
			t.Errorf("Lookup(%s) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			continue
		}
		switch {
		case tt.want == "" && p != nil:
			t.Errorf("Lookup(%s) = %v, want nil", tt.key, p)
		case tt.want != "" && (p == nil || p.Value.String() != tt.want || p.Currency != "EUR"):
			t.Errorf("Lookup(%s) = %v, want %s EUR", tt.key, p, tt.want)
		}
	}
}

func TestHTTP_Cache(t *testing.T) {
	var hits atomic.Int32
	srv := server(t, &hits)
	h := &HTTP{URL: srv.URL + "/{key}/{date}", Path: "$.data[0].close", Client: daily(t.TempDir())}
	asOf := date.MustParse("2024-01-02").EndOfDay()

	for range 3 {
		p, err := h.Lookup(context.Background(), "AAPL", asOf)
		if err != nil {
			t.Fatal(err)
		}
		if p == nil || p.Value.String() != "184.25" {
			t.Fatalf("Lookup() = %v, want 184.25", p)
		}
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server was hit %d times, want 1", n)
	}

	// errors are not cached.
	for range 2 {
		h.Lookup(context.Background(), "DOWN", asOf)
	}
	if n := hits.Load(); n != 3 {
		t.Errorf("server was hit %d times, want 3", n)
	}
}

func TestEODHD(t *testing.T) {
	h := EODHD("k3y", "USD")
	got := h.address("AAPL.US", date.MustParse("2024-01-02"))
	want := "https://eodhd.com/api/eod/AAPL.US?fmt=json&api_token=k3y&from=2024-01-02&to=2024-01-02"
	if got != want {
		t.Errorf("address() = %q, want %q", got, want)
	}
	if h.Currency != "USD" || h.Path != "$[-1:].adjusted_close" {
		t.Errorf("EODHD() = %+v", h)
	}
}
