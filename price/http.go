package price

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/accounts"
	"github.com/etnz/accounts/date"
	"github.com/shopspring/decimal"
)

// HTTP looks prices up from a JSON endpoint.
//
// URL is a template where "{key}" and "{date}" are replaced by the escaped key
// and the day (YYYY-MM-DD). Path is a JSONPath expression selecting the price
// in the response, for instance "$.data[-1:].close".
type HTTP struct {
	URL      string
	Path     string
	Currency string
	Client   *http.Client
}

// NewHTTP returns an HTTP lookup whose responses are cached for the day in
// the system temporary directory.
func NewHTTP(urlTemplate, path, currency string) *HTTP {
	return &HTTP{URL: urlTemplate, Path: path, Currency: currency, Client: daily(os.TempDir())}
}

// EODHD returns a lookup on the end of day prices of eodhd.com. Keys are
// EODHD tickers such as "AAPL.US", prices are adjusted closes.
func EODHD(apiKey, currency string) *HTTP {
	addr := "https://eodhd.com/api/eod/{key}?fmt=json&api_token=" + url.QueryEscape(apiKey) + "&from={date}&to={date}"
	return NewHTTP(addr, "$[-1:].adjusted_close", currency)
}

func (h *HTTP) address(key string, day date.Date) string {
	return strings.NewReplacer("{key}", url.PathEscape(key), "{date}", day.String()).Replace(h.URL)
}

// Lookup implements accounts.PriceLookup. A 404 means the price is unknown.
func (h *HTTP) Lookup(ctx context.Context, key string, asOf time.Time) (*accounts.Price, error) {
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	var jobj any
	found, err := jwget(ctx, client, h.address(key, date.Of(asOf)), &jobj)
	if err != nil || !found {
		return nil, err
	}
	jval, err := jsonpath.Get(h.Path, jobj)
	if err != nil {
		return nil, fmt.Errorf("cannot read %q in price of %q: %w", h.Path, key, err)
	}
	// jsonpath returns a list for filters and slices: keep the first answer.
	if jlist, ok := jval.([]any); ok {
		if len(jlist) == 0 {
			return nil, nil
		}
		jval = jlist[0]
	}
	v, err := toDecimal(jval)
	if err != nil {
		return nil, fmt.Errorf("cannot read price of %q: %w", key, err)
	}
	return &accounts.Price{Value: v, Currency: h.Currency}, nil
}

func toDecimal(jval any) (decimal.Decimal, error) {
	switch v := jval.(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case json.Number:
		return decimal.NewFromString(v.String())
	case string:
		// some APIs use a decimal comma.
		s := strings.ReplaceAll(strings.ReplaceAll(v, ",", "."), " ", "")
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return decimal.Zero, fmt.Errorf("invalid price %q", v)
		}
		return decimal.NewFromString(s)
	default:
		return decimal.Zero, fmt.Errorf("price is neither a number nor a string: %v", jval)
	}
}

// jwget GETs addr and unmarshals the JSON response into data. It returns false
// if the resource does not exist.
func jwget(ctx context.Context, client *http.Client, addr string, data any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return false, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("cannot http GET %v%v: %v", req.URL.Host, req.URL.Path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(data); err != nil {
		return false, fmt.Errorf("cannot decode %v%v: %w", req.URL.Host, req.URL.Path, err)
	}
	return true, nil
}

var _ accounts.PriceLookup = (*HTTP)(nil).Lookup
