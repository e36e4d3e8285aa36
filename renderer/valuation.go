package renderer

import (
	"bytes"

	"github.com/etnz/accounts"
	"github.com/etnz/accounts/date"
	md "github.com/nao1215/markdown"
	"github.com/shopspring/decimal"
)

// DailyValues renders a valuation series with the day to day change.
func DailyValues(account accounts.Account, values []accounts.DailyValue, currency string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Daily Values of " + title(account))

	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight},
		Header:    []string{"Date", "Value", "Change"},
	}
	prev := decimal.Zero
	for i, v := range values {
		change := "-"
		if i > 0 {
			change = Signed(v.Value.Sub(prev), currency)
		}
		table.Rows = append(table.Rows, []string{v.Day.String(), Amount(v.Value, currency), change})
		prev = v.Value
	}
	doc.Table(table)
	return doc.String()
}

// Holdings renders the positions held on day, with their total per currency.
func Holdings(account accounts.Account, day date.Date, holdings []accounts.Holding) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Holdings of " + title(account) + " on " + day.String())

	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"Key", "Quantity", "Price", "Value"},
	}
	totals := make(map[string]decimal.Decimal)
	var currencies []string
	for _, h := range holdings {
		table.Rows = append(table.Rows, []string{h.Key, h.Quantity.String(), Amount(h.Price, h.Currency), Amount(h.Value, h.Currency)})
		if _, ok := totals[h.Currency]; !ok {
			currencies = append(currencies, h.Currency)
		}
		totals[h.Currency] = totals[h.Currency].Add(h.Value)
	}
	for _, c := range currencies {
		table.Rows = append(table.Rows, []string{md.Bold("Total"), "", "", md.Bold(Amount(totals[c], c))})
	}
	doc.Table(table)
	return doc.String()
}
