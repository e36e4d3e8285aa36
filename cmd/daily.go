package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/accounts"
	"github.com/etnz/accounts/date"
	"github.com/etnz/accounts/price"
	"github.com/etnz/accounts/renderer"
	"github.com/google/subcommands"
)

// valuationFlags select the prices and instruments of a valuation.
type valuationFlags struct {
	account     int
	instruments string
	url         string
	path        string
	eodhd       string
}

func (v *valuationFlags) setFlags(f *flag.FlagSet) {
	f.IntVar(&v.account, "a", 0, "Account id")
	f.StringVar(&v.instruments, "instruments", "", "JSON file listing the instruments details (key, name, currency, multiplier)")
	f.StringVar(&v.url, "url", "", "Price URL template, with {key} and {date} placeholders. Prices are read from -prices when empty")
	f.StringVar(&v.path, "path", "$.price", "JSONPath of the price in the -url responses")
	f.StringVar(&v.eodhd, "eodhd-api-key", env(EnvEODHD, ""), "EODHD API key, to value keys with the end of day prices of eodhd.com")
}

// lookup returns the price lookup selected by the flags.
func (v *valuationFlags) lookup() (accounts.PriceLookup, error) {
	if v.eodhd != "" {
		return price.EODHD(v.eodhd, *currency).Lookup, nil
	}
	if v.url != "" {
		return price.NewHTTP(v.url, v.path, *currency).Lookup, nil
	}
	s, err := price.LoadStatic(*pricesFile)
	if err != nil {
		return nil, fmt.Errorf("cannot read prices: %w", err)
	}
	return s.Lookup, nil
}

// details returns the instrument of every key in ledger. Keys without
// declared details are valued with a multiplier of 1.
func (v *valuationFlags) details(ledger *accounts.Ledger) (map[string]accounts.Instrument, error) {
	var declared []accounts.Instrument
	if v.instruments != "" {
		if err := readJSON(v.instruments, &declared); err != nil {
			return nil, fmt.Errorf("cannot read instruments: %w", err)
		}
	}
	m := make(map[string]accounts.Instrument)
	for _, i := range declared {
		m[i.Key] = i
	}
	for _, k := range ledger.StoredKeys() {
		if _, ok := m[k]; !ok {
			m[k] = accounts.Instrument{Key: k}
		}
	}
	return m, nil
}

type dailyCmd struct {
	valuationFlags
	from string
	to   string
}

func (*dailyCmd) Name() string     { return "daily" }
func (*dailyCmd) Synopsis() string { return "value a stock or bond account day by day" }
func (*dailyCmd) Usage() string {
	return `acc daily -a <account> [-from <date>] [-to <date>] [-instruments <file>] [-url <template> -path <jsonpath>]

  Prints the value of a stock or bond account for every day of a period:
  the quantity held of every key times its price. Days without a price use
  the last known one.
`
}

func (c *dailyCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.StringVar(&c.from, "from", "", "First day, defaults to the first entry")
	f.StringVar(&c.to, "to", date.Today().String(), "Last day")
}

func (c *dailyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	to, err := date.Parse(c.to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	account, ledger, err := loadLedger(ctx, c.account)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	from := to
	if oldest, ok := ledger.Oldest(); ok {
		from = oldest.Day()
	}
	if c.from != "" {
		if from, err = date.Parse(c.from); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	lookup, err := c.lookup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	details, err := c.details(ledger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	values, err := ledger.DailyValues(ctx, from, to, details, lookup)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing daily values: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.DailyValues(account, values, *currency))
	return subcommands.ExitSuccess
}

type holdingsCmd struct {
	valuationFlags
	day string
}

func (*holdingsCmd) Name() string     { return "holdings" }
func (*holdingsCmd) Synopsis() string { return "display the positions of a stock or bond account" }
func (*holdingsCmd) Usage() string {
	return `acc holdings -a <account> [-d <date>] [-instruments <file>] [-url <template> -path <jsonpath>]

  Displays the quantity, price and value of every key held at the end of a day.
`
}

func (c *holdingsCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.StringVar(&c.day, "d", date.Today().String(), "Day of the holdings")
}

func (c *holdingsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	day, err := date.Parse(c.day)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	account, ledger, err := loadLedger(ctx, c.account)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	lookup, err := c.lookup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	details, err := c.details(ledger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	holdings, err := ledger.Holdings(ctx, day, details, lookup)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing holdings: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.Holdings(account, day, holdings))
	return subcommands.ExitSuccess
}
