package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/accounts"
	"github.com/etnz/accounts/date"
	"github.com/etnz/accounts/renderer"
	"github.com/google/subcommands"
)

// loadLedger opens the account and reads its ledger.
func loadLedger(ctx context.Context, id int) (accounts.Account, *accounts.Ledger, error) {
	account, err := openAccount(id)
	if err != nil {
		return account, nil, err
	}
	repo, closer, err := openRepository(ctx)
	if err != nil {
		return account, nil, err
	}
	defer closer()
	ledger, err := accounts.LoadLedger(ctx, repo, account)
	return account, ledger, err
}

// displayCurrency is the currency of the account values, none for quantities.
func displayCurrency(account accounts.Account) string {
	if account.Kind.MultiStream() {
		return ""
	}
	return *currency
}

type listCmd struct {
	account int
	from    string
	to      string
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list the entries of an account" }
func (*listCmd) Usage() string {
	return `acc list -a <account> [-from <date>] [-to <date>]

  Lists the entries of an account, newest first, with their running balance.
`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.account, "a", 0, "Account id")
	f.StringVar(&c.from, "from", "", "First day to list, defaults to the first entry")
	f.StringVar(&c.to, "to", "", "Last day to list, defaults to the last entry")
}

func (c *listCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	from, to := date.Min, date.Max
	var err error
	if c.from != "" {
		if from, err = date.Parse(c.from); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	if c.to != "" {
		if to, err = date.Parse(c.to); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	account, ledger, err := loadLedger(ctx, c.account)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.Entries(account, ledger.GetRange(from, to), displayCurrency(account)))
	return subcommands.ExitSuccess
}

type balanceCmd struct {
	account int
	day     string
	key     string
}

func (*balanceCmd) Name() string     { return "balance" }
func (*balanceCmd) Synopsis() string { return "print the balance of an account on a day" }
func (*balanceCmd) Usage() string {
	return `acc balance -a <account> [-d <date>] [-k <key>]

  Prints the balance of an account at the end of a day. Stock and bond
  accounts print the quantity held of every key, or of key only.
`
}

func (c *balanceCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.account, "a", 0, "Account id")
	f.StringVar(&c.day, "d", date.Today().String(), "Day of the balance")
	f.StringVar(&c.key, "k", "", "Ticker or bond identifier")
}

func (c *balanceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	keys := []string{c.key}
	if account.Kind.MultiStream() && c.key == "" {
		keys = ledger.StoredKeys()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Balance on %s\n\n", day)
	fmt.Fprintln(&b, "| Key | Balance |")
	fmt.Fprintln(&b, "|:---|---:|")
	for _, k := range keys {
		v := ledger.BalanceAsOf(k, day)
		if k == "" {
			k = account.Name
		}
		fmt.Fprintf(&b, "| %s | %s |\n", k, renderer.Amount(v, displayCurrency(account)))
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
