package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/accounts"
	"github.com/etnz/accounts/date"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// entryFlags are the flags shared by the commands editing entries.
type entryFlags struct {
	account int
	day     string
	change  string
	key     string
}

func (e *entryFlags) setFlags(f *flag.FlagSet) {
	f.IntVar(&e.account, "a", 0, "Account id")
	f.StringVar(&e.day, "d", date.Today().String(), "Posting date (YYYY-MM-DD)")
	f.StringVar(&e.change, "v", "", "Value change, negative for an outflow")
	f.StringVar(&e.key, "k", "", "Ticker or bond identifier, for stock and bond accounts")
}

// book opens the account and the store.
func (e *entryFlags) book(ctx context.Context) (accounts.Account, *accounts.Book, func() error, error) {
	account, err := openAccount(e.account)
	if err != nil {
		return account, nil, nil, err
	}
	repo, closer, err := openRepository(ctx)
	if err != nil {
		return account, nil, nil, err
	}
	return account, &accounts.Book{Repo: repo}, closer, nil
}

type addCmd struct{ entryFlags }

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "add an entry to an account" }
func (*addCmd) Usage() string {
	return `acc add -a <account> [-d <date>] -v <change> [-k <key>]

  Adds an entry to the account and updates the balances of every newer entry.

Usage Examples:
$ acc add -a 1 -d 2024-01-02 -v -12.50
$ acc add -a 2 -k AAPL -v 10
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) { c.setFlags(f) }

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	day, err := date.Parse(c.day)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	change, err := decimal.NewFromString(c.change)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing value change %q: %v\n", c.change, err)
		return subcommands.ExitUsageError
	}
	account, book, closer, err := c.book(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closer()

	e, err := book.Add(ctx, account, accounts.Entry{AccountID: account.ID, PostingDate: day.Time(), ValueChange: change, Key: c.key})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error adding entry: %v\n", err)
		return subcommands.ExitFailure
	}
	if e.ID == 0 {
		fmt.Println("Duplicate entry skipped")
		return subcommands.ExitSuccess
	}
	fmt.Printf("Added %v\n", e)
	return subcommands.ExitSuccess
}

type updateCmd struct {
	entryFlags
	id int
}

func (*updateCmd) Name() string     { return "update" }
func (*updateCmd) Synopsis() string { return "modify an entry of an account" }
func (*updateCmd) Usage() string {
	return `acc update -a <account> -id <entry> [-d <date>] [-v <change>] [-k <key>]

  Modifies the date, value change or key of an entry. Flags that are not set
  keep their current value. Stock entries cannot change their key: remove and
  add them instead.
`
}

func (c *updateCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.IntVar(&c.id, "id", 0, "Entry id")
}

func (c *updateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	account, book, closer, err := c.book(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closer()

	ledger, err := accounts.LoadLedger(ctx, book.Repo, account)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	e, ok := ledger.Entry(c.id)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: entry %d does not exist in account %d\n", c.id, account.ID)
		return subcommands.ExitFailure
	}

	var parseErr error
	f.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "d":
			day, err := date.Parse(c.day)
			if err != nil {
				parseErr = err
			}
			e.PostingDate = day.Time()
		case "v":
			change, err := decimal.NewFromString(c.change)
			if err != nil {
				parseErr = err
			}
			e.ValueChange = change
		case "k":
			e.Key = c.key
		}
	})
	if parseErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", parseErr)
		return subcommands.ExitUsageError
	}

	updated, err := book.Update(ctx, account, e)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error updating entry: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Updated %v\n", updated)
	return subcommands.ExitSuccess
}

type removeCmd struct {
	account int
	id      int
}

func (*removeCmd) Name() string     { return "remove" }
func (*removeCmd) Synopsis() string { return "remove an entry from an account" }
func (*removeCmd) Usage() string {
	return `acc remove -a <account> -id <entry>

  Removes an entry and updates the balances of every newer entry.
`
}

func (c *removeCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.account, "a", 0, "Account id")
	f.IntVar(&c.id, "id", 0, "Entry id")
}

func (c *removeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	account, book, closer, err := (&entryFlags{account: c.account}).book(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closer()

	e, err := book.Remove(ctx, account, c.id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error removing entry: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Removed %v\n", e)
	return subcommands.ExitSuccess
}
