package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/accounts"
	"github.com/google/subcommands"
)

type openCmd struct {
	kind   accounts.Kind
	name   string
	label  string
	userID int
}

func (*openCmd) Name() string     { return "open" }
func (*openCmd) Synopsis() string { return "declare a new account" }
func (*openCmd) Usage() string {
	return `acc open -k <kind> -name <name> [-label <label>] [-user <id>]

  Declares a new account in the accounts file and prints its id.
  Kinds are: cash, loan (currency accounts), stock and bond.
`
}

func (c *openCmd) SetFlags(f *flag.FlagSet) {
	f.TextVar(&c.kind, "k", accounts.Currency, "Kind of account: cash, loan, stock or bond")
	f.StringVar(&c.name, "name", "", "Name of the account")
	f.StringVar(&c.label, "label", "", "Category of the account, defaults to the kind")
	f.IntVar(&c.userID, "user", 0, "Owner of the account")
}

func (c *openCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.name == "" {
		fmt.Fprintln(os.Stderr, "Error: -name is required")
		return subcommands.ExitUsageError
	}
	if c.label == "" {
		c.label = strings.ToUpper(c.kind.String()[:1]) + c.kind.String()[1:]
	}
	r, err := loadRegistry(*accountsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	a := r.open(accounts.Account{UserID: c.userID, Name: c.name, Label: c.label, Kind: c.kind})
	if err := r.save(); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving accounts file: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Opened %s account %q with id %d\n", a.Kind, a.Name, a.ID)
	return subcommands.ExitSuccess
}

type accountsCmd struct{}

func (*accountsCmd) Name() string     { return "accounts" }
func (*accountsCmd) Synopsis() string { return "list declared accounts" }
func (*accountsCmd) Usage() string {
	return `acc accounts

  Lists the accounts declared in the accounts file.
`
}

func (*accountsCmd) SetFlags(*flag.FlagSet) {}

func (*accountsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	r, err := loadRegistry(*accountsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	var b strings.Builder
	fmt.Fprintln(&b, "# Accounts")
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "| ID | Name | Label | Kind |")
	fmt.Fprintln(&b, "|---:|:---|:---|:---|")
	for _, a := range r.Accounts {
		fmt.Fprintf(&b, "| %d | %s | %s | %s |\n", a.ID, a.Name, a.Label, a.Kind)
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
