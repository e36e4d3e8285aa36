package cmd

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/etnz/accounts"
	"github.com/etnz/accounts/renderer"
	"github.com/google/subcommands"
)

type importCmd struct {
	account   int
	conflicts string
	json      bool
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import a bank export into an account" }
func (*importCmd) Usage() string {
	return `acc import -a <account> [-c <conflicts.json>] [-json] <file.csv>...

  Imports CSV bank exports (date,amount[,contractor,description[,key]]).

  Days without any entry are imported, days already fully imported are
  skipped. Days where the export and the ledger disagree are not imported:
  they are reported as conflicts and saved to the conflicts file, to be
  settled with 'acc resolve'.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.account, "a", 0, "Account id")
	f.StringVar(&c.conflicts, "c", "conflicts.json", "File to save the conflicts to")
	f.BoolVar(&c.json, "json", false, "Print the import result as JSON")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: no file to import")
		return subcommands.ExitUsageError
	}
	account, err := openAccount(c.account)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	request := accounts.ImportRequest{AccountID: account.ID}
	for _, path := range f.Args() {
		records, err := readCSVFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		request.Records = append(request.Records, records...)
	}

	repo, closeRepo, err := openRepository(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeRepo()
	notifier, closeNotifier := openNotifier()
	defer closeNotifier()

	im := &accounts.Importer{Repo: repo, Notifier: notifier}
	result, err := im.Import(ctx, account, request)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error importing: %v\n", err)
		return subcommands.ExitFailure
	}

	if len(result.Conflicts) > 0 {
		if err := writeJSON(c.conflicts, result.Conflicts); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving conflicts: %v\n", err)
			return subcommands.ExitFailure
		}
		log.Printf("%d conflicts on %d days saved to %s", len(result.Conflicts), len(result.ConflictDays()), c.conflicts)
	}

	if c.json {
		if err := printJSON(result); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	} else {
		printMarkdown(renderer.ImportResult(result, displayCurrency(account)))
	}
	if result.Failed > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
