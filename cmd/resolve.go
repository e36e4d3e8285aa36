package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/etnz/accounts"
	"github.com/etnz/accounts/renderer"
	"github.com/google/subcommands"
)

var headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).MarginTop(1)

type resolveCmd struct {
	account     int
	conflicts   string
	resolutions string
	interactive bool
	save        string
}

func (*resolveCmd) Name() string     { return "resolve" }
func (*resolveCmd) Synopsis() string { return "settle the conflicts of an import" }
func (*resolveCmd) Usage() string {
	return `acc resolve -a <account> (-r <resolutions.json> | -i [-c <conflicts.json>])

  Applies conflict resolutions to an account. A resolution can remove the
  existing entry, add the imported record, or both.

  With -r, resolutions are read from a JSON file, a list of:
    {"addImported": true, "importEntry": {...}, "leaveExisting": false, "existingEntryId": 3}

  With -i, every conflict saved by 'acc import' is asked for interactively.
  Use -save to keep the answers in a resolutions file.
`
}

func (c *resolveCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.account, "a", 0, "Account id")
	f.StringVar(&c.conflicts, "c", "conflicts.json", "Conflicts file written by 'acc import'")
	f.StringVar(&c.resolutions, "r", "", "Resolutions file")
	f.BoolVar(&c.interactive, "i", false, "Ask for every conflict")
	f.StringVar(&c.save, "save", "", "Save the interactive answers to this resolutions file")
}

func (c *resolveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.interactive == (c.resolutions != "") {
		fmt.Fprintln(os.Stderr, "Error: use exactly one of -r or -i")
		return subcommands.ExitUsageError
	}
	account, err := openAccount(c.account)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	var resolutions []accounts.ResolvedConflict
	if c.interactive {
		var conflicts []accounts.Conflict
		if err := readJSON(c.conflicts, &conflicts); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading conflicts: %v\n", err)
			return subcommands.ExitFailure
		}
		resolutions, err = ask(conflicts, displayCurrency(account))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		if c.save != "" {
			if err := writeJSON(c.save, resolutions); err != nil {
				fmt.Fprintf(os.Stderr, "Error saving resolutions: %v\n", err)
				return subcommands.ExitFailure
			}
		}
	} else if err := readJSON(c.resolutions, &resolutions); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading resolutions: %v\n", err)
		return subcommands.ExitFailure
	}

	repo, closer, err := openRepository(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closer()

	rs := &accounts.Resolver{Repo: repo}
	result, err := rs.Apply(ctx, account, resolutions)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error applying resolutions: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.ResolutionResult(result))
	if result.Failed > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// ask lets the user decide every conflict.
func ask(conflicts []accounts.Conflict, currency string) ([]accounts.ResolvedConflict, error) {
	var out []accounts.ResolvedConflict
	for i, c := range conflicts {
		r := c.Resolution()
		// records missing from the ledger are usually wanted.
		r.AddImported = c.Import != nil && c.Existing == nil

		var fields []huh.Field
		fields = append(fields, huh.NewNote().
			Title(string(c.Reason)).
			Description(renderer.Conflict(c, currency)))
		if c.Import != nil {
			fields = append(fields, huh.NewConfirm().
				Title("Add the imported record?").
				Affirmative("Add").
				Negative("Skip").
				Value(&r.AddImported))
		}
		if c.Existing != nil {
			fields = append(fields, huh.NewConfirm().
				Title(fmt.Sprintf("Keep existing entry #%d?", c.Existing.ID)).
				Affirmative("Keep").
				Negative("Remove").
				Value(&r.LeaveExisting))
		}

		fmt.Println(headingStyle.Render(fmt.Sprintf("Conflict %d/%d", i+1, len(conflicts))))
		if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
