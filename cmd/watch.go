package cmd

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/accounts"
	"github.com/etnz/accounts/worker"
	"github.com/fsnotify/fsnotify"
	"github.com/google/subcommands"
)

// settle is how long a file must stay unchanged before it is imported.
const settle = 500 * time.Millisecond

type watchCmd struct {
	account int
	workers int
}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "import bank exports as they appear in a directory" }
func (*watchCmd) Usage() string {
	return `acc watch [-a <account>] [-w <workers>] <dir>

  Watches a directory and imports every CSV file created or modified in it.
  Files named "<account>-<anything>.csv" are imported into that account,
  other files into the -a account. Conflicts are saved in the current
  directory as "conflicts-<account>.json". Importing a file twice is
  harmless: days already imported are skipped.

  Stop with Ctrl-C.
`
}

func (c *watchCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.account, "a", 0, "Default account id")
	f.IntVar(&c.workers, "w", 4, "Number of concurrent imports")
}

// accountOf returns the account a file is imported into.
func (c *watchCmd) accountOf(path string) int {
	prefix, _, ok := strings.Cut(filepath.Base(path), "-")
	if !ok {
		return c.account
	}
	if id, err := strconv.Atoi(prefix); err == nil {
		return id
	}
	return c.account
}

// job reads the file at path into an import job.
func (c *watchCmd) job(path string) (worker.Job, error) {
	account, err := openAccount(c.accountOf(path))
	if err != nil {
		return worker.Job{}, err
	}
	records, err := readCSVFile(path)
	if err != nil {
		return worker.Job{}, err
	}
	return worker.Job{Account: account, Request: accounts.ImportRequest{AccountID: account.ID, Records: records}}, nil
}

func (c *watchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: watch needs exactly one directory")
		return subcommands.ExitUsageError
	}
	dir := f.Arg(0)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	repo, closeRepo, err := openRepository(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeRepo()
	notifier, closeNotifier := openNotifier()
	defer closeNotifier()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		fmt.Fprintf(os.Stderr, "Error watching %q: %v\n", dir, err)
		return subcommands.ExitFailure
	}

	w := worker.New(repo, notifier, c.workers, 16)
	w.OnResult = report
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()
	log.Printf("watching %s", dir)

	// files are imported once they stopped changing, timers hand them back
	// to this loop so that every Submit happens before Close.
	ready := make(chan string)
	timers := make(map[string]*time.Timer)
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case ev, ok := <-watcher.Events:
			if !ok {
				break loop
			}
			if !strings.EqualFold(filepath.Ext(ev.Name), ".csv") || !(ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write)) {
				continue
			}
			path := ev.Name
			if t, ok := timers[path]; ok {
				t.Reset(settle)
				continue
			}
			timers[path] = time.AfterFunc(settle, func() {
				select {
				case ready <- path:
				case <-ctx.Done():
				}
			})
		case path := <-ready:
			delete(timers, path)
			job, err := c.job(path)
			if err != nil {
				log.Printf("cannot import %s: %v", path, err)
				continue
			}
			if err := w.Submit(ctx, job); err != nil {
				break loop
			}
			log.Printf("importing %s into account %d", path, job.Account.ID)
		case err, ok := <-watcher.Errors:
			if !ok {
				break loop
			}
			log.Printf("watch error: %v", err)
		}
	}
	for _, t := range timers {
		t.Stop()
	}
	w.Close()
	<-done
	return subcommands.ExitSuccess
}

// report logs the outcome of an import and saves its conflicts.
func report(r worker.Result) {
	if r.Err != nil {
		return // already logged by the worker
	}
	res := r.Import
	log.Printf("account %d: %d imported, %d failed, %d conflicts", res.AccountID, res.Imported, res.Failed, len(res.Conflicts))
	for _, e := range res.Errors {
		log.Printf("account %d: %s", res.AccountID, e)
	}
	if len(res.Conflicts) == 0 {
		return
	}
	path := fmt.Sprintf("conflicts-%d.json", res.AccountID)
	if err := writeJSON(path, res.Conflicts); err != nil {
		log.Printf("account %d: cannot save conflicts: %v", res.AccountID, err)
		return
	}
	log.Printf("account %d: conflicts saved to %s", res.AccountID, path)
}
