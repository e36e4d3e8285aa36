// Package cmd implements the acc command line application to manage account ledgers.
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/accounts"
	"github.com/etnz/accounts/events"
	"github.com/etnz/accounts/events/kafka"
	"github.com/etnz/accounts/store"
	"github.com/etnz/accounts/store/postgres"
	"github.com/google/subcommands"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/term"
)

// Environment variables providing the defaults of the global flags.
const (
	EnvStore        = "ACC_STORE"
	EnvDSN          = "ACC_DSN"
	EnvAccounts     = "ACC_ACCOUNTS"
	EnvPrices       = "ACC_PRICES"
	EnvKafkaBrokers = "ACC_KAFKA_BROKERS"
	EnvCurrency     = "ACC_CURRENCY"
	EnvEODHD        = "ACC_EODHD_API_KEY"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	storeDir     *string
	dsn          *string
	accountsFile *string
	pricesFile   *string
	kafkaBrokers *string
	currency     *string
	htmlOutput   *bool
)

// Commands lists every subcommand of acc.
var Commands = []subcommands.Command{
	&openCmd{},
	&accountsCmd{},
	&addCmd{},
	&updateCmd{},
	&removeCmd{},
	&listCmd{},
	&balanceCmd{},
	&importCmd{},
	&resolveCmd{},
	&dailyCmd{},
	&holdingsCmd{},
	&watchCmd{},
	&topicCmd{},
}

// SetFlags declares the global flags on f, with defaults read from the
// environment. It must be called after the environment is loaded.
func SetFlags(f *flag.FlagSet) {
	storeDir = f.String("store", env(EnvStore, ".accounts"), "Directory of the JSONL entry store, ignored when -dsn is set")
	dsn = f.String("dsn", env(EnvDSN, ""), "PostgreSQL connection string of the entry store")
	accountsFile = f.String("accounts", env(EnvAccounts, "accounts.json"), "Path to the accounts file")
	pricesFile = f.String("prices", env(EnvPrices, "prices.jsonl"), "Path to the prices file (JSONL format)")
	kafkaBrokers = f.String("kafka-brokers", env(EnvKafkaBrokers, ""), "Comma separated Kafka brokers to publish import events to")
	currency = f.String("currency", env(EnvCurrency, "EUR"), "Currency used to display currency accounts")
	htmlOutput = f.Bool("html", false, "Print reports as HTML instead of markdown")
}

// Register the subcommands.
func Register(c *subcommands.Commander) {
	for _, cmd := range Commands {
		c.Register(cmd, "")
	}
}

func env(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

// openRepository opens the entry store selected by the global flags.
func openRepository(ctx context.Context) (accounts.EntryRepository, func() error, error) {
	if *dsn != "" {
		db, err := postgres.Open(ctx, *dsn)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	}
	f, err := store.NewFile(*storeDir)
	if err != nil {
		return nil, nil, err
	}
	return f, func() error { return nil }, nil
}

// openNotifier returns the Kafka notifier if brokers are configured, nil otherwise.
func openNotifier() (accounts.Notifier, func() error) {
	if *kafkaBrokers == "" {
		return nil, func() error { return nil }
	}
	p := kafka.NewPublisher(strings.Split(*kafkaBrokers, ","))
	return events.Notifier{Publisher: p}, p.Close
}

// openAccount returns the account id from the accounts file.
func openAccount(id int) (accounts.Account, error) {
	r, err := loadRegistry(*accountsFile)
	if err != nil {
		return accounts.Account{}, err
	}
	return r.account(id)
}

// printMarkdown prints md, rendered for the terminal when stdout is one.
func printMarkdown(md string) {
	if err := writeMarkdown(os.Stdout, md, *htmlOutput, term.IsTerminal(int(os.Stdout.Fd()))); err != nil {
		log.Printf("cannot render markdown: %v", err)
		fmt.Print(md)
	}
}

func writeMarkdown(w io.Writer, md string, html, terminal bool) error {
	switch {
	case html:
		return goldmark.New(goldmark.WithExtensions(extension.Table)).Convert([]byte(md), w)
	case terminal:
		width := 100
		if cols, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && cols > 0 {
			width = cols
		}
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width))
		if err != nil {
			return err
		}
		out, err := r.Render(md)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	default:
		_, err := io.WriteString(w, md)
		return err
	}
}

// printJSON prints v as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readJSON decodes the file at path into v.
func readJSON(path string, v any) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(content, v)
}

// writeJSON encodes v into the file at path.
func writeJSON(path string, v any) error {
	content, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(content, '\n'), 0o644)
}

func isNotExist(err error) bool { return errors.Is(err, fs.ErrNotExist) }
