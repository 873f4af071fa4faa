package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/mtanaka/pricewise/internal/api"
	"github.com/mtanaka/pricewise/internal/history"
	"github.com/mtanaka/pricewise/internal/ranking"
	"github.com/mtanaka/pricewise/internal/receipts"
	"github.com/mtanaka/pricewise/internal/session"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app := newApp()
	root := app.rootCommand()

	err := root.ParseAndRun(ctx, os.Args[1:], ff.WithEnvVarPrefix("PRICEWISE"))
	app.close()

	switch {
	case errors.Is(err, ff.ErrHelp):
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Command(root))
	case err != nil:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// app holds the parsed configuration and lazily constructed collaborators.
// It is the single composition root: stores are owned here, never ambient.
type app struct {
	rootFlags   *ff.FlagSet
	apiURL      *string
	dataDir     *string
	token       *string
	verbose     *bool
	showVersion *bool

	client       *api.Client
	sessionStore *session.Store
	historyStore *history.Store
	receiptStore *receipts.Store
	rankingVM    *ranking.ViewModel
}

func newApp() *app {
	fs := ff.NewFlagSet("pricewise")
	return &app{
		rootFlags:   fs,
		apiURL:      fs.StringLong("api-url", "http://localhost:8000", "Backend base URL"),
		dataDir:     fs.StringLong("data-dir", defaultDataDir(), "Local data directory"),
		token:       fs.StringLong("token", "", "Bearer token for the backend (or set PRICEWISE_TOKEN)"),
		verbose:     fs.BoolLong("verbose", "Enable debug logging"),
		showVersion: fs.BoolLong("version", "Show version information"),
	}
}

func (a *app) rootCommand() *ff.Command {
	root := &ff.Command{
		Name:  "pricewise",
		Usage: "pricewise [FLAGS] SUBCOMMAND ...",
		Flags: a.rootFlags,
		Exec: func(_ context.Context, _ []string) error {
			if *a.showVersion {
				fmt.Println(version)
				return nil
			}
			return ff.ErrHelp
		},
	}

	root.Subcommands = []*ff.Command{
		a.analyzeCommand(),
		a.showCommand(),
		a.editCommand(),
		a.historyCommand(),
		a.receiptsCommand(),
		a.rankingCommand(),
		a.profileCommand(),
		a.healthCommand(),
		a.searchCommand(),
	}
	return root
}

// setup finishes configuration after flag parsing; every Exec calls it first.
func (a *app) setup() {
	level := slog.LevelInfo
	if *a.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func (a *app) apiClient() *api.Client {
	if a.client == nil {
		a.client = api.NewClient(*a.apiURL, api.StaticToken(*a.token))
	}
	return a.client
}

func (a *app) sessions() (*session.Store, error) {
	if a.sessionStore == nil {
		store, err := session.NewStore(*a.dataDir)
		if err != nil {
			return nil, err
		}
		a.sessionStore = store
	}
	return a.sessionStore, nil
}

func (a *app) histories() (*history.Store, error) {
	if a.historyStore == nil {
		if err := os.MkdirAll(*a.dataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		store, err := history.Open(filepath.Join(*a.dataDir, "history.db"))
		if err != nil {
			return nil, err
		}
		a.historyStore = store
	}
	return a.historyStore, nil
}

func (a *app) remoteReceipts() *receipts.Store {
	if a.receiptStore == nil {
		a.receiptStore = receipts.NewStore(a.apiClient())
		// Any confirmed receipt mutation can change the totals behind the
		// ranking; the projection must be re-fetched, not patched.
		a.receiptStore.OnChange(a.rankings().Invalidate)
	}
	return a.receiptStore
}

func (a *app) rankings() *ranking.ViewModel {
	if a.rankingVM == nil {
		a.rankingVM = ranking.NewViewModel(a.apiClient())
	}
	return a.rankingVM
}

func (a *app) close() {
	if a.historyStore != nil {
		if err := a.historyStore.Close(); err != nil {
			slog.Warn("Failed to close history database", "error", err)
		}
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pricewise"
	}
	return filepath.Join(home, ".pricewise")
}
