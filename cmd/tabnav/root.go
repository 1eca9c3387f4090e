package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/vidyasagar/tabnav/internal/app"
	"github.com/vidyasagar/tabnav/internal/browser"
	"github.com/vidyasagar/tabnav/internal/storage"
	"github.com/vidyasagar/tabnav/internal/tabhistory"
	"github.com/vidyasagar/tabnav/internal/theme"
)

// Flag values shared by every command. Set values override config.json.
type options struct {
	theme    string
	store    string
	dataDir  string
	limit    int
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "tabnav [url...]",
		Short: "tabnav - a terminal browser with back/forward across tabs",
		Long: `tabnav is a terminal web browser that remembers the order in which
you visited its tabs, across windows, and lets you step back and forward
through them the way you step through pages.

Each URL argument opens in its own tab. Plain words are searched on
DuckDuckGo.`,
		Example: `  tabnav
  tabnav https://go.dev golang.org/doc
  tabnav --store json --theme nord`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts, args)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.theme, "theme", "default", "color theme ("+strings.Join(theme.List(), ", ")+")")
	flags.StringVar(&opts.store, "store", storage.BackendSQLite, "tab history store [sqlite|json]")
	flags.StringVar(&opts.dataDir, "data-dir", "", "directory for the history store and log (default: OS data dir)")
	flags.IntVar(&opts.limit, "limit", tabhistory.DefaultLimit, "maximum number of tab history entries")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level [debug|info|warn|error]")

	root.AddCommand(newHistoryCmd(opts), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Shows the tabnav version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tabnav %s\n", version)
		},
	}
}

// loadConfig reads config.json and applies any flags the user set.
func loadConfig(fs *pflag.FlagSet, opts *options) (*storage.Config, error) {
	cfg, err := storage.LoadConfig()
	if err != nil {
		return nil, err
	}
	if fs.Changed("theme") {
		cfg.Theme = opts.theme
	}
	if fs.Changed("store") {
		cfg.Store = opts.store
	}
	if fs.Changed("limit") {
		cfg.HistoryLimit = opts.limit
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func dataDir(opts *options) (string, error) {
	if opts.dataDir != "" {
		return opts.dataDir, nil
	}
	return storage.DataDir()
}

// openLogger opens <dir>/tabnav.log. The TUI owns the terminal, so logs
// never go to stderr while it runs.
func openLogger(dir, level string) (*slog.Logger, io.Closer, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, nil, fmt.Errorf("log level %q: %w", level, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating data dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "tabnav.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: lvl})), f, nil
}

func runTUI(cmd *cobra.Command, opts *options, args []string) error {
	cfg, err := loadConfig(cmd.Flags(), opts)
	if err != nil {
		return err
	}
	if !theme.Set(cfg.Theme) {
		return fmt.Errorf("unknown theme %q (available: %s)", cfg.Theme, strings.Join(theme.List(), ", "))
	}
	dir, err := dataDir(opts)
	if err != nil {
		return err
	}

	log, logFile, err := openLogger(dir, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logFile.Close()

	// Without a store the history still works, it just is not saved.
	store, closer, err := storage.OpenHistoryStore(cfg.Store, dir)
	if err != nil {
		log.Warn("tab history store unavailable", "store", cfg.Store, "err", err)
		store = nil
	} else {
		defer closer.Close()
	}

	session := browser.NewSession(browser.NewFetcher(), 0)
	tracker := tabhistory.New(session, store,
		tabhistory.WithLimit(cfg.HistoryLimit),
		tabhistory.WithLogger(log),
	)
	log.Info("starting tabnav", "version", version, "store", cfg.Store, "limit", cfg.HistoryLimit)

	m := app.New(app.Options{
		Session:   session,
		Tracker:   tracker,
		Logger:    log,
		Homepage:  cfg.Homepage,
		StartURLs: args,
	})
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(cmd.Context()),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running tabnav: %w", err)
	}
	return nil
}
