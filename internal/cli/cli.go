// Package cli provides the command-line interface for nightly-status.
// It supports an optional YAML configuration file overridden by flags.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/dperique/nightly-status/internal/config"
	"github.com/dperique/nightly-status/internal/logger"
	"github.com/dperique/nightly-status/internal/releasecontroller"
	"github.com/dperique/nightly-status/internal/render"
	"github.com/dperique/nightly-status/internal/sitegen"
	"github.com/dperique/nightly-status/internal/status"
	"github.com/dperique/nightly-status/internal/storage"
	"github.com/dperique/nightly-status/internal/version"
)

// DefaultHistoryLimit bounds the history listing when --limit is not given.
const DefaultHistoryLimit = 20

// now is the clock read once per invocation.
var now = time.Now

// NewApp creates and configures the main CLI application.
func NewApp() *cli.App {
	return &cli.App{
		Name:        "nightly-status",
		Usage:       "Report the latest OpenShift nightly build of each release line",
		HideVersion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   config.DefaultPath,
				Usage:   "path to YAML configuration file (optional unless set explicitly)",
				EnvVars: []string{"NIGHTLY_STATUS_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "versions",
				Usage:   "comma-separated release lines (default 4.12 through 4.22)",
				EnvVars: []string{"NIGHTLY_STATUS_VERSIONS"},
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "output JSON instead of a table",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "print a progress line on stderr before each fetch",
			},
			&cli.StringFlag{
				Name:    "stream",
				Usage:   "release stream kind (nightly, ci)",
				EnvVars: []string{"NIGHTLY_STATUS_STREAM"},
			},
			&cli.IntFlag{
				Name:    "concurrency",
				Usage:   "number of concurrent fetches (0 or 1 fetches sequentially)",
				EnvVars: []string{"NIGHTLY_STATUS_CONCURRENCY"},
			},
			&cli.BoolFlag{
				Name:    "record",
				Usage:   "record this run in the history database",
				EnvVars: []string{"NIGHTLY_STATUS_RECORD"},
			},
			&cli.StringFlag{
				Name:    "db",
				Usage:   "path to SQLite history database",
				EnvVars: []string{"NIGHTLY_STATUS_DB"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   logger.DefaultLevel,
				Usage:   "log level (debug, info, warn, error)",
				EnvVars: []string{"NIGHTLY_STATUS_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   logger.DefaultFormat,
				Usage:   "log format (text, json)",
				EnvVars: []string{"NIGHTLY_STATUS_LOG_FORMAT"},
			},
		},
		Action: statusCommand,
		Commands: []*cli.Command{
			{
				Name:  "history",
				Usage: "Show recorded runs of one release line, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "version",
						Usage:    "release line to show (e.g. 4.16)",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "limit",
						Value: DefaultHistoryLimit,
						Usage: "maximum number of runs to show (0 shows all)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "output JSON instead of a table",
					},
				},
				Action: historyCommand,
			},
			{
				Name:  "site",
				Usage: "Generate a static HTML status site from the history database",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "out",
						Usage:    "output directory for generated HTML files",
						Required: true,
						EnvVars:  []string{"NIGHTLY_STATUS_SITE_OUT"},
					},
					&cli.IntFlag{
						Name:  "history-limit",
						Value: sitegen.DefaultHistoryLimit,
						Usage: "maximum observations shown per release line (-1 shows all)",
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "validate without writing files",
					},
				},
				Action: siteCommand,
			},
		},
	}
}

// newLogger builds the command logger on the app's error writer.
func newLogger(c *cli.Context) (*slog.Logger, error) {
	log, err := logger.New(c.String("log-level"), c.String("log-format"), c.App.ErrWriter)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return log, nil
}

// loadConfig reads the configuration file and applies flag overrides. The
// file is only required when --config was given explicitly.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(c.String("config"), c.IsSet("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// An empty --versions keeps the configured list.
	if v := c.String("versions"); c.IsSet("versions") && strings.TrimSpace(v) != "" {
		cfg.Versions = version.ParseList(v)
	}
	if c.IsSet("stream") {
		cfg.Stream = c.String("stream")
	}
	if c.IsSet("concurrency") {
		cfg.Concurrency = c.Int("concurrency")
	}
	if c.IsSet("db") {
		cfg.Storage.DatabasePath = c.String("db")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// initDB opens the history database named by the configuration.
func initDB(cfg *config.Config) (*storage.DB, error) {
	return storage.InitDB(storage.Config{
		DatabasePath: cfg.Storage.DatabasePath,
		LogLevel:     "silent",
	})
}

// statusCommand fetches every configured release line and prints the report.
func statusCommand(c *cli.Context) error {
	log, err := newLogger(c)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(c)
	if err != nil {
		log.Error("failed to load config", "error", err)
		return err
	}

	log.Info("starting status report",
		"versions", cfg.Versions,
		"stream", cfg.Stream,
		"concurrency", cfg.Concurrency,
		"base_url", cfg.ReleaseController.BaseURL)

	client := releasecontroller.NewClient(cfg.ReleaseController.ClientConfig())
	fetcher := status.NewFetcher(client, cfg.Stream, log)

	var progress io.Writer
	if c.Bool("verbose") {
		progress = c.App.ErrWriter
	}
	collector := status.NewCollector(fetcher, status.Options{
		Progress:    progress,
		Concurrency: cfg.Concurrency,
		Stream:      cfg.Stream,
	})

	report := collector.Collect(c.Context, cfg.Versions, now())

	if c.Bool("json") {
		err = render.JSON(c.App.Writer, report)
	} else {
		err = render.Table(c.App.Writer, report)
	}
	if err != nil {
		log.Error("failed to render report", "error", err)
		return fmt.Errorf("failed to render report: %w", err)
	}

	if c.Bool("record") {
		if err := recordReport(cfg, report, log); err != nil {
			log.Error("failed to record run", "error", err)
			return err
		}
	}
	return nil
}

// recordReport stores the report in the history database.
func recordReport(cfg *config.Config, report *status.Report, log *slog.Logger) error {
	db, err := initDB(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Warn("failed to close database", "error", closeErr)
		}
	}()

	run := storage.NewRun(report)
	if err := db.RecordRun(run); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	log.Info("recorded run",
		"run_id", run.ID,
		"observations", len(run.Observations),
		"database_path", cfg.Storage.DatabasePath)
	return nil
}

// historyCommand implements the history command.
func historyCommand(c *cli.Context) error {
	log, err := newLogger(c)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(c)
	if err != nil {
		log.Error("failed to load config", "error", err)
		return err
	}

	releaseLine := c.String("version")
	if err := version.ValidateIdentifier(releaseLine); err != nil {
		log.Error("invalid version", "version", releaseLine, "error", err)
		return fmt.Errorf("invalid version: %w", err)
	}

	db, err := initDB(cfg)
	if err != nil {
		log.Error("failed to initialize database", "error", err)
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Warn("failed to close database", "error", closeErr)
		}
	}()

	observations, err := db.ListObservations(releaseLine, cfg.Stream, c.Int("limit"))
	if err != nil {
		log.Error("failed to list observations", "version", releaseLine, "error", err)
		return fmt.Errorf("failed to list observations: %w", err)
	}

	log.Debug("loaded history", "version", releaseLine, "count", len(observations))

	if c.Bool("json") {
		return render.HistoryJSON(c.App.Writer, observations)
	}
	return render.HistoryTable(c.App.Writer, releasecontroller.StreamName(releaseLine, cfg.Stream), observations)
}

// siteCommand implements the site command.
func siteCommand(c *cli.Context) error {
	log, err := newLogger(c)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(c)
	if err != nil {
		log.Error("failed to load config", "error", err)
		return err
	}

	db, err := initDB(cfg)
	if err != nil {
		log.Error("failed to initialize database", "error", err)
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Warn("failed to close database", "error", closeErr)
		}
	}()

	generator := sitegen.NewGenerator(db, log)
	opts := sitegen.GenerateOptions{
		OutputDir:    c.String("out"),
		DryRun:       c.Bool("dry-run"),
		HistoryLimit: c.Int("history-limit"),
	}

	if err := generator.Generate(c.Context, opts); err != nil {
		log.Error("site generation failed", "error", err)
		return fmt.Errorf("site generation failed: %w", err)
	}
	return nil
}
