package sitegen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"log/slog"
)

// DefaultHistoryLimit bounds the history shown per release line.
const DefaultHistoryLimit = 50

// Generator orchestrates the HTML site generation process.
// Following Dave Cheney's principle: "Accept interfaces, return structs"
type Generator struct {
	reader HistoryReader
	logger *slog.Logger
}

// NewGenerator creates a new Generator with the provided HistoryReader.
func NewGenerator(reader HistoryReader, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Generator{
		reader: reader,
		logger: logger,
	}
}

// GenerateOptions contains options for site generation.
type GenerateOptions struct {
	OutputDir string
	DryRun    bool

	// HistoryLimit bounds the observations shown per release line. Zero
	// uses DefaultHistoryLimit, negative shows every observation.
	HistoryLimit int
}

// Generate generates the complete static site from the history.
// This is the main entry point that orchestrates loading, building, and rendering.
func (g *Generator) Generate(ctx context.Context, opts GenerateOptions) error {
	if opts.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	limit := opts.HistoryLimit
	if limit == 0 {
		limit = DefaultHistoryLimit
	}

	g.logger.Info("starting site generation", "output_dir", opts.OutputDir, "dry_run", opts.DryRun)

	history, err := LoadHistory(g.reader, limit)
	if errors.Is(err, ErrNoRuns) {
		g.logger.Warn("no runs found in database")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	model, err := BuildModel(history)
	if err != nil {
		return fmt.Errorf("failed to build site model: %w", err)
	}
	g.logger.Info("built site model", "run_time", model.RunTime, "lines", len(model.Lines))

	if opts.DryRun {
		g.logger.Info("dry-run mode: skipping file writes")
		return nil
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := RenderHumanPages(model, opts.OutputDir, g.logger); err != nil {
		return fmt.Errorf("failed to render human pages: %w", err)
	}
	g.logger.Info("rendered human-readable pages")

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := RenderMachineIndex(model, opts.OutputDir, g.logger); err != nil {
		return fmt.Errorf("failed to render JSON index: %w", err)
	}
	g.logger.Info("rendered JSON index")

	g.logger.Info("site generation completed successfully")
	return nil
}
