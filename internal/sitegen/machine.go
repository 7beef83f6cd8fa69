package sitegen

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"log/slog"

	"github.com/dperique/nightly-status/internal/render"
)

// RenderMachineIndex writes the JSON side of the site for automation.
// Creates: /index.json (same document as the --json report)
//
//	/<version>/index.json (history entries, newest first)
func RenderMachineIndex(model *SiteModel, outDir string, logger *slog.Logger) error {
	doc := render.Document{
		RunTime: model.RunTime,
		Results: make(map[string]render.NightlyResult, len(model.Lines)),
	}
	for _, line := range model.Lines {
		doc.Results[line.Version] = nightlyResult(line.Latest)
	}
	if err := writeJSONFile(filepath.Join(outDir, "index.json"), doc, logger); err != nil {
		return fmt.Errorf("failed to write root JSON index: %w", err)
	}

	for _, line := range model.Lines {
		entries := make([]render.HistoryEntry, 0, len(line.History))
		for _, e := range line.History {
			entries = append(entries, render.HistoryEntry{
				ObservedAt:    e.ObservedAt,
				Stream:        model.Stream,
				NightlyResult: nightlyResult(e),
			})
		}
		path := filepath.Join(outDir, line.Version, "index.json")
		if err := writeJSONFile(path, entries, logger); err != nil {
			return fmt.Errorf("failed to write JSON index for %s: %w", line.Version, err)
		}
		logger.Debug("rendered JSON index", "version", line.Version, "entries", len(entries))
	}

	return nil
}

func nightlyResult(e EntryModel) render.NightlyResult {
	return render.NightlyResult{
		LatestNightly: e.Tag,
		Phase:         e.Phase,
		Age:           e.Age,
		Available:     e.Available,
	}
}

func writeJSONFile(path string, v any, logger *slog.Logger) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", filepath.Base(path), err)
	}
	return writeFileIfChanged(path, append(data, '\n'), logger)
}
