package sitegen

import (
	"errors"
	"fmt"

	"github.com/dperique/nightly-status/internal/storage"
)

// ErrNoRuns is returned when the history holds no recorded run.
var ErrNoRuns = errors.New("no recorded runs")

// History is the raw data a site is built from: the latest run and, per
// release line in that run, its recent observations.
type History struct {
	Latest       *storage.Run
	Observations map[string][]*storage.Observation
}

// LoadHistory loads the latest run and up to limit observations of each of
// its release lines. A limit of zero or less loads every observation.
func LoadHistory(reader HistoryReader, limit int) (*History, error) {
	runs, err := reader.ListRuns(1)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		return nil, ErrNoRuns
	}

	latest, err := reader.GetRun(runs[0].ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load run %d: %w", runs[0].ID, err)
	}

	history := &History{
		Latest:       latest,
		Observations: make(map[string][]*storage.Observation, len(latest.Observations)),
	}
	for _, obs := range latest.Observations {
		list, err := reader.ListObservations(obs.Version, latest.Stream, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to load history for %s: %w", obs.Version, err)
		}
		history.Observations[obs.Version] = list
	}

	return history, nil
}
