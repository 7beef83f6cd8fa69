package sitegen

import (
	"fmt"

	"github.com/dperique/nightly-status/internal/nightly"
	"github.com/dperique/nightly-status/internal/releasecontroller"
	"github.com/dperique/nightly-status/internal/render"
	"github.com/dperique/nightly-status/internal/storage"
	"github.com/dperique/nightly-status/internal/version"
)

// BuildModel transforms the loaded history into a SiteModel. Release lines
// are ordered newest first, history entries keep the reader's order.
func BuildModel(h *History) (*SiteModel, error) {
	if h == nil || h.Latest == nil {
		return nil, ErrNoRuns
	}

	runTime, err := render.RunTime(h.Latest.RunAt)
	if err != nil {
		return nil, err
	}

	latestByVersion := make(map[string]*storage.Observation, len(h.Latest.Observations))
	versions := make([]string, 0, len(h.Latest.Observations))
	for i := range h.Latest.Observations {
		obs := &h.Latest.Observations[i]
		if _, seen := latestByVersion[obs.Version]; seen {
			continue
		}
		latestByVersion[obs.Version] = obs
		versions = append(versions, obs.Version)
	}

	sorted, err := version.SortDescending(versions)
	if err != nil {
		return nil, fmt.Errorf("failed to sort versions: %w", err)
	}

	model := &SiteModel{
		Heading: render.Heading(h.Latest.Stream),
		RunTime: runTime,
		Stream:  h.Latest.Stream,
		Lines:   make([]LineModel, 0, len(sorted)),
	}

	for _, v := range sorted {
		latest, err := buildEntry(latestByVersion[v])
		if err != nil {
			return nil, err
		}

		line := LineModel{
			Version:    v,
			StreamName: releasecontroller.StreamName(v, h.Latest.Stream),
			Latest:     latest,
			History:    make([]EntryModel, 0, len(h.Observations[v])),
		}
		for _, obs := range h.Observations[v] {
			entry, err := buildEntry(obs)
			if err != nil {
				return nil, err
			}
			line.History = append(line.History, entry)
		}
		model.Lines = append(model.Lines, line)
	}

	return model, nil
}

// buildEntry maps an observation to its page form with N/A substitution.
func buildEntry(obs *storage.Observation) (EntryModel, error) {
	he, err := render.NewHistoryEntry(obs)
	if err != nil {
		return EntryModel{}, err
	}

	entry := EntryModel{
		ObservedAt: he.ObservedAt,
		DisplayTag: he.LatestNightly,
		Tag:        he.LatestNightly,
		Phase:      he.Phase,
		Age:        he.Age,
		Available:  he.Available,
	}
	if he.Available {
		entry.DisplayTag = nightly.DisplayTag(he.LatestNightly)
		entry.PullSpec = obs.PullSpec
		entry.DownloadURL = obs.DownloadURL
	}
	return entry, nil
}
