package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/dperique/nightly-status/internal/nightly"
	"github.com/dperique/nightly-status/internal/storage"
)

const (
	historyRuleWidth = 80
	historyRowFormat = "%-23s %-35s %-10s %-8s\n"
)

// HistoryEntry is the presentation form of one recorded observation.
type HistoryEntry struct {
	ObservedAt string `json:"observed_at"`
	Stream     string `json:"stream"`
	NightlyResult
}

// NewHistoryEntry maps a stored observation to its presentation form.
func NewHistoryEntry(o *storage.Observation) (HistoryEntry, error) {
	observed, err := RunTime(o.ObservedAt)
	if err != nil {
		return HistoryEntry{}, err
	}
	return HistoryEntry{
		ObservedAt:    observed,
		Stream:        o.Stream,
		NightlyResult: ResultFor(o.Outcome()),
	}, nil
}

// HistoryJSON writes the observations of one release line as a JSON array.
func HistoryJSON(w io.Writer, observations []*storage.Observation) error {
	entries := make([]HistoryEntry, 0, len(observations))
	for _, o := range observations {
		entry, err := NewHistoryEntry(o)
		if err != nil {
			return err
		}
		entries = append(entries, entry)
	}
	return writeJSON(w, entries)
}

// HistoryTable writes the observations of one release line in the order given.
func HistoryTable(w io.Writer, releaseLine string, observations []*storage.Observation) error {
	var b strings.Builder
	fmt.Fprintf(&b, "\nHistory for %s\n", releaseLine)
	b.WriteString(strings.Repeat("=", historyRuleWidth) + "\n")
	fmt.Fprintf(&b, historyRowFormat, "Observed (EST)", "Latest Nightly", "Phase", "Age")
	b.WriteString(strings.Repeat("-", historyRuleWidth) + "\n")

	if len(observations) == 0 {
		b.WriteString("No recorded runs.\n")
	}
	for _, o := range observations {
		entry, err := NewHistoryEntry(o)
		if err != nil {
			return err
		}
		tag := entry.LatestNightly
		if entry.Available {
			tag = nightly.DisplayTag(tag)
		}
		fmt.Fprintf(&b, historyRowFormat, entry.ObservedAt, tag, entry.Phase, entry.Age)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
