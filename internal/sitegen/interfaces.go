// Package sitegen generates a static status site from the run history.
// Following Dave Cheney's principle: "Accept interfaces, return structs"
package sitegen

import "github.com/dperique/nightly-status/internal/storage"

// HistoryReader abstracts the history queries needed to build the site.
// *storage.DB satisfies it; tests use an in-memory implementation.
type HistoryReader interface {
	// ListRuns returns the most recent runs, newest first.
	ListRuns(limit int) ([]*storage.Run, error)

	// GetRun retrieves a run together with its observations.
	GetRun(id uint) (*storage.Run, error)

	// ListObservations returns the observations of one release line, newest first.
	ListObservations(version, stream string, limit int) ([]*storage.Observation, error)
}
