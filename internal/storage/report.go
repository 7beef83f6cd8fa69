package storage

import "github.com/dperique/nightly-status/internal/status"

// NewRun converts a status report into a Run ready to be recorded.
// Observations follow the report's requested version order.
func NewRun(r *status.Report) *Run {
	run := &Run{
		RunAt:        r.RunTime.UTC(),
		Stream:       r.Stream,
		Observations: make([]Observation, 0, len(r.Results)),
	}

	versions := r.Versions
	if len(versions) != len(r.Results) {
		versions = make([]string, 0, len(r.Results))
		for v := range r.Results {
			versions = append(versions, v)
		}
	}

	for _, v := range versions {
		obs := Observation{
			Version:    v,
			Stream:     r.Stream,
			ObservedAt: run.RunAt,
		}
		if s, ok := r.Results[v].(status.Success); ok {
			obs.Available = true
			obs.Tag = s.Tag
			obs.Phase = s.Phase
			obs.Age = s.Age
			obs.PullSpec = s.PullSpec
			obs.DownloadURL = s.DownloadURL
		}
		run.Observations = append(run.Observations, obs)
	}
	return run
}

// Outcome converts a recorded observation back into a fetch outcome.
func (o *Observation) Outcome() status.Outcome {
	if !o.Available {
		return status.Unavailable{}
	}
	return status.Success{
		Tag:         o.Tag,
		Phase:       o.Phase,
		Age:         o.Age,
		PullSpec:    o.PullSpec,
		DownloadURL: o.DownloadURL,
	}
}
