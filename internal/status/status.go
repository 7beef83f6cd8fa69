// Package status reduces release-controller responses to per-version
// nightly outcomes and collects them into a report.
package status

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/dperique/nightly-status/internal/nightly"
	"github.com/dperique/nightly-status/internal/releasecontroller"
)

// Outcome is the result of looking up one release line: either Success or
// Unavailable.
type Outcome interface {
	isOutcome()
}

// Success carries the latest tag of a stream.
type Success struct {
	Tag         string
	Phase       string
	Age         string
	PullSpec    string
	DownloadURL string
}

// Unavailable means the stream could not be read.
type Unavailable struct{}

func (Success) isOutcome()     {}
func (Unavailable) isOutcome() {}

// Report holds one outcome per requested release line.
type Report struct {
	RunTime  time.Time
	Stream   string
	Versions []string // requested order, duplicates removed
	Results  map[string]Outcome
}

// Fetcher looks up the latest tag of a release line.
type Fetcher struct {
	client releasecontroller.Client
	stream string
	logger *slog.Logger
}

// NewFetcher creates a Fetcher for the given stream type ("nightly" when empty).
func NewFetcher(client releasecontroller.Client, stream string, logger *slog.Logger) *Fetcher {
	if stream == "" {
		stream = releasecontroller.DefaultStream
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Fetcher{client: client, stream: stream, logger: logger}
}

// Stream returns the stream type the fetcher queries.
func (f *Fetcher) Stream() string {
	return f.stream
}

// Fetch returns the latest tag of version's stream with its age relative to
// now. Every failure is reported as Unavailable, including a latest tag
// without a name or phase; a tag without an embedded timestamp still
// succeeds with age "unknown".
func (f *Fetcher) Fetch(ctx context.Context, version string, now time.Time) Outcome {
	stream := releasecontroller.StreamName(version, f.stream)

	tags, err := f.client.ListTags(ctx, stream)
	if err != nil {
		f.logger.Debug("failed to list tags", "version", version, "stream", stream, "error", err)
		return Unavailable{}
	}

	latest, err := tags.Latest()
	if err != nil {
		f.logger.Debug("no usable tag in stream", "version", version, "stream", stream, "error", err)
		return Unavailable{}
	}

	age := nightly.UnknownAge
	if ts, ok := nightly.ParseTagTimestamp(latest.Name); ok {
		age = nightly.FormatAge(ts, now)
	}

	f.logger.Debug("fetched latest tag",
		"version", version,
		"tag", latest.Name,
		"phase", latest.Phase,
		"age", age)

	return Success{
		Tag:         latest.Name,
		Phase:       latest.Phase,
		Age:         age,
		PullSpec:    latest.PullSpec,
		DownloadURL: latest.DownloadURL,
	}
}

// VersionFetcher is implemented by Fetcher and by test stubs.
type VersionFetcher interface {
	Fetch(ctx context.Context, version string, now time.Time) Outcome
}

// Options configures a Collector.
type Options struct {
	// Progress receives a "Fetching <version>..." line before each fetch.
	// It should be unbuffered (os.Stderr). Nil disables progress output.
	Progress io.Writer

	// Concurrency bounds parallel fetches. Values below 2 fetch sequentially.
	Concurrency int

	// Stream is recorded in the report.
	Stream string
}

// Collector fetches every requested release line and tolerates individual
// failures.
type Collector struct {
	fetcher VersionFetcher
	opts    Options
	mu      sync.Mutex // serializes progress writes
}

// NewCollector creates a Collector.
func NewCollector(fetcher VersionFetcher, opts Options) *Collector {
	if opts.Stream == "" {
		opts.Stream = releasecontroller.DefaultStream
	}
	return &Collector{fetcher: fetcher, opts: opts}
}

// Collect returns a report with exactly one outcome per distinct version.
func (c *Collector) Collect(ctx context.Context, versions []string, now time.Time) *Report {
	unique := dedupe(versions)
	report := &Report{
		RunTime:  now,
		Stream:   c.opts.Stream,
		Versions: unique,
		Results:  make(map[string]Outcome, len(unique)),
	}

	if c.opts.Concurrency < 2 {
		for _, v := range unique {
			c.progress(v)
			report.Results[v] = c.fetcher.Fetch(ctx, v, now)
		}
		return report
	}

	semaphore := make(chan struct{}, c.opts.Concurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex // protects report.Results

	for _, v := range unique {
		wg.Add(1)
		go func(version string) {
			defer wg.Done()

			var outcome Outcome = Unavailable{}
			select {
			case semaphore <- struct{}{}:
				c.progress(version)
				outcome = c.fetcher.Fetch(ctx, version, now)
				<-semaphore
			case <-ctx.Done():
			}

			mu.Lock()
			report.Results[version] = outcome
			mu.Unlock()
		}(v)
	}
	wg.Wait()

	return report
}

func (c *Collector) progress(version string) {
	if c.opts.Progress == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.opts.Progress, "Fetching %s...\n", version)
}

func dedupe(versions []string) []string {
	seen := make(map[string]bool, len(versions))
	out := make([]string, 0, len(versions))
	for _, v := range versions {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
