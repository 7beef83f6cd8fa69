package status

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dperique/nightly-status/internal/releasecontroller"
)

var testNow = time.Date(2025, 1, 1, 1, 0, 0, 0, time.UTC)

// stubFetcher returns canned outcomes and records the versions it saw.
type stubFetcher struct {
	mu       sync.Mutex
	outcomes map[string]Outcome
	seen     []string
}

func (s *stubFetcher) Fetch(ctx context.Context, version string, now time.Time) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = append(s.seen, version)
	if o, ok := s.outcomes[version]; ok {
		return o
	}
	return Unavailable{}
}

func TestFetcher_Fetch(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(m *releasecontroller.MockClient)
		version string
		want    Outcome
	}{
		{
			name: "latest tag with age",
			setup: func(m *releasecontroller.MockClient) {
				m.WithTag("4.16.0-0.nightly", "4.16.0-0.nightly-2025-01-01-000000", "Accepted")
			},
			version: "4.16",
			want: Success{
				Tag:   "4.16.0-0.nightly-2025-01-01-000000",
				Phase: "Accepted",
				Age:   "1.0h",
			},
		},
		{
			name: "first tag is used without sorting",
			setup: func(m *releasecontroller.MockClient) {
				m.Responses["4.15.0-0.nightly"] = &releasecontroller.TagList{
					Tags: []releasecontroller.Tag{
						{Name: "4.15.0-0.nightly-2024-12-31-000000", Phase: "Ready", PullSpec: "quay.io/x:1"},
						{Name: "4.15.0-0.nightly-2025-01-01-000000", Phase: "Accepted"},
					},
				}
			},
			version: "4.15",
			want: Success{
				Tag:      "4.15.0-0.nightly-2024-12-31-000000",
				Phase:    "Ready",
				Age:      "1d 1h",
				PullSpec: "quay.io/x:1",
			},
		},
		{
			name: "tag without timestamp has unknown age",
			setup: func(m *releasecontroller.MockClient) {
				m.WithTag("4.17.0-0.nightly", "4.17.0-0.nightly-custom", "Rejected")
			},
			version: "4.17",
			want: Success{
				Tag:   "4.17.0-0.nightly-custom",
				Phase: "Rejected",
				Age:   "unknown",
			},
		},
		{
			name: "year zero timestamp has unknown age",
			setup: func(m *releasecontroller.MockClient) {
				m.WithTag("4.17.0-0.nightly", "x-0000-01-01-000000", "Accepted")
			},
			version: "4.17",
			want: Success{
				Tag:   "x-0000-01-01-000000",
				Phase: "Accepted",
				Age:   "unknown",
			},
		},
		{
			name: "empty tag list is unavailable",
			setup: func(m *releasecontroller.MockClient) {
				m.Responses["4.18.0-0.nightly"] = &releasecontroller.TagList{Name: "4.18.0-0.nightly"}
			},
			version: "4.18",
			want:    Unavailable{},
		},
		{
			name: "latest tag without name is unavailable",
			setup: func(m *releasecontroller.MockClient) {
				m.Responses["4.16.0-0.nightly"] = &releasecontroller.TagList{
					Tags: []releasecontroller.Tag{{Phase: "Accepted"}},
				}
			},
			version: "4.16",
			want:    Unavailable{},
		},
		{
			name: "latest tag without phase is unavailable",
			setup: func(m *releasecontroller.MockClient) {
				m.Responses["4.17.0-0.nightly"] = &releasecontroller.TagList{
					Tags: []releasecontroller.Tag{{Name: "4.17.0-0.nightly-2025-01-01-000000"}},
				}
			},
			version: "4.17",
			want:    Unavailable{},
		},
		{
			name: "client error is unavailable",
			setup: func(m *releasecontroller.MockClient) {
				m.Errors["4.19.0-0.nightly"] = errors.New("connection refused")
			},
			version: "4.19",
			want:    Unavailable{},
		},
		{
			name:    "unknown stream is unavailable",
			setup:   func(m *releasecontroller.MockClient) {},
			version: "4.99",
			want:    Unavailable{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := releasecontroller.NewMockClient()
			tt.setup(m)

			f := NewFetcher(m, "", nil)
			got := f.Fetch(context.Background(), tt.version, testNow)
			if got != tt.want {
				t.Errorf("Fetch(%q) = %#v, want %#v", tt.version, got, tt.want)
			}
		})
	}
}

func TestFetcher_Stream(t *testing.T) {
	m := releasecontroller.NewMockClient().WithTag("4.16.0-0.ci", "4.16.0-0.ci-2025-01-01-000000", "Accepted")

	f := NewFetcher(m, "ci", nil)
	if f.Stream() != "ci" {
		t.Errorf("expected stream ci, got %s", f.Stream())
	}
	if _, ok := f.Fetch(context.Background(), "4.16", testNow).(Success); !ok {
		t.Error("expected ci stream lookup to succeed")
	}
	if calls := m.Calls(); len(calls) != 1 || calls[0] != "4.16.0-0.ci" {
		t.Errorf("unexpected calls %v", calls)
	}

	if NewFetcher(m, "", nil).Stream() != "nightly" {
		t.Error("expected default stream nightly")
	}
}

func TestCollector_OneResultPerVersion(t *testing.T) {
	versions := []string{"4.12", "4.13", "4.14", "4.15", "4.16"}

	tests := []struct {
		name        string
		outcomes    map[string]Outcome
		concurrency int
	}{
		{
			name:     "all fail",
			outcomes: map[string]Outcome{},
		},
		{
			name: "some fail",
			outcomes: map[string]Outcome{
				"4.13": Success{Tag: "t", Phase: "Accepted", Age: "1.0h"},
				"4.16": Success{Tag: "u", Phase: "Rejected", Age: "2d 0h"},
			},
		},
		{
			name:        "some fail concurrently",
			concurrency: 3,
			outcomes: map[string]Outcome{
				"4.12": Success{Tag: "t", Phase: "Accepted", Age: "1.0h"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubFetcher{outcomes: tt.outcomes}
			c := NewCollector(stub, Options{Concurrency: tt.concurrency})

			report := c.Collect(context.Background(), versions, testNow)

			if len(report.Results) != len(versions) {
				t.Fatalf("expected %d results, got %d", len(versions), len(report.Results))
			}
			for _, v := range versions {
				got, ok := report.Results[v]
				if !ok {
					t.Errorf("missing result for %s", v)
					continue
				}
				want, expected := tt.outcomes[v]
				if !expected {
					want = Unavailable{}
				}
				if got != want {
					t.Errorf("result for %s = %#v, want %#v", v, got, want)
				}
			}
			if len(stub.seen) != len(versions) {
				t.Errorf("expected %d fetches, got %d", len(versions), len(stub.seen))
			}
			if !report.RunTime.Equal(testNow) {
				t.Errorf("expected run time %v, got %v", testNow, report.RunTime)
			}
			if report.Stream != "nightly" {
				t.Errorf("expected stream nightly, got %s", report.Stream)
			}
		})
	}
}

func TestCollector_SequentialOrderAndProgress(t *testing.T) {
	stub := &stubFetcher{outcomes: map[string]Outcome{}}
	var progress bytes.Buffer
	c := NewCollector(stub, Options{Progress: &progress})

	versions := []string{"4.15", "4.12", "4.22"}
	report := c.Collect(context.Background(), versions, testNow)

	if strings.Join(stub.seen, ",") != "4.15,4.12,4.22" {
		t.Errorf("expected fetches in input order, got %v", stub.seen)
	}
	if strings.Join(report.Versions, ",") != "4.15,4.12,4.22" {
		t.Errorf("expected report versions in input order, got %v", report.Versions)
	}

	want := "Fetching 4.15...\nFetching 4.12...\nFetching 4.22...\n"
	if progress.String() != want {
		t.Errorf("progress = %q, want %q", progress.String(), want)
	}
}

func TestCollector_NoProgressByDefault(t *testing.T) {
	stub := &stubFetcher{outcomes: map[string]Outcome{}}
	c := NewCollector(stub, Options{})
	report := c.Collect(context.Background(), []string{"4.15"}, testNow)
	if len(report.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(report.Results))
	}
}

func TestCollector_DuplicateVersions(t *testing.T) {
	stub := &stubFetcher{outcomes: map[string]Outcome{}}
	c := NewCollector(stub, Options{})

	report := c.Collect(context.Background(), []string{"4.15", "4.16", "4.15"}, testNow)
	if len(report.Results) != 2 {
		t.Errorf("expected 2 results, got %d", len(report.Results))
	}
	if len(report.Versions) != 2 {
		t.Errorf("expected 2 versions, got %v", report.Versions)
	}
}

func TestCollector_ConcurrentProgress(t *testing.T) {
	stub := &stubFetcher{outcomes: map[string]Outcome{}}
	var progress bytes.Buffer
	c := NewCollector(stub, Options{Progress: &progress, Concurrency: 4})

	versions := []string{"4.12", "4.13", "4.14", "4.15", "4.16", "4.17"}
	c.Collect(context.Background(), versions, testNow)

	lines := strings.Split(strings.TrimSpace(progress.String()), "\n")
	if len(lines) != len(versions) {
		t.Fatalf("expected %d progress lines, got %d", len(versions), len(lines))
	}
	for _, v := range versions {
		if !strings.Contains(progress.String(), "Fetching "+v+"...") {
			t.Errorf("missing progress line for %s", v)
		}
	}
}

func TestCollector_CancelledContext(t *testing.T) {
	m := releasecontroller.NewMockClient().WithTag("4.16.0-0.nightly", "4.16.0-0.nightly-2025-01-01-000000", "Accepted")
	c := NewCollector(NewFetcher(m, "", nil), Options{Concurrency: 2})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := c.Collect(ctx, []string{"4.16", "4.17"}, testNow)
	if len(report.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(report.Results))
	}
	for v, o := range report.Results {
		if _, ok := o.(Unavailable); !ok {
			t.Errorf("expected %s to be unavailable after cancellation, got %#v", v, o)
		}
	}
}
