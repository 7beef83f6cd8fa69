package nightly

import (
	"testing"
	"time"
)

func TestParseTagTimestamp(t *testing.T) {
	tests := []struct {
		name   string
		tag    string
		want   time.Time
		wantOK bool
	}{
		{
			name:   "nightly tag",
			tag:    "4.15.0-0.nightly-2025-12-01-161151",
			want:   time.Date(2025, 12, 1, 16, 11, 51, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "ci tag",
			tag:    "4.18.0-0.ci-2024-02-29-000102",
			want:   time.Date(2024, 2, 29, 0, 1, 2, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "timestamp in the middle of the name",
			tag:    "prefix-2025-01-01-235959-suffix",
			want:   time.Date(2025, 1, 1, 23, 59, 59, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "first match wins",
			tag:    "2025-01-01-000000-2026-02-02-111111",
			want:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "no timestamp",
			tag:    "4.15.0-0.nightly",
			wantOK: false,
		},
		{
			name:   "empty name",
			tag:    "",
			wantOK: false,
		},
		{
			name:   "short time group",
			tag:    "4.15.0-0.nightly-2025-12-01-1611",
			wantOK: false,
		},
		{
			name:   "day out of range",
			tag:    "4.15.0-0.nightly-2025-12-32-161151",
			wantOK: false,
		},
		{
			name:   "february 30",
			tag:    "4.15.0-0.nightly-2025-02-30-000000",
			wantOK: false,
		},
		{
			name:   "year zero",
			tag:    "x-0000-01-01-000000",
			wantOK: false,
		},
		{
			name:   "year one",
			tag:    "x-0001-01-01-000000",
			want:   time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "hour out of range",
			tag:    "4.15.0-0.nightly-2025-12-01-251151",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTagTimestamp(tt.tag)
			if ok != tt.wantOK {
				t.Fatalf("ParseTagTimestamp(%q) ok = %v, want %v", tt.tag, ok, tt.wantOK)
			}
			if !tt.wantOK {
				if !got.IsZero() {
					t.Errorf("ParseTagTimestamp(%q) = %v, want zero time", tt.tag, got)
				}
				return
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseTagTimestamp(%q) = %v, want %v", tt.tag, got, tt.want)
			}
			if got.Location() != time.UTC {
				t.Errorf("ParseTagTimestamp(%q) location = %v, want UTC", tt.tag, got.Location())
			}
		})
	}
}

func TestFormatAge(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		elapsed time.Duration
		want    string
	}{
		{"zero", 0, "0.0h"},
		{"fractional hours", 2*time.Hour + 36*time.Minute, "2.6h"},
		{"one hour", time.Hour, "1.0h"},
		{"just under a day", 23*time.Hour + 59*time.Minute, "24.0h"},
		{"exactly one day", 24 * time.Hour, "1d 0h"},
		{"days and hours", 3*24*time.Hour + 4*time.Hour, "3d 4h"},
		{"days hours and minutes", 10*24*time.Hour + 23*time.Hour + 59*time.Minute, "10d 23h"},
		{"future timestamp", -time.Hour, "-1.0h"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatAge(base, base.Add(tt.elapsed)); got != tt.want {
				t.Errorf("FormatAge(%v) = %q, want %q", tt.elapsed, got, tt.want)
			}
		})
	}
}

func TestFormatAge_DistantPast(t *testing.T) {
	tests := []struct {
		name    string
		tagTime time.Time
		now     time.Time
		want    string
	}{
		{
			name:    "four gregorian centuries",
			tagTime: time.Date(1600, 1, 1, 0, 0, 0, 0, time.UTC),
			now:     time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
			want:    "146097d 0h",
		},
		{
			name:    "year 1500",
			tagTime: time.Date(1500, 1, 1, 0, 0, 0, 0, time.UTC),
			now:     time.Date(2025, 1, 1, 5, 30, 0, 0, time.UTC),
			want:    "191753d 5h",
		},
		{
			name:    "year 1 with hour borrow",
			tagTime: time.Date(1, 1, 1, 6, 0, 0, 0, time.UTC),
			now:     time.Date(2025, 1, 1, 5, 30, 0, 0, time.UTC),
			want:    "739250d 23h",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatAge(tt.tagTime, tt.now); got != tt.want {
				t.Errorf("FormatAge(%v, %v) = %q, want %q", tt.tagTime, tt.now, got, tt.want)
			}
		})
	}
}

func TestDisplayTag(t *testing.T) {
	tests := []struct {
		tag  string
		want string
	}{
		{"4.15.0-0.nightly-2025-12-01-161151", "2025-12-01-161151"},
		{"4.16.0-0.nightly-2025-01-01-000000", "2025-01-01-000000"},
		{"4.16.0-0.nightly-arm64-2025-01-01-000000", "2025-01-01-000000"},
		{"2025-01-01-000000", "2025-01-01-000000"},
		{"a-b-c", "a-b-c"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			if got := DisplayTag(tt.tag); got != tt.want {
				t.Errorf("DisplayTag(%q) = %q, want %q", tt.tag, got, tt.want)
			}
		})
	}
}
