// Package render prints status reports as a fixed-width table or as JSON.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
	_ "time/tzdata" // America/New_York must resolve on hosts without zoneinfo

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dperique/nightly-status/internal/nightly"
	"github.com/dperique/nightly-status/internal/releasecontroller"
	"github.com/dperique/nightly-status/internal/status"
	"github.com/dperique/nightly-status/internal/version"
)

// NotAvailable fills every column of a release line that could not be read.
const NotAvailable = "N/A"

const (
	runTimeLayout = "2006-01-02 15:04:05"
	runTimeZone   = "America/New_York"
	ruleWidth     = 60
	rowFormat     = "%-8s %-35s %-10s %-8s\n"
)

// NightlyResult is the presentation form of one release line.
type NightlyResult struct {
	LatestNightly string `json:"latest_nightly"`
	Phase         string `json:"phase"`
	Age           string `json:"age"`
	Available     bool   `json:"available"`
}

// Document is the JSON representation of a report.
type Document struct {
	RunTime string                   `json:"run_time"`
	Results map[string]NightlyResult `json:"results"`
}

// ResultFor maps an outcome to its presentation form. Unavailable outcomes
// become "N/A" in every text field.
func ResultFor(o status.Outcome) NightlyResult {
	s, ok := o.(status.Success)
	if !ok {
		return NightlyResult{
			LatestNightly: NotAvailable,
			Phase:         NotAvailable,
			Age:           NotAvailable,
			Available:     false,
		}
	}
	return NightlyResult{
		LatestNightly: s.Tag,
		Phase:         s.Phase,
		Age:           s.Age,
		Available:     true,
	}
}

// RunTime formats t as US Eastern civil time. The zone is always labelled
// EST, daylight saving or not.
func RunTime(t time.Time) (string, error) {
	loc, err := time.LoadLocation(runTimeZone)
	if err != nil {
		return "", fmt.Errorf("failed to load time zone %s: %w", runTimeZone, err)
	}
	return t.In(loc).Format(runTimeLayout) + " EST", nil
}

// NewDocument builds the JSON document for a report.
func NewDocument(r *status.Report) (*Document, error) {
	runTime, err := RunTime(r.RunTime)
	if err != nil {
		return nil, err
	}
	doc := &Document{
		RunTime: runTime,
		Results: make(map[string]NightlyResult, len(r.Results)),
	}
	for v, o := range r.Results {
		doc.Results[v] = ResultFor(o)
	}
	return doc, nil
}

// JSON writes the report as an indented JSON document.
func JSON(w io.Writer, r *status.Report) error {
	doc, err := NewDocument(r)
	if err != nil {
		return err
	}
	return writeJSON(w, doc)
}

// Table writes the report as a table, newest release line first.
func Table(w io.Writer, r *status.Report) error {
	runTime, err := RunTime(r.RunTime)
	if err != nil {
		return err
	}

	versions, err := version.SortDescending(reportVersions(r))
	if err != nil {
		return fmt.Errorf("failed to sort versions: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\nRun time: %s\n", runTime)
	fmt.Fprintf(&b, "\n%s\n", Heading(r.Stream))
	b.WriteString(strings.Repeat("=", ruleWidth) + "\n")
	fmt.Fprintf(&b, rowFormat, "Version", "Latest Nightly", "Phase", "Age")
	b.WriteString(strings.Repeat("-", ruleWidth) + "\n")

	for _, v := range versions {
		res := ResultFor(r.Results[v])
		if !res.Available {
			fmt.Fprintf(&b, rowFormat, v, NotAvailable, NotAvailable, NotAvailable)
			continue
		}
		fmt.Fprintf(&b, rowFormat, v, nightly.DisplayTag(res.LatestNightly), res.Phase, res.Age)
	}

	_, err = io.WriteString(w, b.String())
	return err
}

// reportVersions returns the report's versions in requested order, falling
// back to the result keys for reports built without a version list.
func reportVersions(r *status.Report) []string {
	if len(r.Versions) == len(r.Results) {
		return r.Versions
	}
	versions := make([]string, 0, len(r.Results))
	for v := range r.Results {
		versions = append(versions, v)
	}
	return versions
}

// Heading returns the table title for a stream, e.g. "OpenShift Nightly
// Build Status".
func Heading(stream string) string {
	if stream == "" {
		stream = releasecontroller.DefaultStream
	}
	return fmt.Sprintf("OpenShift %s Build Status", cases.Title(language.English).String(stream))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return nil
}
