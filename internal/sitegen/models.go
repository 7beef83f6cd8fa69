package sitegen

// SiteModel represents the complete site structure for HTML generation.
type SiteModel struct {
	Heading string // e.g. "OpenShift Nightly Build Status"
	RunTime string // latest run, US Eastern
	Stream  string
	Lines   []LineModel // newest release line first
}

// LineModel represents one release line: its latest state and recent history.
type LineModel struct {
	Version    string // e.g. "4.16"
	StreamName string // e.g. "4.16.0-0.nightly"
	Latest     EntryModel
	History    []EntryModel
}

// EntryModel represents one observation of a release line.
type EntryModel struct {
	ObservedAt  string
	DisplayTag  string // last four dash segments of the tag, or N/A
	Tag         string
	Phase       string
	Age         string
	Available   bool
	PullSpec    string
	DownloadURL string
}
