// Package releasecontroller provides a client for the OpenShift
// release-controller API, limited to listing the tags of a release stream.
package releasecontroller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the default amd64 release-controller base URL
	DefaultBaseURL = "https://amd64.ocp.releases.ci.openshift.org"

	// DefaultTimeout is the default HTTP client timeout
	DefaultTimeout = 10 * time.Second

	// DefaultUserAgent is the default User-Agent header
	DefaultUserAgent = "nightly-status/1.0"

	// DefaultStream is the stream type appended to a release line
	DefaultStream = "nightly"
)

// Custom error types for better error handling
var (
	// ErrStreamNotFound indicates the requested release stream does not exist
	ErrStreamNotFound = fmt.Errorf("release stream not found")

	// ErrInvalidResponse indicates the API response was invalid
	ErrInvalidResponse = fmt.Errorf("invalid API response")

	// ErrNetworkError indicates a network-related error
	ErrNetworkError = fmt.Errorf("network error")

	// ErrNoTags indicates the stream exists but lists no tags
	ErrNoTags = fmt.Errorf("release stream has no tags")

	// ErrIncompleteTag indicates the latest tag lacks a name or phase
	ErrIncompleteTag = fmt.Errorf("tag is missing name or phase")
)

// ErrAPIError represents an API-specific error
type ErrAPIError struct {
	StatusCode int
	Message    string
	Stream     string
}

func (e ErrAPIError) Error() string {
	if e.Stream != "" {
		return fmt.Sprintf("API error for stream %s: %d %s", e.Stream, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error: %d %s", e.StatusCode, e.Message)
}

func (e ErrAPIError) Is(target error) bool {
	if target == ErrStreamNotFound && e.StatusCode == http.StatusNotFound {
		return true
	}
	if target == ErrInvalidResponse && e.StatusCode >= 200 && e.StatusCode < 500 {
		return true
	}
	if target == ErrNetworkError && (e.StatusCode == 0 || e.StatusCode >= 500) {
		return true
	}
	return false
}

// Tag is a single release payload listed by a stream.
type Tag struct {
	Name        string `json:"name"`
	Phase       string `json:"phase"`
	PullSpec    string `json:"pullSpec,omitempty"`
	DownloadURL string `json:"downloadURL,omitempty"`
}

// TagList is the body of the releasestream tags endpoint.
// Tags are ordered latest first.
type TagList struct {
	Name string `json:"name"`
	Tags []Tag  `json:"tags"`
}

// Latest returns the first listed tag, or ErrNoTags when the list is empty.
// A first tag without a name or phase yields ErrIncompleteTag.
func (l *TagList) Latest() (Tag, error) {
	if l == nil || len(l.Tags) == 0 {
		return Tag{}, ErrNoTags
	}
	latest := l.Tags[0]
	if latest.Name == "" || latest.Phase == "" {
		return Tag{}, fmt.Errorf("%w: %w", ErrInvalidResponse, ErrIncompleteTag)
	}
	return latest, nil
}

// StreamName returns the release stream for a release line, e.g.
// StreamName("4.15", "nightly") is "4.15.0-0.nightly".
func StreamName(version, stream string) string {
	if stream == "" {
		stream = DefaultStream
	}
	return fmt.Sprintf("%s.0-0.%s", version, stream)
}

// Client defines the interface for release-controller API client
type Client interface {
	// ListTags retrieves the tags of a release stream such as "4.15.0-0.nightly"
	ListTags(ctx context.Context, stream string) (*TagList, error)
}

// HTTPClient defines the interface for HTTP operations
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds configuration for the release-controller client
type Config struct {
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration
	HTTPClient HTTPClient

	// RequestsPerSecond paces outgoing requests. Zero disables pacing.
	RequestsPerSecond float64
}

// DefaultConfig returns a default configuration
func DefaultConfig() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		UserAgent: DefaultUserAgent,
		Timeout:   DefaultTimeout,
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// client implements the Client interface
type client struct {
	config  Config
	limiter *rate.Limiter
}

// NewClient creates a new release-controller API client
func NewClient(config Config) Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{
			Timeout: config.Timeout,
		}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if config.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1)
	}

	return &client{
		config:  config,
		limiter: limiter,
	}
}

// ListTags retrieves the tags of a release stream
func (c *client) ListTags(ctx context.Context, stream string) (*TagList, error) {
	if stream == "" {
		return nil, ErrAPIError{
			StatusCode: 400,
			Message:    "stream name cannot be empty",
		}
	}

	apiURL, err := url.JoinPath(c.config.BaseURL, "api", "v1", "releasestream", stream, "tags")
	if err != nil {
		return nil, fmt.Errorf("failed to construct API URL: %w", err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, ErrAPIError{
			StatusCode: 0,
			Message:    err.Error(),
			Stream:     stream,
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.config.HTTPClient.Do(req)
	if err != nil {
		return nil, ErrAPIError{
			StatusCode: 0,
			Message:    err.Error(),
			Stream:     stream,
		}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, ErrAPIError{
			StatusCode: resp.StatusCode,
			Message:    resp.Status,
			Stream:     stream,
		}
	}

	var tags TagList
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, ErrAPIError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("failed to decode response: %v", err),
			Stream:     stream,
		}
	}

	return &tags, nil
}
