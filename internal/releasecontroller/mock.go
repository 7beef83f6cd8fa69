package releasecontroller

import (
	"context"
	"sync"
)

// MockClient implements Client interface for testing.
// Streams without an entry in Responses or Errors return ErrStreamNotFound.
type MockClient struct {
	Responses map[string]*TagList
	Errors    map[string]error

	mu    sync.Mutex
	calls []string
}

// NewMockClient creates a new mock client with no configured streams
func NewMockClient() *MockClient {
	return &MockClient{
		Responses: make(map[string]*TagList),
		Errors:    make(map[string]error),
	}
}

// WithTag configures stream to list a single tag.
func (m *MockClient) WithTag(stream, name, phase string) *MockClient {
	m.Responses[stream] = &TagList{
		Name: stream,
		Tags: []Tag{{Name: name, Phase: phase}},
	}
	return m
}

func (m *MockClient) ListTags(ctx context.Context, stream string) (*TagList, error) {
	m.mu.Lock()
	m.calls = append(m.calls, stream)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := m.Errors[stream]; ok {
		return nil, err
	}
	if tags, ok := m.Responses[stream]; ok {
		return tags, nil
	}
	return nil, ErrAPIError{StatusCode: 404, Message: "404 Not Found", Stream: stream}
}

// Calls returns the streams requested so far, in call order.
func (m *MockClient) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}
