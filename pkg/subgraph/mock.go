package subgraph

import (
	"context"
	"sync"
)

// MockClient is a mock subgraph client for testing
type MockClient struct {
	mu       sync.Mutex
	polls    []Poll
	baseURL  string
	fetchErr error
	getErr   error
	calls    int
}

// MockOption configures the mock client
type MockOption func(*MockClient)

// WithPolls sets the polls to return
func WithPolls(polls []Poll) MockOption {
	return func(m *MockClient) {
		m.polls = polls
	}
}

// WithFetchError sets an error to return from FetchPolls
func WithFetchError(err error) MockOption {
	return func(m *MockClient) {
		m.fetchErr = err
	}
}

// WithGetError sets an error to return from FetchPoll
func WithGetError(err error) MockOption {
	return func(m *MockClient) {
		m.getErr = err
	}
}

// WithBaseURL sets the base URL
func WithBaseURL(url string) MockOption {
	return func(m *MockClient) {
		m.baseURL = url
	}
}

// NewMockClient creates a new mock subgraph client
func NewMockClient(opts ...MockOption) *MockClient {
	m := &MockClient{
		baseURL: "http://mock-subgraph.local/subgraphs/name/polls",
		polls:   DefaultMockPolls(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// BaseURL returns the configured base URL
func (m *MockClient) BaseURL() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.baseURL
}

// SetBaseURL updates the base URL
func (m *MockClient) SetBaseURL(url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.baseURL = url
}

// SetPolls replaces the indexed polls, as if the subgraph caught up with new blocks
func (m *MockClient) SetPolls(polls []Poll) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.polls = polls
}

// FetchPolls returns a page of the configured polls or error
func (m *MockClient) FetchPolls(ctx context.Context, first, skip int) ([]Poll, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	if skip >= len(m.polls) {
		return []Poll{}, nil
	}
	end := skip + first
	if end > len(m.polls) {
		end = len(m.polls)
	}
	return append([]Poll(nil), m.polls[skip:end]...), nil
}

// FetchPoll returns the configured poll with the given ID
func (m *MockClient) FetchPoll(ctx context.Context, id int) (*Poll, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, p := range m.polls {
		if p.ID.Int() == id {
			found := p
			return &found, nil
		}
	}
	return nil, ErrPollNotFound
}

// Calls returns how many fetches were made (for testing)
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// DefaultMockPolls returns a set of sample polls for testing.
// Both are created 2025-01-01 and expire 2100-01-01.
func DefaultMockPolls() []Poll {
	return []Poll{
		{
			ID:        2,
			Question:  "Best layer 2?",
			Category:  "Scaling",
			Options:   []string{"Polygon PoS", "zkEVM", "Other"},
			Votes:     []FlexInt{12, 7, 3},
			CreatedAt: 1735689600,
			ExpiresAt: 4102444800,
		},
		{
			ID:        1,
			Question:  "Which blockchain feature excites you most?",
			Category:  "Technology",
			Options:   []string{"Smart Contracts", "DeFi", "NFTs", "DAOs"},
			Votes:     []FlexInt{52, 38, 28, 19},
			CreatedAt: 1735689600,
			ExpiresAt: 4102444800,
		},
	}
}
