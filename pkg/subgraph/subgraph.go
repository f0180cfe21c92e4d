// Package subgraph provides a client for an indexed poll subgraph (a GraphQL
// endpoint that mirrors on-chain poll state).
package subgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/abrezinsky/polydemo/internal/logger"
)

// ErrNotConfigured is returned when no subgraph URL has been set
var ErrNotConfigured = errors.New("subgraph URL not configured")

// ErrPollNotFound is returned when the subgraph has no poll with the requested ID
var ErrPollNotFound = errors.New("poll not found in subgraph")

// FlexInt is an integer that can be unmarshaled from either a JSON number or a
// decimal string. Subgraphs encode BigInt fields as strings.
type FlexInt int64

// UnmarshalJSON implements json.Unmarshaler for FlexInt
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = 0
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return fmt.Errorf("FlexInt: cannot parse %q", s)
		}
		*f = FlexInt(n)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		v, err := n.Int64()
		if err != nil {
			return fmt.Errorf("FlexInt: cannot unmarshal %s", string(data))
		}
		*f = FlexInt(v)
		return nil
	}

	return fmt.Errorf("FlexInt: cannot unmarshal %s", string(data))
}

// Int returns the value as an int
func (f FlexInt) Int() int {
	return int(f)
}

// Poll is a poll entity as indexed by the subgraph
type Poll struct {
	ID        FlexInt   `json:"id"`
	Question  string    `json:"question"`
	Category  string    `json:"category"`
	Options   []string  `json:"options"`
	Votes     []FlexInt `json:"votes"`
	CreatedAt FlexInt   `json:"createdAt"` // unix seconds
	ExpiresAt FlexInt   `json:"expiresAt"` // unix seconds
	Status    string    `json:"status"`
}

// Tally returns the vote counts as ints
func (p Poll) Tally() []int {
	out := make([]int, len(p.Votes))
	for i, v := range p.Votes {
		out[i] = v.Int()
	}
	return out
}

// Created returns the creation time
func (p Poll) Created() time.Time {
	return time.Unix(int64(p.CreatedAt), 0).UTC()
}

// Expires returns the expiry time
func (p Poll) Expires() time.Time {
	return time.Unix(int64(p.ExpiresAt), 0).UTC()
}

// GraphQLError is one entry of a GraphQL "errors" array
type GraphQLError struct {
	Message string `json:"message"`
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors"`
}

const pollFields = `id question category options votes createdAt expiresAt status`

const listPollsQuery = `query Polls($first: Int!, $skip: Int!) {
  polls(first: $first, skip: $skip, orderBy: createdAt, orderDirection: desc) { ` + pollFields + ` }
}`

const getPollQuery = `query Poll($id: ID!) {
  poll(id: $id) { ` + pollFields + ` }
}`

// Client defines the interface for subgraph operations
type Client interface {
	// FetchPolls retrieves a page of polls, newest first
	FetchPolls(ctx context.Context, first, skip int) ([]Poll, error)
	// FetchPoll retrieves one poll by ID
	FetchPoll(ctx context.Context, id int) (*Poll, error)
	// BaseURL returns the configured subgraph endpoint
	BaseURL() string
	// SetBaseURL updates the subgraph endpoint
	SetBaseURL(url string)
}

// HTTPClient is a real HTTP client for a subgraph endpoint
type HTTPClient struct {
	mu         sync.RWMutex
	baseURL    string
	httpClient *http.Client
	log        logger.Logger
}

// NewHTTPClient creates a new subgraph HTTP client
func NewHTTPClient(baseURL string, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// NewHTTPClientWithHTTPClient creates a new subgraph client with a custom http.Client
func NewHTTPClientWithHTTPClient(baseURL string, httpClient *http.Client, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: httpClient,
		log:        log,
	}
}

// BaseURL returns the configured subgraph endpoint
func (c *HTTPClient) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// SetBaseURL updates the subgraph endpoint
func (c *HTTPClient) SetBaseURL(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURL = url
}

// doQuery posts a GraphQL query, checks the HTTP status and the "errors"
// array, and decodes the "data" object into response.
func (c *HTTPClient) doQuery(ctx context.Context, query string, variables map[string]any, response interface{}) error {
	endpoint := c.BaseURL()
	if endpoint == "" {
		return ErrNotConfigured
	}

	payload, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to encode query: %w", err)
	}

	c.log.Debug("Subgraph request", "url", endpoint, "variables", variables)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to subgraph: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debug("Subgraph response", "status", resp.StatusCode, "bytes", len(body))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("subgraph returned status %d: %s", resp.StatusCode, string(body))
	}

	var envelope graphQLResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("subgraph error: %s", envelope.Errors[0].Message)
	}
	if len(envelope.Data) == 0 {
		return errors.New("subgraph response has no data")
	}

	if err := json.Unmarshal(envelope.Data, response); err != nil {
		return fmt.Errorf("failed to parse data: %w", err)
	}
	return nil
}

// FetchPolls retrieves a page of polls, newest first
func (c *HTTPClient) FetchPolls(ctx context.Context, first, skip int) ([]Poll, error) {
	var data struct {
		Polls []Poll `json:"polls"`
	}
	if err := c.doQuery(ctx, listPollsQuery, map[string]any{"first": first, "skip": skip}, &data); err != nil {
		return nil, err
	}
	if data.Polls == nil {
		data.Polls = []Poll{}
	}
	return data.Polls, nil
}

// FetchPoll retrieves one poll by ID
func (c *HTTPClient) FetchPoll(ctx context.Context, id int) (*Poll, error) {
	var data struct {
		Poll *Poll `json:"poll"`
	}
	if err := c.doQuery(ctx, getPollQuery, map[string]any{"id": strconv.Itoa(id)}, &data); err != nil {
		return nil, err
	}
	if data.Poll == nil {
		return nil, ErrPollNotFound
	}
	return data.Poll, nil
}
