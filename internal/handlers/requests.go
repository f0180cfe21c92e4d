package handlers

import "encoding/json"

// MountWidgetRequest represents a request to mount a widget.
// Config is decoded on top of the server defaults; UsePlayground mounts
// with the saved playground settings instead.
type MountWidgetRequest struct {
	PollID        int             `json:"poll_id"`
	Config        json.RawMessage `json:"config,omitempty"`
	UsePlayground bool            `json:"use_playground,omitempty"`
}

// VoteRequest represents a vote on a mounted widget
type VoteRequest struct {
	Option *int `json:"option"`
}

// DataSourceRequest represents a request to change the poll data source
type DataSourceRequest struct {
	DataSource string `json:"data_source"`
}

// BaseURLRequest represents a request to change the public base URL
type BaseURLRequest struct {
	BaseURL string `json:"base_url"`
}
