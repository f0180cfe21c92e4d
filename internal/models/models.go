package models

import (
	"time"

	"github.com/abrezinsky/polydemo/internal/poll"
)

// Data source names
const (
	SourceAuto     = "auto"
	SourceContract = "contract"
	SourceSubgraph = "subgraph"
)

// Poll represents a stored poll
type Poll struct {
	ID        int       `json:"id"`
	Question  string    `json:"question"`
	Category  string    `json:"category"`
	Options   []string  `json:"options"`
	Votes     []int     `json:"votes"`
	Status    string    `json:"status,omitempty"` // "" unless explicitly set, e.g. "ended"
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Source    string    `json:"source,omitempty"`
}

// Snapshot converts the stored poll into the engine's input
func (p Poll) Snapshot() poll.Snapshot {
	return poll.Snapshot{
		Question:       p.Question,
		Category:       p.Category,
		Options:        append([]string(nil), p.Options...),
		Tally:          append([]int(nil), p.Votes...),
		CreatedAt:      p.CreatedAt,
		ExpiresAt:      p.ExpiresAt,
		StatusOverride: poll.Status(p.Status),
	}
}

// NewPoll is the input for creating a poll
type NewPoll struct {
	Question     string   `json:"question"`
	Category     string   `json:"category"`
	Options      []string `json:"options"`
	DurationDays int      `json:"duration_days"`
}

// PlaygroundSettings holds the interactive playground form state
type PlaygroundSettings struct {
	// Display & visibility
	DisplayMode          string `json:"display_mode"`
	ShowResults          bool   `json:"show_results"`
	ResultsHiddenMessage string `json:"results_hidden_message"`

	// Chart
	ChartType        string   `json:"chart_type"`        // bar, pie, infographic
	BarOrientation   string   `json:"bar_orientation"`   // horizontal, vertical
	InfographicStyle string   `json:"infographic_style"` // icons, leaderboard, cards
	UseCustomColors  bool     `json:"use_custom_colors"`
	ChartColors      []string `json:"chart_colors"`

	// Success effects
	ShowSuccessBanner bool   `json:"show_success_banner"`
	SuccessMessage    string `json:"success_message"`
	SuccessDurationMS int    `json:"success_duration_ms"`
	EnableConfetti    bool   `json:"enable_confetti"`

	Size string `json:"size"`
}

// WidgetConfig extracts the engine configuration from the playground settings
func (s PlaygroundSettings) WidgetConfig() poll.Config {
	return poll.Config{
		DisplayMode:          poll.DisplayMode(s.DisplayMode),
		ShowResults:          s.ShowResults,
		ResultsHiddenMessage: s.ResultsHiddenMessage,
		ShowSuccessBanner:    s.ShowSuccessBanner,
		SuccessMessage:       s.SuccessMessage,
		SuccessDurationMS:    s.SuccessDurationMS,
		EnableConfetti:       s.EnableConfetti,
		Size:                 poll.Size(s.Size),
	}
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
