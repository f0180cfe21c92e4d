package services

import (
	"context"
	"time"

	"github.com/abrezinsky/polydemo/internal/models"
	"github.com/abrezinsky/polydemo/internal/poll"
	"github.com/abrezinsky/polydemo/internal/widget"
)

// PollServicer defines the interface for poll operations
type PollServicer interface {
	ListPolls(ctx context.Context, limit, offset int) (*PollList, error)
	GetPoll(ctx context.Context, id int) (*models.Poll, error)
	GetSummary(ctx context.Context, id int) (*PollSummary, error)
	GetResults(ctx context.Context, id int) (*poll.Results, error)
	CreatePoll(ctx context.Context, in models.NewPoll) (int64, error)
	EndPoll(ctx context.Context, id int) error
	SeedDemoPolls(ctx context.Context) (int, error)
	GeneratePollQR(ctx context.Context, id int) ([]byte, error)
}

// WidgetServicer defines the interface for widget operations
type WidgetServicer interface {
	Mount(ctx context.Context, pollID int, cfg *poll.Config) (string, widget.View, error)
	Render(id string) (widget.View, error)
	Refresh(ctx context.Context, id string) (widget.View, error)
	Vote(ctx context.Context, id string, option int) (*VoteResult, error)
	Unmount(id string) error
	Count() int
	Defaults() poll.Config
	Sweep(idleTTL time.Duration) SweepResult
	UnmountAll()
	SetBroadcaster(b Broadcaster)
}

// SettingsServicer defines the interface for settings operations
type SettingsServicer interface {
	GetBaseURL(ctx context.Context) (string, error)
	SetBaseURL(ctx context.Context, url string) error
	GetDataSource(ctx context.Context) (string, error)
	SetDataSource(ctx context.Context, source string) error
	GetPlayground(ctx context.Context) (models.PlaygroundSettings, error)
	UpdatePlayground(ctx context.Context, settings models.PlaygroundSettings) error
	ResetPlayground(ctx context.Context) (models.PlaygroundSettings, error)
	PlaygroundCode(ctx context.Context) (string, error)
	AllSettings(ctx context.Context) (map[string]interface{}, error)
	SetBroadcaster(b Broadcaster)
}

// Ensure concrete types implement interfaces
var (
	_ PollServicer     = (*PollService)(nil)
	_ WidgetServicer   = (*WidgetService)(nil)
	_ SettingsServicer = (*SettingsService)(nil)
	_ DataSourceGetter = (*SettingsService)(nil)
	_ BaseURLGetter    = (*SettingsService)(nil)
	_ PollGetter       = (*PollService)(nil)
)
