package repository

import (
	"context"

	"github.com/abrezinsky/polydemo/internal/models"
)

// PollRepository defines poll data operations
type PollRepository interface {
	ListPolls(ctx context.Context, limit, offset int) ([]models.Poll, error)
	CountPolls(ctx context.Context) (int, error)
	GetPoll(ctx context.Context, id int) (*models.Poll, error)
	CreatePoll(ctx context.Context, p models.Poll) (int64, error)
	SetPollStatus(ctx context.Context, id int, status string) error
	RecordVote(ctx context.Context, pollID, option int, widgetID string) error
	CountVotes(ctx context.Context, pollID int) (int, error)
}

// SettingsRepository defines settings data operations
type SettingsRepository interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	DeleteSetting(ctx context.Context, key string) error
}

// FullRepository combines all repository interfaces
// Use this when a service needs access to multiple domains
type FullRepository interface {
	PollRepository
	SettingsRepository
}

// Ensure Repository implements all interfaces
var _ FullRepository = (*Repository)(nil)
