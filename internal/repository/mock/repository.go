package mock

import (
	"context"

	"github.com/abrezinsky/polydemo/internal/models"
	"github.com/abrezinsky/polydemo/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
// This provides a flexible way to test error paths without complex database manipulation.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.RecordVoteError = errors.New("database error")
//	svc := services.NewWidgetService(log, polls, mockRepo, clk, poll.DefaultConfig())
//	// votes are still accepted by the widget, the recording failure is logged
type Repository struct {
	repository.FullRepository

	// ===== Poll Errors =====
	ListPollsError     error
	CountPollsError    error
	GetPollError       error
	CreatePollError    error
	SetPollStatusError error
	RecordVoteError    error
	CountVotesError    error

	// ===== Settings Errors =====
	GetSettingError    error
	SetSettingError    error
	DeleteSettingError error
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real repository.FullRepository) *Repository {
	return &Repository{
		FullRepository: real,
	}
}

// ===== Poll Methods =====

func (m *Repository) ListPolls(ctx context.Context, limit, offset int) ([]models.Poll, error) {
	if m.ListPollsError != nil {
		return nil, m.ListPollsError
	}
	return m.FullRepository.ListPolls(ctx, limit, offset)
}

func (m *Repository) CountPolls(ctx context.Context) (int, error) {
	if m.CountPollsError != nil {
		return 0, m.CountPollsError
	}
	return m.FullRepository.CountPolls(ctx)
}

func (m *Repository) GetPoll(ctx context.Context, id int) (*models.Poll, error) {
	if m.GetPollError != nil {
		return nil, m.GetPollError
	}
	return m.FullRepository.GetPoll(ctx, id)
}

func (m *Repository) CreatePoll(ctx context.Context, p models.Poll) (int64, error) {
	if m.CreatePollError != nil {
		return 0, m.CreatePollError
	}
	return m.FullRepository.CreatePoll(ctx, p)
}

func (m *Repository) SetPollStatus(ctx context.Context, id int, status string) error {
	if m.SetPollStatusError != nil {
		return m.SetPollStatusError
	}
	return m.FullRepository.SetPollStatus(ctx, id, status)
}

func (m *Repository) RecordVote(ctx context.Context, pollID, option int, widgetID string) error {
	if m.RecordVoteError != nil {
		return m.RecordVoteError
	}
	return m.FullRepository.RecordVote(ctx, pollID, option, widgetID)
}

func (m *Repository) CountVotes(ctx context.Context, pollID int) (int, error) {
	if m.CountVotesError != nil {
		return 0, m.CountVotesError
	}
	return m.FullRepository.CountVotes(ctx, pollID)
}

// ===== Settings Methods =====

func (m *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	if m.GetSettingError != nil {
		return "", m.GetSettingError
	}
	return m.FullRepository.GetSetting(ctx, key)
}

func (m *Repository) SetSetting(ctx context.Context, key, value string) error {
	if m.SetSettingError != nil {
		return m.SetSettingError
	}
	return m.FullRepository.SetSetting(ctx, key, value)
}

func (m *Repository) DeleteSetting(ctx context.Context, key string) error {
	if m.DeleteSettingError != nil {
		return m.DeleteSettingError
	}
	return m.FullRepository.DeleteSetting(ctx, key)
}
