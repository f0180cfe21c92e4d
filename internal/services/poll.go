package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/skip2/go-qrcode"

	"github.com/abrezinsky/polydemo/internal/clock"
	"github.com/abrezinsky/polydemo/internal/errors"
	"github.com/abrezinsky/polydemo/internal/logger"
	"github.com/abrezinsky/polydemo/internal/models"
	"github.com/abrezinsky/polydemo/internal/poll"
	"github.com/abrezinsky/polydemo/internal/repository"
)

// Limits for created polls
const (
	MinPollOptions      = 2
	MaxPollOptions      = 10
	MaxQuestionLength   = 200
	DefaultPollDuration = 7
	MaxPollDurationDays = 365
	MaxPageSize         = 100
)

// BaseURLGetter returns the public base URL of the server
type BaseURLGetter interface {
	GetBaseURL(ctx context.Context) (string, error)
}

// PollService handles poll listing, creation, results and sharing
type PollService struct {
	log      logger.Logger
	repo     repository.PollRepository
	source   *SourceSelector
	settings BaseURLGetter
	clock    clock.Clock
}

// NewPollService creates a new PollService
func NewPollService(log logger.Logger, repo repository.PollRepository, source *SourceSelector, settings BaseURLGetter, c clock.Clock) *PollService {
	return &PollService{log: log, repo: repo, source: source, settings: settings, clock: c}
}

// PollSummary is a poll annotated for list and detail views
type PollSummary struct {
	models.Poll
	Lifecycle   poll.Lifecycle `json:"lifecycle"`
	StatusLabel string         `json:"status_label"`
	StatusText  string         `json:"status_text"`
	TotalVotes  int            `json:"total_votes"`
	VotesText   string         `json:"votes_text"`
	CreatedAgo  string         `json:"created_ago"`
}

// PollList is one page of summarized polls
type PollList struct {
	Polls        []PollSummary `json:"polls"`
	ActiveSource string        `json:"active_source"`
	Limit        int           `json:"limit"`
	Offset       int           `json:"offset"`
}

// Summarize annotates a poll with its lifecycle and human-readable texts
func Summarize(p models.Poll, now time.Time) PollSummary {
	lc := poll.Classify(p.Snapshot(), now)
	total := 0
	for _, n := range p.Votes {
		total += n
	}

	votesText := humanize.Comma(int64(total)) + " votes"
	if total == 1 {
		votesText = "1 vote"
	}

	return PollSummary{
		Poll:        p,
		Lifecycle:   lc,
		StatusLabel: lc.Label(),
		StatusText:  poll.StatusText(lc, poll.TimeRemaining(p.ExpiresAt, now)),
		TotalVotes:  total,
		VotesText:   votesText,
		CreatedAgo:  humanize.RelTime(p.CreatedAt, now, "ago", "from now"),
	}
}

// ListPolls returns a page of polls from the configured data source
func (s *PollService) ListPolls(ctx context.Context, limit, offset int) (*PollList, error) {
	if limit <= 0 || limit > MaxPageSize || offset < 0 {
		return nil, ErrInvalidPaging
	}

	page, err := s.source.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	list := &PollList{
		Polls:        make([]PollSummary, 0, len(page.Polls)),
		ActiveSource: page.ActiveSource,
		Limit:        limit,
		Offset:       offset,
	}
	for _, p := range page.Polls {
		list.Polls = append(list.Polls, Summarize(p, now))
	}
	return list, nil
}

// GetPoll returns one poll from the configured data source
func (s *PollService) GetPoll(ctx context.Context, id int) (*models.Poll, error) {
	return s.source.Get(ctx, id)
}

// GetSummary returns one annotated poll
func (s *PollService) GetSummary(ctx context.Context, id int) (*PollSummary, error) {
	p, err := s.GetPoll(ctx, id)
	if err != nil {
		return nil, err
	}
	summary := Summarize(*p, s.clock.Now())
	return &summary, nil
}

// GetResults computes per-option totals, percentages and leaders
func (s *PollService) GetResults(ctx context.Context, id int) (*poll.Results, error) {
	p, err := s.GetPoll(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.Snapshot().Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "stored poll is malformed")
	}
	results := poll.ComputeResults(p.Options, p.Votes)
	return &results, nil
}

// CreatePoll validates and stores a new poll in the contract store
func (s *PollService) CreatePoll(ctx context.Context, in models.NewPoll) (int64, error) {
	question := strings.TrimSpace(in.Question)
	if question == "" {
		return 0, errors.Validation("question is required")
	}
	if len(question) > MaxQuestionLength {
		return 0, errors.Validationf("question must be at most %d characters", MaxQuestionLength)
	}

	options := make([]string, 0, len(in.Options))
	seen := make(map[string]bool, len(in.Options))
	for _, opt := range in.Options {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			return 0, errors.Validation("options must not be empty")
		}
		if seen[strings.ToLower(opt)] {
			return 0, errors.Validationf("duplicate option %q", opt)
		}
		seen[strings.ToLower(opt)] = true
		options = append(options, opt)
	}
	if len(options) < MinPollOptions || len(options) > MaxPollOptions {
		return 0, errors.Validationf("a poll needs between %d and %d options", MinPollOptions, MaxPollOptions)
	}

	days := in.DurationDays
	if days == 0 {
		days = DefaultPollDuration
	}
	if days < 1 || days > MaxPollDurationDays {
		return 0, errors.Validationf("duration must be between 1 and %d days", MaxPollDurationDays)
	}

	now := s.clock.Now().UTC()
	id, err := s.repo.CreatePoll(ctx, models.Poll{
		Question:  question,
		Category:  strings.TrimSpace(in.Category),
		Options:   options,
		Votes:     make([]int, len(options)),
		CreatedAt: now,
		ExpiresAt: now.Add(time.Duration(days) * 24 * time.Hour),
	})
	if err != nil {
		return 0, err
	}

	s.log.Info("Poll created", "id", id, "options", len(options), "days", days)
	return id, nil
}

// EndPoll sets the explicit "ended" status on a contract poll
func (s *PollService) EndPoll(ctx context.Context, id int) error {
	err := s.repo.SetPollStatus(ctx, id, string(poll.StatusEnded))
	if err == repository.ErrNotFound {
		return errors.NotFoundf("poll %d not found", id)
	}
	if err != nil {
		return err
	}
	s.log.Info("Poll ended", "id", id)
	return nil
}

// SeedDemoPolls inserts the demo polls when the contract store is empty
func (s *PollService) SeedDemoPolls(ctx context.Context) (int, error) {
	count, err := s.repo.CountPolls(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	seeded := 0
	for _, p := range DemoPolls(s.clock.Now().UTC()) {
		if _, err := s.repo.CreatePoll(ctx, p); err != nil {
			return seeded, fmt.Errorf("failed to seed %q: %w", p.Question, err)
		}
		seeded++
	}
	s.log.Info("Seeded demo polls", "count", seeded)
	return seeded, nil
}

// DemoPolls returns the demo polls relative to now, oldest first
func DemoPolls(now time.Time) []models.Poll {
	day := 24 * time.Hour
	return []models.Poll{
		{
			Question:  "Favorite consensus mechanism?",
			Category:  "Technology",
			Options:   []string{"Proof of Stake", "Proof of Work", "Proof of Authority"},
			Votes:     []int{41, 17, 6},
			CreatedAt: now.Add(-10 * day),
			ExpiresAt: now.Add(-3 * day),
		},
		{
			Question:  "Should the community treasury fund a hackathon?",
			Category:  "Governance",
			Options:   []string{"Yes", "No"},
			Votes:     []int{0, 0},
			CreatedAt: now.Add(1 * day),
			ExpiresAt: now.Add(8 * day),
		},
		{
			Question:  "Which blockchain feature excites you most?",
			Category:  "Technology",
			Options:   []string{"Smart Contracts", "DeFi", "NFTs", "DAOs"},
			Votes:     []int{52, 38, 28, 19},
			CreatedAt: now.Add(-2 * day),
			ExpiresAt: now.Add(7 * day),
		},
	}
}

// GeneratePollQR generates a QR code PNG linking to the poll's widget page
func (s *PollService) GeneratePollQR(ctx context.Context, id int) ([]byte, error) {
	if _, err := s.GetPoll(ctx, id); err != nil {
		return nil, err
	}

	baseURL, err := s.settings.GetBaseURL(ctx)
	if err != nil || baseURL == "" {
		return nil, ErrBaseURLNotSet
	}
	pollURL := fmt.Sprintf("%s/?poll=%d", strings.TrimSuffix(baseURL, "/"), id)
	return qrcode.Encode(pollURL, qrcode.Medium, 256)
}
