package services

import (
	"context"
	stderrors "errors"

	"github.com/abrezinsky/polydemo/internal/errors"
	"github.com/abrezinsky/polydemo/internal/logger"
	"github.com/abrezinsky/polydemo/internal/models"
	"github.com/abrezinsky/polydemo/internal/repository"
	"github.com/abrezinsky/polydemo/pkg/subgraph"
)

// DataSourceGetter reports the configured data source
type DataSourceGetter interface {
	GetDataSource(ctx context.Context) (string, error)
}

// SourceSelector reads polls from the contract store or the subgraph,
// according to the data_source setting. In auto mode the subgraph is tried
// first and the contract store serves as fallback.
type SourceSelector struct {
	log      logger.Logger
	repo     repository.PollRepository
	client   subgraph.Client
	settings DataSourceGetter
}

// NewSourceSelector creates a new SourceSelector
func NewSourceSelector(log logger.Logger, repo repository.PollRepository, client subgraph.Client, settings DataSourceGetter) *SourceSelector {
	return &SourceSelector{log: log, repo: repo, client: client, settings: settings}
}

// PollPage is one page of polls and the source that served it
type PollPage struct {
	Polls        []models.Poll `json:"polls"`
	ActiveSource string        `json:"active_source"`
}

func (s *SourceSelector) mode(ctx context.Context) string {
	source, err := s.settings.GetDataSource(ctx)
	if err != nil {
		s.log.Warn("Could not read data source, using auto", "error", err)
		return models.SourceAuto
	}
	return source
}

func (s *SourceSelector) subgraphConfigured() bool {
	return s.client != nil && s.client.BaseURL() != ""
}

// List returns a page of polls, newest first
func (s *SourceSelector) List(ctx context.Context, limit, offset int) (*PollPage, error) {
	switch s.mode(ctx) {
	case models.SourceContract:
		return s.listContract(ctx, limit, offset)
	case models.SourceSubgraph:
		page, err := s.listSubgraph(ctx, limit, offset)
		if err != nil {
			return nil, errors.Unavailable("subgraph unavailable", err)
		}
		return page, nil
	default:
		if s.subgraphConfigured() {
			page, err := s.listSubgraph(ctx, limit, offset)
			if err == nil {
				return page, nil
			}
			s.log.Warn("Subgraph query failed, falling back to contract", "error", err)
		}
		return s.listContract(ctx, limit, offset)
	}
}

func (s *SourceSelector) listContract(ctx context.Context, limit, offset int) (*PollPage, error) {
	polls, err := s.repo.ListPolls(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return &PollPage{Polls: polls, ActiveSource: models.SourceContract}, nil
}

func (s *SourceSelector) listSubgraph(ctx context.Context, limit, offset int) (*PollPage, error) {
	if !s.subgraphConfigured() {
		return nil, subgraph.ErrNotConfigured
	}
	indexed, err := s.client.FetchPolls(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	polls := make([]models.Poll, 0, len(indexed))
	for _, p := range indexed {
		polls = append(polls, fromSubgraph(p))
	}
	return &PollPage{Polls: polls, ActiveSource: models.SourceSubgraph}, nil
}

// Get returns one poll by ID from the configured source
func (s *SourceSelector) Get(ctx context.Context, id int) (*models.Poll, error) {
	switch s.mode(ctx) {
	case models.SourceContract:
		return s.getContract(ctx, id)
	case models.SourceSubgraph:
		return s.getSubgraph(ctx, id)
	default:
		if s.subgraphConfigured() {
			p, err := s.getSubgraph(ctx, id)
			if err == nil {
				return p, nil
			}
			s.log.Warn("Subgraph lookup failed, falling back to contract", "poll", id, "error", err)
		}
		return s.getContract(ctx, id)
	}
}

func (s *SourceSelector) getContract(ctx context.Context, id int) (*models.Poll, error) {
	p, err := s.repo.GetPoll(ctx, id)
	if err == repository.ErrNotFound {
		return nil, errors.NotFoundf("poll %d not found", id)
	}
	return p, err
}

func (s *SourceSelector) getSubgraph(ctx context.Context, id int) (*models.Poll, error) {
	if !s.subgraphConfigured() {
		return nil, errors.Unavailable("subgraph unavailable", subgraph.ErrNotConfigured)
	}
	indexed, err := s.client.FetchPoll(ctx, id)
	if stderrors.Is(err, subgraph.ErrPollNotFound) {
		return nil, errors.NotFoundf("poll %d not found", id)
	}
	if err != nil {
		return nil, errors.Unavailable("subgraph unavailable", err)
	}
	p := fromSubgraph(*indexed)
	return &p, nil
}

func fromSubgraph(p subgraph.Poll) models.Poll {
	return models.Poll{
		ID:        p.ID.Int(),
		Question:  p.Question,
		Category:  p.Category,
		Options:   p.Options,
		Votes:     p.Tally(),
		Status:    p.Status,
		CreatedAt: p.Created(),
		ExpiresAt: p.Expires(),
		Source:    models.SourceSubgraph,
	}
}
