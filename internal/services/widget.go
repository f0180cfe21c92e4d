package services

import (
	"context"
	stderrors "errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abrezinsky/polydemo/internal/clock"
	"github.com/abrezinsky/polydemo/internal/logger"
	"github.com/abrezinsky/polydemo/internal/models"
	"github.com/abrezinsky/polydemo/internal/poll"
	"github.com/abrezinsky/polydemo/internal/repository"
	"github.com/abrezinsky/polydemo/internal/widget"
)

// Widget event names sent to WebSocket clients
const (
	EventVoteSuccess = "vote_success"
	EventVoteError   = "vote_error"
	EventBanner      = "banner"
	EventConfetti    = "confetti"
	EventLifecycle   = "lifecycle"
	EventUnmounted   = "unmounted"
)

// PollGetter loads a poll from the configured data source
type PollGetter interface {
	GetPoll(ctx context.Context, id int) (*models.Poll, error)
}

type mountedWidget struct {
	w      *widget.Widget
	pollID int
	source string
}

// WidgetService keeps the registry of mounted widgets and connects their
// callbacks to the broadcaster and the contract store.
type WidgetService struct {
	log         logger.Logger
	polls       PollGetter
	repo        repository.PollRepository
	clock       clock.Clock
	defaults    poll.Config
	broadcaster Broadcaster

	mu      sync.RWMutex
	widgets map[string]*mountedWidget
}

// NewWidgetService creates a new WidgetService
func NewWidgetService(log logger.Logger, polls PollGetter, repo repository.PollRepository, c clock.Clock, defaults poll.Config) *WidgetService {
	return &WidgetService{
		log:      log,
		polls:    polls,
		repo:     repo,
		clock:    c,
		defaults: defaults,
		widgets:  make(map[string]*mountedWidget),
	}
}

// SetBroadcaster sets the broadcaster for sending widget events to clients
func (s *WidgetService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Defaults returns the configuration used when a mount request has none
func (s *WidgetService) Defaults() poll.Config {
	return s.defaults
}

func (s *WidgetService) emit(widgetID, event string, payload interface{}) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastWidgetEvent(widgetID, event, payload)
	}
}

// VoteErrorPayload is the payload of a vote_error event
type VoteErrorPayload struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (s *WidgetService) callbacks(id string) widget.Callbacks {
	return widget.Callbacks{
		OnVoteSuccess: func(a widget.Accepted) {
			s.emit(id, EventVoteSuccess, a)
		},
		OnVoteError: func(err error) {
			payload := VoteErrorPayload{Message: err.Error()}
			var voteErr *poll.VoteError
			if stderrors.As(err, &voteErr) {
				payload.Kind = voteErr.Kind.String()
			}
			s.emit(id, EventVoteError, payload)
		},
		OnBanner: func(visible bool) {
			s.emit(id, EventBanner, map[string]bool{"visible": visible})
		},
		OnConfetti: func() {
			s.emit(id, EventConfetti, nil)
		},
	}
}

// Mount loads the poll and mounts a new widget for it.
// A nil cfg mounts with the service defaults.
func (s *WidgetService) Mount(ctx context.Context, pollID int, cfg *poll.Config) (string, widget.View, error) {
	p, err := s.polls.GetPoll(ctx, pollID)
	if err != nil {
		return "", widget.View{}, err
	}

	config := s.defaults
	if cfg != nil {
		config = *cfg
	}

	id := uuid.NewString()
	w, err := widget.New(id, p.Snapshot(), config, s.clock, s.log, s.callbacks(id))
	if err != nil {
		return "", widget.View{}, err
	}

	s.mu.Lock()
	s.widgets[id] = &mountedWidget{w: w, pollID: p.ID, source: p.Source}
	s.mu.Unlock()

	s.log.Debug("Widget mounted", "widget", id, "poll", p.ID, "mode", config.DisplayMode, "source", p.Source)
	return id, w.Render(), nil
}

func (s *WidgetService) lookup(id string) (*mountedWidget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.widgets[id]
	if !ok {
		return nil, ErrWidgetNotFound
	}
	return m, nil
}

// Render returns the current view of a widget
func (s *WidgetService) Render(id string) (widget.View, error) {
	m, err := s.lookup(id)
	if err != nil {
		return widget.View{}, err
	}
	return m.w.Render(), nil
}

// Refresh reloads the widget's poll from the data source and renders it
func (s *WidgetService) Refresh(ctx context.Context, id string) (widget.View, error) {
	m, err := s.lookup(id)
	if err != nil {
		return widget.View{}, err
	}
	p, err := s.polls.GetPoll(ctx, m.pollID)
	if err != nil {
		return widget.View{}, err
	}
	if err := m.w.Refresh(p.Snapshot()); err != nil {
		return widget.View{}, err
	}
	return m.w.Render(), nil
}

// VoteResult is the outcome of an accepted vote
type VoteResult struct {
	View     widget.View `json:"view"`
	Recorded bool        `json:"recorded"`
}

// Vote casts the viewer's vote on a widget. Accepted votes on contract polls
// are recorded in the store; a recording failure is logged and reported in
// the result, the widget keeps the vote.
func (s *WidgetService) Vote(ctx context.Context, id string, option int) (*VoteResult, error) {
	m, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if err := m.w.Vote(option); err != nil {
		return nil, err
	}

	result := &VoteResult{}
	if m.source == models.SourceContract {
		if err := s.repo.RecordVote(ctx, m.pollID, option, id); err != nil {
			s.log.Error("Failed to record vote", "widget", id, "poll", m.pollID, "option", option, "error", err)
			m.w.KeepLocal()
		} else {
			result.Recorded = true
		}
	} else {
		s.log.Debug("Vote kept local, source is read-only", "widget", id, "source", m.source)
		m.w.KeepLocal()
	}

	result.View = m.w.Render()
	return result, nil
}

// Unmount tears a widget down and removes it from the registry
func (s *WidgetService) Unmount(id string) error {
	s.mu.Lock()
	m, ok := s.widgets[id]
	if ok {
		delete(s.widgets, id)
	}
	s.mu.Unlock()

	if !ok {
		return ErrWidgetNotFound
	}
	m.w.Unmount()
	s.log.Debug("Widget unmounted", "widget", id)
	return nil
}

// Count returns the number of mounted widgets
func (s *WidgetService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.widgets)
}

// SweepResult summarizes one lifecycle sweep
type SweepResult struct {
	Checked int `json:"checked"`
	Changed int `json:"changed"`
	Reaped  int `json:"reaped"`
}

// Sweep reclassifies every mounted widget, broadcasts lifecycle changes,
// and unmounts widgets idle for longer than idleTTL. A zero idleTTL disables reaping.
func (s *WidgetService) Sweep(idleTTL time.Duration) SweepResult {
	s.mu.RLock()
	ids := make([]string, 0, len(s.widgets))
	for id := range s.widgets {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Strings(ids)

	now := s.clock.Now()
	var result SweepResult
	for _, id := range ids {
		m, err := s.lookup(id)
		if err != nil {
			continue // unmounted concurrently
		}
		result.Checked++

		if lc, changed := m.w.LifecycleChange(); changed {
			result.Changed++
			s.log.Info("Poll lifecycle changed", "widget", id, "poll", m.pollID, "lifecycle", lc)
			s.emit(id, EventLifecycle, map[string]string{"lifecycle": string(lc), "label": lc.Label()})
		}

		if idleTTL > 0 && now.Sub(m.w.IdleSince()) > idleTTL {
			if err := s.Unmount(id); err == nil {
				result.Reaped++
				s.emit(id, EventUnmounted, nil)
			}
		}
	}
	return result
}

// UnmountAll tears down every widget, used on shutdown
func (s *WidgetService) UnmountAll() {
	s.mu.Lock()
	widgets := s.widgets
	s.widgets = make(map[string]*mountedWidget)
	s.mu.Unlock()

	for _, m := range widgets {
		m.w.Unmount()
	}
}
