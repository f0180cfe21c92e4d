package poll

import (
	"sync"
	"time"

	"github.com/abrezinsky/polydemo/internal/clock"
)

// Sequencer controls post-vote feedback for one widget: a success banner
// that hides itself after the configured duration, and a one-shot confetti burst.
//
// At most one dismissal timer is pending at a time. Teardown cancels it, and a
// timer that still fires after Teardown does nothing.
type Sequencer struct {
	clock      clock.Clock
	onBanner   func(visible bool)
	onConfetti func()

	mu       sync.Mutex
	visible  bool
	deadline time.Time
	timer    clock.Timer
	gen      int
	bursts   int
	tornDown bool
}

// NewSequencer creates a Sequencer. Either hook may be nil.
func NewSequencer(c clock.Clock, onBanner func(visible bool), onConfetti func()) *Sequencer {
	return &Sequencer{
		clock:      c,
		onBanner:   onBanner,
		onConfetti: onConfetti,
	}
}

// OnVoteSuccess shows the banner (if enabled) and schedules its dismissal,
// then fires confetti (if enabled). Confetti never waits on the banner.
func (s *Sequencer) OnVoteSuccess(cfg Config) {
	s.mu.Lock()
	if s.tornDown {
		s.mu.Unlock()
		return
	}
	var gen int
	if cfg.ShowSuccessBanner {
		s.stopTimerLocked()
		s.gen++
		gen = s.gen
		s.visible = true
		s.deadline = s.clock.Now().Add(cfg.SuccessDuration())
	}
	if cfg.EnableConfetti {
		s.bursts++
	}
	s.mu.Unlock()

	if cfg.ShowSuccessBanner {
		if s.onBanner != nil {
			s.onBanner(true)
		}
		// Scheduled after the show hook so the hide hook can never overtake it.
		s.mu.Lock()
		if !s.tornDown && gen == s.gen {
			s.timer = s.clock.AfterFunc(cfg.SuccessDuration(), func() { s.dismiss(gen) })
		}
		s.mu.Unlock()
	}

	if cfg.EnableConfetti && s.onConfetti != nil && !s.isTornDown() {
		s.onConfetti()
	}
}

func (s *Sequencer) isTornDown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tornDown
}

func (s *Sequencer) dismiss(gen int) {
	s.mu.Lock()
	if s.tornDown || gen != s.gen || !s.visible {
		s.mu.Unlock()
		return
	}
	s.visible = false
	s.timer = nil
	s.mu.Unlock()

	if s.onBanner != nil {
		s.onBanner(false)
	}
}

// Teardown cancels any pending dismissal. No hook fires afterwards.
func (s *Sequencer) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tornDown = true
	s.stopTimerLocked()
	s.visible = false
}

func (s *Sequencer) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// BannerVisible reports whether the success banner is currently shown
func (s *Sequencer) BannerVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// BannerDeadline returns when the visible banner will hide; zero when hidden
func (s *Sequencer) BannerDeadline() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.visible {
		return time.Time{}
	}
	return s.deadline
}

// Bursts returns how many confetti bursts have fired
func (s *Sequencer) Bursts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bursts
}

// Pending reports whether a dismissal timer is scheduled
func (s *Sequencer) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}
