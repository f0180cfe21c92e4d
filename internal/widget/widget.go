// Package widget holds the state of one mounted poll widget: its snapshot,
// display configuration, the viewer's vote status, the local tally and the
// feedback sequencer. All engine decisions are delegated to package poll.
package widget

import (
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/abrezinsky/polydemo/internal/clock"
	"github.com/abrezinsky/polydemo/internal/logger"
	"github.com/abrezinsky/polydemo/internal/poll"
)

// ErrUnmounted is returned for operations on a torn-down widget
var ErrUnmounted = stderrors.New("widget is unmounted")

// Accepted describes a vote the widget accepted
type Accepted struct {
	Option int   `json:"option"`
	Tally  []int `json:"tally"`
}

// Callbacks are the output hooks of a widget. Any of them may be nil.
// Hooks run outside the widget's lock, so they may call back into it.
type Callbacks struct {
	OnVoteSuccess func(Accepted)
	OnVoteError   func(error)
	OnBanner      func(visible bool)
	OnConfetti    func()
}

// Widget is one mounted widget instance
type Widget struct {
	id    string
	cfg   poll.Config
	clock clock.Clock
	log   logger.Logger
	cb    Callbacks
	seq   *poll.Sequencer

	mu            sync.Mutex
	snapshot      poll.Snapshot
	tally         []int
	status        poll.VoteStatus
	localOnly     *int
	unmounted     bool
	lastSeen      time.Time
	lastLifecycle poll.Lifecycle
}

// New mounts a widget for the given snapshot and configuration
func New(id string, snapshot poll.Snapshot, cfg poll.Config, c clock.Clock, log logger.Logger, cb Callbacks) (*Widget, error) {
	if err := snapshot.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Size == "" {
		cfg.Size = poll.SizeMedium
	}

	w := &Widget{
		id:       id,
		cfg:      cfg,
		clock:    c,
		log:      log,
		cb:       cb,
		snapshot: snapshot,
		tally:    copyTally(snapshot.Tally),
	}
	w.seq = poll.NewSequencer(c, cb.OnBanner, cb.OnConfetti)

	now := c.Now()
	w.lastSeen = now
	w.lastLifecycle = poll.Classify(snapshot, now)
	return w, nil
}

func copyTally(t []int) []int {
	out := make([]int, len(t))
	copy(out, t)
	return out
}

// ID returns the widget's identifier
func (w *Widget) ID() string {
	return w.id
}

// Config returns the widget's display configuration
func (w *Widget) Config() poll.Config {
	return w.cfg
}

// Banner is the visible success notification
type Banner struct {
	Message string    `json:"message"`
	HidesAt time.Time `json:"hides_at"`
}

// View is everything a page needs to draw the widget for one render pass
type View struct {
	ID           string         `json:"widget_id"`
	Question     string         `json:"question"`
	Category     string         `json:"category,omitempty"`
	Lifecycle    poll.Lifecycle `json:"lifecycle"`
	StatusLabel  string         `json:"status_label"`
	StatusText   string         `json:"status_text,omitempty"`
	Remaining    poll.Remaining `json:"remaining"`
	Interface    poll.Interface `json:"interface"`
	Options      []string       `json:"options"`
	CanVote      bool           `json:"can_vote"`
	HasVoted     bool           `json:"has_voted"`
	ChosenOption *int           `json:"chosen_option,omitempty"`
	Reveal       poll.Reveal    `json:"reveal"`
	Results      *poll.Results  `json:"results,omitempty"`
	Banner       *Banner        `json:"banner,omitempty"`
	Confetti     int            `json:"confetti"`
	Size         poll.Size      `json:"size"`
}

// Render resolves the widget against the current time
func (w *Widget) Render() View {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.clock.Now()
	w.lastSeen = now

	lc := poll.Classify(w.snapshot, now)
	iface := poll.Resolve(w.cfg.DisplayMode, lc, w.status)
	reveal := poll.RevealPolicy(iface, w.cfg, lc, w.status)
	remaining := poll.TimeRemaining(w.snapshot.ExpiresAt, now)

	v := View{
		ID:           w.id,
		Question:     w.snapshot.Question,
		Category:     w.snapshot.Category,
		Lifecycle:    lc,
		StatusLabel:  lc.Label(),
		StatusText:   poll.StatusText(lc, remaining),
		Remaining:    remaining,
		Interface:    iface,
		Options:      append([]string(nil), w.snapshot.Options...),
		CanVote:      lc == poll.Active && !w.status.HasVoted,
		HasVoted:     w.status.HasVoted,
		ChosenOption: w.status.ChosenOption,
		Reveal:       reveal,
		Confetti:     w.seq.Bursts(),
		Size:         w.cfg.Size,
	}
	if reveal.ShowData {
		results := poll.ComputeResults(w.snapshot.Options, w.tally)
		v.Results = &results
	}
	if w.seq.BannerVisible() {
		v.Banner = &Banner{Message: w.cfg.BannerMessage(), HidesAt: w.seq.BannerDeadline()}
	}
	return v
}

// Vote casts the viewer's vote. Rejections are reported to OnVoteError and
// returned; the widget state is unchanged in that case.
func (w *Widget) Vote(option int) error {
	w.mu.Lock()
	if w.unmounted {
		w.mu.Unlock()
		return ErrUnmounted
	}

	now := w.clock.Now()
	w.lastSeen = now
	lc := poll.Classify(w.snapshot, now)

	status, tally, err := poll.CastVote(option, lc, w.status, w.tally)
	if err != nil {
		w.mu.Unlock()
		if stderrors.Is(err, poll.ErrInvalidOption) {
			w.log.Warn("Vote for out-of-range option", "widget", w.id, "option", option, "options", len(w.tally))
		} else {
			w.log.Debug("Vote rejected", "widget", w.id, "option", option, "error", err)
		}
		if w.cb.OnVoteError != nil {
			w.cb.OnVoteError(err)
		}
		return err
	}

	w.status = status
	w.tally = tally
	accepted := Accepted{Option: option, Tally: copyTally(tally)}
	w.mu.Unlock()

	w.log.Info("Vote accepted", "widget", w.id, "option", option)

	if w.cfg.WantsFeedback() {
		w.seq.OnVoteSuccess(w.cfg)
	}
	// Feedback hooks may have unmounted the widget
	if w.cb.OnVoteSuccess != nil && !w.Unmounted() {
		w.cb.OnVoteSuccess(accepted)
	}
	return nil
}

// KeepLocal marks the viewer's vote as absent from the data source, so the
// tallies adopted by later refreshes still count it.
func (w *Widget) KeepLocal() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.status.ChosenOption != nil {
		option := *w.status.ChosenOption
		w.localOnly = &option
	}
}

// Refresh adopts a newer snapshot from the data source for the next render
// pass. Vote status is kept, and a vote marked with KeepLocal is added back
// onto the refreshed tally.
func (w *Widget) Refresh(snapshot poll.Snapshot) error {
	if err := snapshot.Validate(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.unmounted {
		return ErrUnmounted
	}
	if chosen := w.status.ChosenOption; chosen != nil && *chosen >= len(snapshot.Options) {
		return &poll.ValidationError{
			Field:   "options",
			Message: fmt.Sprintf("refreshed poll has %d options, chosen option %d no longer exists", len(snapshot.Options), *chosen),
		}
	}
	w.snapshot = snapshot
	w.tally = copyTally(snapshot.Tally)
	if w.localOnly != nil {
		w.tally[*w.localOnly]++
	}
	return nil
}

// Status returns the viewer's vote status
func (w *Widget) Status() poll.VoteStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Tally returns a copy of the local tally
func (w *Widget) Tally() []int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return copyTally(w.tally)
}

// LifecycleChange reclassifies the poll and reports whether the state moved
// since the previous call (or since mount).
func (w *Widget) LifecycleChange() (poll.Lifecycle, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	lc := poll.Classify(w.snapshot, w.clock.Now())
	changed := lc != w.lastLifecycle
	w.lastLifecycle = lc
	return lc, changed
}

// IdleSince returns the last time the widget was rendered or voted on
func (w *Widget) IdleSince() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastSeen
}

// Unmount tears the widget down and cancels any pending banner timer.
// It is safe to call more than once.
func (w *Widget) Unmount() {
	w.mu.Lock()
	w.unmounted = true
	w.mu.Unlock()

	w.seq.Teardown()
}

// Unmounted reports whether Unmount has been called
func (w *Widget) Unmounted() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.unmounted
}
