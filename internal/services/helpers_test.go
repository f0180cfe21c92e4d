package services_test

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/abrezinsky/polydemo/internal/clock"
	"github.com/abrezinsky/polydemo/internal/logger"
	"github.com/abrezinsky/polydemo/internal/repository"
	"github.com/abrezinsky/polydemo/internal/services"
	"github.com/abrezinsky/polydemo/internal/testutil"
	"github.com/abrezinsky/polydemo/pkg/subgraph"
)

var testNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func quietLogger() *logger.SlogLogger {
	return logger.NewWithWriter(io.Discard, slog.LevelDebug, logger.FormatText)
}

type event struct {
	widgetID string
	name     string
	payload  interface{}
}

// recordingBroadcaster captures everything sent to clients
type recordingBroadcaster struct {
	mu       sync.Mutex
	events   []event
	settings map[string]interface{}
}

func (b *recordingBroadcaster) BroadcastWidgetEvent(widgetID, name string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event{widgetID: widgetID, name: name, payload: payload})
}

func (b *recordingBroadcaster) BroadcastSettingsChanged(key string, value interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.settings == nil {
		b.settings = make(map[string]interface{})
	}
	b.settings[key] = value
}

func (b *recordingBroadcaster) names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.events))
	for i, e := range b.events {
		out[i] = e.name
	}
	return out
}

// stack is a fully wired service set over an in-memory repository
type stack struct {
	repo     repository.FullRepository
	clock    *clock.Manual
	client   *subgraph.MockClient
	settings *services.SettingsService
	source   *services.SourceSelector
	polls    *services.PollService
	widgets  *services.WidgetService
	events   *recordingBroadcaster
}

func newStack(t *testing.T, repo repository.FullRepository, client *subgraph.MockClient) *stack {
	t.Helper()
	if repo == nil {
		repo = testutil.NewTestRepository(t)
	}
	if client == nil {
		client = subgraph.NewMockClient(subgraph.WithBaseURL(""))
	}

	log := quietLogger()
	clk := clock.NewManual(testNow)
	events := &recordingBroadcaster{}

	settings := services.NewSettingsService(log, repo)
	settings.SetBroadcaster(events)
	source := services.NewSourceSelector(log, repo, client, settings)
	polls := services.NewPollService(log, repo, source, settings, clk)
	widgets := services.NewWidgetService(log, polls, repo, clk, services.DefaultPlaygroundSettings().WidgetConfig())
	widgets.SetBroadcaster(events)
	t.Cleanup(widgets.UnmountAll)

	return &stack{
		repo:     repo,
		clock:    clk,
		client:   client,
		settings: settings,
		source:   source,
		polls:    polls,
		widgets:  widgets,
		events:   events,
	}
}
