package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/polydemo/internal/clock"
	"github.com/abrezinsky/polydemo/internal/handlers"
	"github.com/abrezinsky/polydemo/internal/logger"
	"github.com/abrezinsky/polydemo/internal/repository"
	"github.com/abrezinsky/polydemo/internal/services"
	"github.com/abrezinsky/polydemo/internal/testutil"
	"github.com/abrezinsky/polydemo/pkg/subgraph"
)

var testNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

// Demo poll IDs in insertion order
const (
	endedPoll      = 1
	notStartedPoll = 2
	activePoll     = 3
)

type testSetup struct {
	repo     repository.FullRepository
	clock    *clock.Manual
	client   *subgraph.MockClient
	settings *services.SettingsService
	polls    *services.PollService
	widgets  *services.WidgetService
	handlers *handlers.Handlers
	router   chi.Router
}

func quietLogger() *logger.SlogLogger {
	return logger.NewWithWriter(io.Discard, slog.LevelDebug, logger.FormatText)
}

// newTestSetup wires real services over an in-memory repository with the
// demo polls seeded
func newTestSetup(t *testing.T) *testSetup {
	return newTestSetupWith(t, testutil.NewTestRepository(t), subgraph.NewMockClient(subgraph.WithBaseURL("")))
}

func newTestSetupWith(t *testing.T, repo repository.FullRepository, client *subgraph.MockClient) *testSetup {
	t.Helper()

	log := quietLogger()
	clk := clock.NewManual(testNow)
	settings := services.NewSettingsService(log, repo)
	source := services.NewSourceSelector(log, repo, client, settings)
	polls := services.NewPollService(log, repo, source, settings, clk)
	widgets := services.NewWidgetService(log, polls, repo, clk, services.DefaultPlaygroundSettings().WidgetConfig())
	t.Cleanup(widgets.UnmountAll)

	if _, err := polls.SeedDemoPolls(context.Background()); err != nil {
		t.Fatalf("failed to seed demo polls: %v", err)
	}

	h := handlers.NewForTesting(polls, widgets, settings)
	return &testSetup{
		repo:     repo,
		clock:    clk,
		client:   client,
		settings: settings,
		polls:    polls,
		widgets:  widgets,
		handlers: h,
		router:   h.Router(),
	}
}

func (s *testSetup) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(target); err != nil {
		t.Fatalf("failed to decode response: %v (body %q)", err, rec.Body.String())
	}
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	expectStatus(t, rec, status)
	var apiErr handlers.APIError
	decode(t, rec, &apiErr)
	if apiErr.Code != code {
		t.Errorf("expected code %s, got %s (%s)", code, apiErr.Code, apiErr.Message)
	}
}

// mountWidget mounts a widget through the API and returns its ID
func (s *testSetup) mountWidget(t *testing.T, body interface{}) handlers.MountWidgetResponse {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/widgets", body)
	expectStatus(t, rec, http.StatusCreated)
	var resp handlers.MountWidgetResponse
	decode(t, rec, &resp)
	return resp
}
