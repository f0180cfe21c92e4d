package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/abrezinsky/polydemo/internal/config"
	"github.com/abrezinsky/polydemo/internal/logger"
	"github.com/abrezinsky/polydemo/internal/models"
	"github.com/abrezinsky/polydemo/pkg/subgraph"
)

func TestNew_InitializesApp(t *testing.T) {
	app := createTestApp(t, testConfig())

	if app.handlers == nil {
		t.Error("expected handlers to be initialized")
	}
	if app.repo == nil {
		t.Error("expected repo to be initialized")
	}
	if app.cancelCountdown == nil {
		t.Error("expected cancelCountdown to be set")
	}
	if app.scheduler == nil {
		t.Error("expected scheduler to be set")
	}

	count, err := app.repo.CountPolls(context.Background())
	if err != nil {
		t.Fatalf("CountPolls failed: %v", err)
	}
	if count != 3 {
		t.Errorf("expected demo polls seeded, got %d", count)
	}
}

func TestNew_SkipsSeedWhenDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.SeedDemoPolls = false
	app := createTestApp(t, cfg)

	count, _ := app.repo.CountPolls(context.Background())
	if count != 0 {
		t.Errorf("expected empty store, got %d polls", count)
	}
}

func TestNew_FailsWithBadDBPath(t *testing.T) {
	cfg := testConfig()
	cfg.DBPath = "/nonexistent/path/db.sqlite"

	_, err := New(quietLogger(), cfg, subgraph.NewMockClient(), createTestTemplatesFS(), fstest.MapFS{})
	if err == nil {
		t.Error("expected error for invalid db path")
	}
}

func TestNew_FailsWithMissingTemplates(t *testing.T) {
	_, err := New(quietLogger(), testConfig(), subgraph.NewMockClient(), fstest.MapFS{}, fstest.MapFS{})
	if err == nil {
		t.Error("expected error for missing templates")
	}
}

func TestNew_FailsWithBadSweepInterval(t *testing.T) {
	cfg := testConfig()
	cfg.SweepInterval = time.Millisecond

	_, err := New(quietLogger(), cfg, subgraph.NewMockClient(), createTestTemplatesFS(), fstest.MapFS{})
	if err == nil {
		t.Error("expected error for sub-second sweep interval")
	}
}

func TestNew_SeedsDataSourceOnce(t *testing.T) {
	cfg := testConfig()
	cfg.DataSource = models.SourceContract
	app := createTestApp(t, cfg)
	ctx := context.Background()

	if source, _ := app.settings.GetDataSource(ctx); source != models.SourceContract {
		t.Fatalf("expected configured source, got %q", source)
	}

	// A runtime choice survives re-seeding
	app.settings.SetDataSource(ctx, models.SourceSubgraph)
	app.seedDataSource(ctx)
	if source, _ := app.settings.GetDataSource(ctx); source != models.SourceSubgraph {
		t.Errorf("expected runtime choice kept, got %q", source)
	}
}

func TestApp_Router_ServesRequests(t *testing.T) {
	app := createTestApp(t, testConfig())
	server := httptest.NewServer(app.Router())
	defer server.Close()

	resp, err := http.Get(server.URL + "/")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for /, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "Which blockchain feature excites you most?") {
		t.Errorf("expected newest poll on the index page, got %s", body)
	}
}

func TestApp_MountAndVoteOverHTTP(t *testing.T) {
	app := createTestApp(t, testConfig())
	server := httptest.NewServer(app.Router())
	defer server.Close()

	resp, err := http.Post(server.URL+"/api/widgets", "application/json", strings.NewReader(`{"poll_id":3}`))
	if err != nil {
		t.Fatalf("mount failed: %v", err)
	}
	var mounted struct {
		WidgetID string `json:"widget_id"`
	}
	json.NewDecoder(resp.Body).Decode(&mounted)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated || mounted.WidgetID == "" {
		t.Fatalf("expected 201 with widget ID, got %d", resp.StatusCode)
	}

	resp, err = http.Post(server.URL+"/api/widgets/"+mounted.WidgetID+"/vote", "application/json", strings.NewReader(`{"option":0}`))
	if err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for vote, got %d", resp.StatusCode)
	}

	stored, err := app.repo.GetPoll(context.Background(), 3)
	if err != nil {
		t.Fatalf("GetPoll failed: %v", err)
	}
	if stored.Votes[0] != 53 {
		t.Errorf("expected recorded vote, got %v", stored.Votes)
	}
}

func TestApp_Close_IsIdempotent(t *testing.T) {
	app := createTestApp(t, testConfig())

	app.Close()
	app.Close()

	if app.widgets.Count() != 0 {
		t.Error("expected widgets unmounted on close")
	}
}

func TestSetDefaultBaseURL_SetsWhenEmpty(t *testing.T) {
	app := createTestApp(t, testConfig())

	app.setDefaultBaseURL("http://192.168.1.100:8080")

	val, err := app.repo.GetSetting(context.Background(), "base_url")
	if err != nil {
		t.Fatalf("failed to get setting: %v", err)
	}
	if val != "http://192.168.1.100:8080" {
		t.Errorf("expected base_url to be set, got: %s", val)
	}
}

func TestSetDefaultBaseURL_ReplacesLocalhost(t *testing.T) {
	app := createTestApp(t, testConfig())
	ctx := context.Background()

	if err := app.repo.SetSetting(ctx, "base_url", "http://localhost:8080"); err != nil {
		t.Fatalf("failed to set initial setting: %v", err)
	}

	app.setDefaultBaseURL("http://192.168.1.100:8080")

	val, _ := app.repo.GetSetting(ctx, "base_url")
	if val != "http://192.168.1.100:8080" {
		t.Errorf("expected base_url to be replaced, got: %s", val)
	}
}

func TestSetDefaultBaseURL_DoesNotOverwriteValidURL(t *testing.T) {
	app := createTestApp(t, testConfig())
	ctx := context.Background()

	if err := app.repo.SetSetting(ctx, "base_url", "http://192.168.1.50:8080"); err != nil {
		t.Fatalf("failed to set initial setting: %v", err)
	}

	app.setDefaultBaseURL("http://192.168.1.100:8080")

	val, _ := app.repo.GetSetting(ctx, "base_url")
	if val != "http://192.168.1.50:8080" {
		t.Errorf("expected base_url to remain unchanged, got: %s", val)
	}
}

func TestForceBaseURL_OverwritesExisting(t *testing.T) {
	app := createTestApp(t, testConfig())
	ctx := context.Background()

	app.repo.SetSetting(ctx, "base_url", "http://192.168.1.50:8080")
	app.forceBaseURL("https://polls.example.org")

	val, _ := app.repo.GetSetting(ctx, "base_url")
	if val != "https://polls.example.org" {
		t.Errorf("expected configured base_url, got: %s", val)
	}
}

func TestSetDefaultBaseURL_HandlesRepoError(t *testing.T) {
	app := createTestApp(t, testConfig())
	app.Close()

	// Close the underlying database to force an error on SetSetting
	app.repo.DB().Close()

	// Should not panic even if repo is closed - just logs warning
	app.setDefaultBaseURL("http://192.168.1.100:8080")
}

func TestApp_Run_Integration(t *testing.T) {
	cfg := testConfig()
	cfg.BaseURL = "http://polls.test"
	app := createTestApp(t, cfg)

	done := make(chan error, 1)
	go func() {
		done <- app.Run("127.0.0.1:0")
	}()

	select {
	case err := <-done:
		t.Logf("Run returned early: %v", err)
		return
	case <-time.After(100 * time.Millisecond):
	}

	app.Close()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("Run did not return after Close")
	}

	val, _ := app.repo.GetSetting(context.Background(), "base_url")
	if val != "http://polls.test" {
		t.Errorf("expected configured base_url, got %q", val)
	}
}

// Helper functions

func quietLogger() logger.Logger {
	return logger.NewWithWriter(io.Discard, slog.LevelDebug, logger.FormatText)
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.DBPath = ":memory:"
	return cfg
}

func createTestTemplatesFS() fstest.MapFS {
	return fstest.MapFS{
		"layout.html": &fstest.MapFile{
			Data: []byte(`<html><body>{{template "content" .}}</body></html>`),
		},
		"index.html": &fstest.MapFile{
			Data: []byte(`{{define "content"}}{{with .Poll}}{{.Question}}{{end}}{{end}}`),
		},
		"list.html": &fstest.MapFile{
			Data: []byte(`{{define "content"}}List{{end}}`),
		},
		"playground.html": &fstest.MapFile{
			Data: []byte(`{{define "content"}}Playground{{end}}`),
		},
	}
}

func createTestApp(t *testing.T, cfg config.Config) *App {
	t.Helper()
	app, err := New(quietLogger(), cfg, subgraph.NewMockClient(subgraph.WithBaseURL("")), createTestTemplatesFS(), fstest.MapFS{})
	if err != nil {
		t.Fatalf("failed to create test app: %v", err)
	}
	t.Cleanup(app.Close)
	return app
}
