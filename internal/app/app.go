package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/polydemo/internal/clock"
	"github.com/abrezinsky/polydemo/internal/config"
	"github.com/abrezinsky/polydemo/internal/handlers"
	"github.com/abrezinsky/polydemo/internal/logger"
	"github.com/abrezinsky/polydemo/internal/repository"
	"github.com/abrezinsky/polydemo/internal/scheduler"
	"github.com/abrezinsky/polydemo/internal/services"
	"github.com/abrezinsky/polydemo/internal/websocket"
	"github.com/abrezinsky/polydemo/pkg/subgraph"
)

// App holds all application dependencies
type App struct {
	log             logger.Logger
	cfg             config.Config
	handlers        *handlers.Handlers
	repo            *repository.Repository
	settings        *services.SettingsService
	widgets         *services.WidgetService
	scheduler       *scheduler.Scheduler
	cancelCountdown context.CancelFunc

	mu     sync.Mutex
	server *http.Server
}

// New creates and initializes a new application instance
func New(log logger.Logger, cfg config.Config, subgraphClient subgraph.Client, templatesFS, staticFS fs.FS) (*App, error) {
	repo, err := repository.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	// Initialize services
	clk := clock.Real()
	settingsService := services.NewSettingsService(log, repo)
	source := services.NewSourceSelector(log, repo, subgraphClient, settingsService)
	pollService := services.NewPollService(log, repo, source, settingsService, clk)
	widgetService := services.NewWidgetService(log, pollService, repo, clk, cfg.WidgetDefaults)

	// Initialize WebSocket hub with DI
	hub := websocket.New(log, settingsService, widgetService)
	hub.Start()
	settingsService.SetBroadcaster(hub)
	widgetService.SetBroadcaster(hub)

	ctx := context.Background()
	if cfg.SeedDemoPolls {
		if _, err := pollService.SeedDemoPolls(ctx); err != nil {
			repo.Close()
			return nil, fmt.Errorf("failed to seed demo polls: %w", err)
		}
	}

	sched := scheduler.New(log, widgetService, cfg.WidgetIdleTTL)
	if err := sched.Schedule(cfg.SweepInterval); err != nil {
		repo.Close()
		return nil, err
	}

	// Create static file server
	staticServer := handlers.NewStaticServer(staticFS)

	h, err := handlers.New(
		pollService,
		widgetService,
		settingsService,
		templatesFS,
		staticServer,
		hub,
		log,
	)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	a := &App{
		log:       log,
		cfg:       cfg,
		handlers:  h,
		repo:      repo,
		settings:  settingsService,
		widgets:   widgetService,
		scheduler: sched,
	}
	a.seedDataSource(ctx)

	// Start background work with context for graceful shutdown
	countdownCtx, cancel := context.WithCancel(context.Background())
	a.cancelCountdown = cancel
	go hub.StartCountdown(countdownCtx, cfg.CountdownInterval)
	sched.Start()

	return a, nil
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// Settings returns the settings service
func (a *App) Settings() *services.SettingsService {
	return a.settings
}

// Close performs graceful shutdown of app resources
func (a *App) Close() {
	if a.cancelCountdown != nil {
		a.cancelCountdown()
	}
	a.mu.Lock()
	server := a.server
	a.mu.Unlock()
	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		server.Shutdown(ctx)
		cancel()
	}
	a.scheduler.Stop()
	a.widgets.UnmountAll()
}

// Run starts the HTTP server and blocks until it stops
func (a *App) Run(addr string) error {
	baseURL := a.cfg.BaseURL
	if baseURL == "" {
		// Use the detected LAN IP so QR codes work from phones
		ip := preferredIP(systemInterfaces{})
		baseURL = fmt.Sprintf("http://%s%s", ip, addr)
		a.setDefaultBaseURL(baseURL)
	} else {
		a.forceBaseURL(baseURL)
	}

	a.log.Info("Server starting", "url", baseURL)
	a.log.Info("Playground URL", "url", baseURL+"/playground")

	server := &http.Server{Addr: addr, Handler: a.Router()}
	a.mu.Lock()
	a.server = server
	a.mu.Unlock()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// seedDataSource stores the configured data source unless one was
// already chosen at runtime
func (a *App) seedDataSource(ctx context.Context) {
	if _, err := a.repo.GetSetting(ctx, "data_source"); err == nil {
		return
	} else if !errors.Is(err, repository.ErrNotFound) {
		a.log.Warn("Failed to read data source", "error", err)
		return
	}
	if err := a.settings.SetDataSource(ctx, a.cfg.DataSource); err != nil {
		a.log.Warn("Failed to set data source", "source", a.cfg.DataSource, "error", err)
	}
}

// forceBaseURL stores an explicitly configured base URL
func (a *App) forceBaseURL(baseURL string) {
	if err := a.settings.SetBaseURL(context.Background(), baseURL); err != nil {
		a.log.Warn("Failed to set base_url", "error", err)
	}
}

// setDefaultBaseURL sets the base URL setting if not already configured
// or if current value uses localhost (which isn't useful for QR codes)
func (a *App) setDefaultBaseURL(baseURL string) {
	ctx := context.Background()
	existing, _ := a.repo.GetSetting(ctx, "base_url")

	// Set default if empty or if current value uses localhost
	needsUpdate := existing == "" || strings.Contains(existing, "localhost")
	if needsUpdate {
		if err := a.repo.SetSetting(ctx, "base_url", baseURL); err != nil {
			a.log.Warn("Failed to set default base_url", "error", err)
		} else {
			a.log.Info("Default base URL set", "url", baseURL)
		}
	}
}
