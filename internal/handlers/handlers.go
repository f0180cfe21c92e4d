package handlers

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/abrezinsky/polydemo/internal/services"
	"github.com/abrezinsky/polydemo/internal/websocket"
)

// NewStaticServer creates a static file server from an fs.FS
func NewStaticServer(staticFS fs.FS) http.Handler {
	return http.FileServer(http.FS(staticFS))
}

// Templates holds all parsed HTML templates
type Templates struct {
	Index      *template.Template
	List       *template.Template
	Playground *template.Template
}

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Polls        services.PollServicer
	Widgets      services.WidgetServicer
	Settings     services.SettingsServicer
	Hub          *websocket.Hub
	Log          HTTPLogger
	templates    *Templates
	staticServer http.Handler
}

// HTTPLogger is an interface for loggers that support HTTP logging control
type HTTPLogger interface {
	IsHTTPLoggingEnabled() bool
}

// New creates a new Handlers instance with all dependencies
func New(
	polls services.PollServicer,
	widgets services.WidgetServicer,
	settings services.SettingsServicer,
	templatesFS fs.FS,
	staticServer http.Handler,
	hub *websocket.Hub,
	log HTTPLogger,
) (*Handlers, error) {
	templates, err := loadTemplates(templatesFS)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	return &Handlers{
		Polls:        polls,
		Widgets:      widgets,
		Settings:     settings,
		Hub:          hub,
		Log:          log,
		templates:    templates,
		staticServer: staticServer,
	}, nil
}

// NoopHTTPLogger is a test logger that always returns false for HTTP logging
type NoopHTTPLogger struct{}

func (NoopHTTPLogger) IsHTTPLoggingEnabled() bool { return false }

// NewForTesting creates a Handlers instance without templates or hub (for testing API endpoints)
func NewForTesting(
	polls services.PollServicer,
	widgets services.WidgetServicer,
	settings services.SettingsServicer,
) *Handlers {
	return &Handlers{
		Polls:        polls,
		Widgets:      widgets,
		Settings:     settings,
		Log:          NoopHTTPLogger{},
		staticServer: http.NotFoundHandler(),
	}
}

var templateFuncs = template.FuncMap{
	"percent": func(p float64) string { return fmt.Sprintf("%.1f%%", p) },
	"inc":     func(i int) int { return i + 1 },
}

func parse(templatesFS fs.FS, names ...string) (*template.Template, error) {
	return template.New(names[0]).Funcs(templateFuncs).ParseFS(templatesFS, names...)
}

// loadTemplates parses all templates once at startup
func loadTemplates(templatesFS fs.FS) (*Templates, error) {
	t := &Templates{}
	var err error

	if t.Index, err = parse(templatesFS, "layout.html", "index.html"); err != nil {
		return nil, fmt.Errorf("index template: %w", err)
	}
	if t.List, err = parse(templatesFS, "layout.html", "list.html"); err != nil {
		return nil, fmt.Errorf("list template: %w", err)
	}
	if t.Playground, err = parse(templatesFS, "layout.html", "playground.html"); err != nil {
		return nil, fmt.Errorf("playground template: %w", err)
	}

	return t, nil
}
