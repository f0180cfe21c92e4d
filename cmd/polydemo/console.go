package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/abrezinsky/polydemo/internal/browser"
	"github.com/abrezinsky/polydemo/internal/logger"
	"github.com/abrezinsky/polydemo/internal/models"
)

// ANSI escape codes
const (
	reset  = "\033[0m"
	yellow = "\033[33m"
	red    = "\033[31m"
	green  = "\033[32m"
	cyan   = "\033[36m"
	bold   = "\033[1m"
)

// dataSourceSetting is the part of the settings service the console toggles
type dataSourceSetting interface {
	GetDataSource(ctx context.Context) (string, error)
	SetDataSource(ctx context.Context, source string) error
}

// console handles single-key shortcuts typed into the server terminal
type console struct {
	out      io.Writer
	log      *logger.SlogLogger
	settings dataSourceSetting
	port     int
	open     func(url string) error
	quit     func()
}

func newConsole(out io.Writer, log *logger.SlogLogger, settings dataSourceSetting, port int, quit func()) *console {
	return &console{
		out:      out,
		log:      log,
		settings: settings,
		port:     port,
		open:     browser.Open,
		quit:     quit,
	}
}

var shortcuts = []struct{ key, help string }{
	{"w", "Open the widget page in browser"},
	{"p", "Open the playground in browser"},
	{"d", "Cycle data source (auto → contract → subgraph)"},
	{"h", "Toggle HTTP request logging"},
	{"l", "Cycle log level (debug → info → warn → error)"},
	{"q", "Quit server"},
	{"?", "Show this help"},
}

// printHelp displays all available keyboard shortcuts
func (c *console) printHelp() {
	fmt.Fprintf(c.out, "\n%s%s  Keyboard Shortcuts:%s\n", bold, green, reset)
	for _, s := range shortcuts {
		fmt.Fprintf(c.out, "    %s%s%s      - %s\n", cyan, s.key, reset, s.help)
	}
	fmt.Fprintln(c.out)
}

// handleKey runs the action bound to key. It reports whether the
// console should stop reading.
func (c *console) handleKey(key byte) bool {
	switch strings.ToLower(string(key)) {
	case "w":
		c.openPage("/", nil)
	case "p":
		c.openPage("/playground", nil)
	case "d":
		c.cycleDataSource()
	case "h":
		if c.log.IsHTTPLoggingEnabled() {
			c.log.DisableHTTPLogging()
			fmt.Fprintf(c.out, "%sHTTP logging disabled%s\n", yellow, reset)
		} else {
			c.log.EnableHTTPLogging()
			fmt.Fprintf(c.out, "%sHTTP logging enabled%s\n", green, reset)
		}
	case "l":
		c.cycleLogLevel()
	case "?":
		c.printHelp()
	case "q", "\x03": // Ctrl+C
		fmt.Fprintf(c.out, "%sShutting down server...%s\n", yellow, reset)
		c.quit()
		return true
	}
	return false
}

func (c *console) openPage(path string, query url.Values) {
	page := browser.LocalPage(c.port, path, query)
	fmt.Fprintf(c.out, "%sOpening %s in browser...%s\n", cyan, page, reset)
	if err := c.open(page); err != nil {
		fmt.Fprintf(c.out, "%sError opening browser: %v%s\n", red, err, reset)
	}
}

// cycleLogLevel cycles through debug -> info -> warn -> error
func (c *console) cycleLogLevel() {
	var next string
	switch c.log.GetLevel().String() {
	case "DEBUG":
		next = "info"
	case "INFO":
		next = "warn"
	case "WARN":
		next = "error"
	case "ERROR":
		next = "debug"
	default:
		next = "info"
	}

	c.log.SetLevel(logger.ParseLevel(next))
	fmt.Fprintf(c.out, "%sLog level: %s%s%s\n", green, yellow, next, reset)
}

// cycleDataSource cycles through auto -> contract -> subgraph
func (c *console) cycleDataSource() {
	ctx := context.Background()
	current, err := c.settings.GetDataSource(ctx)
	if err != nil {
		fmt.Fprintf(c.out, "%sError reading data source: %v%s\n", red, err, reset)
		return
	}

	next := models.SourceAuto
	switch current {
	case models.SourceAuto:
		next = models.SourceContract
	case models.SourceContract:
		next = models.SourceSubgraph
	}

	if err := c.settings.SetDataSource(ctx, next); err != nil {
		fmt.Fprintf(c.out, "%sError setting data source: %v%s\n", red, err, reset)
		return
	}
	fmt.Fprintf(c.out, "%sData source: %s%s%s\n", green, yellow, next, reset)
}
