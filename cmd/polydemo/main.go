package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/abrezinsky/polydemo/internal/app"
	"github.com/abrezinsky/polydemo/internal/config"
	"github.com/abrezinsky/polydemo/internal/logger"
	"github.com/abrezinsky/polydemo/pkg/subgraph"
	"github.com/abrezinsky/polydemo/web"
)

const (
	clearLine = "\033[2K"
	moveUp    = "\033[%dA"
	blue      = "\033[34m"
)

var (
	version = "dev"
)

// showStartupAnimation displays the Polydemo logo then a short bar chart
// filling up
func showStartupAnimation(skipChart bool) {
	width := 62
	border := strings.Repeat("═", width)

	logo := []string{
		"      ____       _           _                        ",
		"     |  _ \\ ___ | |_   _  __| | ___ _ __ ___   ___    ",
		"     | |_) / _ \\| | | | |/ _` |/ _ \\ '_ ` _ \\ / _ \\   ",
		"     |  __/ (_) | | |_| | (_| |  __/ | | | | | (_) |  ",
		"     |_|   \\___/|_|\\__, |\\__,_|\\___|_| |_| |_|\\___/   ",
		"                   |___/                              ",
	}

	fmt.Printf("\n  %s╔%s╗%s\n", cyan, border, reset)
	for _, line := range logo {
		fmt.Printf("  %s║%s%-*s%s║%s\n", cyan, yellow, width, line, cyan, reset)
	}
	fmt.Printf("  %s╚%s╝%s\n", cyan, border, reset)

	if skipChart {
		fmt.Print("\n")
		return
	}

	// Turn the bottom border into a divider and draw the chart under it
	fmt.Printf(moveUp, 1)
	fmt.Printf("%s  %s╠%s╣%s\n", clearLine, cyan, border, reset)

	bars := []struct {
		label string
		votes int
		color string
	}{
		{"Smart Contracts", 52, green},
		{"DeFi", 38, blue},
		{"NFTs", 28, red},
	}
	const labelWidth, barWidth = 16, 36
	total := 0
	for _, b := range bars {
		total += b.votes
	}

	for range bars {
		fmt.Printf("  %s║%s║%s\n", cyan, strings.Repeat(" ", width), reset)
	}
	fmt.Printf("  %s╚%s╝%s\n", cyan, border, reset)

	const frames = 16
	for frame := 1; frame <= frames; frame++ {
		fmt.Printf(moveUp, len(bars)+1)
		for _, b := range bars {
			pct := float64(b.votes) / float64(total) * 100
			filled := int(float64(barWidth) * float64(b.votes) / float64(bars[0].votes) * float64(frame) / frames)
			cell := fmt.Sprintf(" %-*s%s%s%s%s %5.1f%%  ", labelWidth, b.label, b.color,
				strings.Repeat("█", filled), strings.Repeat(" ", barWidth-filled), reset, pct*float64(frame)/frames)
			fmt.Printf("%s  %s║%s%s║%s\n", clearLine, cyan, cell, cyan, reset)
		}
		fmt.Printf("%s  %s╚%s╝%s\n", clearLine, cyan, border, reset)
		time.Sleep(60 * time.Millisecond)
	}
	fmt.Print("\n")
}

func main() {
	configPath := flag.String("config", config.GetConfigPath(), "YAML config file")
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "polydemo.db", "SQLite database path")
	logLevel := flag.String("loglevel", "info", "Log level (debug, info, warn, error)")
	dataSource := flag.String("datasource", "", "Poll data source (auto, contract, subgraph)")
	subgraphURL := flag.String("subgraph", "", "Subgraph GraphQL endpoint")
	noAnimate := flag.Bool("noanimate", false, "Show logo only, skip chart animation")
	noKeyboard := flag.Bool("nokeyboard", false, "Disable keyboard shortcuts")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Polydemo - Poll Widget Demo Server

Usage:
  polydemo [options]

Options:
  -config str      YAML config file (default "./polydemo.yaml", env POLYDEMO_CONFIG)
  -port int        HTTP server port (default 8080)
  -db string       SQLite database path (default "polydemo.db")
  -loglevel str    Log level: debug, info, warn, error (default "info")
  -datasource str  Poll data source: auto, contract, subgraph
  -subgraph str    Subgraph GraphQL endpoint
  -noanimate       Show logo only, skip chart animation
  -nokeyboard      Disable keyboard shortcuts
  -version         Show version and exit
  -help            Show this help message

Keyboard Shortcuts (when enabled):
  w                Open the widget page in browser
  p                Open the playground in browser
  d                Cycle data source (auto → contract → subgraph)
  h                Toggle HTTP request logging
  l                Cycle log level (debug → info → warn → error)
  q                Quit server
  ?                Show keyboard help

Flags override POLYDEMO_* environment variables (also read from .env),
which override the config file.

Examples:
  polydemo                               # Run on port 8080 with polydemo.db
  polydemo -port 9000                    # Run on port 9000
  polydemo -datasource contract          # Never query the subgraph
  polydemo -subgraph https://example.org/subgraphs/polls

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("polydemo %s\n", version)
		os.Exit(0)
	}

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Fatal("Failed to load .env: ", err)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	// Explicit flags win over file and environment
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Port = *port
		case "db":
			cfg.DBPath = *dbPath
		case "loglevel":
			cfg.LogLevel = *logLevel
		case "datasource":
			cfg.DataSource = *dataSource
		case "subgraph":
			cfg.SubgraphURL = *subgraphURL
		}
	})

	showStartupAnimation(*noAnimate)

	appLog := logger.NewWithWriter(os.Stdout, logger.ParseLevel(cfg.LogLevel), logger.ParseFormat(cfg.LogFormat))

	subgraphClient := subgraph.NewHTTPClient(cfg.SubgraphURL, appLog)

	a, err := app.New(appLog, *cfg, subgraphClient, web.GetTemplatesFS(), web.GetStaticFS())
	if err != nil {
		log.Fatal("Failed to initialize application: ", err)
	}
	if *dataSource != "" {
		if err := a.Settings().SetDataSource(context.Background(), *dataSource); err != nil {
			log.Fatal("Invalid data source: ", err)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- a.Run(addr)
	}()

	// Wait a moment for server to start
	time.Sleep(100 * time.Millisecond)

	quit := make(chan struct{})
	var once sync.Once
	stop := func() { once.Do(func() { close(quit) }) }

	if !*noKeyboard && term.IsTerminal(int(os.Stdin.Fd())) {
		c := newConsole(os.Stdout, appLog, a.Settings(), cfg.Port, stop)
		c.printHelp()
		go listenForKeyboard(c)
	} else if *noKeyboard {
		fmt.Printf("\n%sKeyboard shortcuts disabled (use -nokeyboard=false to enable)%s\n\n", yellow, reset)
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			log.Fatal(err)
		}
	case <-signals:
		appLog.Info("Signal received, shutting down")
	case <-quit:
	}

	a.Close()
}
