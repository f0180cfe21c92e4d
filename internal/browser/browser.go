package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strconv"
)

// Commander is an interface for executing commands (for testing)
type Commander interface {
	Start(name string, args ...string) error
}

// RealCommander executes actual commands
type RealCommander struct{}

// Start executes a command and starts it
func (RealCommander) Start(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

var defaultCommander Commander = RealCommander{}

// launchers maps GOOS to the command that opens a URL there
var launchers = map[string][]string{
	"linux":   {"xdg-open"},
	"freebsd": {"xdg-open"},
	"darwin":  {"open"},
	"windows": {"rundll32", "url.dll,FileProtocolHandler"},
}

// Open opens the specified URL in the default browser
func Open(url string) error {
	return OpenWithCommander(url, defaultCommander, runtime.GOOS)
}

// OpenWithCommander opens the URL using the specified commander and OS (for testing)
func OpenWithCommander(url string, commander Commander, goos string) error {
	launcher, ok := launchers[goos]
	if !ok {
		return fmt.Errorf("unsupported platform: %s", goos)
	}
	args := append(append([]string{}, launcher[1:]...), url)
	return commander.Start(launcher[0], args...)
}

// LocalPage builds the URL of a page served on localhost
func LocalPage(port int, path string, query url.Values) string {
	u := url.URL{
		Scheme:   "http",
		Host:     "localhost:" + strconv.Itoa(port),
		Path:     path,
		RawQuery: query.Encode(),
	}
	return u.String()
}
