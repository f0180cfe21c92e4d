package poll

import (
	"fmt"
	"time"
)

// DisplayMode selects which interface a widget prefers
type DisplayMode string

const (
	ModeVote   DisplayMode = "vote"
	ModeResult DisplayMode = "result"
	ModeMixed  DisplayMode = "mixed"
)

// ParseDisplayMode converts a string to a DisplayMode
func ParseDisplayMode(s string) (DisplayMode, error) {
	switch DisplayMode(s) {
	case ModeVote, ModeResult, ModeMixed:
		return DisplayMode(s), nil
	default:
		return "", &ValidationError{Field: "display_mode", Message: fmt.Sprintf("unknown display mode %q", s)}
	}
}

// Size is a cosmetic hint forwarded to the page; it never affects resolution
type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

// DefaultSuccessMessage is shown in the banner when no custom message is set
const DefaultSuccessMessage = "Vote submitted successfully!"

// DefaultSuccessDurationMS is how long the success banner stays visible
const DefaultSuccessDurationMS = 3000

// Config is the display configuration of one widget instance
type Config struct {
	DisplayMode          DisplayMode `json:"display_mode" yaml:"display_mode"`
	ShowResults          bool        `json:"show_results" yaml:"show_results"`
	ResultsHiddenMessage string      `json:"results_hidden_message,omitempty" yaml:"results_hidden_message"`
	ShowSuccessBanner    bool        `json:"show_success_banner" yaml:"show_success_banner"`
	SuccessMessage       string      `json:"success_message,omitempty" yaml:"success_message"`
	SuccessDurationMS    int         `json:"success_duration_ms" yaml:"success_duration_ms"`
	EnableConfetti       bool        `json:"enable_confetti" yaml:"enable_confetti"`
	Size                 Size        `json:"size,omitempty" yaml:"size"`
}

// DefaultConfig returns the configuration a widget uses when nothing is overridden.
// Decode partial input on top of this value so absent fields keep their defaults.
func DefaultConfig() Config {
	return Config{
		DisplayMode:       ModeMixed,
		ShowResults:       true,
		ShowSuccessBanner: true,
		SuccessDurationMS: DefaultSuccessDurationMS,
		EnableConfetti:    false,
		Size:              SizeMedium,
	}
}

// Validate rejects configurations the engine cannot resolve
func (c Config) Validate() error {
	if _, err := ParseDisplayMode(string(c.DisplayMode)); err != nil {
		return err
	}
	switch c.Size {
	case "", SizeSmall, SizeMedium, SizeLarge:
	default:
		return &ValidationError{Field: "size", Message: fmt.Sprintf("unknown size %q", c.Size)}
	}
	if c.SuccessDurationMS < 0 {
		return &ValidationError{Field: "success_duration_ms", Message: "must not be negative"}
	}
	return nil
}

// SuccessDuration returns the banner visibility window
func (c Config) SuccessDuration() time.Duration {
	return time.Duration(c.SuccessDurationMS) * time.Millisecond
}

// BannerMessage returns the text shown in the success banner
func (c Config) BannerMessage() string {
	if c.SuccessMessage != "" {
		return c.SuccessMessage
	}
	return DefaultSuccessMessage
}

// WantsFeedback reports whether a successful vote should start the sequencer
func (c Config) WantsFeedback() bool {
	return c.ShowSuccessBanner || c.EnableConfetti
}
