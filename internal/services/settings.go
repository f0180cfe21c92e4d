package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/abrezinsky/polydemo/internal/logger"
	"github.com/abrezinsky/polydemo/internal/models"
	"github.com/abrezinsky/polydemo/internal/poll"
	"github.com/abrezinsky/polydemo/internal/repository"
)

// Broadcaster defines the interface for broadcasting messages to clients
type Broadcaster interface {
	BroadcastWidgetEvent(widgetID, event string, payload interface{})
	BroadcastSettingsChanged(key string, value interface{})
}

const (
	settingBaseURL    = "base_url"
	settingDataSource = "data_source"
	settingPlayground = "playground"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// DefaultPlaygroundSettings returns the playground form state on first load and after reset
func DefaultPlaygroundSettings() models.PlaygroundSettings {
	cfg := poll.DefaultConfig()
	return models.PlaygroundSettings{
		DisplayMode:          string(cfg.DisplayMode),
		ShowResults:          cfg.ShowResults,
		ResultsHiddenMessage: "",
		ChartType:            "bar",
		BarOrientation:       "horizontal",
		InfographicStyle:     "leaderboard",
		UseCustomColors:      false,
		ChartColors:          []string{"#8247e5", "#a78bfa", "#22c55e"},
		ShowSuccessBanner:    cfg.ShowSuccessBanner,
		SuccessMessage:       "",
		SuccessDurationMS:    cfg.SuccessDurationMS,
		EnableConfetti:       cfg.EnableConfetti,
		Size:                 string(cfg.Size),
	}
}

// SettingsService handles settings-related business logic
type SettingsService struct {
	log         logger.Logger
	repo        repository.SettingsRepository
	broadcaster Broadcaster
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(log logger.Logger, repo repository.SettingsRepository) *SettingsService {
	return &SettingsService{log: log, repo: repo}
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *SettingsService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// GetBaseURL returns the application base URL
func (s *SettingsService) GetBaseURL(ctx context.Context) (string, error) {
	value, err := s.repo.GetSetting(ctx, settingBaseURL)
	if err != nil {
		if err == repository.ErrNotFound {
			return "", nil // No default - setting not yet configured
		}
		return "", err
	}
	return value, nil
}

// SetBaseURL saves the application base URL
func (s *SettingsService) SetBaseURL(ctx context.Context, url string) error {
	return s.repo.SetSetting(ctx, settingBaseURL, url)
}

// GetDataSource returns the configured poll data source
func (s *SettingsService) GetDataSource(ctx context.Context) (string, error) {
	value, err := s.repo.GetSetting(ctx, settingDataSource)
	if err != nil {
		if err == repository.ErrNotFound {
			return models.SourceAuto, nil
		}
		return "", err
	}
	return value, nil
}

// SetDataSource saves the poll data source and notifies clients
func (s *SettingsService) SetDataSource(ctx context.Context, source string) error {
	switch source {
	case models.SourceAuto, models.SourceContract, models.SourceSubgraph:
	default:
		return ErrInvalidDataSource
	}
	if err := s.repo.SetSetting(ctx, settingDataSource, source); err != nil {
		return err
	}
	s.log.Info("Data source changed", "source", source)
	if s.broadcaster != nil {
		s.broadcaster.BroadcastSettingsChanged(settingDataSource, source)
	}
	return nil
}

// GetPlayground returns the stored playground settings, or the defaults
func (s *SettingsService) GetPlayground(ctx context.Context) (models.PlaygroundSettings, error) {
	settings := DefaultPlaygroundSettings()

	value, err := s.repo.GetSetting(ctx, settingPlayground)
	if err != nil {
		if err == repository.ErrNotFound {
			return settings, nil
		}
		return settings, err
	}

	// Decode on top of the defaults so fields added later keep their default
	if err := json.Unmarshal([]byte(value), &settings); err != nil {
		s.log.Warn("Stored playground settings are unreadable, using defaults", "error", err)
		return DefaultPlaygroundSettings(), nil
	}
	return settings, nil
}

// UpdatePlayground validates and stores the playground settings
func (s *SettingsService) UpdatePlayground(ctx context.Context, settings models.PlaygroundSettings) error {
	if err := ValidatePlayground(settings); err != nil {
		return err
	}
	data, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	if err := s.repo.SetSetting(ctx, settingPlayground, string(data)); err != nil {
		return err
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastSettingsChanged(settingPlayground, settings)
	}
	return nil
}

// ResetPlayground drops stored playground settings and returns the defaults
func (s *SettingsService) ResetPlayground(ctx context.Context) (models.PlaygroundSettings, error) {
	if err := s.repo.DeleteSetting(ctx, settingPlayground); err != nil {
		return models.PlaygroundSettings{}, err
	}
	defaults := DefaultPlaygroundSettings()
	if s.broadcaster != nil {
		s.broadcaster.BroadcastSettingsChanged(settingPlayground, defaults)
	}
	return defaults, nil
}

// PlaygroundCode returns the embed snippet for the stored playground settings
func (s *SettingsService) PlaygroundCode(ctx context.Context) (string, error) {
	settings, err := s.GetPlayground(ctx)
	if err != nil {
		return "", err
	}
	return GenerateCode(settings), nil
}

// AllSettings returns commonly used settings as a map
func (s *SettingsService) AllSettings(ctx context.Context) (map[string]interface{}, error) {
	settings := make(map[string]interface{})

	baseURL, _ := s.GetBaseURL(ctx)
	settings[settingBaseURL] = baseURL

	source, _ := s.GetDataSource(ctx)
	settings[settingDataSource] = source

	return settings, nil
}

// ValidatePlayground rejects settings the widget cannot render
func ValidatePlayground(s models.PlaygroundSettings) error {
	cfg := s.WidgetConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	switch s.ChartType {
	case "bar", "pie", "infographic":
	default:
		return &InvalidSettingError{Field: "chart_type", Value: s.ChartType}
	}
	switch s.BarOrientation {
	case "horizontal", "vertical":
	default:
		return &InvalidSettingError{Field: "bar_orientation", Value: s.BarOrientation}
	}
	switch s.InfographicStyle {
	case "icons", "leaderboard", "cards":
	default:
		return &InvalidSettingError{Field: "infographic_style", Value: s.InfographicStyle}
	}

	if s.UseCustomColors && len(s.ChartColors) == 0 {
		return &InvalidSettingError{Field: "chart_colors", Value: ""}
	}
	for _, c := range s.ChartColors {
		if !hexColor.MatchString(c) {
			return &InvalidSettingError{Field: "chart_colors", Value: c}
		}
	}
	return nil
}

// GenerateCode renders the <PollWidget> embed snippet for the settings,
// listing only props that differ from the defaults.
func GenerateCode(s models.PlaygroundSettings) string {
	d := DefaultPlaygroundSettings()
	var props []string

	if s.DisplayMode != d.DisplayMode {
		props = append(props, fmt.Sprintf(`displayMode="%s"`, s.DisplayMode))
	}
	if s.ShowResults != d.ShowResults {
		props = append(props, fmt.Sprintf(`showResults={%t}`, s.ShowResults))
	}
	if s.ResultsHiddenMessage != "" && !s.ShowResults {
		props = append(props, fmt.Sprintf(`resultsHiddenMessage="%s"`, s.ResultsHiddenMessage))
	}
	if s.ChartType != d.ChartType {
		props = append(props, fmt.Sprintf(`chartType="%s"`, s.ChartType))
	}
	if s.ChartType == "bar" && s.BarOrientation != d.BarOrientation {
		props = append(props, fmt.Sprintf(`barOrientation="%s"`, s.BarOrientation))
	}
	if s.ChartType == "infographic" && s.InfographicStyle != d.InfographicStyle {
		props = append(props, fmt.Sprintf(`infographicStyle="%s"`, s.InfographicStyle))
	}
	if s.UseCustomColors {
		colors, _ := json.Marshal(s.ChartColors)
		props = append(props, fmt.Sprintf(`chartColors={%s}`, colors))
	}
	if s.ShowSuccessBanner != d.ShowSuccessBanner {
		props = append(props, fmt.Sprintf(`showSuccessBanner={%t}`, s.ShowSuccessBanner))
	}
	if s.SuccessMessage != "" && s.ShowSuccessBanner {
		props = append(props, fmt.Sprintf(`successMessage="%s"`, s.SuccessMessage))
	}
	if s.SuccessDurationMS != d.SuccessDurationMS {
		props = append(props, fmt.Sprintf(`successDuration={%d}`, s.SuccessDurationMS))
	}
	if s.EnableConfetti != d.EnableConfetti {
		props = append(props, fmt.Sprintf(`enableConfetti={%t}`, s.EnableConfetti))
	}
	if s.Size != d.Size {
		props = append(props, fmt.Sprintf(`size="%s"`, s.Size))
	}

	if len(props) == 0 {
		return "<PollWidget pollId={1n} />"
	}
	return "<PollWidget\n  pollId={1n}\n  " + strings.Join(props, "\n  ") + "\n/>"
}
