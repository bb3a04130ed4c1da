package config

import (
	"strings"

	"fyne.io/fyne/v2"
)

// Settings keys for Fyne preferences
const (
	KeyServiceURL         = "service_url"
	KeyDownloadDir        = "download_directory"
	KeyAutoRevealComplete = "auto_reveal_on_complete"
)

// Settings holds the desktop app's preferences. Values the user never set
// fall back to the file configuration it was created with.
type Settings struct {
	app      fyne.App
	defaults Config
}

// NewSettings creates a new settings manager
func NewSettings(app fyne.App, defaults Config) *Settings {
	return &Settings{app: app, defaults: defaults}
}

// GetServiceURL returns the media service base URL
func (s *Settings) GetServiceURL() string {
	url := s.app.Preferences().String(KeyServiceURL)
	if url == "" {
		return s.defaults.ServiceURL
	}
	return url
}

// SetServiceURL sets the media service base URL; empty restores the default
func (s *Settings) SetServiceURL(url string) {
	url = strings.TrimRight(strings.TrimSpace(url), "/")
	if url == "" {
		s.app.Preferences().RemoveValue(KeyServiceURL)
		return
	}
	s.app.Preferences().SetString(KeyServiceURL, url)
}

// GetDownloadDirectory returns the configured download directory
func (s *Settings) GetDownloadDirectory() string {
	dir := s.app.Preferences().String(KeyDownloadDir)
	if dir == "" {
		dir = s.defaults.DownloadDir
		if dir == "" {
			dir = defaultDownloadDir()
		}
		s.SetDownloadDirectory(dir)
	}
	return dir
}

// SetDownloadDirectory sets the download directory
func (s *Settings) SetDownloadDirectory(dir string) {
	s.app.Preferences().SetString(KeyDownloadDir, dir)
}

// GetAutoRevealOnComplete returns whether to reveal saved files in the file manager
func (s *Settings) GetAutoRevealOnComplete() bool {
	return s.app.Preferences().BoolWithFallback(KeyAutoRevealComplete, s.defaults.AutoReveal)
}

// SetAutoRevealOnComplete sets whether to reveal saved files in the file manager
func (s *Settings) SetAutoRevealOnComplete(autoReveal bool) {
	s.app.Preferences().SetBool(KeyAutoRevealComplete, autoReveal)
}
