package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/ytgrab/internal/config"
	"github.com/ytget/ytgrab/internal/model"
	"github.com/ytget/ytgrab/internal/platform"
	"github.com/ytget/ytgrab/internal/session"
)

// SessionController is what the window needs from a session controller.
// *session.Controller satisfies it.
type SessionController interface {
	SetUpdateCallback(func(model.Session))
	Snapshot() model.Session
	Submit(ctx context.Context, rawURL string) error
	ConfirmDownload(ctx context.Context, kind model.Kind) error
	Reset()
	CanDownload() bool
	Busy() bool
	LastSavedPath() string
}

// ControllerFactory builds a controller from the current settings
type ControllerFactory func(settings *config.Settings) SessionController

// RootUI is the single-session download window
type RootUI struct {
	window        fyne.Window
	settings      *config.Settings
	newController ControllerFactory
	controller    SessionController
	logger        *slog.Logger

	resolveTimeout time.Duration
	fetchTimeout   time.Duration

	urlEntry    *widget.Entry
	infoBtn     *widget.Button
	videoBtn    *widget.Button
	audioBtn    *widget.Button
	resetBtn    *widget.Button
	settingsBtn *widget.Button
	statusLabel *widget.Label
	titleLabel  *widget.Label
	detailLabel *widget.Label
	spinner     *widget.ProgressBarInfinite

	rebindPending bool // settings changed while a request was in flight

	run    func(func()) // runs blocking work off the UI thread
	onMain func(func()) // marshals widget updates onto the UI thread
}

// Option configures a RootUI
type Option func(*RootUI)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(ui *RootUI) {
		ui.logger = logger
	}
}

// WithTimeouts bounds each resolve and download request
func WithTimeouts(resolve, fetch time.Duration) Option {
	return func(ui *RootUI) {
		ui.resolveTimeout = resolve
		ui.fetchTimeout = fetch
	}
}

// NewRootUI creates the window content and binds it to a fresh controller
func NewRootUI(window fyne.Window, settings *config.Settings, newController ControllerFactory, opts ...Option) *RootUI {
	ui := &RootUI{
		window:        window,
		settings:      settings,
		newController: newController,
		logger:        slog.Default(),
		run:           func(f func()) { go f() },
		onMain:        fyne.Do,
	}
	for _, opt := range opts {
		opt(ui)
	}

	window.SetTitle(WindowTitle)
	ui.setupUI()
	ui.bindController(newController(settings))
	return ui
}

// setupUI creates and arranges all UI components
func (ui *RootUI) setupUI() {
	ui.urlEntry = widget.NewEntry()
	ui.urlEntry.SetPlaceHolder(URLPlaceholder)
	// Enter in the URL field acts like Get Video Info
	ui.urlEntry.OnSubmitted = func(string) {
		if !ui.infoBtn.Disabled() {
			ui.onGetInfo()
		}
	}

	ui.infoBtn = widget.NewButton(LabelGetInfo, ui.onGetInfo)
	ui.infoBtn.Importance = widget.HighImportance
	ui.videoBtn = widget.NewButton(LabelDownloadVideo, func() { ui.onDownload(model.KindVideo) })
	ui.audioBtn = widget.NewButton(LabelDownloadAudio, func() { ui.onDownload(model.KindAudio) })
	ui.resetBtn = widget.NewButton(LabelReset, ui.onReset)
	ui.settingsBtn = widget.NewButton(IconSettings, ui.onShowSettings)
	ui.settingsBtn.Importance = widget.LowImportance

	ui.statusLabel = widget.NewLabel("")
	ui.statusLabel.Wrapping = fyne.TextWrapWord
	ui.titleLabel = widget.NewLabel("")
	ui.titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	ui.titleLabel.Wrapping = fyne.TextWrapWord
	ui.detailLabel = widget.NewLabel("")
	ui.spinner = widget.NewProgressBarInfinite()
	ui.spinner.Stop()
	ui.spinner.Hide()

	urlRow := container.NewBorder(nil, nil, ui.settingsBtn, ui.infoBtn, ui.urlEntry)
	downloadRow := container.NewGridWithColumns(3, ui.videoBtn, ui.audioBtn, ui.resetBtn)
	videoCard := container.NewVBox(ui.titleLabel, ui.detailLabel)

	content := container.NewVBox(
		urlRow,
		ui.spinner,
		ui.statusLabel,
		widget.NewSeparator(),
		videoCard,
		downloadRow,
	)

	ui.window.SetContent(container.NewPadded(content))
}

// bindController replaces the controller and renders its state
func (ui *RootUI) bindController(controller SessionController) {
	ui.controller = controller
	controller.SetUpdateCallback(func(s model.Session) {
		ui.onMain(func() { ui.apply(s) })
	})
	ui.apply(controller.Snapshot())
}

// apply renders a session snapshot; must run on the UI thread
func (ui *RootUI) apply(s model.Session) {
	busy := s.Phase.IsBusy() || ui.controller.Busy()

	ui.statusLabel.SetText(s.LastMessage.Text)
	switch s.LastMessage.Kind {
	case model.MessageError:
		ui.statusLabel.Importance = widget.DangerImportance
	case model.MessageInfo:
		if s.Phase == model.PhaseSucceeded {
			ui.statusLabel.Importance = widget.SuccessImportance
		} else {
			ui.statusLabel.Importance = widget.MediumImportance
		}
	default:
		ui.statusLabel.Importance = widget.MediumImportance
	}
	ui.statusLabel.Refresh()

	if md, ok := s.Metadata(); ok {
		ui.titleLabel.SetText(displayTitle(md))
		ui.detailLabel.SetText(formatDetails(md))
		ui.titleLabel.Show()
		ui.detailLabel.Show()
	} else {
		ui.titleLabel.SetText("")
		ui.detailLabel.SetText("")
		ui.titleLabel.Hide()
		ui.detailLabel.Hide()
	}

	if busy {
		ui.spinner.Show()
		ui.spinner.Start()
		ui.urlEntry.Disable()
		ui.infoBtn.Disable()
		ui.resetBtn.Disable()
		ui.settingsBtn.Disable()
	} else {
		ui.spinner.Stop()
		ui.spinner.Hide()
		ui.urlEntry.Enable()
		ui.infoBtn.Enable()
		ui.resetBtn.Enable()
		ui.settingsBtn.Enable()
	}

	if !busy && ui.controller.CanDownload() {
		ui.videoBtn.Enable()
		ui.audioBtn.Enable()
	} else {
		ui.videoBtn.Disable()
		ui.audioBtn.Disable()
	}

	if s.Phase == model.PhaseIdle && s.SourceURL == "" && ui.urlEntry.Text != "" {
		ui.urlEntry.SetText("")
	}
}

// onGetInfo submits the entered URL
func (ui *RootUI) onGetInfo() {
	controller := ui.controller
	rawURL := ui.urlEntry.Text
	ui.run(func() {
		ctx, cancel := withTimeout(ui.resolveTimeout)
		defer cancel()
		if err := controller.Submit(ctx, rawURL); err != nil {
			ui.logResult("submit", err)
		}
	})
}

// onDownload fetches and saves the kind rendition of the resolved URL
func (ui *RootUI) onDownload(kind model.Kind) {
	controller := ui.controller
	ui.run(func() {
		ctx, cancel := withTimeout(ui.fetchTimeout)
		defer cancel()
		if err := controller.ConfirmDownload(ctx, kind); err != nil {
			ui.logResult("download", err)
			return
		}
		if ui.settings.GetAutoRevealOnComplete() {
			ui.revealFile(controller.LastSavedPath())
		}
	})
}

// onReset clears the session and the URL field
func (ui *RootUI) onReset() {
	if ui.rebindPending && !ui.controller.Busy() {
		ui.rebindPending = false
		ui.bindController(ui.newController(ui.settings))
	} else {
		ui.controller.Reset()
	}
	ui.urlEntry.SetText("")
}

// onShowSettings opens the settings dialog and rebuilds the controller on save
func (ui *RootUI) onShowSettings() {
	ShowSettingsDialog(ui.window, ui.settings, func() {
		if ui.controller.Busy() {
			ui.logger.Warn("settings saved while a request is in flight; applying on next reset")
			ui.rebindPending = true
			return
		}
		ui.rebindPending = false
		ui.bindController(ui.newController(ui.settings))
		ui.logger.Info("settings applied", "service", ui.settings.GetServiceURL(), "dir", ui.settings.GetDownloadDirectory())
	})
}

// revealFile shows a saved file in the system file manager
func (ui *RootUI) revealFile(path string) {
	if path == "" {
		return
	}
	if err := platform.OpenFileInManager(path); err != nil {
		ui.logger.Warn("failed to reveal file", "path", path, "error", err)
	}
}

// logResult logs outcomes that the session already shows to the user
func (ui *RootUI) logResult(op string, err error) {
	switch {
	case errors.Is(err, session.ErrBusy), errors.Is(err, session.ErrDiscarded):
		ui.logger.Debug(op+" skipped", "reason", err)
	case session.CodeOf(err) != 0:
		ui.logger.Debug(op+" failed", "code", session.CodeOf(err), "error", err)
	default:
		ui.logger.Warn(op+" rejected", "error", err)
	}
}

func withTimeout(timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), timeout)
}

// displayTitle returns the title with newlines flattened
func displayTitle(md model.Metadata) string {
	title := strings.Join(strings.Fields(md.Title), " ")
	if title == "" {
		return UnknownTitle
	}
	return title
}

// formatDetails renders uploader and duration on one line
func formatDetails(md model.Metadata) string {
	parts := make([]string, 0, 2)
	if md.Uploader != "" {
		parts = append(parts, md.Uploader)
	}
	if md.Duration > 0 {
		parts = append(parts, fmt.Sprintf("%s %s", IconClock, md.GetDurationString()))
	}
	return strings.Join(parts, MiddleDotSeparator)
}
