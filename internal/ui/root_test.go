package ui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"

	"github.com/ytget/ytgrab/internal/config"
	"github.com/ytget/ytgrab/internal/model"
	"github.com/ytget/ytgrab/internal/session"
)

type stubResolver struct {
	md    *model.Metadata
	err   error
	calls int
	gate  chan struct{} // when set, Resolve waits for it to be closed
}

func (r *stubResolver) Resolve(ctx context.Context, url string) (*model.Metadata, error) {
	r.calls++
	if r.gate != nil {
		<-r.gate
	}
	return r.md, r.err
}

type stubFetcher struct {
	kinds []model.Kind
	err   error
}

func (f *stubFetcher) Fetch(ctx context.Context, kind model.Kind, url string) (*model.Payload, error) {
	f.kinds = append(f.kinds, kind)
	if f.err != nil {
		return nil, f.err
	}
	return &model.Payload{Data: []byte("data")}, nil
}

type stubSaver struct {
	names []string
}

func (s *stubSaver) Save(filename string, data []byte) (string, error) {
	s.names = append(s.names, filename)
	return "/downloads/" + filename, nil
}

type uiFixture struct {
	ui       *RootUI
	resolver *stubResolver
	fetcher  *stubFetcher
	saver    *stubSaver
	built    int
}

func newFixture(t *testing.T) *uiFixture {
	t.Helper()
	app := test.NewApp()
	t.Cleanup(app.Quit)

	defaults := config.Default()
	defaults.AutoReveal = false
	settings := config.NewSettings(app, defaults)

	f := &uiFixture{
		resolver: &stubResolver{md: &model.Metadata{Title: "Test", Duration: 65, Uploader: "uploader"}},
		fetcher:  &stubFetcher{},
		saver:    &stubSaver{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	factory := func(*config.Settings) SessionController {
		f.built++
		return session.NewController(f.resolver, f.fetcher, f.saver, session.WithLogger(logger))
	}

	window := app.NewWindow("test")
	f.ui = newSynchronousRootUI(window, settings, factory, WithLogger(logger))
	return f
}

// newSynchronousRootUI builds a RootUI whose background work and UI updates run inline
func newSynchronousRootUI(window fyne.Window, settings *config.Settings, factory ControllerFactory, opts ...Option) *RootUI {
	inline := func(f func()) { f() }
	opts = append(opts, func(ui *RootUI) {
		ui.run = inline
		ui.onMain = inline
	})
	return NewRootUI(window, settings, factory, opts...)
}

func TestRootUI_InitialState(t *testing.T) {
	f := newFixture(t)
	ui := f.ui

	if f.built != 1 {
		t.Errorf("Expected one controller to be built, got %d", f.built)
	}
	if ui.infoBtn.Disabled() {
		t.Error("Expected Get Video Info to be enabled")
	}
	if ui.resetBtn.Disabled() {
		t.Error("Expected Reset to be enabled")
	}
	if !ui.videoBtn.Disabled() || !ui.audioBtn.Disabled() {
		t.Error("Expected download buttons to be disabled before a resolve")
	}
	if ui.titleLabel.Visible() {
		t.Error("Expected title to be hidden")
	}
	if ui.statusLabel.Text != "" {
		t.Errorf("Expected empty status, got %q", ui.statusLabel.Text)
	}
}

func TestRootUI_ResolveAndDownload(t *testing.T) {
	f := newFixture(t)
	ui := f.ui

	test.Type(ui.urlEntry, "https://www.youtube.com/watch?v=abc123")
	test.Tap(ui.infoBtn)

	if ui.statusLabel.Text != session.MsgVideoFound {
		t.Errorf("Expected status %q, got %q", session.MsgVideoFound, ui.statusLabel.Text)
	}
	if ui.titleLabel.Text != "Test" || !ui.titleLabel.Visible() {
		t.Errorf("Expected visible title Test, got %q", ui.titleLabel.Text)
	}
	if ui.detailLabel.Text != "uploader"+MiddleDotSeparator+IconClock+" 01:05" {
		t.Errorf("Unexpected details %q", ui.detailLabel.Text)
	}
	if ui.videoBtn.Disabled() || ui.audioBtn.Disabled() {
		t.Error("Expected download buttons to be enabled once Ready")
	}

	test.Tap(ui.audioBtn)

	if len(f.fetcher.kinds) != 1 || f.fetcher.kinds[0] != model.KindAudio {
		t.Errorf("Expected one audio fetch, got %v", f.fetcher.kinds)
	}
	if len(f.saver.names) != 1 || f.saver.names[0] != "audio.mp3" {
		t.Errorf("Expected audio.mp3 to be saved, got %v", f.saver.names)
	}
	if ui.statusLabel.Text != "Audio downloaded successfully!" {
		t.Errorf("Unexpected status %q", ui.statusLabel.Text)
	}
}

func TestRootUI_InvalidURL(t *testing.T) {
	f := newFixture(t)
	ui := f.ui

	test.Type(ui.urlEntry, "https://example.com/notavideo")
	test.Tap(ui.infoBtn)

	if ui.statusLabel.Text != session.MsgInvalidURL {
		t.Errorf("Expected status %q, got %q", session.MsgInvalidURL, ui.statusLabel.Text)
	}
	if f.resolver.calls != 0 {
		t.Errorf("Expected no resolve calls, got %d", f.resolver.calls)
	}
	if !ui.videoBtn.Disabled() {
		t.Error("Expected download buttons to stay disabled")
	}
}

func TestRootUI_FetchFailureKeepsDownloadEnabled(t *testing.T) {
	f := newFixture(t)
	f.fetcher.err = errors.New("status 500")
	ui := f.ui

	test.Type(ui.urlEntry, "https://youtu.be/abc123")
	test.Tap(ui.infoBtn)
	test.Tap(ui.videoBtn)

	if ui.statusLabel.Text != "Failed to download video. Please try again." {
		t.Errorf("Unexpected status %q", ui.statusLabel.Text)
	}
	if ui.titleLabel.Visible() {
		t.Error("Expected title to be hidden after a failure")
	}
	if ui.videoBtn.Disabled() {
		t.Error("Expected retry to be possible")
	}
}

func TestRootUI_Reset(t *testing.T) {
	f := newFixture(t)
	ui := f.ui

	test.Type(ui.urlEntry, "https://youtu.be/abc123")
	test.Tap(ui.infoBtn)
	test.Tap(ui.resetBtn)

	if ui.urlEntry.Text != "" {
		t.Errorf("Expected URL field to be cleared, got %q", ui.urlEntry.Text)
	}
	if ui.statusLabel.Text != "" {
		t.Errorf("Expected status to be cleared, got %q", ui.statusLabel.Text)
	}
	if ui.titleLabel.Visible() {
		t.Error("Expected title to be hidden after reset")
	}
	if !ui.videoBtn.Disabled() {
		t.Error("Expected download buttons to be disabled after reset")
	}
}

func TestRootUI_ResetWhileResolvingUnlocksControls(t *testing.T) {
	f := newFixture(t)
	f.resolver.gate = make(chan struct{})
	ui := f.ui

	// widget updates from the worker and from this goroutine take turns
	var mainMu sync.Mutex
	ui.onMain = func(update func()) {
		mainMu.Lock()
		defer mainMu.Unlock()
		update()
	}
	finished := make(chan struct{})
	ui.run = func(work func()) {
		go func() {
			defer close(finished)
			work()
		}()
	}

	test.Type(ui.urlEntry, "https://youtu.be/abc123")
	ui.onGetInfo()

	deadline := time.Now().Add(2 * time.Second)
	for {
		mainMu.Lock()
		started := ui.infoBtn.Disabled()
		mainMu.Unlock()
		if started {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Timed out waiting for the resolve to start")
		}
		time.Sleep(5 * time.Millisecond)
	}

	ui.onReset()
	if !ui.resetBtn.Disabled() {
		t.Error("Expected controls to stay disabled while the dropped request is outstanding")
	}

	close(f.resolver.gate)
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for the resolve to settle")
	}

	if ui.controller.Busy() {
		t.Error("Expected controller not to be busy")
	}
	if ui.infoBtn.Disabled() || ui.resetBtn.Disabled() || ui.urlEntry.Disabled() {
		t.Error("Expected URL entry, Get Video Info and Reset to be enabled again")
	}
	if !ui.videoBtn.Disabled() {
		t.Error("Expected download buttons to stay disabled after reset")
	}
	if ui.titleLabel.Visible() {
		t.Error("Expected the dropped result not to be shown")
	}
}

func TestRootUI_ResetAppliesDeferredSettings(t *testing.T) {
	f := newFixture(t)
	ui := f.ui

	ui.onReset()
	if f.built != 1 {
		t.Errorf("Expected Reset alone to keep the controller, got %d builds", f.built)
	}

	ui.rebindPending = true
	ui.onReset()
	if f.built != 2 {
		t.Errorf("Expected Reset to rebuild the controller with pending settings, got %d builds", f.built)
	}
	if ui.rebindPending {
		t.Error("Expected the pending rebuild to be cleared")
	}
}

func TestValidateServiceURL(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"", true},
		{"http://localhost:5000", true},
		{"https://media.example.com", true},
		{"localhost:5000", false},
		{"ftp://media.example.com", false},
		{"http://", false},
	}

	for _, test := range tests {
		err := validateServiceURL(test.input)
		if (err == nil) != test.valid {
			t.Errorf("validateServiceURL(%q) error = %v, expected valid=%v", test.input, err, test.valid)
		}
	}
}

func TestFormatDetails(t *testing.T) {
	tests := []struct {
		md       model.Metadata
		expected string
	}{
		{model.Metadata{}, ""},
		{model.Metadata{Uploader: "someone"}, "someone"},
		{model.Metadata{Duration: 3725}, IconClock + " 01:02:05"},
	}

	for _, test := range tests {
		if got := formatDetails(test.md); got != test.expected {
			t.Errorf("formatDetails(%+v) = %q, expected %q", test.md, got, test.expected)
		}
	}

	if got := displayTitle(model.Metadata{Title: "  two\nlines "}); got != "two lines" {
		t.Errorf("Expected flattened title, got %q", got)
	}
	if got := displayTitle(model.Metadata{}); got != UnknownTitle {
		t.Errorf("Expected %q, got %q", UnknownTitle, got)
	}
}
