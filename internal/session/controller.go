package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/ytget/ytgrab/internal/model"
	"github.com/ytget/ytgrab/internal/platform"
)

// Controller owns one Session and drives it through its phases.
//
// Submit and ConfirmDownload block until their request settles; surfaces run
// them off the UI thread and disable the triggering controls while the phase
// is busy. The controller never queues: a second call while a request is in
// flight returns ErrBusy. Reset does not cancel an in-flight request, it only
// makes its result be dropped.
type Controller struct {
	resolver MetadataResolver
	fetcher  BinaryFetcher
	saver    FileSaver
	logger   *slog.Logger

	mu       sync.Mutex
	session  model.Session
	resolved *model.Metadata // kept across fetch failures for retries
	lastPath string
	inFlight bool // a request is outstanding, even if its result will be dropped
	epoch    uint64
	onUpdate func(model.Session) // callback for UI updates
}

// Option configures a Controller
type Option func(*Controller)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// NewController creates a controller with a fresh Idle session
func NewController(resolver MetadataResolver, fetcher BinaryFetcher, saver FileSaver, opts ...Option) *Controller {
	c := &Controller{
		resolver: resolver,
		fetcher:  fetcher,
		saver:    saver,
		logger:   slog.Default(),
		session:  model.NewSession(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetUpdateCallback sets the callback invoked with a snapshot after every transition
func (c *Controller) SetUpdateCallback(callback func(model.Session)) {
	c.mu.Lock()
	c.onUpdate = callback
	c.mu.Unlock()
}

// Snapshot returns a copy of the current session
func (c *Controller) Snapshot() model.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// LastSavedPath returns where the most recent successful download was written
func (c *Controller) LastSavedPath() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastPath
}

// Busy reports whether a request is outstanding for this session
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// CanDownload reports whether ConfirmDownload would start a fetch
func (c *Controller) CanDownload() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canDownloadLocked()
}

func (c *Controller) canDownloadLocked() bool {
	if c.resolved == nil || c.inFlight {
		return false
	}
	switch c.session.Phase {
	case model.PhaseReady, model.PhaseSucceeded, model.PhaseFailed:
		return true
	default:
		return false
	}
}

// Submit validates rawURL and resolves it through the service.
// It returns nil once the session is Ready.
func (c *Controller) Submit(ctx context.Context, rawURL string) error {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return ErrBusy
	}

	c.session.SourceURL = rawURL
	c.resolved = nil
	c.lastPath = ""

	if platform.IsBlank(rawURL) {
		return c.failLocked(failure(MsgEmptyInput), &Error{Code: EmptyInput})
	}

	sourceURL := strings.TrimSpace(rawURL)
	if !platform.ValidateURL(sourceURL) {
		return c.failLocked(failure(MsgInvalidURL), &Error{Code: InvalidFormat})
	}

	c.inFlight = true
	epoch := c.transitionLocked(model.PhaseValidating, info(MsgResolving))
	c.logger.Info("resolving video", "url", sourceURL)

	md, err := c.resolver.Resolve(ctx, sourceURL)

	c.mu.Lock()
	c.inFlight = false
	if c.epoch != epoch {
		c.notifyLocked()
		c.logger.Info("dropping resolve result after reset", "url", sourceURL)
		return ErrDiscarded
	}

	if err == nil && md == nil {
		err = fmt.Errorf("service returned no video info")
	}
	if err != nil {
		c.logger.Warn("resolve failed", "url", sourceURL, "error", err)
		return c.failLocked(failure(MsgResolveFailed), &Error{Code: ResolveFailed, Err: err})
	}

	c.resolved = md
	c.session = c.session.WithMetadata(md)
	c.transitionLocked(model.PhaseReady, info(MsgVideoFound))
	c.logger.Info("video found", "url", sourceURL, "title", md.Title)
	return nil
}

// ConfirmDownload fetches the kind rendition of the resolved URL and saves it.
// It returns nil once the file is saved and the session has Succeeded.
func (c *Controller) ConfirmDownload(ctx context.Context, kind model.Kind) error {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return ErrBusy
	}
	if !kind.Valid() {
		c.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if !c.canDownloadLocked() {
		c.mu.Unlock()
		return ErrNotResolved
	}

	sourceURL := strings.TrimSpace(c.session.SourceURL)
	c.session = c.session.WithMetadata(c.resolved)
	c.inFlight = true
	epoch := c.transitionLocked(model.PhaseFetching, info(FetchingMessage(kind)))
	c.logger.Info("downloading", "url", sourceURL, "kind", kind)

	payload, err := c.fetcher.Fetch(ctx, kind, sourceURL)
	if err == nil && payload == nil {
		err = fmt.Errorf("service returned no payload")
	}

	c.mu.Lock()
	if c.epoch != epoch {
		c.inFlight = false
		c.notifyLocked()
		c.logger.Info("dropping fetch result after reset", "url", sourceURL, "kind", kind)
		return ErrDiscarded
	}
	if err != nil {
		c.inFlight = false
		c.logger.Warn("fetch failed", "url", sourceURL, "kind", kind, "error", err)
		return c.failLocked(failure(FetchFailedMessage(kind)), &Error{Code: FetchFailed, Kind: kind, Err: err})
	}
	c.mu.Unlock()

	filename := ResolveFilename(payload.Disposition, kind)
	path, err := c.saver.Save(filename, payload.Data)

	c.mu.Lock()
	c.inFlight = false
	if c.epoch != epoch {
		c.notifyLocked()
		c.logger.Info("reset during save, keeping file", "path", path)
		return ErrDiscarded
	}
	if err != nil {
		c.logger.Error("save failed", "filename", filename, "kind", kind, "error", err)
		return c.failLocked(failure(FetchFailedMessage(kind)), &Error{Code: FetchFailed, Kind: kind, Err: err})
	}

	c.lastPath = path
	c.transitionLocked(model.PhaseSucceeded, info(SucceededMessage(kind)))
	c.logger.Info("download saved", "kind", kind, "path", path, "bytes", len(payload.Data))
	return nil
}

// Reset returns the session to its initial state. A request still in flight
// keeps running; its result is dropped when it settles.
func (c *Controller) Reset() {
	c.mu.Lock()
	if c.inFlight {
		c.logger.Debug("reset while request in flight", "phase", c.session.Phase)
	}
	c.resolved = nil
	c.lastPath = ""
	c.session = model.NewSession()
	c.transitionLocked(model.PhaseIdle, model.Message{})
}

// transitionLocked moves to phase with msg, bumps the epoch and notifies.
// Called with c.mu held; returns with it released.
func (c *Controller) transitionLocked(phase model.Phase, msg model.Message) uint64 {
	c.session.Phase = phase
	c.session.LastMessage = msg
	if !phase.ExposesMetadata() {
		c.session = c.session.WithMetadata(nil)
	}
	c.epoch++
	epoch := c.epoch
	c.notifyLocked()
	return epoch
}

// notifyLocked reports the current session to the callback, for instance when
// a dropped request no longer keeps the session busy.
// Called with c.mu held; returns with it released.
func (c *Controller) notifyLocked() {
	snapshot := c.session
	callback := c.onUpdate
	c.mu.Unlock()

	if callback != nil {
		callback(snapshot)
	}
}

// failLocked moves to Failed and returns err. Called with c.mu held; returns with it released.
func (c *Controller) failLocked(msg model.Message, err *Error) error {
	if err.Code != FetchFailed {
		c.resolved = nil
	}
	c.transitionLocked(model.PhaseFailed, msg)
	return err
}
