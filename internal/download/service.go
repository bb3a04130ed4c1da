package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ytget/ytgrab/internal/model"
)

// DefaultMaxParallel is used when a non-positive limit is given
const DefaultMaxParallel = 2

var _ Downloader = (*Service)(nil)

// Service runs one session per task with bounded parallelism
type Service struct {
	tasks       map[string]*model.DownloadTask
	order       []string // task IDs in the order they were added
	tasksMutex  sync.RWMutex
	maxParallel int
	activeCount int
	changed     chan struct{} // closed and replaced whenever a task finishes

	newSession     SessionFactory
	resolveTimeout time.Duration
	fetchTimeout   time.Duration
	logger         *slog.Logger
	onUpdate       func(*model.DownloadTask) // callback for UI updates
}

// Option configures a Service
type Option func(*Service)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTimeouts bounds each resolve and fetch; zero means no limit
func WithTimeouts(resolve, fetch time.Duration) Option {
	return func(s *Service) {
		s.resolveTimeout = resolve
		s.fetchTimeout = fetch
	}
}

// NewService creates a new batch download service
func NewService(newSession SessionFactory, maxParallel int, opts ...Option) *Service {
	if maxParallel <= 0 {
		maxParallel = DefaultMaxParallel
	}
	s := &Service{
		tasks:       make(map[string]*model.DownloadTask),
		maxParallel: maxParallel,
		changed:     make(chan struct{}),
		newSession:  newSession,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetUpdateCallback sets the callback function for task updates
func (s *Service) SetUpdateCallback(callback func(*model.DownloadTask)) {
	s.tasksMutex.Lock()
	s.onUpdate = callback
	s.tasksMutex.Unlock()
}

// AddTask adds a new download task and starts it if there is capacity
func (s *Service) AddTask(url string, kind model.Kind) (*model.DownloadTask, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown media kind: %q", kind)
	}

	s.tasksMutex.Lock()
	task, err := s.addTaskLocked(url, kind)
	if err != nil {
		s.tasksMutex.Unlock()
		return nil, err
	}
	snapshot := *task
	s.tasksMutex.Unlock()

	s.startPendingTasks()
	return &snapshot, nil
}

// AddPlaylist adds a task for every playlist entry, skipping URLs already queued
func (s *Service) AddPlaylist(playlist *model.Playlist, kind model.Kind) ([]*model.DownloadTask, error) {
	if playlist == nil || len(playlist.Entries) == 0 {
		return nil, errors.New("playlist has no entries")
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown media kind: %q", kind)
	}

	s.tasksMutex.Lock()
	added := make([]*model.DownloadTask, 0, len(playlist.Entries))
	for _, entry := range playlist.Entries {
		task, err := s.addTaskLocked(entry.URL, kind)
		if err != nil {
			s.logger.Debug("skipping playlist entry", "url", entry.URL, "error", err)
			continue
		}
		task.Title = entry.Title
		snapshot := *task
		added = append(added, &snapshot)
	}
	s.tasksMutex.Unlock()

	s.logger.Info("playlist queued", "playlist", playlist.ID, "tasks", len(added))
	s.startPendingTasks()
	return added, nil
}

// addTaskLocked registers a pending task; called with tasksMutex held
func (s *Service) addTaskLocked(url string, kind model.Kind) (*model.DownloadTask, error) {
	// Check for duplicate URLs
	for _, task := range s.tasks {
		if task.URL == url && task.Kind == kind && !task.Status.IsFinished() {
			return nil, fmt.Errorf("task already exists for URL: %s", url)
		}
	}

	task := &model.DownloadTask{
		ID:        generateTaskID(),
		URL:       url,
		Kind:      kind,
		Status:    model.TaskStatusPending,
		StartedAt: time.Now(),
	}
	s.tasks[task.ID] = task
	s.order = append(s.order, task.ID)
	return task, nil
}

// GetAllTasks returns copies of all tasks in the order they were added
func (s *Service) GetAllTasks() []*model.DownloadTask {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()

	tasks := make([]*model.DownloadTask, 0, len(s.order))
	for _, id := range s.order {
		snapshot := *s.tasks[id]
		tasks = append(tasks, &snapshot)
	}
	return tasks
}

// Wait blocks until every added task has finished or ctx is done
func (s *Service) Wait(ctx context.Context) error {
	for {
		s.tasksMutex.RLock()
		pending := 0
		for _, task := range s.tasks {
			if !task.Status.IsFinished() {
				pending++
			}
		}
		changed := s.changed
		s.tasksMutex.RUnlock()

		if pending == 0 {
			return nil
		}

		select {
		case <-changed:
		case <-ctx.Done():
			return fmt.Errorf("waiting for %d tasks: %w", pending, ctx.Err())
		}
	}
}

// startPendingTasks starts pending tasks in order while there is capacity
func (s *Service) startPendingTasks() {
	s.tasksMutex.Lock()
	defer s.tasksMutex.Unlock()

	for _, id := range s.order {
		if s.activeCount >= s.maxParallel {
			return
		}
		task := s.tasks[id]
		if task.Status != model.TaskStatusPending {
			continue
		}
		// Claim the task before the goroutine runs so it is not started twice
		task.Status = model.TaskStatusResolving
		s.activeCount++
		go s.runTask(task)
	}
}

// runTask drives one session through resolve and download
func (s *Service) runTask(task *model.DownloadTask) {
	defer func() {
		s.tasksMutex.Lock()
		s.activeCount--
		s.tasksMutex.Unlock()

		// Try to start next pending task
		s.startPendingTasks()
	}()

	s.notifyUpdate(task)

	sess := s.newSession()
	sess.SetUpdateCallback(func(snapshot model.Session) {
		s.mirrorSession(task, snapshot)
	})

	ctx, cancel := s.stepContext(s.resolveTimeout)
	err := sess.Submit(ctx, task.URL)
	cancel()
	if err != nil {
		s.finishTask(task, "", err)
		return
	}

	ctx, cancel = s.stepContext(s.fetchTimeout)
	err = sess.ConfirmDownload(ctx, task.Kind)
	cancel()
	s.finishTask(task, sess.LastSavedPath(), err)
}

func (s *Service) stepContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), timeout)
}

// mirrorSession copies a session transition into its task
func (s *Service) mirrorSession(task *model.DownloadTask, snapshot model.Session) {
	s.tasksMutex.Lock()
	switch snapshot.Phase {
	case model.PhaseValidating:
		task.Status = model.TaskStatusResolving
	case model.PhaseFetching:
		task.Status = model.TaskStatusDownloading
	case model.PhaseFailed:
		// the user-facing text; finishTask falls back to the error chain
		task.LastError = snapshot.LastMessage.Text
		s.tasksMutex.Unlock()
		return
	default:
		// final states are set by finishTask
		s.tasksMutex.Unlock()
		return
	}
	if md, ok := snapshot.Metadata(); ok && md.Title != "" {
		task.Title = md.Title
	}
	s.tasksMutex.Unlock()

	s.notifyUpdate(task)
}

// finishTask records the outcome of a task
func (s *Service) finishTask(task *model.DownloadTask, path string, err error) {
	s.tasksMutex.Lock()
	if err != nil {
		task.Status = model.TaskStatusError
		if task.LastError == "" {
			task.LastError = err.Error()
		}
	} else {
		task.Status = model.TaskStatusCompleted
		task.OutputPath = path
	}
	task.FinishedAt = time.Now()

	close(s.changed)
	s.changed = make(chan struct{})
	s.tasksMutex.Unlock()

	if err != nil {
		s.logger.Warn("task failed", "task", task.ID, "url", task.URL, "error", err)
	} else {
		s.logger.Info("task completed", "task", task.ID, "path", path)
	}
	s.notifyUpdate(task)
}

// notifyUpdate calls the update callback with a copy of task
func (s *Service) notifyUpdate(task *model.DownloadTask) {
	s.tasksMutex.RLock()
	callback := s.onUpdate
	snapshot := *task
	s.tasksMutex.RUnlock()

	if callback != nil {
		callback(&snapshot)
	}
}

// generateTaskID generates a unique, time-ordered task ID
func generateTaskID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return "task-" + uuid.NewString()
	}
	return "task-" + id.String()
}
