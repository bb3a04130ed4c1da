package download

import (
	"context"

	"github.com/ytget/ytgrab/internal/model"
)

// Session is the part of a session controller the service drives.
// *session.Controller satisfies it.
type Session interface {
	SetUpdateCallback(func(model.Session))
	Submit(ctx context.Context, rawURL string) error
	ConfirmDownload(ctx context.Context, kind model.Kind) error
	LastSavedPath() string
}

// SessionFactory returns a fresh session for one task
type SessionFactory func() Session

// Downloader defines the interface for the batch download service.
type Downloader interface {
	SetUpdateCallback(func(*model.DownloadTask))
	AddTask(url string, kind model.Kind) (*model.DownloadTask, error)
	AddPlaylist(playlist *model.Playlist, kind model.Kind) ([]*model.DownloadTask, error)
	GetAllTasks() []*model.DownloadTask
	Wait(ctx context.Context) error
}
