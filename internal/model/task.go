package model

import (
	"strings"
	"time"
)

// DownloadTask represents one URL downloaded through its own session
type DownloadTask struct {
	ID         string
	URL        string
	Kind       Kind
	Status     TaskStatus
	LastError  string    // last error message if any
	OutputPath string    // path to the saved file
	StartedAt  time.Time // when the task was added
	FinishedAt time.Time // when the task finished
	Title      string    // video title from the service
}

// GetDisplayTitle returns title, filename, or URL in order of preference
func (dt *DownloadTask) GetDisplayTitle() string {
	if dt.Title != "" && !strings.HasPrefix(dt.Title, "http") {
		return dt.Title
	}

	if dt.OutputPath != "" {
		// support both / and \ separators
		parts := strings.FieldsFunc(dt.OutputPath, func(r rune) bool {
			return r == '/' || r == '\\'
		})
		if len(parts) > 0 {
			filename := parts[len(parts)-1]
			if idx := strings.LastIndex(filename, "."); idx > 0 {
				filename = filename[:idx]
			}
			return filename
		}
	}

	return dt.URL
}

// Elapsed returns how long the task ran, or zero if it has not finished
func (dt *DownloadTask) Elapsed() time.Duration {
	if dt.FinishedAt.IsZero() {
		return 0
	}
	return dt.FinishedAt.Sub(dt.StartedAt)
}
