package session

import (
	"context"

	"github.com/ytget/ytgrab/internal/model"
)

// MetadataResolver turns a source URL into metadata confirming it is downloadable.
type MetadataResolver interface {
	Resolve(ctx context.Context, sourceURL string) (*model.Metadata, error)
}

// BinaryFetcher retrieves a media rendition of a source URL.
type BinaryFetcher interface {
	Fetch(ctx context.Context, kind model.Kind, sourceURL string) (*model.Payload, error)
}

// FileSaver persists a payload under a file name and returns where it went.
type FileSaver interface {
	Save(filename string, data []byte) (string, error)
}
