package session

import (
	"errors"
	"fmt"

	"github.com/ytget/ytgrab/internal/model"
)

// Code classifies a failed attempt
type Code int

const (
	// EmptyInput means the submitted URL was blank
	EmptyInput Code = iota + 1
	// InvalidFormat means the URL did not look like a playable item
	InvalidFormat
	// ResolveFailed means the metadata request failed for any reason
	ResolveFailed
	// FetchFailed means the binary request or the local save failed
	FetchFailed
)

// String returns the name of the code
func (c Code) String() string {
	switch c {
	case EmptyInput:
		return "EmptyInput"
	case InvalidFormat:
		return "InvalidFormat"
	case ResolveFailed:
		return "ResolveFailed"
	case FetchFailed:
		return "FetchFailed"
	default:
		return "Unknown"
	}
}

// Error is returned by Submit and ConfirmDownload when an attempt fails.
// The session is in PhaseFailed whenever one is returned.
type Error struct {
	Code Code
	Kind model.Kind // set for FetchFailed
	Err  error      // underlying cause, nil for local validation failures
}

func (e *Error) Error() string {
	var msg string
	switch e.Code {
	case EmptyInput:
		msg = "empty input"
	case InvalidFormat:
		msg = "invalid URL format"
	case ResolveFailed:
		msg = "resolve failed"
	case FetchFailed:
		msg = fmt.Sprintf("%s fetch failed", e.Kind)
	default:
		msg = "session error"
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf returns the Code carried by err, or 0 if err is not an *Error
func CodeOf(err error) Code {
	var sessErr *Error
	if errors.As(err, &sessErr) {
		return sessErr.Code
	}
	return 0
}

// Rejections that leave the session untouched
var (
	ErrBusy        = errors.New("a request is already in flight for this session")
	ErrNotResolved = errors.New("no resolved video to download")
	ErrUnknownKind = errors.New("unknown media kind")
	ErrDiscarded   = errors.New("session was reset before the request settled")
)
