package model

import (
	"encoding/json"
	"fmt"
)

// Kind is the media rendition requested from the service
type Kind string

const (
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
)

// Default file names used when the service does not suggest one
const (
	DefaultVideoFilename = "video.mp4"
	DefaultAudioFilename = "audio.mp3"
)

// ParseKind converts user input into a Kind
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown media kind: %q", s)
	}
	return k, nil
}

// String returns the string representation of Kind
func (k Kind) String() string {
	return string(k)
}

// Valid reports whether k is one of the supported kinds
func (k Kind) Valid() bool {
	return k == KindVideo || k == KindAudio
}

// DefaultFilename returns the fallback file name for the kind
func (k Kind) DefaultFilename() string {
	if k == KindAudio {
		return DefaultAudioFilename
	}
	return DefaultVideoFilename
}

// Metadata is what the service reports about a resolved URL
type Metadata struct {
	Title    string `json:"title"`
	Duration int    `json:"duration,omitempty"` // seconds
	Uploader string `json:"uploader,omitempty"`
}

// UnmarshalJSON accepts a fractional or null duration
func (m *Metadata) UnmarshalJSON(data []byte) error {
	var raw struct {
		Title    string   `json:"title"`
		Duration *float64 `json:"duration"`
		Uploader string   `json:"uploader"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	m.Title = raw.Title
	m.Uploader = raw.Uploader
	m.Duration = 0
	if raw.Duration != nil {
		m.Duration = int(*raw.Duration)
	}
	return nil
}

// GetDurationString returns duration formatted as hh:mm:ss or mm:ss, or "—" if unknown
func (m Metadata) GetDurationString() string {
	if m.Duration <= 0 {
		return "—"
	}

	hours := m.Duration / 3600
	minutes := (m.Duration % 3600) / 60
	seconds := m.Duration % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// Payload is a fetched binary rendition
type Payload struct {
	Data        []byte
	Disposition string // raw Content-Disposition value, may be empty
	ContentType string
}
