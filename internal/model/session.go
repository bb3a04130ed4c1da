package model

// Phase is the session's position in the download state machine
type Phase string

const (
	// PhaseIdle is the initial phase; nothing has been submitted
	PhaseIdle Phase = "Idle"

	// PhaseValidating means a resolve request is in flight
	PhaseValidating Phase = "Validating"

	// PhaseReady means metadata was resolved and a download can be chosen
	PhaseReady Phase = "Ready"

	// PhaseFetching means a binary fetch is in flight
	PhaseFetching Phase = "Fetching"

	// PhaseSucceeded means the last download was saved
	PhaseSucceeded Phase = "Succeeded"

	// PhaseFailed means the last attempt failed
	PhaseFailed Phase = "Failed"
)

// String returns the string representation of Phase
func (p Phase) String() string {
	return string(p)
}

// IsBusy returns true while a network request is outstanding
func (p Phase) IsBusy() bool {
	return p == PhaseValidating || p == PhaseFetching
}

// ExposesMetadata returns true for phases in which metadata may be observed
func (p Phase) ExposesMetadata() bool {
	return p == PhaseReady || p == PhaseFetching || p == PhaseSucceeded
}

// MessageKind classifies the last user-facing message
type MessageKind string

const (
	MessageNone  MessageKind = ""
	MessageInfo  MessageKind = "info"
	MessageError MessageKind = "error"
)

// Message is the most recent user-facing outcome
type Message struct {
	Kind MessageKind
	Text string
}

// Session is one interaction's worth of download state
type Session struct {
	SourceURL   string
	Phase       Phase
	LastMessage Message
	metadata    *Metadata
}

// NewSession returns a session in its initial state
func NewSession() Session {
	return Session{Phase: PhaseIdle}
}

// Metadata returns the resolved metadata when the phase allows observing it
func (s Session) Metadata() (Metadata, bool) {
	if s.metadata == nil || !s.Phase.ExposesMetadata() {
		return Metadata{}, false
	}
	return *s.metadata, true
}

// WithMetadata returns a copy of s carrying md (nil clears it)
func (s Session) WithMetadata(md *Metadata) Session {
	if md != nil {
		cp := *md
		md = &cp
	}
	s.metadata = md
	return s
}
