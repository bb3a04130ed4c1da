package ui

// Window
const (
	WindowTitle  = "YT Grab"
	WindowWidth  = 640
	WindowHeight = 320
)

// Button labels and placeholders
const (
	URLPlaceholder     = "Paste a YouTube URL"
	LabelGetInfo       = "Get Video Info"
	LabelDownloadVideo = "Download Video"
	LabelDownloadAudio = "Download Audio"
	LabelReset         = "Reset"
	UnknownTitle       = "Untitled video"
)

// Icons (emojis/symbols)
const (
	IconSettings = "⚙"
	IconClock    = "⏱"
)

// Text fragments
const (
	MiddleDotSeparator = " · "
)

// Settings dialog sizing
const (
	SettingsDialogWidth  float32 = 500
	SettingsDialogHeight float32 = 300
)
