package platform

// Package platform contains OS/platform integration and external tooling glue:
// URL validation, saving payloads into the downloads directory, playlist
// expansion via ytdlp, and OS reveal-in-file-manager.
