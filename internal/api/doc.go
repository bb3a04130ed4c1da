package api

// Package api is the HTTP client for the media service. It resolves URLs to
// metadata via /api/video-info and fetches renditions via /api/download/{kind}.
