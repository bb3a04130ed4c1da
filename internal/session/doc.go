package session

// Package session implements the download session controller: the state
// machine that validates a URL, resolves it through the media service,
// fetches the chosen rendition and saves it locally. Network and disk access
// are injected capabilities so transitions can be driven by fakes in tests.
