package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ytget/ytgrab/internal/model"
)

// Service endpoints
const (
	VideoInfoPath      = "/api/video-info"
	DownloadPathPrefix = "/api/download/"
	HealthPath         = "/health"
)

// Header names
const (
	HeaderContentType        = "Content-Type"
	HeaderContentDisposition = "Content-Disposition"
	ContentTypeJSON          = "application/json"
)

// Limits
const (
	DefaultTimeout       = 10 * time.Minute
	MaxErrorBodyBytes    = 64 * 1024
	MaxMetadataBodyBytes = 1 << 20
)

// StatusError is returned when the service answers with a non-2xx status
type StatusError struct {
	StatusCode int
	Message    string // the service's {"error": ...} text, if any
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("service returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("service returned %d", e.StatusCode)
}

// Client talks to the media service
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for the service at baseURL
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the service base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// EndpointFor returns the download endpoint path for kind
func EndpointFor(kind model.Kind) string {
	return DownloadPathPrefix + kind.String()
}

type urlRequest struct {
	URL string `json:"url"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Resolve asks the service for metadata about sourceURL
func (c *Client) Resolve(ctx context.Context, sourceURL string) (*model.Metadata, error) {
	resp, err := c.post(ctx, VideoInfoPath, sourceURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var md model.Metadata
	if err := json.NewDecoder(io.LimitReader(resp.Body, MaxMetadataBodyBytes)).Decode(&md); err != nil {
		return nil, fmt.Errorf("failed to decode video info: %w", err)
	}

	c.logger.Debug("video info resolved", "url", sourceURL, "title", md.Title)
	return &md, nil
}

// Fetch downloads the kind rendition of sourceURL
func (c *Client) Fetch(ctx context.Context, kind model.Kind, sourceURL string) (*model.Payload, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown media kind: %q", kind)
	}

	resp, err := c.post(ctx, EndpointFor(kind), sourceURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s payload: %w", kind, err)
	}

	c.logger.Debug("payload fetched", "url", sourceURL, "kind", kind, "bytes", len(data))
	return &model.Payload{
		Data:        data,
		Disposition: resp.Header.Get(HeaderContentDisposition),
		ContentType: resp.Header.Get(HeaderContentType),
	}, nil
}

// Health checks that the service answers on its health endpoint
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+HealthPath, nil)
	if err != nil {
		return fmt.Errorf("failed to build health request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	return checkStatus(resp)
}

func (c *Client) post(ctx context.Context, path, sourceURL string) (*http.Response, error) {
	body, err := json.Marshal(urlRequest{URL: sourceURL})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	req.Header.Set(HeaderContentType, ContentTypeJSON)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("service request failed", "path", path, "error", err)
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}

	c.logger.Debug("service responded", "path", path, "status", resp.StatusCode, "duration", time.Since(start))
	return resp, nil
}

// checkStatus turns a non-2xx response into a *StatusError
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	statusErr := &StatusError{StatusCode: resp.StatusCode}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, MaxErrorBodyBytes))
	if err == nil {
		var er errorResponse
		if json.Unmarshal(raw, &er) == nil {
			statusErr.Message = er.Error
		}
	}
	return statusErr
}

// IsStatus reports whether err is a *StatusError with the given code
func IsStatus(err error, code int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == code
}
