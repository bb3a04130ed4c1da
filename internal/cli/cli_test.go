package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/ytget/ytgrab/internal/model"
)

// mediaService answers like the backend and counts requests per path
type mediaService struct {
	mu       sync.Mutex
	hits     map[string]int
	failInfo bool
	noHealth bool
}

func (m *mediaService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	if m.hits == nil {
		m.hits = make(map[string]int)
	}
	m.hits[r.URL.Path]++
	failInfo := m.failInfo
	noHealth := m.noHealth
	m.mu.Unlock()

	var body struct {
		URL string `json:"url"`
	}
	if r.Method == http.MethodPost {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	switch r.URL.Path {
	case "/health":
		if noHealth {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"status":"ok"}`))
	case "/api/video-info":
		if failInfo {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":"boom"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"title":"Test","duration":61,"uploader":"someone"}`))
	case "/api/download/video":
		w.Header().Set("Content-Disposition", `attachment; filename="clip.mp4"`)
		w.Write([]byte("video:" + body.URL))
	case "/api/download/audio":
		w.Write([]byte("audio:" + body.URL))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (m *mediaService) count(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits[path]
}

type fakePlaylists struct {
	playlist *model.Playlist
	err      error
}

func (f *fakePlaylists) ParsePlaylist(ctx context.Context, rawURL string) (*model.Playlist, error) {
	return f.playlist, f.err
}

type cliFixture struct {
	service    *mediaService
	serviceURL string
	configPath string
	outDir     string
}

func newCLIFixture(t *testing.T) *cliFixture {
	t.Helper()
	svc := &mediaService{}
	srv := httptest.NewServer(svc)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(configPath, []byte("service_url = \"http://unused.invalid\"\nlog_level = \"error\"\n"), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	return &cliFixture{
		service:    svc,
		serviceURL: srv.URL,
		configPath: configPath,
		outDir:     filepath.Join(dir, "out"),
	}
}

func (f *cliFixture) run(playlists PlaylistSource, args ...string) (string, error) {
	cmd := newRootCommand(playlists)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", f.configPath, "--service", f.serviceURL, "--out", f.outDir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestGet_Audio(t *testing.T) {
	f := newCLIFixture(t)

	out, err := f.run(nil, "get", "https://www.youtube.com/watch?v=abc123", "--kind", "audio")
	if err != nil {
		t.Fatalf("Expected no error, got %v\n%s", err, out)
	}

	data, err := os.ReadFile(filepath.Join(f.outDir, "audio.mp3"))
	if err != nil {
		t.Fatalf("Expected audio.mp3 to be saved: %v", err)
	}
	if string(data) != "audio:https://www.youtube.com/watch?v=abc123" {
		t.Errorf("Unexpected file content %q", data)
	}
	if !strings.Contains(out, "Audio downloaded successfully!") {
		t.Errorf("Expected success message in output, got:\n%s", out)
	}
	if !strings.Contains(out, "Test (01:01)") {
		t.Errorf("Expected title in output, got:\n%s", out)
	}
	if f.service.count("/api/download/video") != 0 {
		t.Error("Expected the video endpoint not to be called")
	}
}

func TestGet_VideoUsesSuggestedName(t *testing.T) {
	f := newCLIFixture(t)

	if out, err := f.run(nil, "get", "https://youtu.be/abc123"); err != nil {
		t.Fatalf("Expected no error, got %v\n%s", err, out)
	}
	if _, err := os.Stat(filepath.Join(f.outDir, "clip.mp4")); err != nil {
		t.Errorf("Expected clip.mp4 to be saved: %v", err)
	}
}

func TestGet_Errors(t *testing.T) {
	tests := []struct {
		name     string
		failInfo bool
		args     []string
		message  string
	}{
		{"invalid url", false, []string{"get", "https://example.com/notavideo"}, "Invalid YouTube URL. Please check and try again."},
		{"blank url", false, []string{"get", "  "}, "Please enter a YouTube URL"},
		{"resolve failure", true, []string{"get", "https://youtu.be/abc123"}, "Failed to connect to server. Make sure the backend is running."},
		{"unknown kind", false, []string{"get", "https://youtu.be/abc123", "--kind", "flac"}, "unknown media kind"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := newCLIFixture(t)
			f.service.failInfo = test.failInfo

			_, err := f.run(nil, test.args...)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), test.message) {
				t.Errorf("Expected error containing %q, got %q", test.message, err.Error())
			}
			if f.service.count("/api/download/video")+f.service.count("/api/download/audio") != 0 {
				t.Error("Expected no download requests")
			}
		})
	}
}

func TestGet_InvalidURLMakesNoRequests(t *testing.T) {
	f := newCLIFixture(t)

	_, _ = f.run(nil, "get", "not a url")
	if f.service.count("/api/video-info") != 0 {
		t.Errorf("Expected no resolve requests, got %d", f.service.count("/api/video-info"))
	}
}

func TestInfo(t *testing.T) {
	f := newCLIFixture(t)

	out, err := f.run(nil, "info", "https://youtu.be/abc123")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	for _, want := range []string{"Title:    Test", "Uploader: someone", "Duration: 01:01"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output, got:\n%s", want, out)
		}
	}
	if _, err := os.Stat(f.outDir); !os.IsNotExist(err) {
		t.Error("Expected info not to create the download directory")
	}
}

func TestHealth(t *testing.T) {
	f := newCLIFixture(t)

	out, err := f.run(nil, "health")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(out, "is up") {
		t.Errorf("Unexpected output %q", out)
	}
}

func TestHealth_MissingEndpoint(t *testing.T) {
	f := newCLIFixture(t)
	f.service.noHealth = true

	_, err := f.run(nil, "health")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "has no /health endpoint") {
		t.Errorf("Expected missing endpoint error, got %q", err.Error())
	}
}

func TestPlaylist(t *testing.T) {
	f := newCLIFixture(t)
	playlists := &fakePlaylists{playlist: &model.Playlist{
		ID:    "PL1",
		Title: "Mix",
		Entries: []model.PlaylistEntry{
			{ID: "a1", Title: "One", URL: "https://www.youtube.com/watch?v=a1"},
			{ID: "b2", Title: "Two", URL: "https://www.youtube.com/watch?v=b2"},
		},
	}}

	out, err := f.run(playlists, "playlist", "https://www.youtube.com/playlist?list=PL1", "--kind", "audio")
	if err != nil {
		t.Fatalf("Expected no error, got %v\n%s", err, out)
	}

	// Both entries suggest no name, so the second one is numbered
	for _, name := range []string{"audio.mp3", "audio (1).mp3"} {
		if _, err := os.Stat(filepath.Join(f.outDir, name)); err != nil {
			t.Errorf("Expected %s to be saved: %v", name, err)
		}
	}
	if f.service.count("/api/download/audio") != 2 {
		t.Errorf("Expected 2 audio downloads, got %d", f.service.count("/api/download/audio"))
	}
	if !strings.Contains(out, "all 2 downloads saved") {
		t.Errorf("Expected summary in output, got:\n%s", out)
	}
	if strings.Count(out, "started ") != 2 {
		t.Errorf("Expected one started line per entry, got:\n%s", out)
	}
}

func TestPlaylist_FailuresShowSessionMessage(t *testing.T) {
	f := newCLIFixture(t)
	f.service.failInfo = true
	playlists := &fakePlaylists{playlist: &model.Playlist{
		ID:      "PL1",
		Entries: []model.PlaylistEntry{{ID: "a1", Title: "One", URL: "https://www.youtube.com/watch?v=a1"}},
	}}

	out, err := f.run(playlists, "playlist", "https://www.youtube.com/playlist?list=PL1")
	if err == nil || !strings.Contains(err.Error(), "1 of 1 downloads failed") {
		t.Errorf("Expected failure summary, got %v", err)
	}
	if !strings.Contains(out, "failed  One: Failed to connect to server. Make sure the backend is running.") {
		t.Errorf("Expected the session message in output, got:\n%s", out)
	}
	if strings.Contains(out, "resolve failed") {
		t.Errorf("Expected no raw error chain in output, got:\n%s", out)
	}
}

func TestPlaylist_Errors(t *testing.T) {
	f := newCLIFixture(t)

	if _, err := f.run(&fakePlaylists{}, "playlist", "https://youtu.be/abc123"); err == nil {
		t.Error("Expected error for a URL without a playlist")
	}

	parseErr := errors.New("playlist unavailable")
	_, err := f.run(&fakePlaylists{err: parseErr}, "playlist", "https://www.youtube.com/playlist?list=PL1")
	if !errors.Is(err, parseErr) {
		t.Errorf("Expected %v, got %v", parseErr, err)
	}
}
