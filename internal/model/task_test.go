package model

import (
	"testing"
	"time"
)

func TestDownloadTask_GetDisplayTitle(t *testing.T) {
	tests := []struct {
		title      string
		url        string
		outputPath string
		expected   string
	}{
		{"Video Title", "https://youtube.com/watch?v=123", "", "Video Title"},
		{"", "https://youtube.com/watch?v=123", "", "https://youtube.com/watch?v=123"},
		{"", "https://youtube.com/watch?v=456", "/home/me/Downloads/clip.mp4", "clip"},
		{"", "https://youtube.com/watch?v=789", `C:\Users\me\song.mp3`, "song"},
		{"https://youtu.be/abc", "https://youtu.be/abc", "", "https://youtu.be/abc"},
	}

	for _, test := range tests {
		task := &DownloadTask{
			Title:      test.title,
			URL:        test.url,
			OutputPath: test.outputPath,
		}
		result := task.GetDisplayTitle()
		if result != test.expected {
			t.Errorf("GetDisplayTitle() with title='%s', url='%s', path='%s' = '%s', expected '%s'",
				test.title, test.url, test.outputPath, result, test.expected)
		}
	}
}

func TestDownloadTask_Elapsed(t *testing.T) {
	start := time.Now()
	task := &DownloadTask{StartedAt: start}

	if task.Elapsed() != 0 {
		t.Errorf("Expected zero elapsed for unfinished task, got %v", task.Elapsed())
	}

	task.FinishedAt = start.Add(3 * time.Second)
	if task.Elapsed() != 3*time.Second {
		t.Errorf("Expected 3s elapsed, got %v", task.Elapsed())
	}
}
