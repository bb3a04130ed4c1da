package platform

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"sync"
	"unicode/utf8"
)

// Operating system constants
const (
	OSDarwin  = "darwin"
	OSWindows = "windows"
	OSLinux   = "linux"
)

// File permissions
const (
	DefaultDirPermissions  = 0755
	DefaultFilePermissions = 0644
)

// Command constants
const (
	OpenCommand     = "open"
	ExplorerCommand = "explorer"
	XDGOpenCommand  = "xdg-open"
)

// Command parameters
const (
	MacOSSelectFlag    = "-R"
	WindowsSelectParam = "/select,"
)

// File name limits
const (
	MaxFileNameLength   = 200
	FallbackFileName    = "download"
	DuplicateNameFormat = "%s (%d)%s"
	MaxDuplicateSuffix  = 1000
)

// File manager names
var (
	LinuxFileManagers = []string{"nautilus", "dolphin", "thunar", "nemo", "pcmanfm"}
)

// Characters not allowed in Windows file names
var invalidFileNameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// DiskSaver persists payloads into a directory on the local disk
type DiskSaver struct {
	dir string
	mu  sync.Mutex // serializes picking a free name and moving the file into place
}

// NewDiskSaver creates a saver writing into dir
func NewDiskSaver(dir string) *DiskSaver {
	return &DiskSaver{dir: dir}
}

// Dir returns the target directory
func (d *DiskSaver) Dir() string {
	return d.dir
}

// Save writes data under filename and returns the final path. An existing
// file is never overwritten; a numbered variant of the name is used instead.
func (d *DiskSaver) Save(filename string, data []byte) (string, error) {
	if err := CreateDirectoryIfNotExists(d.dir); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	name := CleanFileName(filename)

	tmp, err := os.CreateTemp(d.dir, "."+name+".*.part")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to close %s: %w", name, err)
	}
	if err := os.Chmod(tmpName, DefaultFilePermissions); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to set permissions on %s: %w", name, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	target, err := uniquePath(d.dir, name)
	if err != nil {
		os.Remove(tmpName)
		return "", err
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to move %s into place: %w", name, err)
	}

	return target, nil
}

// CleanFileName removes characters invalid in file names, strips any
// directory part, trims leading/trailing spaces and dots and limits length
func CleanFileName(filename string) string {
	// treat both separators as path separators regardless of OS
	if idx := strings.LastIndexAny(filename, `/\`); idx >= 0 {
		filename = filename[idx+1:]
	}

	cleaned := invalidFileNameChars.ReplaceAllString(filename, "")
	cleaned = strings.Trim(cleaned, ". ")

	if len(cleaned) > MaxFileNameLength {
		ext := filepath.Ext(cleaned)
		if len(ext) >= MaxFileNameLength {
			ext = ""
		}
		cut := MaxFileNameLength - len(ext)
		// never split a multibyte character
		for cut > 0 && !utf8.RuneStart(cleaned[cut]) {
			cut--
		}
		cleaned = strings.TrimRight(cleaned[:cut], ". ") + ext
	}

	if cleaned == "" {
		return FallbackFileName
	}
	return cleaned
}

// uniquePath returns dir/name, or dir/"name (n).ext" if that already exists
func uniquePath(dir, name string) (string, error) {
	candidate := filepath.Join(dir, name)
	if _, err := os.Stat(candidate); os.IsNotExist(err) {
		return candidate, nil
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 1; i <= MaxDuplicateSuffix; i++ {
		candidate = filepath.Join(dir, fmt.Sprintf(DuplicateNameFormat, base, i, ext))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("too many files named %s in %s", name, dir)
}

// CreateDirectoryIfNotExists creates directory if it doesn't exist
func CreateDirectoryIfNotExists(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return os.MkdirAll(dirPath, DefaultDirPermissions)
	}
	return nil
}

// GetHomeDownloadsDir returns the standard Downloads directory for the user
func GetHomeDownloadsDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, "Downloads"), nil
}

// OpenFileInManager opens the file in the system file manager and highlights it
func OpenFileInManager(filePath string) error {
	if _, err := os.Stat(filePath); err != nil {
		return fmt.Errorf("file does not exist: %v", err)
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	switch runtime.GOOS {
	case OSDarwin:
		return exec.Command(OpenCommand, MacOSSelectFlag, absPath).Run()
	case OSWindows:
		return exec.Command(ExplorerCommand, WindowsSelectParam, absPath).Run()
	case OSLinux:
		return openFileInManagerLinux(absPath)
	default:
		return fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}
}

// openFileInManagerLinux opens directory containing file on Linux
// Note: File selection is not standardized on Linux, so we open the parent directory
func openFileInManagerLinux(filePath string) error {
	dir := filepath.Dir(filePath)

	if err := exec.Command(XDGOpenCommand, dir).Run(); err == nil {
		return nil
	}

	for _, fm := range LinuxFileManagers {
		if _, err := exec.LookPath(fm); err == nil {
			return exec.Command(fm, dir).Run()
		}
	}

	return fmt.Errorf("no suitable file manager found")
}
