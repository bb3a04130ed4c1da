package session

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/ytget/ytgrab/internal/model"
	"github.com/ytget/ytgrab/internal/platform"
)

var (
	// filename="name" or filename=name; filename*= does not match
	dispositionFilename = regexp.MustCompile(`(?i)filename=(?:"([^"]*)"|([^;\s]+))`)
	// RFC 5987 extended form, e.g. filename*=UTF-8''clip%20one.mp4
	dispositionFilenameExt = regexp.MustCompile(`(?i)filename\*=([\w!#$&+.^` + "`" + `|~-]+)'[^']*'([^;\s]+)`)
)

// ResolveFilename picks the file name for a fetched payload from its
// Content-Disposition value, falling back to the kind's default name.
func ResolveFilename(disposition string, kind model.Kind) string {
	if name := filenameFromDisposition(disposition); name != "" {
		return name
	}
	return kind.DefaultFilename()
}

func filenameFromDisposition(disposition string) string {
	if disposition == "" {
		return ""
	}

	// A plain name that lost its extension when cleaned (werkzeug sends
	// filename=.mp4 for non-ASCII names) yields to the extended form.
	if m := dispositionFilename.FindStringSubmatch(disposition); m != nil {
		name := m[1]
		if name == "" {
			name = m[2]
		}
		if cleaned := cleanSuggested(name); cleaned != "" && !lostExtension(name, cleaned) {
			return cleaned
		}
	}

	if m := dispositionFilenameExt.FindStringSubmatch(disposition); m != nil {
		if !strings.EqualFold(m[1], "UTF-8") {
			return ""
		}
		decoded, err := url.PathUnescape(m[2])
		if err != nil {
			return ""
		}
		return cleanSuggested(decoded)
	}

	return ""
}

// lostExtension reports whether cleaning dropped the extension name carried
func lostExtension(name, cleaned string) bool {
	base := strings.TrimSpace(name[strings.LastIndexAny(name, `/\`)+1:])
	return path.Ext(base) != "" && path.Ext(cleaned) == ""
}

// cleanSuggested sanitizes a server-suggested name, returning "" if nothing usable is left
func cleanSuggested(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	cleaned := platform.CleanFileName(name)
	if cleaned == platform.FallbackFileName && name != platform.FallbackFileName {
		return ""
	}
	return cleaned
}
