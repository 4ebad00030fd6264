// Package youtube extracts video ids from the link forms instructors paste into
// lessons and rebuilds the canonical watch URL the course backend stores.
package youtube

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	watchURL     = "https://www.youtube.com/watch?v=%s"
	thumbnailURL = "https://img.youtube.com/vi/%s/hqdefault.jpg"
)

var ErrNotYouTube = errors.New("not a youtube url")

// Accepted: youtube.com/watch?...v=ID, youtu.be/ID, youtube.com/embed/ID,
// youtube.com/shorts/ID and youtube.com/v/ID, with or without scheme and www/m.
var idPattern = regexp.MustCompile(
	`^(?:https?://)?(?:(?:www|m)\.)?(?:youtube\.com/(?:watch\?(?:[^#]*&)?v=|embed/|shorts/|v/)|youtu\.be/)([A-Za-z0-9_-]+)`,
)

func ExtractID(raw string) (string, error) {
	m := idPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return "", fmt.Errorf("extracting video id from %q: %w", raw, ErrNotYouTube)
	}
	return m[1], nil
}

// Canonical returns https://www.youtube.com/watch?v={id} for any accepted
// link form. The boolean is false, and raw is returned unchanged, when no id
// could be extracted.
func Canonical(raw string) (string, bool) {
	id, err := ExtractID(raw)
	if err != nil {
		return raw, false
	}
	return WatchURL(id), true
}

func WatchURL(id string) string {
	return fmt.Sprintf(watchURL, id)
}

func Thumbnail(id string) string {
	if id == "" {
		return ""
	}
	return fmt.Sprintf(thumbnailURL, id)
}
