// Package urlcheck validates video URLs before they are submitted to the
// conversion service.
package urlcheck

import (
	"net/url"
	"regexp"
)

var youtubeRe = regexp.MustCompile(`^(https?://)?(www\.)?(youtube\.com|youtu\.be)/(watch\?v=|embed/|v/|e/|shorts/|live/)?([A-Za-z0-9_-]{11})`)

// IsValidURL reports whether str parses as an absolute URL.
func IsValidURL(str string) bool {
	u, err := url.Parse(str)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// IsValidYouTubeURL reports whether str points at a YouTube video: watch,
// embed, shorts and live URLs with an 11-character video ID all qualify.
func IsValidYouTubeURL(str string) bool {
	return youtubeRe.MatchString(str)
}

// YouTubeID extracts the 11-character video ID from a YouTube URL.
func YouTubeID(str string) (string, bool) {
	m := youtubeRe.FindStringSubmatch(str)
	if m == nil {
		return "", false
	}
	return m[5], true
}
