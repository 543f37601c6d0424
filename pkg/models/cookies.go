package models

import (
	"time"
)

// CookieStatus describes the server-side cookies.txt file used by the
// downloader for age-restricted or region-locked videos.
type CookieStatus struct {
	Exists       bool      `json:"exists"`
	LastModified time.Time `json:"last_modified"`
	AbsolutePath string    `json:"absolute_path,omitempty"`
	SizeBytes    int64     `json:"size_bytes,omitempty"`
}
