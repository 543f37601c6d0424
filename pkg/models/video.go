package models

import (
	"time"
)

// Video represents a video known to the conversion service. VideoID is the
// external platform identifier (the YouTube ID), distinct from the numeric
// database ID.
type Video struct {
	ID            int64     `json:"id"`
	VideoID       string    `json:"video_id"`
	Title         string    `json:"title"`
	UserID        int64     `json:"user_id"`
	RequestedByIP string    `json:"requested_by_ip"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// InsertedVideo is the result of submitting a URL for conversion. When the
// video was already known to the server (HTTP 409) AlreadyExists is true and
// VideoID still carries a usable identifier, so callers can proceed to the
// existing video.
type InsertedVideo struct {
	Message       string `json:"message"`
	VideoID       string `json:"videoID"`
	AlreadyExists bool   `json:"-"`
}

// InsertVideoRequest is the body of POST videos/.
type InsertVideoRequest struct {
	URL string `json:"url"`
}
