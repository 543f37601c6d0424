package models

import (
	"time"
)

// ProcessingStatus is one conversion job for a video. A record is uniquely
// identified by (video_id, resolution); audio jobs use the literal
// resolution "mp3".
type ProcessingStatus struct {
	ID         int64     `json:"id"`
	VideoID    string    `json:"video_id"`
	Resolution string    `json:"resolution"`
	Status     JobStatus `json:"status"`
	Path       string    `json:"path"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// JobStatus is the lifecycle state of a conversion job. Transitions are
// monotonic: processing -> completed or processing -> failed, never out of a
// terminal state.
type JobStatus string

const (
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether the status is an end state.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Format selects the conversion output container.
type Format string

const (
	FormatMP3 Format = "MP3"
	FormatMP4 Format = "MP4"
)

// AudioResolutionKey is the resolution value used for audio jobs, both when
// submitting and when matching status records.
const AudioResolutionKey = "mp3"

// ResolutionKey returns the resolution string identifying a job of this
// format: the fixed audio key for MP3, the caller's selected resolution for
// MP4.
func (f Format) ResolutionKey(resolution string) string {
	if f == FormatMP3 {
		return AudioResolutionKey
	}
	return resolution
}

// Ext returns the file extension for downloads of this format.
func (f Format) Ext() string {
	if f == FormatMP3 {
		return "mp3"
	}
	return "mp4"
}

// ProcessRequest describes a job submission: the multipart form fields of
// POST videos/:id/process.
type ProcessRequest struct {
	Resolution string `json:"Resolution"`
	IsAudio    bool   `json:"IsAudio"`
}

// FindStatus returns the record matching the resolution key, or nil when the
// server has not created it yet.
func FindStatus(statuses []ProcessingStatus, resolutionKey string) *ProcessingStatus {
	for i := range statuses {
		if statuses[i].Resolution == resolutionKey {
			return &statuses[i]
		}
	}
	return nil
}
