package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/vidconv/vidconv/internal/urlcheck"
	"github.com/vidconv/vidconv/pkg/models"
)

// InsertVideo submits a URL for conversion (POST videos/). A 409 means the
// video already exists server-side; that is not a failure — the result
// carries the existing identifier with AlreadyExists set so the caller can
// proceed to it.
func (c *Client) InsertVideo(ctx context.Context, url string) (*models.InsertedVideo, error) {
	if !urlcheck.IsValidURL(url) {
		return nil, validationError("invalid URL")
	}

	body, err := json.Marshal(models.InsertVideoRequest{URL: url})
	if err != nil {
		return nil, networkError(err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "videos/", true, bytes.NewReader(body), "application/json")
	if err != nil {
		return nil, err
	}

	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var out models.InsertedVideo
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return nil, networkError(fmt.Errorf("malformed response: %w", err))
		}
		return &out, nil

	case http.StatusConflict:
		var conflict struct {
			Error   string `json:"error"`
			VideoID string `json:"videoID"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&conflict); err != nil {
			return nil, networkError(fmt.Errorf("malformed response: %w", err))
		}
		return &models.InsertedVideo{
			Message:       conflict.Error,
			VideoID:       conflict.VideoID,
			AlreadyExists: true,
		}, nil

	default:
		return nil, decodeError(resp)
	}
}

// GetVideo returns one video by its external identifier (GET videos/:id).
func (c *Client) GetVideo(ctx context.Context, videoID string) (*models.Video, error) {
	if videoID == "" {
		return nil, validationError("video ID is required")
	}
	var out models.Video
	if err := c.doJSON(ctx, http.MethodGet, "videos/"+videoID, true, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListVideos returns every video on the server (GET videos/).
func (c *Client) ListVideos(ctx context.Context) ([]models.Video, error) {
	var out []models.Video
	if err := c.doJSON(ctx, http.MethodGet, "videos/", true, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteVideo removes a video and its conversions (DELETE videos/:id).
func (c *Client) DeleteVideo(ctx context.Context, videoID string) error {
	if videoID == "" {
		return validationError("video ID is required")
	}
	return c.doJSON(ctx, http.MethodDelete, "videos/"+videoID, true, nil, nil)
}

// Formats returns the resolutions a video is available in (GET
// videos/:id/formats). When cookieFile is set the request switches to a
// multipart POST carrying it; without a file the request stays a plain GET.
func (c *Client) Formats(ctx context.Context, videoID, cookieFile string) ([]string, error) {
	if videoID == "" {
		return nil, validationError("video ID is required")
	}

	path := "videos/" + videoID + "/formats"
	var out models.FormatsResponse

	if cookieFile == "" {
		if err := c.doJSON(ctx, http.MethodGet, path, true, nil, &out); err != nil {
			return nil, err
		}
		return out.Resolutions, nil
	}

	if err := c.doMultipart(ctx, path, nil, "cookies", cookieFile, &out); err != nil {
		return nil, err
	}
	return out.Resolutions, nil
}

// Process submits a conversion job (multipart POST videos/:id/process).
// Audio jobs ignore resolution and use the fixed mp3 key; video jobs require
// a resolution picked from Formats. cookieFile is optional.
func (c *Client) Process(ctx context.Context, videoID string, format models.Format, resolution, cookieFile string) error {
	if videoID == "" {
		return validationError("video ID is required")
	}
	if format == models.FormatMP4 && resolution == "" {
		return validationError("resolution is required for video jobs")
	}

	fields := map[string]string{
		"Resolution": format.ResolutionKey(resolution),
		"IsAudio":    strconv.FormatBool(format == models.FormatMP3),
	}
	return c.doMultipart(ctx, "videos/"+videoID+"/process", fields, "cookies", cookieFile, nil)
}

// Status returns every conversion record for a video (GET videos/:id/status).
func (c *Client) Status(ctx context.Context, videoID string) ([]models.ProcessingStatus, error) {
	if videoID == "" {
		return nil, validationError("video ID is required")
	}
	var out []models.ProcessingStatus
	if err := c.doJSON(ctx, http.MethodGet, "videos/"+videoID+"/status", true, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Download fetches a finished conversion (GET videos/:id/download) and
// writes it to destPath. Saving the file is the operation's contract — the
// CLI counterpart of the browser's synthesized anchor click. Returns the
// number of bytes written.
func (c *Client) Download(ctx context.Context, videoID, resolutionKey, destPath string) (int64, error) {
	if videoID == "" {
		return 0, validationError("video ID is required")
	}
	if resolutionKey == "" {
		return 0, validationError("resolution is required")
	}

	path := "videos/" + videoID + "/download?resolution=" + resolutionKey
	req, err := c.newRequest(ctx, http.MethodGet, path, true, nil, "")
	if err != nil {
		return 0, err
	}

	resp, err := c.send(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
		return 0, &Error{Kind: KindDownload, StatusCode: resp.StatusCode, Message: "Download failed"}
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return 0, networkError(err)
	}

	f, err := os.Create(destPath)
	if err != nil {
		return 0, networkError(err)
	}

	n, err := io.Copy(f, resp.Body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(destPath)
		return 0, networkError(err)
	}

	c.logger.WithVideoID(videoID).Infof("saved %d bytes to %s", n, destPath)
	return n, nil
}
