// Package api is the typed access layer for the video conversion service.
// Each operation builds one HTTP request against the configured base URL,
// attaches the bearer token read from the session store, and normalizes the
// response: 200 decodes into the operation's result type, everything else
// becomes an *Error the caller can discriminate with errors.As.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/vidconv/vidconv/internal/config"
	"github.com/vidconv/vidconv/internal/logging"
	"github.com/vidconv/vidconv/internal/session"
)

// Client calls the conversion service. The bearer token is re-read from the
// session store on every call, so a login or logout in the same process is
// picked up immediately.
type Client struct {
	baseURL string
	http    *http.Client
	store   session.Store
	logger  *logging.Logger
}

// New creates a client for the service at cfg.BaseURL.
func New(cfg config.APIConfig, store session.Store, logger *logging.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		http: &http.Client{
			Timeout: cfg.Timeout,
		},
		store:  store,
		logger: logger,
	}
}

// errorEnvelope is the server's uniform error body.
type errorEnvelope struct {
	Error string `json:"error"`
}

// newRequest builds a request for path relative to the base URL. When auth
// is set and no token is stored it fails with the 401 error before any
// network activity.
func (c *Client) newRequest(ctx context.Context, method, path string, auth bool, body io.Reader, contentType string) (*http.Request, error) {
	var token string
	if auth {
		token = session.Token(c.store)
		if token == "" {
			return nil, errNoToken()
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, networkError(err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("X-Request-ID", uuid.New().String())

	return req, nil
}

// send executes the request and logs the round trip. Transport failures come
// back as KindNetwork.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WithError(err).Debugf("request to %s failed", req.URL.Path)
		return nil, networkError(err)
	}
	c.logger.LogAPICall(req.Method, req.URL.Path, resp.StatusCode, time.Since(start))
	return resp, nil
}

// decodeError reads the server's error envelope from a non-2xx response.
func decodeError(resp *http.Response) *Error {
	var envelope errorEnvelope
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err == nil {
		_ = json.Unmarshal(body, &envelope)
	}
	return httpError(resp.StatusCode, envelope.Error)
}

// doJSON performs a request with an optional JSON body and decodes a 200
// response into out. Any non-200 status is shaped into an *Error.
func (c *Client) doJSON(ctx context.Context, method, path string, auth bool, in, out interface{}) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return networkError(err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := c.newRequest(ctx, method, path, auth, body, contentType)
	if err != nil {
		return err
	}

	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return networkError(fmt.Errorf("malformed response: %w", err))
		}
	}
	return nil
}

// multipartBody assembles a multipart form from fields plus an optional file
// attached under fileField. It returns the body and its content type.
func multipartBody(fields map[string]string, fileField, filePath string) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}

	if filePath != "" {
		f, err := os.Open(filePath)
		if err != nil {
			return nil, "", err
		}
		defer f.Close()

		part, err := w.CreateFormFile(fileField, filepath.Base(filePath))
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, f); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// doMultipart performs a multipart POST and decodes a 200 response into out.
func (c *Client) doMultipart(ctx context.Context, path string, fields map[string]string, fileField, filePath string, out interface{}) error {
	body, contentType, err := multipartBody(fields, fileField, filePath)
	if err != nil {
		return validationError(err.Error())
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, true, body, contentType)
	if err != nil {
		return err
	}

	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return networkError(fmt.Errorf("malformed response: %w", err))
		}
	}
	return nil
}
