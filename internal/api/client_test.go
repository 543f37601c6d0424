package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidconv/vidconv/internal/config"
	"github.com/vidconv/vidconv/internal/logging"
	"github.com/vidconv/vidconv/internal/session"
	"github.com/vidconv/vidconv/pkg/models"
)

// countingTransport counts round trips so tests can assert that no network
// call happened.
type countingTransport struct {
	calls int
	next  http.RoundTripper
}

func (t *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.calls++
	return t.next.RoundTrip(req)
}

func newTestClient(t *testing.T, serverURL, token string) (*Client, *countingTransport) {
	t.Helper()

	store := session.NewMemoryStore()
	if token != "" {
		require.NoError(t, session.SetToken(store, token))
	}

	client := New(config.APIConfig{
		BaseURL: serverURL + "/",
		Timeout: 5 * time.Second,
	}, store, logging.Nop())

	transport := &countingTransport{next: http.DefaultTransport}
	client.http.Transport = transport

	return client, transport
}

func TestMissingTokenFailsWithoutNetworkCall(t *testing.T) {
	client, transport := newTestClient(t, "http://localhost:1", "")

	ctx := context.Background()

	_, err := client.Me(ctx)
	require.Error(t, err)

	apiErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindAuth, apiErr.Kind)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "No token found", apiErr.Message)

	// Every authenticated operation must short-circuit the same way
	_, err = client.Status(ctx, "abc123")
	assert.True(t, IsAuthError(err))
	err = client.Process(ctx, "abc123", models.FormatMP3, "", "")
	assert.True(t, IsAuthError(err))
	_, err = client.Download(ctx, "abc123", "720p", filepath.Join(t.TempDir(), "v.mp4"))
	assert.True(t, IsAuthError(err))

	assert.Equal(t, 0, transport.calls, "transport must not be invoked without a token")
}

func TestServerErrorShaping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "database unavailable"})
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, "tok")

	_, err := client.ListVideos(context.Background())
	require.Error(t, err)

	apiErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindServer, apiErr.Kind)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "database unavailable", apiErr.Message)
}

func TestUnauthorizedResponseIsAuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "token expired"})
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, "stale")

	_, err := client.Me(context.Background())
	assert.True(t, IsAuthError(err))
}

func TestLoginStoresToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		require.Empty(t, r.Header.Get("Authorization"))

		var req models.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "alice", req.Username)

		json.NewEncoder(w).Encode(models.LoginResponse{Token: "issued-token"})
	}))
	defer server.Close()

	store := session.NewMemoryStore()
	client := New(config.APIConfig{BaseURL: server.URL + "/", Timeout: 5 * time.Second}, store, logging.Nop())

	resp, err := client.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, "issued-token", resp.Token)
	assert.Equal(t, "issued-token", session.Token(store))
}

func TestLoginRejectsEmptyCredentials(t *testing.T) {
	client, transport := newTestClient(t, "http://localhost:1", "")

	_, err := client.Login(context.Background(), "", "pw")
	apiErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindValidation, apiErr.Kind)
	assert.Equal(t, 0, transport.calls)
}

func TestInsertVideoConflictIsRecoverable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/videos/", r.URL.Path)
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{
			"error":   "video already exists",
			"videoID": "abc123",
		})
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, "tok")

	inserted, err := client.InsertVideo(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	require.NoError(t, err, "409 on insert is informational, not a failure")
	assert.True(t, inserted.AlreadyExists)
	assert.Equal(t, "abc123", inserted.VideoID)
	assert.Equal(t, "video already exists", inserted.Message)
}

func TestInsertVideoRejectsInvalidURL(t *testing.T) {
	client, transport := newTestClient(t, "http://localhost:1", "tok")

	_, err := client.InsertVideo(context.Background(), "not a url")
	apiErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindValidation, apiErr.Kind)
	assert.Equal(t, 0, transport.calls)
}

func TestProcessAudioSubmitsMP3Key(t *testing.T) {
	var gotResolution, gotIsAudio string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/videos/abc123/process", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotResolution = r.FormValue("Resolution")
		gotIsAudio = r.FormValue("IsAudio")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("{}"))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, "tok")

	require.NoError(t, client.Process(context.Background(), "abc123", models.FormatMP3, "720p", ""))
	assert.Equal(t, "mp3", gotResolution, "audio jobs use the literal mp3 key, never a video resolution")
	assert.Equal(t, "true", gotIsAudio)
}

func TestProcessVideoRequiresResolution(t *testing.T) {
	client, transport := newTestClient(t, "http://localhost:1", "tok")

	err := client.Process(context.Background(), "abc123", models.FormatMP4, "", "")
	apiErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindValidation, apiErr.Kind)
	assert.Equal(t, 0, transport.calls)
}

func TestFormatsPlainGETWithoutCookieFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(models.FormatsResponse{Resolutions: []string{"360p", "720p", "1080p"}})
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, "tok")

	resolutions, err := client.Formats(context.Background(), "abc123", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"360p", "720p", "1080p"}, resolutions)
}

func TestFormatsMultipartWithCookieFile(t *testing.T) {
	cookiePath := filepath.Join(t.TempDir(), "cookies.txt")
	require.NoError(t, os.WriteFile(cookiePath, []byte("# Netscape HTTP Cookie File\n"), 0600))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, header, err := r.FormFile("cookies")
		require.NoError(t, err)
		require.Equal(t, "cookies.txt", header.Filename)
		json.NewEncoder(w).Encode(models.FormatsResponse{Resolutions: []string{"720p"}})
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, "tok")

	resolutions, err := client.Formats(context.Background(), "abc123", cookiePath)
	require.NoError(t, err)
	assert.Equal(t, []string{"720p"}, resolutions)
}

func TestDownloadWritesFile(t *testing.T) {
	payload := []byte("fake mp4 bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "720p", r.URL.Query().Get("resolution"))
		w.Write(payload)
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, "tok")

	dest := filepath.Join(t.TempDir(), "out", "video.mp4")
	n, err := client.Download(context.Background(), "abc123", "720p", dest)
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), n)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestDownloadFailureKind(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, "tok")

	_, err := client.Download(context.Background(), "abc123", "720p", filepath.Join(t.TempDir(), "v.mp4"))
	apiErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindDownload, apiErr.Kind)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestHealthSwallowsTransportErrors(t *testing.T) {
	// Port 1 refuses connections
	client, _ := newTestClient(t, "http://localhost:1", "")

	status := client.Health(context.Background())
	assert.False(t, status.Active)
	assert.NotEmpty(t, status.Error)
}

func TestHealthActive(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/status", r.URL.Path)
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, "")

	status := client.Health(context.Background())
	assert.True(t, status.Active)
	assert.Empty(t, status.Error)
}

func TestDeleteUserForceFlag(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, "tok")

	require.NoError(t, client.DeleteUser(context.Background(), 4, true))
	assert.Equal(t, "forceDelete=true", gotQuery)
}

func TestMalformedResponseIsNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, "tok")

	_, err := client.Status(context.Background(), "abc123")
	apiErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindNetwork, apiErr.Kind)
}

func TestTokenClaimsWithoutToken(t *testing.T) {
	client, _ := newTestClient(t, "http://localhost:1", "")

	_, err := client.TokenClaims()
	assert.True(t, IsAuthError(err))
}
