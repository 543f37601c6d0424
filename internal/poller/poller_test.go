package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidconv/vidconv/pkg/models"
)

// scriptedLister replays a fixed sequence of poll responses, repeating the
// last one once the script is exhausted.
type scriptedLister struct {
	mu        sync.Mutex
	responses []response
	calls     int
}

type response struct {
	statuses []models.ProcessingStatus
	err      error
}

func (s *scriptedLister) Status(ctx context.Context, videoID string) ([]models.ProcessingStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.calls
	s.calls++
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	r := s.responses[idx]
	return r.statuses, r.err
}

func (s *scriptedLister) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func record(resolution string, status models.JobStatus) []models.ProcessingStatus {
	return []models.ProcessingStatus{{
		ID:         1,
		VideoID:    "abc123",
		Resolution: resolution,
		Status:     status,
	}}
}

func TestWatcherReachesCompleted(t *testing.T) {
	lister := &scriptedLister{responses: []response{
		{statuses: record("720p", models.JobStatusProcessing)},
		{statuses: record("720p", models.JobStatusProcessing)},
		{statuses: record("720p", models.JobStatusCompleted)},
	}}

	var fired atomic.Int32
	var got models.JobStatus
	w := Watch(context.Background(), Options{
		VideoID:    "abc123",
		Format:     models.FormatMP4,
		Resolution: "720p",
		Interval:   5 * time.Millisecond,
		Warmup:     time.Millisecond,
		Statuses:   lister,
		OnTerminal: func(s models.JobStatus) {
			got = s
			fired.Add(1)
		},
	})
	defer w.Stop()

	select {
	case <-w.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not finish")
	}

	assert.Equal(t, StateCompleted, w.State())
	assert.Equal(t, int32(1), fired.Load(), "terminal callback must fire exactly once")
	assert.Equal(t, models.JobStatusCompleted, got)

	// Polling must have stopped: no further ticks after the terminal one
	final := lister.callCount()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, final, lister.callCount(), "no ticks after terminal state")
	assert.Equal(t, 3, final)
}

func TestWatcherReportsFailure(t *testing.T) {
	lister := &scriptedLister{responses: []response{
		{statuses: record("1080p", models.JobStatusProcessing)},
		{statuses: record("1080p", models.JobStatusFailed)},
	}}

	var fired atomic.Int32
	var got models.JobStatus
	w := Watch(context.Background(), Options{
		VideoID:    "abc123",
		Format:     models.FormatMP4,
		Resolution: "1080p",
		Interval:   5 * time.Millisecond,
		Warmup:     time.Millisecond,
		Statuses:   lister,
		OnTerminal: func(s models.JobStatus) {
			got = s
			fired.Add(1)
		},
	})
	defer w.Stop()

	<-w.Done()

	assert.Equal(t, StateFailed, w.State())
	assert.Equal(t, int32(1), fired.Load())
	assert.Equal(t, models.JobStatusFailed, got)
}

func TestWatcherIgnoresOtherResolutions(t *testing.T) {
	// The status list never contains the expected key: the watcher stays in
	// Initializing until stopped, without firing the callback.
	lister := &scriptedLister{responses: []response{
		{statuses: record("360p", models.JobStatusCompleted)},
	}}

	var fired atomic.Int32
	w := Watch(context.Background(), Options{
		VideoID:    "abc123",
		Format:     models.FormatMP4,
		Resolution: "720p",
		Interval:   5 * time.Millisecond,
		Warmup:     time.Millisecond,
		Statuses:   lister,
		OnTerminal: func(models.JobStatus) { fired.Add(1) },
	})

	// Let several ticks pass
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, StateInitializing, w.State())
	assert.GreaterOrEqual(t, lister.callCount(), 2, "watcher keeps polling")

	w.Stop()
	<-w.Done()
	assert.Equal(t, int32(0), fired.Load())
}

func TestWatcherStopBeforeFirstTick(t *testing.T) {
	lister := &scriptedLister{responses: []response{
		{statuses: record("720p", models.JobStatusCompleted)},
	}}

	var fired atomic.Int32
	w := Watch(context.Background(), Options{
		VideoID:    "abc123",
		Format:     models.FormatMP4,
		Resolution: "720p",
		Interval:   10 * time.Millisecond,
		Warmup:     50 * time.Millisecond,
		Statuses:   lister,
		OnTerminal: func(models.JobStatus) { fired.Add(1) },
	})

	// Tear down while still inside the warm-up delay
	w.Stop()
	<-w.Done()

	// Advance well past several would-be intervals
	time.Sleep(120 * time.Millisecond)

	assert.Equal(t, 0, lister.callCount(), "no tick may fire after teardown")
	assert.Equal(t, int32(0), fired.Load(), "no callback may fire after teardown")
	assert.Equal(t, StateInitializing, w.State())
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	lister := &scriptedLister{responses: []response{{statuses: nil}}}

	w := Watch(context.Background(), Options{
		VideoID:  "abc123",
		Format:   models.FormatMP4,
		Interval: 5 * time.Millisecond,
		Warmup:   time.Millisecond,
		Statuses: lister,
	})

	w.Stop()
	w.Stop()
	<-w.Done()
	w.Stop()
}

func TestWatcherAudioJobMatchesMP3Key(t *testing.T) {
	// An MP3 watch must match the literal "mp3" record, not any video
	// resolution string.
	lister := &scriptedLister{responses: []response{
		{statuses: []models.ProcessingStatus{
			{ID: 1, VideoID: "abc123", Resolution: "720p", Status: models.JobStatusProcessing},
			{ID: 2, VideoID: "abc123", Resolution: "mp3", Status: models.JobStatusCompleted},
		}},
	}}

	var fired atomic.Int32
	w := Watch(context.Background(), Options{
		VideoID:    "abc123",
		Format:     models.FormatMP3,
		Resolution: "720p", // must be ignored for audio jobs
		Interval:   5 * time.Millisecond,
		Warmup:     time.Millisecond,
		Statuses:   lister,
		OnTerminal: func(models.JobStatus) { fired.Add(1) },
	})
	defer w.Stop()

	<-w.Done()

	assert.Equal(t, StateCompleted, w.State())
	assert.Equal(t, int32(1), fired.Load())
}

func TestWatcherSwallowsTickErrors(t *testing.T) {
	lister := &scriptedLister{responses: []response{
		{err: errors.New("connection refused")},
		{statuses: record("720p", models.JobStatusProcessing)},
		{err: errors.New("malformed response")},
		{statuses: record("720p", models.JobStatusCompleted)},
	}}

	var fired atomic.Int32
	w := Watch(context.Background(), Options{
		VideoID:    "abc123",
		Format:     models.FormatMP4,
		Resolution: "720p",
		Interval:   5 * time.Millisecond,
		Warmup:     time.Millisecond,
		Statuses:   lister,
		OnTerminal: func(models.JobStatus) { fired.Add(1) },
	})
	defer w.Stop()

	select {
	case <-w.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not survive transient errors")
	}

	assert.Equal(t, StateCompleted, w.State())
	assert.Equal(t, int32(1), fired.Load())
	assert.Equal(t, 4, lister.callCount())
}

func TestWatcherParentContextCancellation(t *testing.T) {
	lister := &scriptedLister{responses: []response{{statuses: nil}}}

	ctx, cancel := context.WithCancel(context.Background())
	var fired atomic.Int32
	w := Watch(ctx, Options{
		VideoID:    "abc123",
		Format:     models.FormatMP4,
		Resolution: "720p",
		Interval:   5 * time.Millisecond,
		Warmup:     time.Millisecond,
		Statuses:   lister,
		OnTerminal: func(models.JobStatus) { fired.Add(1) },
	})

	cancel()
	select {
	case <-w.Done():
	case <-time.After(time.Second):
		t.Fatal("watcher did not observe parent cancellation")
	}
	assert.Equal(t, int32(0), fired.Load())
}

func TestStateString(t *testing.T) {
	require.Equal(t, "initializing", StateInitializing.String())
	require.Equal(t, "processing", StateProcessing.String())
	require.Equal(t, "completed", StateCompleted.String())
	require.Equal(t, "failed", StateFailed.String())
}
