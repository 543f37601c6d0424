// Package poller watches one conversion job until it reaches a terminal
// state. A Watcher polls the full status list for its video on a fixed
// period, extracts the record matching its (video_id, resolution) key, and
// reports the first terminal observation to a callback — exactly once.
//
// Polling is deliberately best-effort: a failed or malformed poll is
// treated as "no update this tick" and never aborts a long-running job
// observation.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/vidconv/vidconv/internal/logging"
	"github.com/vidconv/vidconv/pkg/models"
)

// State is the watcher's view of the job lifecycle.
type State int

const (
	// StateInitializing means no matching status record has been observed
	// yet. The server may simply not have created it.
	StateInitializing State = iota
	// StateProcessing means the job is running server-side.
	StateProcessing
	// StateCompleted is terminal: the converted file is ready.
	StateCompleted
	// StateFailed is terminal: the conversion did not succeed.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateProcessing:
		return "processing"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state ends the watch.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// StatusLister fetches all conversion records for a video. *api.Client
// satisfies it.
type StatusLister interface {
	Status(ctx context.Context, videoID string) ([]models.ProcessingStatus, error)
}

// Options configures a Watcher.
type Options struct {
	// VideoID is the external platform identifier of the watched video.
	VideoID string
	// Format selects the job kind. Audio jobs match the literal "mp3" key;
	// video jobs match Resolution.
	Format models.Format
	// Resolution is the selected resolution for video jobs. Ignored for
	// audio jobs.
	Resolution string
	// Interval is the polling period. Warmup delays the first check, since
	// a job cannot plausibly finish the instant it was submitted.
	Interval time.Duration
	Warmup   time.Duration
	// OnTerminal is invoked at most once, with the terminal status, from the
	// watcher's own goroutine. Optional.
	OnTerminal func(models.JobStatus)

	Statuses StatusLister
	Logger   *logging.Logger
}

// Watcher polls one job. Create with Watch, dispose with Stop.
type Watcher struct {
	opts Options
	key  string

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu    sync.Mutex
	state State
	fired bool
}

// Watch starts polling and returns the running watcher. The first check
// happens after opts.Warmup, then every opts.Interval until a terminal state
// is observed, Stop is called, or ctx is canceled. Ticks run serially in one
// goroutine, so a slow response delays the next check instead of letting
// requests pile up.
func Watch(ctx context.Context, opts Options) *Watcher {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}

	wctx, cancel := context.WithCancel(ctx)
	w := &Watcher{
		opts:   opts,
		key:    opts.Format.ResolutionKey(opts.Resolution),
		ctx:    wctx,
		cancel: cancel,
		done:   make(chan struct{}),
		state:  StateInitializing,
	}

	go w.run()
	return w
}

// State returns the watcher's current view of the job.
func (w *Watcher) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Stop tears the watcher down: the warm-up timer and the recurring ticks are
// canceled and no callback fires afterwards. Safe to call more than once and
// after the watcher finished on its own.
func (w *Watcher) Stop() {
	w.cancel()
}

// Done is closed when the polling goroutine has exited, either because a
// terminal state was reached or because the watcher was stopped.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

func (w *Watcher) run() {
	defer close(w.done)
	defer w.cancel()

	log := w.opts.Logger.WithVideoID(w.opts.VideoID).WithResolution(w.key)

	warmup := time.NewTimer(w.opts.Warmup)
	defer warmup.Stop()

	select {
	case <-w.ctx.Done():
		return
	case <-warmup.C:
	}

	if w.tick(log) {
		return
	}

	ticker := time.NewTicker(w.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			if w.tick(log) {
				return
			}
		}
	}
}

// tick performs one poll. It returns true when polling should stop.
func (w *Watcher) tick(log *logging.Logger) bool {
	statuses, err := w.opts.Statuses.Status(w.ctx, w.opts.VideoID)
	if err != nil {
		// Best-effort: a transient failure is no update this tick.
		log.WithError(err).Debug("status poll failed, will retry")
		return false
	}

	record := models.FindStatus(statuses, w.key)
	if record == nil {
		// Not created yet; stay in the current state.
		return false
	}

	w.mu.Lock()
	if w.state.Terminal() {
		// Late observation after a terminal state: ignore.
		w.mu.Unlock()
		return true
	}

	prev := w.state
	next := stateFor(record.Status)
	w.state = next

	fire := next.Terminal() && !w.fired && w.ctx.Err() == nil
	if fire {
		w.fired = true
	}
	w.mu.Unlock()

	if prev != next {
		log.LogJobTransition(w.opts.VideoID, w.key, prev.String(), next.String())
	}

	if fire && w.opts.OnTerminal != nil {
		w.opts.OnTerminal(record.Status)
	}

	return next.Terminal()
}

func stateFor(status models.JobStatus) State {
	switch status {
	case models.JobStatusCompleted:
		return StateCompleted
	case models.JobStatusFailed:
		return StateFailed
	default:
		return StateProcessing
	}
}
