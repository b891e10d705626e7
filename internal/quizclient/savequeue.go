package quizclient

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"
)

const (
	defaultDebounce    = 500 * time.Millisecond
	defaultSaveTimeout = 2 * time.Second
)

var ErrQueueClosed = errors.New("save queue closed")

// PendingAnswer is a locally buffered answer selection awaiting persistence.
type PendingAnswer struct {
	QuestionID       int64
	SelectedOptionID int64
}

// SaveFunc persists a single answer. SaveQueue calls it sequentially, one
// answer at a time, never concurrently with itself.
type SaveFunc func(ctx context.Context, answer PendingAnswer) error

type SaveQueueConfig struct {
	// Debounce is how long the queue waits after the latest selection before
	// flushing. Every new selection resets the wait.
	Debounce time.Duration
	// SaveTimeout bounds each individual save call.
	SaveTimeout time.Duration
}

// SaveQueue buffers answer selections and persists them in debounced batches.
// Re-selecting an answer for a question the queue already holds replaces the
// buffered entry, so at most one answer per question is ever in the queue.
// Flushes are single-flight: a timer firing while a flush is running does not
// start a second one. A batch that fails mid-send is requeued at the front so
// ordering survives transient errors; a Forbidden or Conflict response means
// the attempt is no longer writable, which permanently stops the queue.
type SaveQueue struct {
	save        SaveFunc
	debounce    time.Duration
	saveTimeout time.Duration

	mu       sync.Mutex
	idle     *sync.Cond
	pending  []PendingAnswer
	timer    *time.Timer
	inFlight bool
	terminal error
	lastErr  error
	closed   bool
}

func NewSaveQueue(save SaveFunc, cfg SaveQueueConfig) *SaveQueue {
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	saveTimeout := cfg.SaveTimeout
	if saveTimeout <= 0 {
		saveTimeout = defaultSaveTimeout
	}

	q := &SaveQueue{
		save:        save,
		debounce:    debounce,
		saveTimeout: saveTimeout,
	}
	q.idle = sync.NewCond(&q.mu)
	return q
}

// Enqueue records a selection and (re)arms the debounce timer. It returns the
// terminal error if the queue has been stopped by a Forbidden or Conflict
// response, and ErrQueueClosed after Close.
func (q *SaveQueue) Enqueue(questionID, selectedOptionID int64) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.terminal != nil {
		return q.terminal
	}
	if q.closed {
		return ErrQueueClosed
	}

	kept := q.pending[:0]
	for _, answer := range q.pending {
		if answer.QuestionID != questionID {
			kept = append(kept, answer)
		}
	}
	q.pending = append(kept, PendingAnswer{
		QuestionID:       questionID,
		SelectedOptionID: selectedOptionID,
	})

	if q.timer != nil {
		q.timer.Stop()
	}
	q.timer = time.AfterFunc(q.debounce, q.timerFlush)
	return nil
}

func (q *SaveQueue) timerFlush() {
	_ = q.Flush(context.Background())
}

// Flush synchronously drains the queue. If a flush is already running it
// waits for that flush to finish before taking its own snapshot, so two
// flushes never interleave. On a mid-batch failure the unsent remainder,
// failed answer included, goes back to the front of the queue; answers
// re-selected while the batch was in flight keep their newer value.
func (q *SaveQueue) Flush(ctx context.Context) error {
	q.mu.Lock()
	for q.inFlight {
		q.idle.Wait()
	}
	if q.terminal != nil {
		q.mu.Unlock()
		return q.terminal
	}
	if len(q.pending) == 0 {
		q.mu.Unlock()
		return nil
	}

	batch := q.pending
	q.pending = nil
	q.inFlight = true
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
	q.mu.Unlock()

	sent := len(batch)
	var flushErr error
	for i, answer := range batch {
		if err := q.saveOne(ctx, answer); err != nil {
			sent = i
			flushErr = err
			break
		}
	}

	q.mu.Lock()
	q.inFlight = false
	switch {
	case flushErr == nil:
		q.lastErr = nil
	case isTerminalSaveError(flushErr):
		q.terminal = flushErr
		q.pending = nil
	default:
		q.lastErr = flushErr
		q.requeueFront(batch[sent:])
	}
	q.idle.Broadcast()
	q.mu.Unlock()
	return flushErr
}

// Close stops the debounce timer, performs a final flush, and rejects all
// further enqueues.
func (q *SaveQueue) Close(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
	q.mu.Unlock()

	return q.Flush(ctx)
}

// Err reports the error that stopped the queue, or the most recent transient
// flush failure still awaiting a retry.
func (q *SaveQueue) Err() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.terminal != nil {
		return q.terminal
	}
	return q.lastErr
}

// Pending reports how many answers are buffered and not yet persisted.
func (q *SaveQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (q *SaveQueue) saveOne(ctx context.Context, answer PendingAnswer) error {
	ctx, cancel := context.WithTimeout(ctx, q.saveTimeout)
	defer cancel()
	return q.save(ctx, answer)
}

// requeueFront puts the unsent remainder of a failed batch back at the head
// of the queue, dropping any answer superseded by a newer selection that
// arrived while the batch was in flight.
func (q *SaveQueue) requeueFront(failed []PendingAnswer) {
	if len(failed) == 0 {
		return
	}

	superseded := make(map[int64]bool, len(q.pending))
	for _, answer := range q.pending {
		superseded[answer.QuestionID] = true
	}

	merged := make([]PendingAnswer, 0, len(failed)+len(q.pending))
	for _, answer := range failed {
		if !superseded[answer.QuestionID] {
			merged = append(merged, answer)
		}
	}
	q.pending = append(merged, q.pending...)
}

func isTerminalSaveError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusForbidden || apiErr.StatusCode == http.StatusConflict
}
