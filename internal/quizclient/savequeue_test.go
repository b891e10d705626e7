package quizclient

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"
)

type saveRecorder struct {
	mu    sync.Mutex
	saves []PendingAnswer
	fail  func(answer PendingAnswer) error
}

func (r *saveRecorder) save(_ context.Context, answer PendingAnswer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		if err := r.fail(answer); err != nil {
			return err
		}
	}
	r.saves = append(r.saves, answer)
	return nil
}

func (r *saveRecorder) recorded() []PendingAnswer {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]PendingAnswer, len(r.saves))
	copy(out, r.saves)
	return out
}

func waitForSaves(t *testing.T, recorder *saveRecorder, want int) []PendingAnswer {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		saves := recorder.recorded()
		if len(saves) >= want {
			return saves
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d saves, got %v", want, recorder.recorded())
	return nil
}

func TestEnqueueCoalescesPerQuestion(t *testing.T) {
	recorder := &saveRecorder{}
	queue := NewSaveQueue(recorder.save, SaveQueueConfig{Debounce: 10 * time.Millisecond})

	if err := queue.Enqueue(1, 100); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	if err := queue.Enqueue(2, 200); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	// Re-selecting question 1 replaces the buffered entry and moves it after
	// question 2.
	if err := queue.Enqueue(1, 101); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	saves := waitForSaves(t, recorder, 2)
	want := []PendingAnswer{
		{QuestionID: 2, SelectedOptionID: 200},
		{QuestionID: 1, SelectedOptionID: 101},
	}
	if len(saves) != 2 || saves[0] != want[0] || saves[1] != want[1] {
		t.Fatalf("saves = %v, want %v", saves, want)
	}
	if queue.Pending() != 0 {
		t.Fatalf("pending = %d, want 0", queue.Pending())
	}
}

func TestFlushSendsImmediately(t *testing.T) {
	recorder := &saveRecorder{}
	queue := NewSaveQueue(recorder.save, SaveQueueConfig{Debounce: time.Hour})

	if err := queue.Enqueue(1, 100); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	if err := queue.Flush(context.Background()); err != nil {
		t.Fatalf("flush failed: %v", err)
	}

	saves := recorder.recorded()
	if len(saves) != 1 || saves[0].SelectedOptionID != 100 {
		t.Fatalf("saves = %v", saves)
	}
}

func TestFailedBatchRequeuedAtFront(t *testing.T) {
	transient := errors.New("connection reset")
	failing := true
	recorder := &saveRecorder{}
	recorder.fail = func(answer PendingAnswer) error {
		if failing && answer.QuestionID == 2 {
			return transient
		}
		return nil
	}
	queue := NewSaveQueue(recorder.save, SaveQueueConfig{Debounce: time.Hour})

	for i := int64(1); i <= 3; i++ {
		if err := queue.Enqueue(i, i*100); err != nil {
			t.Fatalf("enqueue failed: %v", err)
		}
	}

	if err := queue.Flush(context.Background()); !errors.Is(err, transient) {
		t.Fatalf("flush error = %v, want %v", err, transient)
	}
	// Question 1 was sent, questions 2 and 3 went back to the front.
	if queue.Pending() != 2 {
		t.Fatalf("pending = %d, want 2", queue.Pending())
	}
	if err := queue.Err(); !errors.Is(err, transient) {
		t.Fatalf("Err() = %v, want %v", err, transient)
	}

	failing = false
	if err := queue.Flush(context.Background()); err != nil {
		t.Fatalf("retry flush failed: %v", err)
	}

	saves := recorder.recorded()
	want := []PendingAnswer{
		{QuestionID: 1, SelectedOptionID: 100},
		{QuestionID: 2, SelectedOptionID: 200},
		{QuestionID: 3, SelectedOptionID: 300},
	}
	if len(saves) != len(want) {
		t.Fatalf("saves = %v, want %v", saves, want)
	}
	for i := range want {
		if saves[i] != want[i] {
			t.Fatalf("saves[%d] = %v, want %v", i, saves[i], want[i])
		}
	}
	if err := queue.Err(); err != nil {
		t.Fatalf("Err() after recovery = %v, want nil", err)
	}
}

func TestNewerSelectionSurvivesRequeue(t *testing.T) {
	transient := errors.New("timeout")
	failing := true
	recorder := &saveRecorder{}
	recorder.fail = func(PendingAnswer) error {
		if failing {
			return transient
		}
		return nil
	}
	queue := NewSaveQueue(recorder.save, SaveQueueConfig{Debounce: time.Hour})

	if err := queue.Enqueue(1, 100); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	if err := queue.Flush(context.Background()); !errors.Is(err, transient) {
		t.Fatalf("flush error = %v", err)
	}

	// Re-select before the retry: the requeued old value must not win.
	if err := queue.Enqueue(1, 101); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	failing = false
	if err := queue.Flush(context.Background()); err != nil {
		t.Fatalf("retry flush failed: %v", err)
	}

	saves := recorder.recorded()
	if len(saves) != 1 || saves[0].SelectedOptionID != 101 {
		t.Fatalf("saves = %v, want single save with option 101", saves)
	}
}

func TestForbiddenAndConflictStopTheQueue(t *testing.T) {
	for _, status := range []int{http.StatusForbidden, http.StatusConflict} {
		terminal := &APIError{StatusCode: status, Message: "attempt closed"}
		recorder := &saveRecorder{}
		recorder.fail = func(PendingAnswer) error { return terminal }
		queue := NewSaveQueue(recorder.save, SaveQueueConfig{Debounce: time.Hour})

		if err := queue.Enqueue(1, 100); err != nil {
			t.Fatalf("enqueue failed: %v", err)
		}
		if err := queue.Flush(context.Background()); !errors.Is(err, error(terminal)) {
			t.Fatalf("status %d: flush error = %v, want %v", status, err, terminal)
		}

		if queue.Pending() != 0 {
			t.Fatalf("status %d: pending = %d, want 0 after terminal error", status, queue.Pending())
		}
		if err := queue.Enqueue(2, 200); !errors.Is(err, error(terminal)) {
			t.Fatalf("status %d: enqueue after terminal = %v, want %v", status, err, terminal)
		}
	}
}

func TestFlushesAreSingleFlight(t *testing.T) {
	var mu sync.Mutex
	active := 0
	maxActive := 0
	total := 0
	save := func(_ context.Context, _ PendingAnswer) error {
		mu.Lock()
		active++
		if active > maxActive {
			maxActive = active
		}
		mu.Unlock()

		time.Sleep(20 * time.Millisecond)

		mu.Lock()
		active--
		total++
		mu.Unlock()
		return nil
	}
	queue := NewSaveQueue(save, SaveQueueConfig{Debounce: time.Hour})

	for i := int64(1); i <= 4; i++ {
		if err := queue.Enqueue(i, i); err != nil {
			t.Fatalf("enqueue failed: %v", err)
		}
	}

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = queue.Flush(context.Background())
		}()
	}
	wg.Wait()

	if maxActive != 1 {
		t.Fatalf("max concurrent saves = %d, want 1", maxActive)
	}
	if total != 4 {
		t.Fatalf("saves = %d, want all 4 exactly once", total)
	}
}

func TestCloseFlushesAndRejectsFurtherEnqueues(t *testing.T) {
	recorder := &saveRecorder{}
	queue := NewSaveQueue(recorder.save, SaveQueueConfig{Debounce: time.Hour})

	if err := queue.Enqueue(1, 100); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	if err := queue.Close(context.Background()); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if len(recorder.recorded()) != 1 {
		t.Fatalf("saves = %v, want final flush to send the answer", recorder.recorded())
	}
	if err := queue.Enqueue(2, 200); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("enqueue after close = %v, want ErrQueueClosed", err)
	}
}
