package engine

import (
	"sync"

	"github.com/roach88/glowprofile/internal/answer"
)

// EventType distinguishes between event kinds.
type EventType int

const (
	// EventAnswer sets (or clears, with a nil value) one question's answer.
	EventAnswer EventType = iota + 1
	// EventToggle adds or removes one item of a multi-choice answer.
	EventToggle
	// EventAdvance moves to the next question, gated by answer validity.
	EventAdvance
	// EventRetreat moves to the previous question.
	EventRetreat
	// EventJump activates a completed (or the active) question.
	EventJump
	// EventAutoAdvance is posted by the auto-advance timer.
	EventAutoAdvance
	// EventFlush is posted by the debounce timer.
	EventFlush
	// EventPull requests a pull from the shared profile.
	EventPull
	// EventClose flushes pending writes and ends the run.
	EventClose
)

var eventTypeNames = map[EventType]string{
	EventAnswer:      "answer",
	EventToggle:      "toggle",
	EventAdvance:     "advance",
	EventRetreat:     "retreat",
	EventJump:        "jump",
	EventAutoAdvance: "auto_advance",
	EventFlush:       "flush",
	EventPull:        "pull",
	EventClose:       "close",
}

// String returns the event's trace name.
func (t EventType) String() string {
	if name, ok := eventTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// Event is one unit of work for a session's processing loop.
type Event struct {
	Type       EventType
	QuestionID string       // answer, toggle
	Value      answer.Value // answer
	Item       string       // toggle
	Index      int          // jump, auto_advance
	Generation uint64       // auto_advance, flush
}

// eventQueue is a thread-safe FIFO queue for events.
//
// Presentation code enqueues from its own goroutine, timers enqueue from
// theirs, and the session's loop dequeues. The queue is unbounded so an
// enqueue never blocks a timer callback.
//
// The signal channel (buffered, size 1) lets the loop wait with a context;
// it is closed by Close to wake the loop.
type eventQueue struct {
	mu     sync.Mutex
	events []Event
	closed bool
	signal chan struct{}
}

func newEventQueue() *eventQueue {
	return &eventQueue{
		events: make([]Event, 0, 16),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds an event to the back of the queue.
// Returns false if the queue is closed.
func (q *eventQueue) Enqueue(e Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.events = append(q.events, e)

	// Non-blocking: the buffer of 1 coalesces signals.
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue removes and returns the front event without blocking.
// Returns (Event{}, false) if the queue is empty.
func (q *eventQueue) TryDequeue() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return Event{}, false
	}

	e := q.events[0]
	// Release the slot so the answer value can be collected.
	q.events[0] = Event{}
	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}

	return e, true
}

// Wait returns a channel that signals when events may be available.
func (q *eventQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Closed reports whether Close has been called.
func (q *eventQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Close stops further enqueues and wakes any waiter.
// Events already queued can still be dequeued.
func (q *eventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
