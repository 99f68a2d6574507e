package engine

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventQueue_FIFO(t *testing.T) {
	q := newEventQueue()

	for _, id := range []string{"a", "b", "c"} {
		require.True(t, q.Enqueue(Event{Type: EventAnswer, QuestionID: id}))
	}

	for _, want := range []string{"a", "b", "c"} {
		e, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, want, e.QuestionID)
	}

	_, ok := q.TryDequeue()
	assert.False(t, ok, "dequeue from empty queue should return false")
}

func TestEventQueue_Len(t *testing.T) {
	q := newEventQueue()
	assert.Equal(t, 0, q.Len())

	q.Enqueue(Event{Type: EventAdvance})
	q.Enqueue(Event{Type: EventRetreat})
	assert.Equal(t, 2, q.Len())

	q.TryDequeue()
	assert.Equal(t, 1, q.Len())
}

func TestEventQueue_CloseRejectsEnqueue(t *testing.T) {
	q := newEventQueue()
	q.Enqueue(Event{Type: EventAdvance})
	q.Close()
	q.Close() // idempotent

	assert.True(t, q.Closed())
	assert.False(t, q.Enqueue(Event{Type: EventRetreat}))

	e, ok := q.TryDequeue()
	require.True(t, ok, "queued events survive Close")
	assert.Equal(t, EventAdvance, e.Type)
}

func TestEventQueue_CloseWakesWaiter(t *testing.T) {
	q := newEventQueue()

	done := make(chan struct{})
	go func() {
		<-q.Wait()
		close(done)
	}()

	q.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("waiter not woken by Close")
	}
}

func TestEventQueue_ConcurrentProducers(t *testing.T) {
	q := newEventQueue()
	const producers, perProducer = 10, 100

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Enqueue(Event{Type: EventAnswer, QuestionID: fmt.Sprintf("%d-%d", p, i)})
			}
		}(p)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for {
		e, ok := q.TryDequeue()
		if !ok {
			break
		}
		seen[e.QuestionID] = true
	}
	assert.Len(t, seen, producers*perProducer)
}

func TestEventType_String(t *testing.T) {
	assert.Equal(t, "auto_advance", EventAutoAdvance.String())
	assert.Equal(t, "unknown", EventType(99).String())
}
