package bus

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coda-dashboard/internal/events"
)

func collect(received *[]events.Envelope, mu *sync.Mutex) Handler {
	return func(env events.Envelope) {
		mu.Lock()
		*received = append(*received, env)
		mu.Unlock()
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestPublishDeliversToTypeSubscriber(t *testing.T) {
	b := New(16)
	defer b.Shutdown()

	var mu sync.Mutex
	var received []events.Envelope
	b.Subscribe(string(events.LLMResult), collect(&received, &mu))

	b.Publish(events.Envelope{Type: events.LLMResult, Seq: 1})
	b.Publish(events.Envelope{Type: events.STTResult, Seq: 2})

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 1
	})

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, events.LLMResult, received[0].Type)
}

func TestAllEventsSubscriber(t *testing.T) {
	b := New(16)
	defer b.Shutdown()

	var mu sync.Mutex
	var received []events.Envelope
	b.Subscribe(AllEvents, collect(&received, &mu))

	b.Publish(events.Envelope{Type: events.LLMResult, Seq: 1})
	b.Publish(events.Envelope{Type: events.STTResult, Seq: 2})

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 2
	})

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, int64(1), received[0].Seq)
	assert.Equal(t, int64(2), received[1].Seq)
}

func TestUnsubscribe(t *testing.T) {
	b := New(16)
	defer b.Shutdown()

	var mu sync.Mutex
	var received []events.Envelope
	token := b.Subscribe(string(events.LLMResult), collect(&received, &mu))
	b.Unsubscribe(string(events.LLMResult), token)

	b.Publish(events.Envelope{Type: events.LLMResult})
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Empty(t, received)
}

func TestPanickingHandlerDoesNotKillDispatch(t *testing.T) {
	b := New(16)
	defer b.Shutdown()

	var mu sync.Mutex
	var received []events.Envelope
	b.Subscribe(string(events.LLMResult), func(events.Envelope) { panic("panel bug") })
	b.Subscribe(string(events.LLMResult), collect(&received, &mu))

	b.Publish(events.Envelope{Type: events.LLMResult})

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 1
	})
}

func TestPublishAfterShutdown(t *testing.T) {
	b := New(4)
	b.Shutdown()

	require.NotPanics(t, func() {
		b.Publish(events.Envelope{Type: events.SystemInfo})
	})
}

func TestShutdownDrainsBuffered(t *testing.T) {
	b := New(64)

	var mu sync.Mutex
	var received []events.Envelope
	b.Subscribe(AllEvents, collect(&received, &mu))

	for i := 0; i < 10; i++ {
		b.Publish(events.Envelope{Type: events.SystemInfo, Seq: int64(i + 1)})
	}
	b.Shutdown()

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, received, 10)
}
