package pubsub

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recv(t *testing.T, ch <-chan []byte) []byte {
	t.Helper()
	select {
	case msg, ok := <-ch:
		require.True(t, ok, "channel closed before a message arrived")
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a message")
		return nil
	}
}

func TestPublishReachesSubscribers(t *testing.T) {
	b := New()
	ch1, unsub1 := b.Subscribe("game-1")
	defer unsub1()
	ch2, unsub2 := b.Subscribe("game-1")
	defer unsub2()

	b.Publish("game-1", []byte("hello"))

	assert.Equal(t, "hello", string(recv(t, ch1)))
	assert.Equal(t, "hello", string(recv(t, ch2)))
}

func TestTopicsAreIsolated(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("game-1")
	defer unsub()

	b.Publish("game-2", []byte("elsewhere"))

	select {
	case msg := <-ch:
		t.Fatalf("unexpected message %q on unrelated topic", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestLateSubscriberReplaysCache(t *testing.T) {
	b := New()
	b.Publish("game-1", []byte("first"))
	b.Publish("game-1", []byte("second"))

	ch, unsub := b.Subscribe("game-1")
	defer unsub()

	assert.Equal(t, "first", string(recv(t, ch)))
	assert.Equal(t, "second", string(recv(t, ch)))
}

func TestCacheIsBounded(t *testing.T) {
	b := New()
	for i := 0; i < cacheLimit+10; i++ {
		b.Publish("game-1", []byte{byte(i)})
	}

	b.mu.RLock()
	size := len(b.cache["game-1"])
	b.mu.RUnlock()
	assert.Equal(t, cacheLimit, size)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("game-1")
	unsub()

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "channel must be closed after unsubscribe")
	case <-time.After(time.Second):
		t.Fatal("channel not closed after unsubscribe")
	}

	// Publishing after the last unsubscribe must not panic.
	b.Publish("game-1", []byte("into the void"))
}

func TestCloseTopic(t *testing.T) {
	b := New()
	ch, _ := b.Subscribe("game-1")
	b.Publish("game-1", []byte("cached"))

	// Drain the live copy so only the close remains observable.
	recv(t, ch)
	b.CloseTopic("game-1")

	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("channel not closed by CloseTopic")
		}
	}
}

func TestPublishScoreMarshalsEvent(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("game-1")
	defer unsub()

	b.PublishScore(ScoreEvent{
		GameID:     "game-1",
		UserID:     "user-1",
		Level:      2,
		Value:      750,
		GamePlayed: 3,
	})

	var ev ScoreEvent
	require.NoError(t, json.Unmarshal(recv(t, ch), &ev))
	assert.Equal(t, "user-1", ev.UserID)
	assert.Equal(t, 750, ev.Value)
	assert.Equal(t, 3, ev.GamePlayed)
}
