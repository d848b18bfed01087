package pubsub

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Broker is a simple in-memory pub/sub system. The live score feed uses one
// topic per game: the ledger publishes an event whenever a score is recorded
// and websocket clients subscribed to the game receive it.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[string][]chan []byte // topic -> list of subscriber channels
	cache       map[string][][]byte      // topic -> recent messages, replayed to new subscribers
}

// cacheLimit bounds the per-topic replay buffer.
const cacheLimit = 64

// ScoreEvent is the wire format of one live score message.
type ScoreEvent struct {
	GameID     string `json:"game_id"`
	UserID     string `json:"user_id"`
	Level      int    `json:"level"`
	Value      int    `json:"value"`
	GamePlayed int    `json:"game_played"`
}

func New() *Broker {
	return &Broker{
		subscribers: make(map[string][]chan []byte),
		cache:       make(map[string][][]byte),
	}
}

// Subscribe subscribes to a topic. It first sends the cached recent messages
// to the new subscriber, then adds the subscriber to receive live messages.
func (b *Broker) Subscribe(topic string) (<-chan []byte, func()) {
	b.mu.Lock()

	ch := make(chan []byte, 128)

	// Snapshot the history inside the lock; deliver it off the broker's
	// goroutine so a slow client cannot block Subscribe.
	history := b.cache[topic]

	go func() {
		for _, msg := range history {
			ch <- msg
		}
	}()

	b.subscribers[topic] = append(b.subscribers[topic], ch)
	b.mu.Unlock()

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		subscribers := b.subscribers[topic]
		for i, sub := range subscribers {
			if sub == ch {
				b.subscribers[topic] = append(subscribers[:i], subscribers[i+1:]...)
				close(ch)
				break
			}
		}
		zap.S().Debugf("unsubscribed from topic %s", topic)
	}

	zap.S().Debugf("new subscription to topic %s, sent %d cached messages", topic, len(history))
	return ch, unsubscribe
}

// Publish publishes a message to all subscribers of a topic and caches it.
func (b *Broker) Publish(topic string, msg []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.cache[topic] = append(b.cache[topic], msg)
	if len(b.cache[topic]) > cacheLimit {
		b.cache[topic] = b.cache[topic][len(b.cache[topic])-cacheLimit:]
	}

	// Broadcast to live subscribers without blocking: a full subscriber
	// channel drops the message for that subscriber only.
	for _, ch := range b.subscribers[topic] {
		select {
		case ch <- msg:
		default:
		}
	}
}

// PublishScore marshals and publishes a score event on the game's topic.
func (b *Broker) PublishScore(ev ScoreEvent) {
	bytes, err := json.Marshal(ev)
	if err != nil {
		zap.S().Warnf("failed to marshal score event: %v", err)
		return
	}
	b.Publish(ev.GameID, bytes)
}

// CloseTopic closes all subscriber channels and clears the cache for a topic.
func (b *Broker) CloseTopic(topic string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if subscribers, ok := b.subscribers[topic]; ok {
		for _, ch := range subscribers {
			close(ch)
		}
		delete(b.subscribers, topic)
		delete(b.cache, topic)
		zap.S().Infof("closed pubsub topic %s and cleared cache", topic)
	}
}
