package scoring

import "sync"

// keyedMutex serializes work per key. The ledger keys it by
// (user, game, level) so concurrent score recordings for the same triple
// cannot interleave their count-then-create sequence.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key and returns its unlock func. Entries are
// kept for the process lifetime; the key space is bounded by the number of
// (user, game, level) triples seen.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
