package fleet

import (
	"fmt"
	"sort"
	"sync"
)

// keyedMutex serializes state-machine operations per robot id and per station
// id. Two concurrent assigns against the same station must not both observe
// it idle; the store transaction alone does not prevent that, so the engine
// takes these locks around every mutating operation.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedMutex) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	return m
}

// LockKeys acquires all keys in sorted order so overlapping operations cannot
// deadlock. The returned function releases them in reverse order.
func (k *keyedMutex) LockKeys(keys ...string) func() {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	held := make([]*sync.Mutex, 0, len(sorted))
	for i, key := range sorted {
		if i > 0 && key == sorted[i-1] {
			continue
		}
		m := k.get(key)
		m.Lock()
		held = append(held, m)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}

func robotKey(id uint) string   { return fmt.Sprintf("robot:%d", id) }
func stationKey(id uint) string { return fmt.Sprintf("station:%d", id) }
