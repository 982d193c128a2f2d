package lock

import (
	"sort"
	"sync"
)

// Keyed provides a mutex per string key. Profile embedding mutations are
// serialized per profile, and merges lock both instances involved.
//
// Mutexes are retained for the lifetime of the Keyed instance; key
// cardinality here is bounded by active profiles/instances per process.
type Keyed struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewKeyed creates a new keyed mutex set
func NewKeyed() *Keyed {
	return &Keyed{
		locks: make(map[string]*sync.Mutex),
	}
}

func (k *Keyed) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	return m
}

// Lock acquires the mutex for key and returns its unlock function
func (k *Keyed) Lock(key string) func() {
	m := k.get(key)
	m.Lock()
	return m.Unlock
}

// LockPair acquires the mutexes for both keys in lexicographic order so
// that concurrent pairwise locks cannot deadlock. Locking the same key
// twice acquires it once.
func (k *Keyed) LockPair(a, b string) func() {
	if a == b {
		return k.Lock(a)
	}
	keys := []string{a, b}
	sort.Strings(keys)

	first := k.get(keys[0])
	second := k.get(keys[1])
	first.Lock()
	second.Lock()
	return func() {
		second.Unlock()
		first.Unlock()
	}
}
