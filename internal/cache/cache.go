// Package cache provides a process-wide string-keyed store with per-entry
// expiry and a hard entry cap. The counters that used to live in bare global
// maps (IP rate buckets, daily word counters, detection results) sit behind
// this store so growth is bounded by count as well as time.
package cache

import (
	"container/list"
	"sync"
	"time"
)

type entry[V any] struct {
	key       string
	value     V
	expiresAt time.Time
}

// Store is a TTL map with LRU eviction once maxEntries is reached. Expiry is
// lazy: an entry is dropped when it is next observed past its deadline, not
// proactively swept. Safe for concurrent use.
type Store[V any] struct {
	mu         sync.Mutex
	maxEntries int
	ll         *list.List
	items      map[string]*list.Element
}

// New creates a store holding at most maxEntries entries. A non-positive
// cap defaults to 10000.
func New[V any](maxEntries int) *Store[V] {
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	return &Store[V]{
		maxEntries: maxEntries,
		ll:         list.New(),
		items:      make(map[string]*list.Element),
	}
}

// Get returns the live value for key. An expired entry is deleted and
// reported as a miss.
func (s *Store[V]) Get(key string, now time.Time) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero V
	el, ok := s.items[key]
	if !ok {
		return zero, false
	}
	e := el.Value.(*entry[V])
	if now.After(e.expiresAt) {
		s.removeElement(el)
		return zero, false
	}
	s.ll.MoveToFront(el)
	return e.value, true
}

// Set stores value under key until expiresAt, evicting the least recently
// used entry if the cap is hit.
func (s *Store[V]) Set(key string, value V, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set(key, value, expiresAt)
}

// Update applies fn to the current live value (zero value and ok=false on a
// miss or expired entry) under the store lock, so read-modify-write cycles
// on counters are not interleaved within this process.
func (s *Store[V]) Update(key string, now time.Time, fn func(V, bool) (V, time.Time)) V {
	s.mu.Lock()
	defer s.mu.Unlock()
	var prev V
	ok := false
	if el, found := s.items[key]; found {
		e := el.Value.(*entry[V])
		if now.After(e.expiresAt) {
			s.removeElement(el)
		} else {
			prev = e.value
			ok = true
		}
	}
	next, expiresAt := fn(prev, ok)
	s.set(key, next, expiresAt)
	return next
}

// Delete removes key if present.
func (s *Store[V]) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if el, ok := s.items[key]; ok {
		s.removeElement(el)
	}
}

// Len reports the number of stored entries, including not-yet-observed
// expired ones.
func (s *Store[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ll.Len()
}

func (s *Store[V]) set(key string, value V, expiresAt time.Time) {
	if el, ok := s.items[key]; ok {
		e := el.Value.(*entry[V])
		e.value = value
		e.expiresAt = expiresAt
		s.ll.MoveToFront(el)
		return
	}
	el := s.ll.PushFront(&entry[V]{key: key, value: value, expiresAt: expiresAt})
	s.items[key] = el
	for s.ll.Len() > s.maxEntries {
		s.removeElement(s.ll.Back())
	}
}

func (s *Store[V]) removeElement(el *list.Element) {
	e := el.Value.(*entry[V])
	s.ll.Remove(el)
	delete(s.items, e.key)
}
