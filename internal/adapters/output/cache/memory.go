package cache

import (
	"container/list"
	"sync"

	"appliancebot/internal/domain"
)

// memoryStore keeps entries in an LRU list bounded by capacity. Reads
// promote the entry, inserts evict from the tail once full.
type memoryStore struct {
	mu       sync.Mutex
	capacity int
	elements map[string]*list.Element
	order    *list.List // front is most recently used
}

func newMemoryStore(capacity int) *memoryStore {
	return &memoryStore{
		capacity: capacity,
		elements: make(map[string]*list.Element, capacity),
		order:    list.New(),
	}
}

func (s *memoryStore) Get(key string) (*domain.CacheEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	element, ok := s.elements[key]
	if !ok {
		return nil, nil
	}
	s.order.MoveToFront(element)

	entry := element.Value.(domain.CacheEntry)
	return &entry, nil
}

func (s *memoryStore) Put(entry domain.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if element, ok := s.elements[entry.Key]; ok {
		element.Value = entry
		s.order.MoveToFront(element)
		return nil
	}

	s.elements[entry.Key] = s.order.PushFront(entry)
	for s.order.Len() > s.capacity {
		oldest := s.order.Back()
		s.order.Remove(oldest)
		delete(s.elements, oldest.Value.(domain.CacheEntry).Key)
	}
	return nil
}

func (s *memoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if element, ok := s.elements[key]; ok {
		s.order.Remove(element)
		delete(s.elements, key)
	}
	return nil
}

func (s *memoryStore) Close() error {
	return nil
}
