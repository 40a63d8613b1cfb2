// Package registry provides a generic, thread-safe store of named items.
package registry

import (
	"fmt"
	"sync"
)

// Store holds items keyed by name. Writes are serialized behind a mutex;
// a Put with an existing name overwrites the prior item in place, it never
// creates a duplicate entry.
type Store[T any] struct {
	mu    sync.RWMutex
	items map[string]T
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{
		items: make(map[string]T),
	}
}

// Put stores the item under name, replacing any existing item with that name.
func (s *Store[T]) Put(name string, item T) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[name] = item
	return nil
}

func (s *Store[T]) Get(name string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.items[name]
	return item, exists
}

// List returns a fresh slice holding every stored item. The slice is a
// snapshot; later mutation of the store does not affect it.
func (s *Store[T]) List() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]T, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, item)
	}
	return items
}

// Names returns the stored names in unspecified order.
func (s *Store[T]) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.items))
	for name := range s.items {
		names = append(names, name)
	}
	return names
}

func (s *Store[T]) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[name]; !exists {
		return fmt.Errorf("item '%s' not found", name)
	}

	delete(s.items, name)
	return nil
}

func (s *Store[T]) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.items)
}

func (s *Store[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[string]T)
}
