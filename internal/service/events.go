package service

import "sync"

// subscribers is a minimal observer registry: multiple independent handlers,
// safe removal via the closure returned by subscribe.
type subscribers[T any] struct {
	mu       sync.Mutex
	nextID   int
	handlers map[int]func(T)
}

func newSubscribers[T any]() *subscribers[T] {
	return &subscribers[T]{handlers: make(map[int]func(T))}
}

func (s *subscribers[T]) subscribe(handler func(T)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.handlers[id] = handler

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.handlers, id)
	}
}

// notify invokes every registered handler with v. Handlers run outside the
// lock so a handler may unsubscribe itself or register new subscribers.
func (s *subscribers[T]) notify(v T) {
	s.mu.Lock()
	snapshot := make([]func(T), 0, len(s.handlers))
	for _, h := range s.handlers {
		snapshot = append(snapshot, h)
	}
	s.mu.Unlock()

	for _, h := range snapshot {
		h(v)
	}
}
