package qsim

import (
	"sync"
	"time"
)

// Value wraps a job result with metadata
type Value struct {
	Value     any
	Error     error
	CreatedAt time.Time
}

/*
Space holds finished job results until someone awaits them. Await may be
called before or after Store; either way the caller's channel receives the
value exactly once and the space forgets it.
*/
type Space struct {
	mu      sync.Mutex
	values  map[string]Value
	waiting map[string][]chan Value
}

func NewSpace() *Space {
	return &Space{
		values:  make(map[string]Value),
		waiting: make(map[string][]chan Value),
	}
}

// Store stores a value and hands it to any waiting channels
func (s *Space) Store(id string, value any, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := Value{
		Value:     value,
		Error:     err,
		CreatedAt: time.Now(),
	}

	channels, ok := s.waiting[id]
	if !ok {
		s.values[id] = v
		return
	}

	for _, ch := range channels {
		ch <- v
		close(ch)
	}
	delete(s.waiting, id)
}

// Await returns a channel that will receive the value when it's available
func (s *Space) Await(id string) chan Value {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Value, 1)

	if v, ok := s.values[id]; ok {
		ch <- v
		close(ch)
		delete(s.values, id)
		return ch
	}

	s.waiting[id] = append(s.waiting[id], ch)
	return ch
}

// pending reports how many ids have values or waiters outstanding.
func (s *Space) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values) + len(s.waiting)
}
