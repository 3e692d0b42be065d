// Package state holds the last input text and the result computed from it.
package state

import "sync/atomic"

// Snapshot pairs an input with the output computed from it. A Snapshot is
// never mutated after it has been stored.
type Snapshot struct {
	Input  string
	Output string
	// Rev increases by one on every Set.
	Rev uint64
}

// Store is a passive holder for the current Snapshot. It has one writer;
// any number of goroutines may read.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore returns a store seeded with input and an empty output.
func NewStore(input string) *Store {
	s := &Store{}
	s.current.Store(&Snapshot{Input: input})
	return s
}

// Get returns the current snapshot by value.
func (s *Store) Get() Snapshot {
	return *s.current.Load()
}

// Set replaces the snapshot wholesale and returns the stored value.
func (s *Store) Set(input, output string) Snapshot {
	prev := s.current.Load()
	next := &Snapshot{Input: input, Output: output, Rev: prev.Rev + 1}
	s.current.Store(next)
	return *next
}
