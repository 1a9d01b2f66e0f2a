// Package state holds the generic container the session and job stores
// are built on. State changes only through reducers applied under a
// lock, so readers never observe a half-applied update.
package state

import "sync"

// Reducer derives the next state from the current one. It must not block
// and must not retain references to mutable parts of the input.
type Reducer[S any] func(S) S

// Store is a mutex-guarded value of type S with change notification.
type Store[S any] struct {
	mu      sync.Mutex
	state   S
	version uint64
	nextID  int
	subs    map[int]func(S)

	// notifyMu serializes delivery; delivered is the newest version
	// subscribers have seen.
	notifyMu  sync.Mutex
	delivered uint64
}

func NewStore[S any](initial S) *Store[S] {
	return &Store[S]{state: initial, subs: make(map[int]func(S))}
}

// Get returns the current state.
func (s *Store[S]) Get() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies r atomically and notifies subscribers with the
// resulting state once the state lock has been released.
//
// Notifications are delivered one at a time and never go backwards: when
// dispatches overlap, a snapshot older than one already delivered is
// skipped, so the last snapshot a subscriber sees is always the current
// state. Subscribers may call Get but must not Dispatch on the same store.
func (s *Store[S]) Dispatch(r Reducer[S]) S {
	s.mu.Lock()
	s.state = r(s.state)
	s.version++
	next, version := s.state, s.version
	s.mu.Unlock()

	s.notify(next, version)
	return next
}

func (s *Store[S]) notify(next S, version uint64) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	if version <= s.delivered {
		return
	}
	s.delivered = version

	s.mu.Lock()
	subs := make([]func(S), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
}

// DispatchIf applies r only when ok reports true for the current state.
// The check and the update happen under the same lock.
func (s *Store[S]) DispatchIf(ok func(S) bool, r Reducer[S]) (S, bool) {
	applied := false
	next := s.Dispatch(func(cur S) S {
		if !ok(cur) {
			return cur
		}
		applied = true
		return r(cur)
	})
	return next, applied
}

// Subscribe registers fn for every future state change and returns a
// function that removes it.
func (s *Store[S]) Subscribe(fn func(S)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}
