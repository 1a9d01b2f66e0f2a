package state

import "sync"

// Sequencer hands out increasing request numbers per key so that a
// response can be checked against the latest request issued for the
// same logical resource.
type Sequencer struct {
	mu   sync.Mutex
	last map[string]uint64
}

func NewSequencer() *Sequencer {
	return &Sequencer{last: make(map[string]uint64)}
}

// Next issues a new number for key.
func (q *Sequencer) Next(key string) uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.last[key]++
	return q.last[key]
}

// Latest reports whether seq is the most recent number issued for key.
func (q *Sequencer) Latest(key string, seq uint64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.last[key] == seq
}
