package memory

import (
	"sync"

	"helpdesk.app/triage/internal/model"
)

// ThreadStore keeps per-thread conversation transcripts for the process
// lifetime. A thread comes into existence on first use and never expires.
// Appends are serialized per thread so concurrent requests on the same
// identifier cannot interleave or lose turns.
type ThreadStore struct {
	mu      sync.RWMutex
	threads map[string]*thread
}

type thread struct {
	mu    sync.Mutex
	turns []model.Turn
}

func NewThreadStore() *ThreadStore {
	return &ThreadStore{threads: make(map[string]*thread)}
}

// History returns a copy of the thread's turns in insertion order.
// An unseen thread yields an empty history, never an error.
func (s *ThreadStore) History(threadID string) []model.Turn {
	s.mu.RLock()
	t, ok := s.threads[threadID]
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	turns := make([]model.Turn, len(t.turns))
	copy(turns, t.turns)
	return turns
}

// Append adds turns to the thread, creating it on first use.
func (s *ThreadStore) Append(threadID string, turns ...model.Turn) {
	s.mu.Lock()
	t, ok := s.threads[threadID]
	if !ok {
		t = &thread{}
		s.threads[threadID] = t
	}
	s.mu.Unlock()

	t.mu.Lock()
	t.turns = append(t.turns, turns...)
	t.mu.Unlock()
}

// Len reports the number of turns recorded for the thread.
func (s *ThreadStore) Len(threadID string) int {
	s.mu.RLock()
	t, ok := s.threads[threadID]
	s.mu.RUnlock()
	if !ok {
		return 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.turns)
}
