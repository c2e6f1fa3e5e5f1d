package service

import (
	"sync"
	"time"

	"github.com/AHSANooo/Clashes-Detector/internal/models"
)

type storedProposal struct {
	assignment models.ScheduleAssignment
	savedAt    time.Time
}

// proposalStore keeps recent optimisation results for later export.
type proposalStore struct {
	ttl   time.Duration
	now   func() time.Time
	mu    sync.RWMutex
	items map[string]storedProposal
}

func newProposalStore(ttl time.Duration) *proposalStore {
	return &proposalStore{ttl: ttl, now: time.Now, items: make(map[string]storedProposal)}
}

func (s *proposalStore) Save(id string, assignment models.ScheduleAssignment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[id] = storedProposal{assignment: assignment, savedAt: s.now()}
	s.evictLocked()
}

func (s *proposalStore) Get(id string) (models.ScheduleAssignment, bool) {
	s.mu.RLock()
	item, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return models.ScheduleAssignment{}, false
	}
	if s.now().Sub(item.savedAt) > s.ttl {
		s.mu.Lock()
		delete(s.items, id)
		s.mu.Unlock()
		return models.ScheduleAssignment{}, false
	}
	return item.assignment, true
}

// evictLocked drops expired proposals; callers hold the write lock.
func (s *proposalStore) evictLocked() {
	now := s.now()
	for id, item := range s.items {
		if now.Sub(item.savedAt) > s.ttl {
			delete(s.items, id)
		}
	}
}
