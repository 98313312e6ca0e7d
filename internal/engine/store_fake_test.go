package engine

import (
	"context"
	"sync"
	"time"

	"github.com/jagzao/memorank/internal/domain"
)

// memStore is an in-memory Store for tests. It keeps insertion order so
// scans are stable, and can be told to fail.
type memStore struct {
	mu      sync.Mutex
	cards   map[string]domain.Card
	order   []string
	scanErr error
	scans   int
	// updateErrOn makes Update fail for one specific card id.
	updateErrOn string
	updateErr   error
}

func newMemStore(cards ...domain.Card) *memStore {
	s := &memStore{cards: make(map[string]domain.Card)}
	for _, c := range cards {
		s.cards[c.ID] = c
		s.order = append(s.order, c.ID)
	}
	return s
}

func (s *memStore) GetAll(_ context.Context, f Filters) ([]domain.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scans++
	if s.scanErr != nil {
		return nil, s.scanErr
	}
	var out []domain.Card
	for _, id := range s.order {
		if card := s.cards[id]; f.Match(card) {
			out = append(out, card)
		}
	}
	return out, nil
}

func (s *memStore) GetByID(_ context.Context, id string) (*domain.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	card, ok := s.cards[id]
	if !ok {
		return nil, nil
	}
	return &card, nil
}

func (s *memStore) Update(_ context.Context, id string, u Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil && (s.updateErrOn == "" || s.updateErrOn == id) {
		return s.updateErr
	}
	card, ok := s.cards[id]
	if !ok {
		return nil
	}
	card.EaseFactor = u.EaseFactor
	card.Interval = u.Interval
	card.StudyCount = u.StudyCount
	card.TotalReviews = u.TotalReviews
	card.CorrectCount = u.CorrectCount
	card.LastReviewed = timePtrOrNil(u.LastReviewed)
	card.DueDate = timePtrOrNil(u.DueDate)
	s.cards[id] = card
	return nil
}

func (s *memStore) scanCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scans
}

func (s *memStore) get(id string) domain.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cards[id]
}

func timePtrOrNil(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func tp(t time.Time) *time.Time { return &t }
