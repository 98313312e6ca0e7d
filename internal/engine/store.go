package engine

import (
	"context"
	"time"

	"github.com/jagzao/memorank/internal/domain"
)

// Filters narrows a card scan. Empty slices match everything.
type Filters struct {
	Categories   []string
	Difficulties []domain.Difficulty
}

// Match reports whether the card passes the filters.
func (f Filters) Match(card domain.Card) bool {
	if len(f.Categories) > 0 && !contains(f.Categories, card.Category) {
		return false
	}
	if len(f.Difficulties) > 0 && !contains(f.Difficulties, card.Difficulty) {
		return false
	}
	return true
}

func contains[T comparable](xs []T, v T) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

// Update carries the full mutable review state written back after an
// outcome is processed or a card is reset. Values are absolute, not deltas.
// Zero LastReviewed or DueDate means "not reviewed yet" and is stored as
// absent.
type Update struct {
	EaseFactor   float64
	Interval     int
	StudyCount   int
	TotalReviews int
	CorrectCount int
	LastReviewed time.Time
	DueDate      time.Time
}

// Store is the durable review-state collaborator. The engine reads and
// writes through it and owns no persistence of its own.
//
// GetByID returns (nil, nil) when the card does not exist. Infrastructure
// failures must be wrapped so that errors.Is(err, ErrStoreUnavailable)
// holds. Implementations must return cards in a stable order from GetAll
// and apply the filters themselves.
type Store interface {
	GetAll(ctx context.Context, f Filters) ([]domain.Card, error)
	GetByID(ctx context.Context, id string) (*domain.Card, error)
	Update(ctx context.Context, id string, u Update) error
}
