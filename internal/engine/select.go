package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jagzao/memorank/internal/domain"
	"github.com/jagzao/memorank/internal/sm2"
)

// Candidates is one full partition of the card set at a point in time.
type Candidates struct {
	// Due holds previously reviewed cards whose due date has passed,
	// most overdue first, harder cards first among equals.
	Due []domain.Card
	// New holds never-reviewed cards, oldest created first.
	New []domain.Card
	// Review holds reviewed cards not yet due, weakest confidence first.
	// They only enter a session as filler (see StudyQueue).
	Review []domain.Card
}

// SelectCandidates scans the store and partitions every matching card into
// due, new, or not-yet-due, each ordered for session composition. The
// context is checked between cards so a scan over a large set can be
// aborted early.
func (e *Engine) SelectCandidates(ctx context.Context, now time.Time, f Filters) (Candidates, error) {
	cards, err := e.store.GetAll(ctx, f)
	if err != nil {
		return Candidates{}, fmt.Errorf("scanning cards: %w", err)
	}

	var c Candidates
	for _, card := range cards {
		if err := ctx.Err(); err != nil {
			return Candidates{}, err
		}
		switch {
		case card.IsNew():
			c.New = append(c.New, card)
		case card.IsDue(now):
			c.Due = append(c.Due, card)
		default:
			c.Review = append(c.Review, card)
		}
	}

	sortDue(c.Due)
	sortNew(c.New)
	sortReview(c.Review, now)
	return c, nil
}

// sortDue orders by due date ascending, breaking ties by difficulty rank so
// harder cards surface first, then by id for determinism.
func sortDue(cards []domain.Card) {
	sort.Slice(cards, func(i, j int) bool {
		a, b := dueTime(cards[i]), dueTime(cards[j])
		if !a.Equal(b) {
			return a.Before(b)
		}
		if ra, rb := cards[i].Difficulty.Rank(), cards[j].Difficulty.Rank(); ra != rb {
			return ra < rb
		}
		return cards[i].ID < cards[j].ID
	})
}

// sortNew orders by creation time ascending: the card that has waited
// longest for its first review comes first.
func sortNew(cards []domain.Card) {
	sort.Slice(cards, func(i, j int) bool {
		if !cards[i].CreatedAt.Equal(cards[j].CreatedAt) {
			return cards[i].CreatedAt.Before(cards[j].CreatedAt)
		}
		return cards[i].ID < cards[j].ID
	})
}

// sortReview orders by estimated confidence ascending (weakest first),
// breaking ties by last-reviewed ascending (stalest first), then by id.
func sortReview(cards []domain.Card, now time.Time) {
	conf := make(map[string]float64, len(cards))
	for _, card := range cards {
		conf[card.ID] = sm2.RankingConfidence(card, now)
	}
	sort.Slice(cards, func(i, j int) bool {
		if ci, cj := conf[cards[i].ID], conf[cards[j].ID]; ci != cj {
			return ci < cj
		}
		a, b := lastReviewTime(cards[i]), lastReviewTime(cards[j])
		if !a.Equal(b) {
			return a.Before(b)
		}
		return cards[i].ID < cards[j].ID
	})
}

// dueTime treats a missing due date as the zero time, i.e. maximally overdue.
func dueTime(card domain.Card) time.Time {
	if card.DueDate == nil {
		return time.Time{}
	}
	return *card.DueDate
}

func lastReviewTime(card domain.Card) time.Time {
	if card.LastReviewed == nil {
		return time.Time{}
	}
	return *card.LastReviewed
}
