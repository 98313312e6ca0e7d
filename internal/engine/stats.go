package engine

import (
	"context"
	"time"
)

// Stats summarizes the whole card set for a study dashboard.
type Stats struct {
	TotalDue               int        `json:"total_due"`
	NewCards               int        `json:"new_cards"`
	ReviewCards            int        `json:"review_cards"`
	AverageRetention       float64    `json:"average_retention"`
	RecommendedSessionSize int        `json:"recommended_session_size"`
	NextReviewTime         *time.Time `json:"next_review_time"`
}

// Stats computes study statistics across all cards. AverageRetention is
// total correct over total reviews for the reviewed population;
// RecommendedSessionSize is the due count clamped to [5, 20];
// NextReviewTime is the earliest upcoming due date, nil when nothing is
// scheduled ahead.
func (e *Engine) Stats(ctx context.Context, now time.Time) (Stats, error) {
	const key = "stats"
	if v, ok := e.cache.Get(key); ok {
		return v.(Stats), nil
	}

	c, err := e.SelectCandidates(ctx, now, Filters{})
	if err != nil {
		return Stats{}, err
	}

	s := Stats{
		TotalDue:    len(c.Due),
		NewCards:    len(c.New),
		ReviewCards: len(c.Review),
	}

	var totalReviews, totalCorrect int
	for _, card := range c.Due {
		totalReviews += card.TotalReviews
		totalCorrect += card.CorrectCount
	}
	for _, card := range c.Review {
		totalReviews += card.TotalReviews
		totalCorrect += card.CorrectCount
	}
	if totalReviews > 0 {
		s.AverageRetention = float64(totalCorrect) / float64(totalReviews)
	}

	s.RecommendedSessionSize = clampInt(len(c.Due), 5, 20)

	for _, card := range c.Review {
		if card.DueDate == nil {
			continue
		}
		if s.NextReviewTime == nil || card.DueDate.Before(*s.NextReviewTime) {
			due := *card.DueDate
			s.NextReviewTime = &due
		}
	}

	e.cache.Set(key, s)
	return s, nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
