package sm2

import (
	"time"

	"github.com/jagzao/memorank/internal/domain"
)

// OutcomeConfidence estimates how well-retained a card is right after a
// graded outcome. The base is the fresh quality mapped to [0, 1]; once the
// card has review history the base is averaged with the success rate. The
// counters used include the outcome being processed.
//
// quality must already be clamped and rounded (see EffectiveQuality).
func (p Params) OutcomeConfidence(card domain.Card, quality int, responseTimeMs int64) float64 {
	total := card.TotalReviews + 1
	correct := card.CorrectCount
	if quality >= PassThreshold {
		correct++
	}

	conf := float64(quality) / 5
	if card.TotalReviews > 0 {
		successRate := float64(correct) / float64(total)
		conf = (conf + successRate) / 2
	}

	if responseTimeMs > 0 {
		if ref, ok := p.ReferenceResponseMs[card.Difficulty]; ok && ref > 0 {
			ratio := float64(responseTimeMs) / float64(ref)
			switch {
			case ratio < 0.8:
				conf *= 1.1
			case ratio > 1.5:
				conf *= 0.9
			}
		}
	}

	return clamp01(conf)
}

// RankingConfidence estimates retention from history alone, for ordering
// cards that are not tied to a fresh outcome. Cards never reviewed score
// zero so their bucket surfaces them first; otherwise the score is the mean
// of the success rate and a recency factor that decays to zero over 30 days.
func RankingConfidence(card domain.Card, now time.Time) float64 {
	if card.TotalReviews == 0 || card.LastReviewed == nil {
		return 0
	}
	successRate := float64(card.CorrectCount) / float64(card.TotalReviews)
	days := now.Sub(*card.LastReviewed).Hours() / 24
	recency := 1 - days/30
	if recency < 0 {
		recency = 0
	}
	return clamp01((successRate + recency) / 2)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
