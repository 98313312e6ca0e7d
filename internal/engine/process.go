package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jagzao/memorank/internal/domain"
	"github.com/jagzao/memorank/internal/sm2"
)

// ProcessOutcome grades a single study outcome and persists the card's next
// review state. It returns ErrCardNotFound when the card id is unknown;
// this is the one place unknown ids are an error rather than a skip.
func (e *Engine) ProcessOutcome(ctx context.Context, o domain.Outcome) error {
	if err := validateOutcome(o); err != nil {
		return err
	}
	if err := e.applyOutcome(ctx, o); err != nil {
		return err
	}
	e.cache.Purge()
	return nil
}

// BatchResult reports what a batch actually did.
type BatchResult struct {
	Processed int      `json:"processed"`
	Skipped   []string `json:"skipped,omitempty"`   // unknown cards or invalid outcomes, logged and ignored
	Remaining []string `json:"remaining,omitempty"` // card ids not attempted after an abort
}

// ProcessOutcomes grades many outcomes with single-outcome semantics,
// independently per card. Unknown card ids and invalid outcomes are skipped
// and logged; a store failure aborts the batch immediately and the result
// names every outcome that was not processed. The context is checked
// between outcomes.
func (e *Engine) ProcessOutcomes(ctx context.Context, outcomes []domain.Outcome) (BatchResult, error) {
	var res BatchResult
	for i, o := range outcomes {
		if err := ctx.Err(); err != nil {
			res.Remaining = remainingIDs(outcomes[i:])
			e.purgeIfDirty(res)
			return res, err
		}

		if err := validateOutcome(o); err != nil {
			e.log.Warn("skipping invalid outcome", "card_id", o.CardID, "error", err)
			res.Skipped = append(res.Skipped, o.CardID)
			continue
		}

		err := e.applyOutcome(ctx, o)
		switch {
		case err == nil:
			res.Processed++
		case errors.Is(err, ErrCardNotFound):
			e.log.Warn("skipping outcome for unknown card", "card_id", o.CardID)
			res.Skipped = append(res.Skipped, o.CardID)
		default:
			res.Remaining = remainingIDs(outcomes[i:])
			e.purgeIfDirty(res)
			return res, err
		}
	}
	e.purgeIfDirty(res)
	return res, nil
}

// ResetCard reinitializes a card's scheduling state: default ease factor,
// interval 1, study count 0, due now. The monotonic review counters are
// history and survive a reset.
func (e *Engine) ResetCard(ctx context.Context, id string, now time.Time) error {
	card, err := e.store.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("fetching card %s: %w", id, err)
	}
	if card == nil {
		return fmt.Errorf("%w: %s", ErrCardNotFound, id)
	}

	u := Update{
		EaseFactor:   domain.DefaultEaseFactor,
		Interval:     1,
		StudyCount:   0,
		TotalReviews: card.TotalReviews,
		CorrectCount: card.CorrectCount,
		LastReviewed: lastReviewTime(*card),
		DueDate:      now,
	}
	if err := e.store.Update(ctx, id, u); err != nil {
		return fmt.Errorf("resetting card %s: %w", id, err)
	}
	e.cache.Purge()
	return nil
}

// applyOutcome runs the calculator for one outcome and writes the result.
// The card's update is atomic from the engine's perspective; callers that
// process the same card concurrently must serialize per card id.
func (e *Engine) applyOutcome(ctx context.Context, o domain.Outcome) error {
	card, err := e.store.GetByID(ctx, o.CardID)
	if err != nil {
		return fmt.Errorf("fetching card %s: %w", o.CardID, err)
	}
	if card == nil {
		return fmt.Errorf("%w: %s", ErrCardNotFound, o.CardID)
	}

	calc := e.params.NextReview(*card, o.Quality, o.ResponseTimeMs, o.Timestamp)

	u := Update{
		EaseFactor:   calc.EaseFactor,
		Interval:     calc.Interval,
		StudyCount:   calc.Repetition,
		TotalReviews: card.TotalReviews + 1,
		CorrectCount: card.CorrectCount,
		LastReviewed: o.Timestamp,
		DueDate:      calc.DueDate,
	}
	if sm2.EffectiveQuality(o.Quality) >= sm2.PassThreshold {
		u.CorrectCount++
	}

	if err := e.store.Update(ctx, o.CardID, u); err != nil {
		return fmt.Errorf("updating card %s: %w", o.CardID, err)
	}
	return nil
}

func (e *Engine) purgeIfDirty(res BatchResult) {
	if res.Processed > 0 {
		e.cache.Purge()
	}
}

func validateOutcome(o domain.Outcome) error {
	switch {
	case o.CardID == "":
		return fmt.Errorf("%w: missing card id", ErrInvalidOutcome)
	case math.IsNaN(o.Quality) || math.IsInf(o.Quality, 0):
		return fmt.Errorf("%w: quality is not a finite number", ErrInvalidOutcome)
	case o.ResponseTimeMs < 0:
		return fmt.Errorf("%w: negative response time %dms", ErrInvalidOutcome, o.ResponseTimeMs)
	case o.Timestamp.IsZero():
		return fmt.Errorf("%w: missing timestamp", ErrInvalidOutcome)
	}
	return nil
}

func remainingIDs(outcomes []domain.Outcome) []string {
	ids := make([]string, len(outcomes))
	for i, o := range outcomes {
		ids[i] = o.CardID
	}
	return ids
}
