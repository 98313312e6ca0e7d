package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/jagzao/memorank/internal/domain"
)

func TestProcessOutcomeUpdatesState(t *testing.T) {
	store := newMemStore(domain.Card{
		ID:           "c1",
		Difficulty:   domain.Beginner,
		EaseFactor:   2.5,
		Interval:     6,
		StudyCount:   2,
		TotalReviews: 3,
		CorrectCount: 3,
		LastReviewed: tp(selNow.AddDate(0, 0, -6)),
		DueDate:      tp(selNow),
	})
	e := New(store, Config{})

	err := e.ProcessOutcome(context.Background(), domain.Outcome{
		CardID:    "c1",
		Quality:   5,
		Timestamp: selNow,
	})
	if err != nil {
		t.Fatalf("ProcessOutcome() error: %v", err)
	}

	card := store.get("c1")
	if math.Abs(card.EaseFactor-2.6) > 1e-9 {
		t.Errorf("expected ease factor 2.6, got %f", card.EaseFactor)
	}
	if card.Interval != 16 {
		t.Errorf("expected interval 16, got %d", card.Interval)
	}
	if card.StudyCount != 3 {
		t.Errorf("expected study count 3, got %d", card.StudyCount)
	}
	if card.TotalReviews != 4 || card.CorrectCount != 4 {
		t.Errorf("expected counters 4/4, got %d/%d", card.TotalReviews, card.CorrectCount)
	}
	if card.LastReviewed == nil || !card.LastReviewed.Equal(selNow) {
		t.Errorf("expected last reviewed %v, got %v", selNow, card.LastReviewed)
	}
	if want := selNow.AddDate(0, 0, 16); card.DueDate == nil || !card.DueDate.Equal(want) {
		t.Errorf("expected due date %v, got %v", want, card.DueDate)
	}
}

func TestProcessOutcomeCountersAreMonotonic(t *testing.T) {
	store := newMemStore(reviewedCard("c1", domain.Beginner, selNow, 1, 2, selNow.AddDate(0, 0, -1)))
	e := New(store, Config{})

	// A failure bumps the attempt counter but not the correct counter.
	if err := e.ProcessOutcome(context.Background(), domain.Outcome{CardID: "c1", Quality: 1, Timestamp: selNow}); err != nil {
		t.Fatalf("ProcessOutcome() error: %v", err)
	}
	card := store.get("c1")
	if card.TotalReviews != 3 || card.CorrectCount != 1 {
		t.Errorf("after failure: expected 3/1, got %d/%d", card.TotalReviews, card.CorrectCount)
	}

	// A pass bumps both.
	if err := e.ProcessOutcome(context.Background(), domain.Outcome{CardID: "c1", Quality: 3, Timestamp: selNow}); err != nil {
		t.Fatalf("ProcessOutcome() error: %v", err)
	}
	card = store.get("c1")
	if card.TotalReviews != 4 || card.CorrectCount != 2 {
		t.Errorf("after pass: expected 4/2, got %d/%d", card.TotalReviews, card.CorrectCount)
	}
}

func TestProcessOutcomeUnknownCard(t *testing.T) {
	e := New(newMemStore(), Config{})

	err := e.ProcessOutcome(context.Background(), domain.Outcome{CardID: "ghost", Quality: 4, Timestamp: selNow})
	if !errors.Is(err, ErrCardNotFound) {
		t.Errorf("expected ErrCardNotFound, got %v", err)
	}
}

func TestProcessOutcomeInvalidInput(t *testing.T) {
	e := New(newMemStore(), Config{})

	testCases := []struct {
		name    string
		outcome domain.Outcome
	}{
		{"missing card id", domain.Outcome{Quality: 4, Timestamp: selNow}},
		{"NaN quality", domain.Outcome{CardID: "c1", Quality: math.NaN(), Timestamp: selNow}},
		{"infinite quality", domain.Outcome{CardID: "c1", Quality: math.Inf(1), Timestamp: selNow}},
		{"negative response time", domain.Outcome{CardID: "c1", Quality: 4, ResponseTimeMs: -5, Timestamp: selNow}},
		{"zero timestamp", domain.Outcome{CardID: "c1", Quality: 4}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if err := e.ProcessOutcome(context.Background(), tc.outcome); !errors.Is(err, ErrInvalidOutcome) {
				t.Errorf("expected ErrInvalidOutcome, got %v", err)
			}
		})
	}
}

func TestProcessOutcomesSkipsUnknownCards(t *testing.T) {
	store := newMemStore(
		reviewedCard("a", domain.Beginner, selNow, 1, 1, selNow.AddDate(0, 0, -1)),
		reviewedCard("b", domain.Beginner, selNow, 1, 1, selNow.AddDate(0, 0, -1)),
	)
	e := New(store, Config{})

	res, err := e.ProcessOutcomes(context.Background(), []domain.Outcome{
		{CardID: "a", Quality: 4, Timestamp: selNow},
		{CardID: "ghost", Quality: 4, Timestamp: selNow},
		{CardID: "b", Quality: 2, Timestamp: selNow},
	})
	if err != nil {
		t.Fatalf("ProcessOutcomes() error: %v", err)
	}

	if res.Processed != 2 {
		t.Errorf("expected 2 processed, got %d", res.Processed)
	}
	if len(res.Skipped) != 1 || res.Skipped[0] != "ghost" {
		t.Errorf("expected ghost skipped, got %v", res.Skipped)
	}
	if len(res.Remaining) != 0 {
		t.Errorf("expected nothing remaining, got %v", res.Remaining)
	}
	if store.get("b").TotalReviews != 2 {
		t.Error("outcome after the skipped one was not processed")
	}
}

func TestProcessOutcomesAbortsOnStoreFailure(t *testing.T) {
	store := newMemStore(
		reviewedCard("a", domain.Beginner, selNow, 1, 1, selNow.AddDate(0, 0, -1)),
		reviewedCard("b", domain.Beginner, selNow, 1, 1, selNow.AddDate(0, 0, -1)),
		reviewedCard("c", domain.Beginner, selNow, 1, 1, selNow.AddDate(0, 0, -1)),
	)
	store.updateErrOn = "b"
	store.updateErr = fmt.Errorf("%w: disk gone", ErrStoreUnavailable)
	e := New(store, Config{})

	res, err := e.ProcessOutcomes(context.Background(), []domain.Outcome{
		{CardID: "a", Quality: 4, Timestamp: selNow},
		{CardID: "b", Quality: 4, Timestamp: selNow},
		{CardID: "c", Quality: 4, Timestamp: selNow},
	})

	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if res.Processed != 1 {
		t.Errorf("expected 1 processed before the abort, got %d", res.Processed)
	}
	want := []string{"b", "c"}
	if len(res.Remaining) != 2 || res.Remaining[0] != want[0] || res.Remaining[1] != want[1] {
		t.Errorf("expected remaining %v, got %v", want, res.Remaining)
	}
	if store.get("c").TotalReviews != 1 {
		t.Error("outcome after the abort was processed anyway")
	}
}

func TestProcessOutcomesCancellation(t *testing.T) {
	store := newMemStore(reviewedCard("a", domain.Beginner, selNow, 1, 1, selNow.AddDate(0, 0, -1)))
	e := New(store, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := e.ProcessOutcomes(ctx, []domain.Outcome{{CardID: "a", Quality: 4, Timestamp: selNow}})
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
	if len(res.Remaining) != 1 {
		t.Errorf("expected the unprocessed outcome to be reported, got %v", res.Remaining)
	}
}

func TestResetCard(t *testing.T) {
	card := domain.Card{
		ID:           "c1",
		EaseFactor:   1.7,
		Interval:     42,
		StudyCount:   9,
		TotalReviews: 12,
		CorrectCount: 7,
		LastReviewed: tp(selNow.AddDate(0, 0, -3)),
		DueDate:      tp(selNow.AddDate(0, 0, 39)),
	}
	store := newMemStore(card)
	e := New(store, Config{})

	if err := e.ResetCard(context.Background(), "c1", selNow); err != nil {
		t.Fatalf("ResetCard() error: %v", err)
	}

	got := store.get("c1")
	if got.EaseFactor != domain.DefaultEaseFactor {
		t.Errorf("expected default ease factor, got %f", got.EaseFactor)
	}
	if got.Interval != 1 || got.StudyCount != 0 {
		t.Errorf("expected interval 1 and study count 0, got %d/%d", got.Interval, got.StudyCount)
	}
	if got.DueDate == nil || !got.DueDate.Equal(selNow) {
		t.Errorf("expected due now, got %v", got.DueDate)
	}
	// Review history survives a reset.
	if got.TotalReviews != 12 || got.CorrectCount != 7 {
		t.Errorf("reset clobbered the counters: %d/%d", got.TotalReviews, got.CorrectCount)
	}
}

func TestResetCardUnknown(t *testing.T) {
	e := New(newMemStore(), Config{})
	if err := e.ResetCard(context.Background(), "ghost", time.Now()); !errors.Is(err, ErrCardNotFound) {
		t.Errorf("expected ErrCardNotFound, got %v", err)
	}
}
