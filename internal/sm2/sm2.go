// Package sm2 implements the SM-2 scheduling variant used by memorank:
// classic ease-factor and interval progression, plus a response-time
// interval modifier and a 0-1 confidence estimate per review.
package sm2

import (
	"math"
	"time"

	"github.com/jagzao/memorank/internal/domain"
)

const (
	// MinEaseFactor and MaxEaseFactor are hard bounds; no sequence of
	// outcomes may push the ease factor outside them.
	MinEaseFactor = 1.3
	MaxEaseFactor = 3.0

	// PassThreshold is the lowest quality that counts as a successful recall.
	PassThreshold = 3
)

// Params holds the tunable inputs of the calculator.
type Params struct {
	// ReferenceResponseMs maps a difficulty label to the expected answer
	// time in milliseconds. Outcomes answered much faster than the
	// reference get a slightly longer interval, much slower a shorter one.
	ReferenceResponseMs map[domain.Difficulty]int64
}

// DefaultParams returns the stock per-difficulty reference response times.
func DefaultParams() Params {
	return Params{
		ReferenceResponseMs: map[domain.Difficulty]int64{
			domain.Beginner:     5000,
			domain.Intermediate: 8000,
			domain.Advanced:     12000,
		},
	}
}

// Calculation is the scheduling result of one graded review. The caller
// applies it to the card's stored state; nothing here is persisted directly.
type Calculation struct {
	Interval   int       `json:"interval"`
	EaseFactor float64   `json:"ease_factor"`
	Repetition int       `json:"repetition"`
	DueDate    time.Time `json:"due_date"`
	Confidence float64   `json:"confidence"`
}

// NextReview computes the next interval, ease factor, repetition count, due
// date, and confidence for a card given one graded outcome.
//
// quality is clamped to [0, 5] and rounded to the nearest integer before
// use. responseTimeMs of zero means the answer time was not recorded. The
// due date is counted in calendar days from `at`, the outcome's timestamp.
func (p Params) NextReview(card domain.Card, quality float64, responseTimeMs int64, at time.Time) Calculation {
	q := EffectiveQuality(quality)

	ease := clampEase(card.EaseFactor)
	if card.EaseFactor == 0 {
		ease = domain.DefaultEaseFactor
	}
	interval := card.Interval
	if interval < 1 {
		interval = 1
	}
	reps := card.StudyCount
	if reps < 0 {
		reps = 0
	}

	var next Calculation
	if q < PassThreshold {
		// Failed recall: start the interval over and penalize the ease factor.
		next.Interval = 1
		next.Repetition = max(0, reps-1)
		next.EaseFactor = math.Max(MinEaseFactor, ease-0.2)
	} else {
		// The ease factor is updated first; the interval growth below uses
		// the updated value.
		next.EaseFactor = clampEase(ease + (0.1 - float64(5-q)*(0.08+float64(5-q)*0.02)))
		next.Repetition = reps + 1
		switch reps {
		case 0:
			next.Interval = 1
		case 1:
			next.Interval = 6
		default:
			next.Interval = int(math.Round(float64(interval) * next.EaseFactor))
		}
	}

	next.Interval = p.adjustForResponseTime(next.Interval, responseTimeMs, card.Difficulty)

	next.DueDate = at.AddDate(0, 0, next.Interval)
	next.Confidence = p.OutcomeConfidence(card, q, responseTimeMs)
	return next
}

// adjustForResponseTime nudges the interval based on how the answer time
// compares to the reference for the card's difficulty. It never touches the
// ease factor and never drops the interval below one day.
func (p Params) adjustForResponseTime(interval int, responseTimeMs int64, difficulty domain.Difficulty) int {
	if responseTimeMs <= 0 {
		return interval
	}
	ref, ok := p.ReferenceResponseMs[difficulty]
	if !ok || ref <= 0 {
		return interval
	}
	ratio := float64(responseTimeMs) / float64(ref)
	switch {
	case ratio < 0.5:
		interval = int(math.Round(float64(interval) * 1.1))
	case ratio > 2.0:
		interval = int(math.Round(float64(interval) * 0.9))
	}
	return max(1, interval)
}

// EffectiveQuality clamps a raw quality value to [0, 5] and rounds it to
// the nearest integer.
func EffectiveQuality(quality float64) int {
	if quality < 0 {
		quality = 0
	}
	if quality > 5 {
		quality = 5
	}
	return int(math.Round(quality))
}

func clampEase(ef float64) float64 {
	if ef < MinEaseFactor {
		return MinEaseFactor
	}
	if ef > MaxEaseFactor {
		return MaxEaseFactor
	}
	return ef
}
