package domain

import "time"

// DefaultEaseFactor is the ease factor assigned to a card that has never
// been reviewed.
const DefaultEaseFactor = 2.5

// Card holds the review state of a single learnable item. The scheduling
// engine mutates it only through processed study outcomes; creation and
// deletion belong to whoever owns the card content.
type Card struct {
	ID           string     `json:"id"`
	Category     string     `json:"category"`
	Difficulty   Difficulty `json:"difficulty"`
	CreatedAt    time.Time  `json:"created_at"`
	EaseFactor   float64    `json:"ease_factor"`
	Interval     int        `json:"interval"` // days until the next scheduled review
	StudyCount   int        `json:"study_count"`
	TotalReviews int        `json:"total_reviews"`
	CorrectCount int        `json:"correct_count"`
	LastReviewed *time.Time `json:"last_reviewed"` // nil before first review
	DueDate      *time.Time `json:"due_date"`      // nil before first review
}

// NewCard returns the review state for an item that just entered the system.
func NewCard(id, category string, difficulty Difficulty, createdAt time.Time) Card {
	return Card{
		ID:         id,
		Category:   category,
		Difficulty: difficulty,
		CreatedAt:  createdAt,
		EaseFactor: DefaultEaseFactor,
		Interval:   1,
	}
}

// IsNew reports whether the card has never been reviewed.
func (c Card) IsNew() bool {
	return c.TotalReviews == 0
}

// IsDue reports whether a previously reviewed card is due at the given time.
// A reviewed card with no due date is treated as immediately due.
func (c Card) IsDue(now time.Time) bool {
	if c.IsNew() {
		return false
	}
	return c.DueDate == nil || !c.DueDate.After(now)
}

// Outcome is a single graded study attempt for a card. It is engine input
// only; the engine never persists outcomes themselves.
type Outcome struct {
	CardID         string    `json:"card_id"`
	Quality        float64   `json:"quality"`          // 0 (blackout) to 5 (perfect recall)
	ResponseTimeMs int64     `json:"response_time_ms"` // 0 when not recorded
	Timestamp      time.Time `json:"timestamp"`
}
