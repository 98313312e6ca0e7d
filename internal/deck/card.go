// Package deck parses authored card files and reconciles them into the
// review-state store. It is the collaborator that creates and deletes
// cards; the scheduling engine itself never does either.
package deck

import "github.com/jagzao/memorank/internal/domain"

// Card is an authored flashcard as written in a deck file, before it has
// any review state.
type Card struct {
	Question   string
	Answer     string
	Topic      string
	Difficulty domain.Difficulty
}
