package deck

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// Normalize concatenates the card's question and answer after cleaning
// each part: trimmed, lowercased, line endings normalized. Topic and
// difficulty are deliberately left out so recategorizing a card does not
// change its id and orphan its review state.
func Normalize(card Card) string {
	normalizePart := func(part string) string {
		p := strings.ToLower(part)
		p = strings.TrimSpace(p)
		p = strings.ReplaceAll(p, "\r\n", "\n")
		return p
	}

	q := normalizePart(card.Question)
	a := normalizePart(card.Answer)

	// Joined with a newline so fields cannot run together and collide,
	// e.g. "question" + "answer" becoming "questionanswer".
	return strings.Join([]string{q, a}, "\n")
}

// ID derives the card's stable identifier: the SHA-256 of its normalized
// content, as a hex string.
func ID(card Card) string {
	normalized := Normalize(card)
	hashBytes := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%x", hashBytes)
}
