package domain

import (
	"fmt"
	"strings"
)

// Difficulty is the authored difficulty label of a card. The engine reads
// it only to pick a reference response time and to break ordering ties.
type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
)

// ParseDifficulty converts a label to a Difficulty, case-insensitively.
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(strings.ToLower(strings.TrimSpace(s))) {
	case Beginner:
		return Beginner, nil
	case Intermediate:
		return Intermediate, nil
	case Advanced:
		return Advanced, nil
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

// Rank orders difficulties for scheduling: harder cards surface first, so
// Advanced ranks lowest. Unknown labels sort after known ones.
func (d Difficulty) Rank() int {
	switch d {
	case Advanced:
		return 0
	case Intermediate:
		return 1
	case Beginner:
		return 2
	}
	return 3
}
