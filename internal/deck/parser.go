package deck

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/jagzao/memorank/internal/domain"
)

const (
	questionPrefix   = "Q:"
	answerPrefix     = "A:"
	topicPrefix      = "T:"
	difficultyPrefix = "D:"
)

type parseState int

const (
	seeking parseState = iota
	readingQuestion
	readingAnswer
	readingTopic
)

// ParseFile reads a deck file from the given path and extracts all cards.
func ParseFile(path string) ([]Card, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads from an io.Reader and extracts all cards. Cards are blocks
// of Q:/A:/T:/D: prefixed lines; question, answer, and topic may span
// multiple lines and "---" or a new Q: starts the next card. A missing or
// unknown D: value defaults to beginner.
func Parse(r io.Reader) ([]Card, error) {
	scanner := bufio.NewScanner(r)
	var cards []Card
	var current Card
	var block []string
	state := seeking

	flushBlock := func() {
		if len(block) == 0 {
			return
		}
		content := strings.Join(block, "\n")
		switch state {
		case readingQuestion:
			current.Question = content
		case readingAnswer:
			current.Answer = content
		case readingTopic:
			current.Topic = content
		}
		block = nil
	}

	finishCard := func() {
		flushBlock()
		if current.Question != "" {
			if current.Difficulty == "" {
				current.Difficulty = domain.Beginner
			}
			cards = append(cards, current)
		}
		current = Card{}
		state = seeking
	}

	for scanner.Scan() {
		line := scanner.Text()

		if line == "---" {
			finishCard()
			continue
		}

		switch {
		case strings.HasPrefix(line, questionPrefix):
			// A new question always starts a new card, even when a D: line
			// has already dropped the state back to seeking.
			if state != seeking || current.Question != "" {
				finishCard()
			}
			flushBlock()
			state = readingQuestion
			block = append(block, trimPrefix(line, questionPrefix))
		case strings.HasPrefix(line, answerPrefix):
			flushBlock()
			state = readingAnswer
			block = append(block, trimPrefix(line, answerPrefix))
		case strings.HasPrefix(line, topicPrefix):
			flushBlock()
			state = readingTopic
			block = append(block, trimPrefix(line, topicPrefix))
		case strings.HasPrefix(line, difficultyPrefix):
			flushBlock()
			state = seeking
			if d, err := domain.ParseDifficulty(trimPrefix(line, difficultyPrefix)); err == nil {
				current.Difficulty = d
			}
		default:
			if state != seeking {
				block = append(block, line)
			}
		}
	}

	finishCard() // Finish the very last card in the file

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return cards, nil
}

func trimPrefix(line, prefix string) string {
	content := line[len(prefix):]
	if strings.HasPrefix(content, " ") {
		content = content[1:]
	}
	return content
}
