package engine

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jagzao/memorank/internal/domain"
)

// DefaultMaxCards is the session size used when QueueOptions leaves
// MaxCards unset.
const DefaultMaxCards = 20

// Session allocation: floor(40%) due, floor(30%) new, remainder not-yet-due
// review cards. A short bucket's quota is not redistributed, so a queue may
// come out shorter than MaxCards. Integer tenths keep the floors exact.
func dueQuota(maxCards int) int { return maxCards * 4 / 10 }
func newQuota(maxCards int) int { return maxCards * 3 / 10 }

// QueueOptions configures one study session.
type QueueOptions struct {
	MaxCards     int  // zero -> DefaultMaxCards
	ExcludeNew   bool // zero -> new cards are included
	Categories   []string
	Difficulties []domain.Difficulty
}

func (o QueueOptions) filters() Filters {
	return Filters{Categories: o.Categories, Difficulties: o.Difficulties}
}

// DueCards returns due cards, most overdue first. A limit of zero or less
// means no limit.
func (e *Engine) DueCards(ctx context.Context, now time.Time, limit int) ([]domain.Card, error) {
	key := fmt.Sprintf("due|%d", limit)
	if v, ok := e.cache.Get(key); ok {
		return slices.Clone(v.([]domain.Card)), nil
	}

	c, err := e.SelectCandidates(ctx, now, Filters{})
	if err != nil {
		return nil, err
	}
	due := c.Due
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}

	e.cache.Set(key, due)
	return slices.Clone(due), nil
}

// StudyQueue composes a bounded, mixed session queue: due cards first, then
// new cards, then low-confidence not-yet-due cards as filler. No card
// appears twice and the result never exceeds MaxCards.
func (e *Engine) StudyQueue(ctx context.Context, now time.Time, opts QueueOptions) ([]domain.Card, error) {
	maxCards := opts.MaxCards
	if maxCards <= 0 {
		maxCards = DefaultMaxCards
	}

	key := queueKey(maxCards, opts)
	if v, ok := e.cache.Get(key); ok {
		return slices.Clone(v.([]domain.Card)), nil
	}

	c, err := e.SelectCandidates(ctx, now, opts.filters())
	if err != nil {
		return nil, err
	}

	dueCount := min(dueQuota(maxCards), len(c.Due))
	newCount := 0
	if !opts.ExcludeNew {
		newCount = min(newQuota(maxCards), len(c.New))
	}

	queue := make([]domain.Card, 0, maxCards)
	queue = append(queue, c.Due[:dueCount]...)
	queue = append(queue, c.New[:newCount]...)
	if remainder := maxCards - len(queue); remainder > 0 {
		queue = append(queue, c.Review[:min(remainder, len(c.Review))]...)
	}

	e.cache.Set(key, queue)
	return slices.Clone(queue), nil
}

// queueKey is the cache signature of a session query: query type, bound,
// and filters. Filter order is normalized so equivalent queries share an
// entry.
func queueKey(maxCards int, opts QueueOptions) string {
	cats := slices.Clone(opts.Categories)
	slices.Sort(cats)
	diffs := make([]string, len(opts.Difficulties))
	for i, d := range opts.Difficulties {
		diffs[i] = string(d)
	}
	slices.Sort(diffs)
	return fmt.Sprintf("queue|%d|%t|%s|%s",
		maxCards, opts.ExcludeNew, strings.Join(cats, ","), strings.Join(diffs, ","))
}
