// Package storage is the SQLite-backed review-state store. It implements
// the engine's Store contract and is also written to by the deck importer,
// which owns card creation and deletion.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jagzao/memorank/internal/domain"
	"github.com/jagzao/memorank/internal/engine"
	_ "modernc.org/sqlite" // Registers the sqlite driver
)

// DB wraps the SQL database connection.
type DB struct {
	conn *sql.DB
}

// Compile-time check that DB satisfies the engine's store contract.
var _ engine.Store = (*DB)(nil)

// Open creates a new database connection and ensures the schema is up to date.
func Open(dsn string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{conn: db}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

const cardColumns = `id, category, difficulty, created_at, ease_factor, interval,
	study_count, total_reviews, correct_count, last_reviewed, due_date`

// InsertCard inserts a freshly created card's review state. Used by the
// deck importer; the engine itself never creates cards.
func (db *DB) InsertCard(ctx context.Context, card domain.Card) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO cards (`+cardColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		card.ID,
		card.Category,
		string(card.Difficulty),
		card.CreatedAt,
		card.EaseFactor,
		card.Interval,
		card.StudyCount,
		card.TotalReviews,
		card.CorrectCount,
		nullTime(card.LastReviewed),
		nullTime(card.DueDate),
	)
	if err != nil {
		return fmt.Errorf("%w: inserting card %s: %w", engine.ErrStoreUnavailable, card.ID, err)
	}
	return nil
}

// DeleteCard removes a card's review state. Used by the deck importer when
// a card disappears from every source.
func (db *DB) DeleteCard(ctx context.Context, id string) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id); err != nil {
		return fmt.Errorf("%w: deleting card %s: %w", engine.ErrStoreUnavailable, id, err)
	}
	return nil
}

// GetByID retrieves one card's review state, or (nil, nil) if it is absent.
func (db *DB) GetByID(ctx context.Context, id string) (*domain.Card, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT `+cardColumns+` FROM cards WHERE id = ?
	`, id)

	card, err := scanCard(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: finding card %s: %w", engine.ErrStoreUnavailable, id, err)
	}
	return &card, nil
}

// GetAll retrieves every card matching the filters, ordered by id so scans
// are stable.
func (db *DB) GetAll(ctx context.Context, f engine.Filters) ([]domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards`
	var conds []string
	var args []any

	if len(f.Categories) > 0 {
		conds = append(conds, `category IN (`+placeholders(len(f.Categories))+`)`)
		for _, c := range f.Categories {
			args = append(args, c)
		}
	}
	if len(f.Difficulties) > 0 {
		conds = append(conds, `difficulty IN (`+placeholders(len(f.Difficulties))+`)`)
		for _, d := range f.Difficulties {
			args = append(args, string(d))
		}
	}
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, ` AND `)
	}
	query += ` ORDER BY id`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying cards: %w", engine.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var cards []domain.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning card row: %w", engine.ErrStoreUnavailable, err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating cards: %w", engine.ErrStoreUnavailable, err)
	}
	return cards, nil
}

// Update writes the mutable review state of one card.
func (db *DB) Update(ctx context.Context, id string, u engine.Update) error {
	_, err := db.conn.ExecContext(ctx, `
		UPDATE cards
		SET ease_factor = ?, interval = ?, study_count = ?,
		    total_reviews = ?, correct_count = ?, last_reviewed = ?, due_date = ?
		WHERE id = ?
	`,
		u.EaseFactor,
		u.Interval,
		u.StudyCount,
		u.TotalReviews,
		u.CorrectCount,
		nullTimeValue(u.LastReviewed),
		nullTimeValue(u.DueDate),
		id,
	)
	if err != nil {
		return fmt.Errorf("%w: updating card %s: %w", engine.ErrStoreUnavailable, id, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (domain.Card, error) {
	var card domain.Card
	var difficulty string
	var lastReviewed, dueDate sql.NullTime

	err := row.Scan(
		&card.ID,
		&card.Category,
		&difficulty,
		&card.CreatedAt,
		&card.EaseFactor,
		&card.Interval,
		&card.StudyCount,
		&card.TotalReviews,
		&card.CorrectCount,
		&lastReviewed,
		&dueDate,
	)
	if err != nil {
		return domain.Card{}, err
	}

	card.Difficulty = domain.Difficulty(difficulty)
	if lastReviewed.Valid {
		t := lastReviewed.Time
		card.LastReviewed = &t
	}
	if dueDate.Valid {
		t := dueDate.Time
		card.DueDate = &t
	}
	return card, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullTimeValue(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
