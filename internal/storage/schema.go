package storage

const schema = `
-- The 'cards' table holds one review-state row per learnable item. The id
-- is the content hash assigned by the deck importer.
CREATE TABLE IF NOT EXISTS cards (
    id TEXT PRIMARY KEY,
    category TEXT NOT NULL DEFAULT '',
    difficulty TEXT NOT NULL DEFAULT 'beginner',
    created_at DATETIME NOT NULL,
    ease_factor REAL NOT NULL DEFAULT 2.5,
    interval INTEGER NOT NULL DEFAULT 1,
    study_count INTEGER NOT NULL DEFAULT 0,
    total_reviews INTEGER NOT NULL DEFAULT 0,
    correct_count INTEGER NOT NULL DEFAULT 0,
    last_reviewed DATETIME,
    due_date DATETIME
);

CREATE INDEX IF NOT EXISTS idx_cards_due_date ON cards(due_date);
CREATE INDEX IF NOT EXISTS idx_cards_category ON cards(category);
`
