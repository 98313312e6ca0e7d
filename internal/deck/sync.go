package deck

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/jagzao/memorank/internal/domain"
	"github.com/jagzao/memorank/internal/engine"
	"github.com/jagzao/memorank/internal/gitsource"
	"github.com/jagzao/memorank/internal/storage"
)

// Reconcile walks every configured source, parses the cards it finds, and
// brings the store in line: unseen cards are inserted with default review
// state, and cards that have disappeared from every source are deleted.
// Orphan deletion is skipped when any source failed, so a transient git or
// filesystem error cannot wipe review history.
func Reconcile(ctx context.Context, db *storage.DB, sources []string, reposDir string, now time.Time, log *slog.Logger) error {
	if len(sources) == 0 {
		log.Info("no deck sources configured, skipping reconcile")
		return nil
	}

	found := make(map[string]Card)
	sourcesFailed := 0

	for _, source := range sources {
		path := source
		if isGitURL(source) {
			localPath, err := gitURLToLocalPath(reposDir, source)
			if err != nil {
				log.Error("cannot determine local path for git source", "url", source, "error", err)
				sourcesFailed++
				continue
			}
			if err := gitsource.Sync(ctx, source, localPath, log); err != nil {
				log.Error("failed to sync git source", "url", source, "error", err)
				sourcesFailed++
				continue
			}
			path = localPath
		}

		cards, err := parseSource(path)
		if err != nil {
			log.Error("failed to parse source", "path", path, "error", err)
			sourcesFailed++
			continue
		}
		log.Info("parsed source", "path", path, "cards", len(cards))
		for _, card := range cards {
			found[ID(card)] = card
		}
	}

	existing, err := db.GetAll(ctx, engine.Filters{})
	if err != nil {
		return fmt.Errorf("listing existing cards: %w", err)
	}
	existingIDs := make(map[string]bool, len(existing))
	for _, card := range existing {
		existingIDs[card.ID] = true
	}

	var inserted int
	for id, card := range found {
		if existingIDs[id] {
			continue
		}
		state := domain.NewCard(id, card.Topic, card.Difficulty, now)
		if err := db.InsertCard(ctx, state); err != nil {
			return fmt.Errorf("inserting card %s: %w", id, err)
		}
		inserted++
	}

	var orphansDeleted int
	if sourcesFailed == 0 {
		for _, card := range existing {
			if _, ok := found[card.ID]; ok {
				continue
			}
			if err := db.DeleteCard(ctx, card.ID); err != nil {
				log.Warn("failed to delete orphaned card", "id", card.ID, "error", err)
				continue
			}
			orphansDeleted++
		}
	}

	log.Info("reconciliation complete",
		"sources", len(sources),
		"sources_failed", sourcesFailed,
		"cards_found", len(found),
		"inserted", inserted,
		"orphans_deleted", orphansDeleted,
	)
	return nil
}

// parseSource walks a directory for .md deck files and parses them all.
func parseSource(root string) ([]Card, error) {
	var cards []Card
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}
		fileCards, parseErr := ParseFile(path)
		if parseErr != nil {
			return fmt.Errorf("parsing %s: %w", path, parseErr)
		}
		cards = append(cards, fileCards...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cards, nil
}

func isGitURL(source string) bool {
	return strings.HasSuffix(source, ".git") ||
		strings.HasPrefix(source, "git@") ||
		strings.HasPrefix(source, "https://") ||
		strings.HasPrefix(source, "http://")
}

func gitURLToLocalPath(baseDir, repoURL string) (string, error) {
	parsedURL, err := url.Parse(repoURL)
	if err != nil || (parsedURL.Scheme != "https" && parsedURL.Scheme != "http") {
		// scp-like syntax: git@host:user/repo.git
		if strings.Contains(repoURL, "@") {
			parts := strings.Split(repoURL, ":")
			if len(parts) == 2 {
				hostAndUser := strings.Split(parts[0], "@")
				if len(hostAndUser) == 2 {
					host := hostAndUser[1]
					repoPath := strings.TrimSuffix(parts[1], ".git")
					return filepath.Join(baseDir, host, repoPath), nil
				}
			}
		}
		return "", fmt.Errorf("could not parse git URL: %s", repoURL)
	}

	sanitizedPath := strings.TrimSuffix(parsedURL.Path, ".git")
	return filepath.Join(baseDir, parsedURL.Host, sanitizedPath), nil
}
