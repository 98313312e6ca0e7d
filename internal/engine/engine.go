// Package engine implements the spaced-repetition scheduling engine: it
// decides when each card is next due and composes bounded study sessions.
// All persistence goes through the injected Store; all computation takes an
// explicit reference time, so the engine holds no clock of its own.
package engine

import (
	"log/slog"

	"github.com/jagzao/memorank/internal/cache"
	"github.com/jagzao/memorank/internal/sm2"
)

// Config configures an Engine. Zero values produce sensible defaults.
type Config struct {
	Params sm2.Params  // zero -> sm2.DefaultParams()
	Cache  cache.Cache // nil -> cache.Disabled
	Logger *slog.Logger
}

// Engine is the scheduling engine. It is safe for concurrent use as long
// as the Store is; note that two concurrent outcomes for the same card can
// lose an update unless the caller serializes per card id.
type Engine struct {
	store  Store
	params sm2.Params
	cache  cache.Cache
	log    *slog.Logger
}

// New creates an Engine backed by the given store.
func New(store Store, cfg Config) *Engine {
	params := cfg.Params
	if params.ReferenceResponseMs == nil {
		params = sm2.DefaultParams()
	}
	c := cfg.Cache
	if c == nil {
		c = cache.Disabled{}
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Engine{store: store, params: params, cache: c, log: log}
}
