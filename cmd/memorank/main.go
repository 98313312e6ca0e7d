package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/jagzao/memorank/internal/cache"
	"github.com/jagzao/memorank/internal/config"
	"github.com/jagzao/memorank/internal/deck"
	"github.com/jagzao/memorank/internal/engine"
	"github.com/jagzao/memorank/internal/storage"
	"github.com/jagzao/memorank/internal/web"
)

func main() {
	_ = godotenv.Load()

	flags := pflag.NewFlagSet("memorank", pflag.ExitOnError)
	configFile := flags.StringP("config", "c", "memorank.yaml", "path to the config file")
	runSync := flags.Bool("sync", false, "reconcile deck sources before serving")
	flags.String("listen_addr", ":8080", "address to listen on")
	flags.String("db_path", "memorank.db", "path to the SQLite database file")
	flags.String("log_level", "info", "log level (debug, info, warn, error)")
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load(*configFile, flags.Changed("config"), flags)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database opened", "path", cfg.DBPath)

	if *runSync || len(cfg.Sources) > 0 {
		err := deck.Reconcile(context.Background(), db, cfg.Sources, cfg.ReposDir, time.Now().UTC(), log)
		if err != nil {
			log.Error("deck reconciliation failed", "error", err)
			os.Exit(1)
		}
	}

	var resultCache cache.Cache = cache.Disabled{}
	if !cfg.Cache.Disabled {
		resultCache = cache.NewTTL(cache.Config{
			TTL:        cfg.CacheTTL(),
			MaxEntries: cfg.Cache.MaxEntries,
		})
	}

	eng := engine.New(db, engine.Config{
		Params: cfg.SM2Params(),
		Cache:  resultCache,
		Logger: log,
	})

	server := web.NewServer(eng, web.QueueDefaults{
		MaxCards:   cfg.Session.MaxCards,
		ExcludeNew: cfg.Session.ExcludeNew,
	}, log)
	log.Info("listening", "addr", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, server); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
