package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/DreamCats/searchsync/internal/config"
	"github.com/DreamCats/searchsync/internal/embedding"
	"github.com/DreamCats/searchsync/internal/search"
	"github.com/DreamCats/searchsync/internal/source"
	"github.com/DreamCats/searchsync/internal/syncer"
)

// handleSync implements the sync subcommand
func handleSync(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	continuous := fs.Bool("continuous", cfg.Sync.Continuous, "Run on a fixed interval instead of once")
	interval := fs.Int("interval", cfg.Sync.IntervalMinutes, "Minutes between passes in continuous mode")
	lookback := fs.Int("lookback", cfg.Sync.LookbackMinutes, "Lookback window in minutes")
	entities := fs.String("entities", "", "Comma-separated entity subset (item,store,category)")
	quiet := fs.Bool("q", false, "Disable the progress bar")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    searchsync sync [options]

DESCRIPTION:
    Run a synchronization pass: detect rows changed inside the lookback
    window, denormalize and coerce them into index documents, enrich them
    with embedding vectors, and bulk-upsert them into the search indices.

OPTIONS:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse arguments: %v", err)
	}

	cfg.Sync.Continuous = *continuous
	cfg.Sync.IntervalMinutes = *interval
	cfg.Sync.LookbackMinutes = *lookback
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, searchClient, embedService := mustStartup(ctx, cfg)
	defer db.Close()

	s := syncer.New(cfg, db, embedderOrNil(embedService), search.NewWriter(searchClient))
	if *entities != "" {
		if err := s.FilterEntities(splitList(*entities)); err != nil {
			log.Fatalf("Invalid -entities: %v", err)
		}
	}
	if !*quiet && syncer.DefaultProgressEnabled() {
		s.SetProgress(syncer.NewProgress(true))
	}

	sched, err := syncer.NewScheduler(s, time.Duration(cfg.Sync.IntervalMinutes)*time.Minute)
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}
	defer sched.Close()

	if cfg.Sync.Continuous {
		log.Printf("Continuous mode: one pass every %d minutes", cfg.Sync.IntervalMinutes)
		err := sched.RunContinuous(ctx, func(summary *syncer.Summary) {
			fmt.Println(summary)
		})
		if err != nil && ctx.Err() == nil {
			log.Fatalf("Continuous sync stopped: %v", err)
		}
		return
	}

	summary := sched.RunOnce(ctx)
	fmt.Println(summary)
}

// mustStartup opens the three collaborators and verifies each one. Any
// unreachable system at startup is fatal.
func mustStartup(ctx context.Context, cfg *config.Config) (*source.DB, *search.Client, *embedding.Service) {
	db, err := source.Open(&cfg.Database)
	if err != nil {
		log.Fatalf("Relational store unreachable: %v", err)
	}

	searchClient := search.NewClient(cfg.Search.Endpoint, cfg.Search.Username, cfg.Search.Password)
	if err := searchClient.Ping(ctx); err != nil {
		db.Close()
		log.Fatalf("Search engine unreachable: %v", err)
	}

	var embedService *embedding.Service
	if cfg.EmbeddingEnabled() {
		embedService, err = embedding.NewService(ctx, &cfg.Embedding)
		if err != nil {
			db.Close()
			log.Fatalf("Embedding service unreachable: %v", err)
		}
	} else {
		log.Printf("Vector enrichment disabled, syncing scalar fields only")
	}

	return db, searchClient, embedService
}

// embedderOrNil avoids handing the syncer a typed-nil interface.
func embedderOrNil(svc *embedding.Service) syncer.Embedder {
	if svc == nil {
		return nil
	}
	return svc
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
