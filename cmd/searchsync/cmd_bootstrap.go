package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/DreamCats/searchsync/internal/config"
	"github.com/DreamCats/searchsync/internal/embedding"
	"github.com/DreamCats/searchsync/internal/search"
	"github.com/DreamCats/searchsync/internal/source"
	"github.com/DreamCats/searchsync/internal/syncer"
)

// handleBootstrap implements the bootstrap subcommand
func handleBootstrap(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("bootstrap", flag.ExitOnError)
	recreate := fs.Bool("recreate", cfg.Sync.DestructiveRecreate, "Delete existing indices first (destructive)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    searchsync bootstrap [options]

DESCRIPTION:
    Create the per-entity search indices with their field mappings,
    including the knn vector fields sized per embedding profile. Safe to
    re-run: existing indices are left untouched unless -recreate is given.
    Recreating an index invalidates every document in it; run a full
    backfill sync afterwards.

OPTIONS:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse arguments: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	searchClient := search.NewClient(cfg.Search.Endpoint, cfg.Search.Username, cfg.Search.Password)
	if err := searchClient.Ping(ctx); err != nil {
		log.Fatalf("Search engine unreachable: %v", err)
	}

	// Dimension per profile comes from the live embedding service so the
	// mapping can never drift from the model actually serving vectors.
	dimensions := profileDimensions(ctx, cfg)

	b := search.NewBootstrapper(searchClient, cfg.Search.EfConstruction, cfg.Search.M)
	for _, entity := range source.AllEntityTypes() {
		profile := syncer.Profile(&cfg.Embedding, entity)
		dim, ok := dimensions[profile]
		if !ok {
			log.Fatalf("Embedding profile %q is not loaded by the service", profile)
		}
		spec := search.IndexSpec{
			Name:      syncer.IndexName(cfg.Search.IndexPrefix, entity),
			Profile:   profile,
			Dimension: dim,
		}
		var body map[string]any
		switch entity {
		case source.EntityItem:
			body = b.ItemIndexBody(dim)
		case source.EntityStore:
			body = b.StoreIndexBody(dim)
		case source.EntityCategory:
			body = b.CategoryIndexBody(dim)
		}

		var err error
		if *recreate {
			err = b.RecreateIndex(ctx, spec, body)
		} else {
			err = b.EnsureIndex(ctx, spec, body)
		}
		if err != nil {
			log.Fatalf("Bootstrap failed: %v", err)
		}
	}

	fmt.Println("Bootstrap completed")
}

// profileDimensions resolves vector dimensions from the embedding service
// health report, falling back to the well-known profile sizes when vector
// enrichment is disabled.
func profileDimensions(ctx context.Context, cfg *config.Config) map[string]int {
	if !cfg.EmbeddingEnabled() {
		log.Printf("Vector enrichment disabled, using default profile dimensions")
		return map[string]int{
			cfg.Embedding.ItemProfile:    768,
			cfg.Embedding.GeneralProfile: 384,
		}
	}
	svc, err := embedding.NewService(ctx, &cfg.Embedding)
	if err != nil {
		log.Fatalf("Embedding service unreachable: %v", err)
	}
	return svc.Profiles()
}
