package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/DreamCats/searchsync/internal/config"
	"github.com/DreamCats/searchsync/internal/embedding"
	"github.com/DreamCats/searchsync/internal/search"
	"github.com/DreamCats/searchsync/internal/source"
)

// handleHealth implements the health subcommand
func handleHealth(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("health", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    searchsync health

DESCRIPTION:
    Check connectivity to the relational store, the search engine and the
    embedding service, and report the loaded embedding profiles.
`)
	}
	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse arguments: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	healthy := true

	if db, err := source.Open(&cfg.Database); err != nil {
		fmt.Printf("relational store   FAIL  %v\n", err)
		healthy = false
	} else {
		fmt.Printf("relational store   OK    driver=%s\n", cfg.Database.Driver)
		db.Close()
	}

	searchClient := search.NewClient(cfg.Search.Endpoint, cfg.Search.Username, cfg.Search.Password)
	if err := searchClient.Ping(ctx); err != nil {
		fmt.Printf("search engine      FAIL  %v\n", err)
		healthy = false
	} else {
		fmt.Printf("search engine      OK    %s\n", cfg.Search.Endpoint)
	}

	client := embedding.NewHTTPClient(cfg.Embedding.Endpoint, cfg.Embedding.Normalize,
		time.Duration(cfg.Embedding.TimeoutS)*time.Second)
	models, err := client.Health(ctx)
	if err != nil {
		fmt.Printf("embedding service  FAIL  %v\n", err)
		healthy = false
	} else {
		profiles := make([]string, 0, len(models))
		for name := range models {
			profiles = append(profiles, name)
		}
		sort.Strings(profiles)
		fmt.Printf("embedding service  OK    %s\n", cfg.Embedding.Endpoint)
		for _, name := range profiles {
			fmt.Printf("  profile %-12s dimensions=%d\n", name, models[name].Dimensions)
		}
	}

	if !healthy {
		os.Exit(1)
	}
}
