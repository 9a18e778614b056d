package search

import (
	"context"
	"fmt"
	"log"

	"github.com/DreamCats/searchsync/internal/schema"
)

// IndexSpec declares one per-entity index: its name, the embedding profile
// backing its vector field and that profile's dimension. The dimension never
// varies once an index is created.
type IndexSpec struct {
	Name      string
	Profile   string
	Dimension int
}

// Bootstrapper creates per-entity indices with declared mappings, including
// the knn vector fields. Creation is idempotent; destructive recreate is an
// explicit opt-in.
type Bootstrapper struct {
	client         *Client
	efConstruction int
	m              int
}

func NewBootstrapper(client *Client, efConstruction, m int) *Bootstrapper {
	if efConstruction <= 0 {
		efConstruction = 512
	}
	if m <= 0 {
		m = 16
	}
	return &Bootstrapper{client: client, efConstruction: efConstruction, m: m}
}

// EnsureIndex creates the index if it does not exist. An existing index is
// success; the sync pipeline never alters mappings in place.
func (b *Bootstrapper) EnsureIndex(ctx context.Context, spec IndexSpec, body map[string]any) error {
	exists, err := b.client.IndexExists(ctx, spec.Name)
	if err != nil {
		return fmt.Errorf("check index %s: %w", spec.Name, err)
	}
	if exists {
		log.Printf("Index %s already exists, skipping", spec.Name)
		return nil
	}
	if err := b.client.CreateIndex(ctx, spec.Name, body); err != nil {
		return fmt.Errorf("create index %s: %w", spec.Name, err)
	}
	log.Printf("Created index %s (profile=%s dim=%d)", spec.Name, spec.Profile, spec.Dimension)
	return nil
}

// RecreateIndex deletes the index first, invalidating every document in it.
// All documents require a full resync afterwards.
func (b *Bootstrapper) RecreateIndex(ctx context.Context, spec IndexSpec, body map[string]any) error {
	if err := b.client.DeleteIndex(ctx, spec.Name); err != nil {
		return fmt.Errorf("delete index %s: %w", spec.Name, err)
	}
	log.Printf("Deleted index %s", spec.Name)
	if err := b.client.CreateIndex(ctx, spec.Name, body); err != nil {
		return fmt.Errorf("create index %s: %w", spec.Name, err)
	}
	log.Printf("Recreated index %s (profile=%s dim=%d)", spec.Name, spec.Profile, spec.Dimension)
	return nil
}

// ItemIndexBody builds the items index definition.
func (b *Bootstrapper) ItemIndexBody(dimension int) map[string]any {
	return map[string]any{
		"settings": b.indexSettings(),
		"mappings": map[string]any{
			"properties": map[string]any{
				"id":               keywordField(),
				"store_id":         keywordField(),
				"category_id":      keywordField(),
				"name":             nameField(),
				"description":      map[string]any{"type": "text"},
				"price":            map[string]any{"type": "double"},
				"discount":         map[string]any{"type": "double"},
				"veg":              map[string]any{"type": "integer"},
				"in_stock":         map[string]any{"type": "integer"},
				"status":           map[string]any{"type": "integer"},
				"variations":       map[string]any{"type": "text", "index": false},
				"addons":           map[string]any{"type": "text", "index": false},
				"attributes":       map[string]any{"type": "text", "index": false},
				"category_name":    nameField(),
				"store_name":       nameField(),
				"store_location":   map[string]any{"type": "geo_point"},
				"combined_text":    map[string]any{"type": "text"},
				"created_at":       map[string]any{"type": "date"},
				"updated_at":       map[string]any{"type": "date"},
				schema.VectorField: b.vectorField(dimension),
			},
		},
	}
}

// StoreIndexBody builds the stores index definition.
func (b *Bootstrapper) StoreIndexBody(dimension int) map[string]any {
	return map[string]any{
		"settings": b.indexSettings(),
		"mappings": map[string]any{
			"properties": map[string]any{
				"id":               keywordField(),
				"name":             nameField(),
				"description":      map[string]any{"type": "text"},
				"address":          map[string]any{"type": "text"},
				"active":           map[string]any{"type": "integer"},
				"location":         map[string]any{"type": "geo_point"},
				"open_time":        map[string]any{"type": "integer"},
				"close_time":       map[string]any{"type": "integer"},
				"rating":           map[string]any{"type": "text", "index": false},
				"schedule":         map[string]any{"type": "text", "index": false},
				"gst":              map[string]any{"type": "text", "index": false},
				"combined_text":    map[string]any{"type": "text"},
				"created_at":       map[string]any{"type": "date"},
				"updated_at":       map[string]any{"type": "date"},
				schema.VectorField: b.vectorField(dimension),
			},
		},
	}
}

// CategoryIndexBody builds the categories index definition.
func (b *Bootstrapper) CategoryIndexBody(dimension int) map[string]any {
	return map[string]any{
		"settings": b.indexSettings(),
		"mappings": map[string]any{
			"properties": map[string]any{
				"id":               keywordField(),
				"name":             nameField(),
				"status":           map[string]any{"type": "integer"},
				"combined_text":    map[string]any{"type": "text"},
				"created_at":       map[string]any{"type": "date"},
				"updated_at":       map[string]any{"type": "date"},
				schema.VectorField: b.vectorField(dimension),
			},
		},
	}
}

func (b *Bootstrapper) indexSettings() map[string]any {
	return map[string]any{
		"index": map[string]any{
			"knn": true,
		},
		"analysis": map[string]any{
			"filter": map[string]any{
				"autocomplete_filter": map[string]any{
					"type":     "edge_ngram",
					"min_gram": 2,
					"max_gram": 15,
				},
			},
			"analyzer": map[string]any{
				"autocomplete": map[string]any{
					"type":      "custom",
					"tokenizer": "standard",
					"filter":    []string{"lowercase", "autocomplete_filter"},
				},
			},
		},
	}
}

// vectorField declares the ANN field: graph-based approximate search with
// construction and search effort fixed at index creation.
func (b *Bootstrapper) vectorField(dimension int) map[string]any {
	return map[string]any{
		"type":      "knn_vector",
		"dimension": dimension,
		"method": map[string]any{
			"name":       "hnsw",
			"space_type": "cosinesimil",
			"engine":     "nmslib",
			"parameters": map[string]any{
				"ef_construction": b.efConstruction,
				"m":               b.m,
			},
		},
	}
}

func keywordField() map[string]any {
	return map[string]any{"type": "keyword"}
}

// nameField declares keyword + text + autocomplete sub-fields for name-like
// columns.
func nameField() map[string]any {
	return map[string]any{
		"type": "text",
		"fields": map[string]any{
			"keyword": map[string]any{
				"type":         "keyword",
				"ignore_above": 256,
			},
			"autocomplete": map[string]any{
				"type":            "text",
				"analyzer":        "autocomplete",
				"search_analyzer": "standard",
			},
		},
	}
}
