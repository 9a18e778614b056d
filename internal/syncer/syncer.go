// Package syncer drives the relational-to-search synchronization passes:
// change detection, denormalization, vector enrichment and bulk indexing.
package syncer

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/DreamCats/searchsync/internal/config"
	"github.com/DreamCats/searchsync/internal/schema"
	"github.com/DreamCats/searchsync/internal/search"
	"github.com/DreamCats/searchsync/internal/source"
)

const queryTimeout = 30 * time.Second

// Embedder is the slice of the embedding service the pipeline needs.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string, profile string) ([][]float32, error)
	Dimensions(profile string) int
}

// DocWriter is the slice of the index writer the pipeline needs.
type DocWriter interface {
	BulkUpsert(ctx context.Context, index string, dimension int, docs []schema.Document) (search.WriteResult, error)
	RefreshIndex(ctx context.Context, index string) error
}

// EntityPlan binds one entity type to its target index and embedding profile.
type EntityPlan struct {
	Entity    source.EntityType
	Index     string
	Profile   string
	Dimension int
}

// IndexName returns the index for an entity type under the configured prefix.
func IndexName(prefix string, entity source.EntityType) string {
	switch entity {
	case source.EntityItem:
		return prefix + "items"
	case source.EntityStore:
		return prefix + "stores"
	case source.EntityCategory:
		return prefix + "categories"
	}
	return prefix + string(entity)
}

// Profile returns the embedding profile an entity type indexes under.
func Profile(cfg *config.EmbeddingConfig, entity source.EntityType) string {
	if entity == source.EntityItem {
		return cfg.ItemProfile
	}
	return cfg.GeneralProfile
}

// Syncer runs full synchronization passes. Entity types are processed
// sequentially to bound load on the shared embedding service and engine;
// upserts are idempotent by key, so there is no locking.
type Syncer struct {
	db        *source.DB
	embed     Embedder // nil when vector enrichment is disabled
	writer    DocWriter
	plans     []EntityPlan
	lookback  time.Duration
	batchSize int
	progress  ProgressReporter
}

// New assembles a syncer from its collaborators. embed may be nil to sync
// scalar fields only.
func New(cfg *config.Config, db *source.DB, embed Embedder, writer DocWriter) *Syncer {
	plans := make([]EntityPlan, 0, len(source.AllEntityTypes()))
	for _, entity := range source.AllEntityTypes() {
		profile := Profile(&cfg.Embedding, entity)
		dimension := 0
		if embed != nil {
			dimension = embed.Dimensions(profile)
		}
		plans = append(plans, EntityPlan{
			Entity:    entity,
			Index:     IndexName(cfg.Search.IndexPrefix, entity),
			Profile:   profile,
			Dimension: dimension,
		})
	}
	return &Syncer{
		db:        db,
		embed:     embed,
		writer:    writer,
		plans:     plans,
		lookback:  time.Duration(cfg.Sync.LookbackMinutes) * time.Minute,
		batchSize: cfg.Embedding.BatchSize,
		progress:  NewProgress(false),
	}
}

// SetProgress swaps in a progress reporter for interactive runs.
func (s *Syncer) SetProgress(p ProgressReporter) {
	if p != nil {
		s.progress = p
	}
}

// Plans exposes the per-entity plans (used by bootstrap and tests).
func (s *Syncer) Plans() []EntityPlan {
	return s.plans
}

// FilterEntities restricts a pass to the named entity types.
func (s *Syncer) FilterEntities(names []string) error {
	if len(names) == 0 {
		return nil
	}
	keep := make(map[string]bool, len(names))
	for _, n := range names {
		keep[n] = true
	}
	filtered := make([]EntityPlan, 0, len(s.plans))
	for _, p := range s.plans {
		if keep[string(p.Entity)] {
			delete(keep, string(p.Entity))
			filtered = append(filtered, p)
		}
	}
	for n := range keep {
		return fmt.Errorf("unknown entity type: %s", n)
	}
	s.plans = filtered
	return nil
}

// RunPass executes one full pass over every planned entity type. Work is
// derived purely from the lookback window; there is no persisted checkpoint.
// The returned summary carries partial failures instead of an error.
func (s *Syncer) RunPass(ctx context.Context) *Summary {
	summary := &Summary{
		RunID:   uuid.NewString()[:8],
		Started: time.Now(),
	}
	since := summary.Started.Add(-s.lookback)
	log.Printf("[%s] Starting sync pass (lookback=%v, since=%s)",
		summary.RunID, s.lookback, since.UTC().Format(time.RFC3339))

	qctx, cancel := context.WithTimeout(ctx, queryTimeout)
	lookups, err := s.db.LoadLookups(qctx)
	cancel()
	if err != nil {
		// Without the side tables every document would denormalize wrong
		// names, so the whole pass is skipped and the next tick retries.
		log.Printf("[%s] Pass aborted: %v", summary.RunID, err)
		for _, plan := range s.plans {
			summary.Entities = append(summary.Entities, EntitySummary{
				Entity:     string(plan.Entity),
				QueryError: fmt.Sprintf("load lookups: %v", err),
			})
		}
		summary.Duration = time.Since(summary.Started)
		return summary
	}

	for _, plan := range s.plans {
		es := s.syncEntity(ctx, plan, since, lookups)
		log.Printf("[%s] %s: scanned=%d indexed=%d failed=%d degraded_batches=%d",
			summary.RunID, es.Entity, es.Scanned, es.Indexed, es.Failed, es.DegradedBatches)
		summary.Entities = append(summary.Entities, es)
	}

	summary.Duration = time.Since(summary.Started)
	return summary
}

// syncEntity runs one entity type's pass: detect, enrich, embed in batches,
// map, bulk upsert, then one explicit refresh.
func (s *Syncer) syncEntity(ctx context.Context, plan EntityPlan, since time.Time, lookups *source.Lookups) EntitySummary {
	es := EntitySummary{Entity: string(plan.Entity)}

	docs, err := s.collectDocuments(ctx, plan.Entity, since, lookups)
	if err != nil {
		es.QueryError = err.Error()
		return es
	}
	es.Scanned = len(docs)
	if len(docs) == 0 {
		return es
	}

	s.progress.Start(string(plan.Entity), len(docs))
	defer s.progress.Finish()

	for start := 0; start < len(docs); start += s.batchSize {
		end := start + s.batchSize
		if end > len(docs) {
			end = len(docs)
		}
		batch := docs[start:end]

		if s.embed != nil {
			if !s.embedBatch(ctx, plan, batch) {
				es.DegradedBatches++
			}
		}

		result, err := s.writer.BulkUpsert(ctx, plan.Index, plan.Dimension, batch)
		es.Indexed += result.Indexed
		es.Failed += result.Failed
		if err != nil {
			// An index write failure aborts this entity type's pass; other
			// entity types still run.
			es.QueryError = err.Error()
			return es
		}
		s.progress.Add(len(batch))
	}

	if err := s.writer.RefreshIndex(ctx, plan.Index); err != nil {
		log.Printf("Warning: refresh %s failed: %v", plan.Index, err)
	}
	return es
}

// embedBatch attaches vectors to a batch of documents in place. Returns
// false when the batch degraded (documents keep their scalar fields and are
// written without vectors).
func (s *Syncer) embedBatch(ctx context.Context, plan EntityPlan, batch []schema.Document) bool {
	texts := make([]string, len(batch))
	for i, doc := range batch {
		texts[i] = doc.CombinedText()
	}
	vectors, err := s.embed.EmbedBatch(ctx, texts, plan.Profile)
	if err != nil {
		log.Printf("Warning: embedding batch for %s degraded: %v", plan.Index, err)
		return false
	}
	for i, vec := range vectors {
		if len(vec) > 0 {
			batch[i].SetVector(vec)
		}
	}
	return true
}

func (s *Syncer) collectDocuments(ctx context.Context, entity source.EntityType, since time.Time, lookups *source.Lookups) ([]schema.Document, error) {
	qctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	switch entity {
	case source.EntityItem:
		rows, err := s.db.ChangedItems(qctx, since)
		if err != nil {
			return nil, err
		}
		docs := make([]schema.Document, 0, len(rows))
		for _, row := range rows {
			docs = append(docs, schema.MapItem(row, lookups))
		}
		return docs, nil
	case source.EntityStore:
		rows, err := s.db.ChangedStores(qctx, since)
		if err != nil {
			return nil, err
		}
		docs := make([]schema.Document, 0, len(rows))
		for _, row := range rows {
			docs = append(docs, schema.MapStore(row))
		}
		return docs, nil
	case source.EntityCategory:
		rows, err := s.db.ChangedCategories(qctx, since)
		if err != nil {
			return nil, err
		}
		docs := make([]schema.Document, 0, len(rows))
		for _, row := range rows {
			docs = append(docs, schema.MapCategory(row))
		}
		return docs, nil
	}
	return nil, fmt.Errorf("unknown entity type: %s", entity)
}
