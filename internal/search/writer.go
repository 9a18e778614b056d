package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/DreamCats/searchsync/internal/schema"
)

// WriteResult aggregates one bulk upsert's outcome. Per-document failures
// are counted, not raised; a failed document never blocks its siblings.
type WriteResult struct {
	Indexed int
	Failed  int
	Samples []string
}

func (r *WriteResult) addFailure(key, reason string) {
	r.Failed++
	if len(r.Samples) < 5 {
		r.Samples = append(r.Samples, fmt.Sprintf("%s: %s", key, reason))
	}
	log.Printf("Warning: document %s failed: %s", key, reason)
}

// Writer performs bulk upserts of mapped documents into one index.
type Writer struct {
	client *Client
}

func NewWriter(client *Client) *Writer {
	return &Writer{client: client}
}

// BulkUpsert writes documents keyed by their stringified primary key with
// refresh deferred. dimension is the index's declared vector dimension;
// documents carrying a vector of any other length are rejected here rather
// than silently truncated. Documents without a vector pass through (the
// degraded no-embedding path).
func (w *Writer) BulkUpsert(ctx context.Context, index string, dimension int, docs []schema.Document) (WriteResult, error) {
	var result WriteResult
	if len(docs) == 0 {
		return result, nil
	}

	var body bytes.Buffer
	queued := make([]string, 0, len(docs))
	for _, doc := range docs {
		id := doc.ID()
		if id == "" {
			result.addFailure("(missing id)", "document has no primary key")
			continue
		}
		if vec, ok := doc[schema.VectorField].([]float32); ok && dimension > 0 && len(vec) != dimension {
			result.addFailure(id, fmt.Sprintf("vector length %d does not match index dimension %d", len(vec), dimension))
			continue
		}

		action, err := json.Marshal(map[string]any{
			"index": map[string]any{"_index": index, "_id": id},
		})
		if err != nil {
			result.addFailure(id, err.Error())
			continue
		}
		payload, err := json.Marshal(doc)
		if err != nil {
			result.addFailure(id, err.Error())
			continue
		}
		body.Write(action)
		body.WriteByte('\n')
		body.Write(payload)
		body.WriteByte('\n')
		queued = append(queued, id)
	}

	if len(queued) == 0 {
		return result, nil
	}

	resp, err := w.client.Bulk(ctx, body.Bytes())
	if err != nil {
		return result, fmt.Errorf("bulk upsert to %s: %w", index, err)
	}

	failed := resp.FailedItems()
	for _, id := range queued {
		if reason, ok := failed[id]; ok {
			result.addFailure(id, reason)
		} else {
			result.Indexed++
		}
	}
	return result, nil
}

// RefreshIndex makes the batch's writes query-visible.
func (w *Writer) RefreshIndex(ctx context.Context, index string) error {
	return w.client.Refresh(ctx, index)
}
