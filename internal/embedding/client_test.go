package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newEmbedServer(t *testing.T, dims int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			json.NewEncoder(w).Encode(map[string]any{
				"models": map[string]any{
					"food":    map[string]int{"dimensions": 768},
					"general": map[string]int{"dimensions": 384},
				},
			})
		case "/embed":
			var req embedRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			vectors := make([][]float32, len(req.Texts))
			for i := range req.Texts {
				vec := make([]float32, dims)
				vec[0] = float32(i + 1)
				vectors[i] = vec
			}
			json.NewEncoder(w).Encode(embedResponse{Embeddings: vectors})
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestHTTPClientHealth(t *testing.T) {
	srv := newEmbedServer(t, 4)
	defer srv.Close()

	client := NewHTTPClient(srv.URL, true, 5*time.Second)
	models, err := client.Health(context.Background())
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if models["food"].Dimensions != 768 {
		t.Errorf("food dimensions = %d, want 768", models["food"].Dimensions)
	}
	if models["general"].Dimensions != 384 {
		t.Errorf("general dimensions = %d, want 384", models["general"].Dimensions)
	}
}

func TestHTTPClientEmbedBatch(t *testing.T) {
	srv := newEmbedServer(t, 4)
	defer srv.Close()

	client := NewHTTPClient(srv.URL, true, 5*time.Second)
	vectors, err := client.EmbedBatch(context.Background(), []string{"Veg Thali", "Annapurna"}, "food")
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("got %d vectors, want 2", len(vectors))
	}
	if len(vectors[0]) != 4 {
		t.Errorf("vector dimension = %d, want 4", len(vectors[0]))
	}
}

func TestHTTPClientEmbedBatchCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embedResponse{Embeddings: [][]float32{{0.1}}})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, true, 5*time.Second)
	if _, err := client.EmbedBatch(context.Background(), []string{"a", "b"}, "food"); err == nil {
		t.Fatal("expected error on count mismatch")
	}
}

func TestHTTPClientServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model load failed", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, true, 5*time.Second)
	if _, err := client.EmbedBatch(context.Background(), []string{"a"}, "food"); err == nil {
		t.Fatal("expected error on 500")
	}
}

func TestHTTPClientHealthNoModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"models": map[string]any{}})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, true, 5*time.Second)
	if _, err := client.Health(context.Background()); err == nil {
		t.Fatal("expected error when no models are loaded")
	}
}
