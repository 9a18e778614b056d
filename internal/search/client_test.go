package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestIndexExists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("method = %s, want HEAD", r.Method)
		}
		if r.URL.Path == "/food_items" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", "")

	exists, err := client.IndexExists(context.Background(), "food_items")
	if err != nil || !exists {
		t.Errorf("IndexExists(food_items) = %v, %v, want true, nil", exists, err)
	}
	exists, err = client.IndexExists(context.Background(), "missing")
	if err != nil || exists {
		t.Errorf("IndexExists(missing) = %v, %v, want false, nil", exists, err)
	}
}

func TestCreateIndexAlreadyExists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":{"type":"resource_already_exists_exception"}}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", "")
	err := client.CreateIndex(context.Background(), "food_items", map[string]any{})
	if err != nil {
		t.Errorf("CreateIndex on existing index = %v, want nil", err)
	}
}

func TestCreateIndexOtherError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":{"type":"mapper_parsing_exception"}}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", "")
	if err := client.CreateIndex(context.Background(), "food_items", map[string]any{}); err == nil {
		t.Error("expected error for mapping failure")
	}
}

func TestDeleteIndexMissingTolerated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error":{"type":"index_not_found_exception"}}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", "")
	if err := client.DeleteIndex(context.Background(), "gone"); err != nil {
		t.Errorf("DeleteIndex on missing index = %v, want nil", err)
	}
}

func TestBulkSendsNDJSONWithDeferredRefresh(t *testing.T) {
	var gotPath, gotContentType, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		gotContentType = r.Header.Get("Content-Type")
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		json.NewEncoder(w).Encode(BulkResponse{})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", "")
	body := []byte(`{"index":{"_index":"food_items","_id":"501"}}` + "\n" + `{"id":"501"}` + "\n")
	if _, err := client.Bulk(context.Background(), body); err != nil {
		t.Fatalf("Bulk: %v", err)
	}

	if gotPath != "/_bulk?refresh=false" {
		t.Errorf("path = %q, want /_bulk?refresh=false", gotPath)
	}
	if gotContentType != "application/x-ndjson" {
		t.Errorf("content type = %q, want application/x-ndjson", gotContentType)
	}
	if !strings.HasSuffix(gotBody, "\n") {
		t.Error("bulk body must end with a newline")
	}
}

func TestBulkBasicAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "admin" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(BulkResponse{})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "admin", "secret")
	if _, err := client.Bulk(context.Background(), []byte("{}\n")); err != nil {
		t.Fatalf("Bulk with auth: %v", err)
	}
}

func TestFailedItems(t *testing.T) {
	resp := &BulkResponse{
		Errors: true,
		Items: []map[string]bulkItemResult{
			{"index": {ID: "501", Status: 200}},
			{"index": {ID: "502", Status: 400, Error: &BulkItemError{
				Type: "mapper_parsing_exception", Reason: "failed to parse field",
			}}},
			{"index": {ID: "503", Status: 429}},
		},
	}

	failed := resp.FailedItems()
	if len(failed) != 2 {
		t.Fatalf("got %d failed items, want 2: %v", len(failed), failed)
	}
	if !strings.Contains(failed["502"], "mapper_parsing_exception") {
		t.Errorf("failed[502] = %q", failed["502"])
	}
	if failed["503"] != "status 429" {
		t.Errorf("failed[503] = %q, want status 429", failed["503"])
	}
}
