// Package search talks to the search engine's REST API: index lifecycle,
// bulk upsert and explicit refresh. The engine is an external collaborator;
// only its interface boundary lives here.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Client struct {
	baseURL  string
	username string
	password string
	client   *http.Client
}

func NewClient(endpoint, username, password string) *Client {
	return &Client{
		baseURL:  strings.TrimRight(endpoint, "/"),
		username: username,
		password: password,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

// Ping verifies the engine is reachable. Used at startup; unreachable is fatal.
func (c *Client) Ping(ctx context.Context) error {
	_, _, err := c.doRequest(ctx, http.MethodGet, "/", nil)
	return err
}

// IndexExists reports whether the named index exists.
func (c *Client) IndexExists(ctx context.Context, name string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/"+name, nil)
	if err != nil {
		return false, err
	}
	c.auth(req)
	resp, err := c.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	switch {
	case resp.StatusCode == http.StatusOK:
		return true, nil
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("index exists check status %d", resp.StatusCode)
	}
}

// CreateIndex creates an index with the given settings and mappings.
// "Already exists" is treated as success so re-running bootstrap is safe.
func (c *Client) CreateIndex(ctx context.Context, name string, body map[string]any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	_, respBody, err := c.doRequest(ctx, http.MethodPut, "/"+name, data)
	if err != nil {
		if strings.Contains(string(respBody), "resource_already_exists_exception") {
			return nil
		}
		return err
	}
	return nil
}

// DeleteIndex removes an index. Missing indices are not an error.
func (c *Client) DeleteIndex(ctx context.Context, name string) error {
	_, respBody, err := c.doRequest(ctx, http.MethodDelete, "/"+name, nil)
	if err != nil {
		if strings.Contains(string(respBody), "index_not_found_exception") {
			return nil
		}
		return err
	}
	return nil
}

// Refresh makes recently written documents visible to queries. Issued once
// per entity type per pass; bulk writes themselves defer refresh.
func (c *Client) Refresh(ctx context.Context, name string) error {
	_, _, err := c.doRequest(ctx, http.MethodPost, "/"+name+"/_refresh", nil)
	return err
}

// BulkItemError describes one failed action inside a bulk response.
type BulkItemError struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

type bulkItemResult struct {
	ID     string         `json:"_id"`
	Status int            `json:"status"`
	Error  *BulkItemError `json:"error,omitempty"`
}

// BulkResponse is the engine's per-item bulk outcome.
type BulkResponse struct {
	Errors bool                        `json:"errors"`
	Items  []map[string]bulkItemResult `json:"items"`
}

// FailedItems returns the keys and reasons of individually failed actions.
func (r *BulkResponse) FailedItems() map[string]string {
	failed := make(map[string]string)
	for _, item := range r.Items {
		for _, result := range item {
			if result.Error != nil {
				failed[result.ID] = result.Error.Type + ": " + result.Error.Reason
			} else if result.Status >= 400 {
				failed[result.ID] = fmt.Sprintf("status %d", result.Status)
			}
		}
	}
	return failed
}

// Bulk submits a newline-delimited JSON bulk body with refresh deferred.
// One bad document never fails its siblings; failures come back per item.
func (c *Client) Bulk(ctx context.Context, body []byte) (*BulkResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/_bulk?refresh=false", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-ndjson")
	c.auth(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("bulk status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var parsed BulkResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse bulk response: %w", err)
	}
	return &parsed, nil
}

func (c *Client) auth(req *http.Request) {
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
}

func (c *Client) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, []byte, error) {
	var buf io.Reader
	if body != nil {
		buf = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.auth(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, data, fmt.Errorf("search engine status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return data, data, nil
}
