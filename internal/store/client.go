// Package store persists résumé records in pathstore, a hierarchical
// key/value service reached over HTTP.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrNotFound is returned when a key does not exist.
var ErrNotFound = errors.New("not found")

// Client communicates with the pathstore HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NodeRequest is the body for PUT /kv/{key}.
type NodeRequest struct {
	Value      any     `json:"value"`
	MergeMode  string  `json:"merge_mode,omitempty"`
	MemoryType string  `json:"memory_type,omitempty"`
	Salience   float64 `json:"salience,omitempty"`
	Source     string  `json:"source,omitempty"`
	ExpiresAt  string  `json:"expires_at,omitempty"`
}

// Node is a stored key and its raw value.
type Node struct {
	Key   string          `json:"key_path"`
	Value json.RawMessage `json:"value"`
}

// PutNode stores or updates a node at the given path.
func (c *Client) PutNode(ctx context.Context, key string, req NodeRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal node: %w", err)
	}
	resp, err := c.do(ctx, http.MethodPut, "/kv/"+key, body)
	if err != nil {
		return fmt.Errorf("put node: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return statusError("put node "+key, resp)
	}
	return nil
}

// GetNode retrieves a node by key. A missing key yields ErrNotFound.
func (c *Client) GetNode(ctx context.Context, key string) (*Node, error) {
	resp, err := c.do(ctx, http.MethodGet, "/kv/"+key, nil)
	if err != nil {
		return nil, fmt.Errorf("get node: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("get node %s: %w", key, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError("get node "+key, resp)
	}

	var node Node
	if err := json.NewDecoder(resp.Body).Decode(&node); err != nil {
		return nil, fmt.Errorf("decode node: %w", err)
	}
	return &node, nil
}

// DeleteNode deletes a node and optionally its children.
func (c *Client) DeleteNode(ctx context.Context, key string, recursive bool) error {
	path := "/kv/" + key
	if recursive {
		path += "?children=true"
	}
	resp, err := c.do(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return fmt.Errorf("delete node: %w", err)
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return fmt.Errorf("delete node %s: %w", key, ErrNotFound)
	}
	return statusError("delete node "+key, resp)
}

// ListChildren does a prefix scan under the given key.
func (c *Client) ListChildren(ctx context.Context, key string, limit int) ([]Node, error) {
	path := "/kv/" + key + "/*"
	if limit > 0 {
		path += "?limit=" + url.QueryEscape(strconv.Itoa(limit))
	}
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError("list children "+key, resp)
	}

	var result struct {
		Nodes []Node `json:"nodes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode children: %w", err)
	}
	return result.Nodes, nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	return c.httpClient.Do(req)
}

func statusError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return fmt.Errorf("%s: status %d: %s", op, resp.StatusCode, strings.TrimSpace(string(body)))
}
