/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package share connects the editor to the optional drawing-share
// service: a thin HTTP client for the desktop side and the companion
// server storing published drawings in Postgres.
package share

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a minimal HTTP client for the share API. It is used by the
// desktop app under a feature flag; all calls are optional extras.
type Client struct {
	BaseURL string
	Token   string // bearer token
	client  *http.Client
}

// ClientOptions tune the HTTP transport.
type ClientOptions struct {
	Timeout     time.Duration
	TLSInsecure bool
}

// NewClient creates a share client. baseURL may include a trailing
// slash; it is normalized.
func NewClient(baseURL, token string, opt ClientOptions) *Client {
	if opt.Timeout <= 0 {
		opt.Timeout = 10 * time.Second
	}
	hc := &http.Client{Timeout: opt.Timeout}
	if opt.TLSInsecure {
		hc.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		client:  hc,
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, body io.Reader, dest any) error {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("server %s %s: %s", method, u.Path, resp.Status)
	}
	if dest == nil {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	return dec.Decode(dest)
}

// Drawing is the listing projection of a published drawing.
type Drawing struct {
	ID        int64     `json:"id"`
	StableID  string    `json:"stable_id"`
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int64     `json:"version"`
}

// ListDrawings returns the published drawings, newest first.
func (c *Client) ListDrawings(ctx context.Context) ([]Drawing, error) {
	var list []Drawing
	if err := c.doJSON(ctx, http.MethodGet, "/api/drawings", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SnapshotEnvelope matches the server response for the latest snapshot
// of a drawing. Document is the canonical JSON document, decoded.
type SnapshotEnvelope struct {
	DrawingID int64  `json:"drawing_id"`
	Version   int64  `json:"version"`
	CreatedAt string `json:"created_at"`
	Document  any    `json:"document"`
}

// GetDrawing fetches the latest snapshot for a drawing.
func (c *Client) GetDrawing(ctx context.Context, drawingID int64) (*SnapshotEnvelope, error) {
	var env SnapshotEnvelope
	path := fmt.Sprintf("/api/drawings/%d", drawingID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// Publish uploads a canonical JSON document under the given name,
// creating the drawing or appending a new snapshot version.
func (c *Client) Publish(ctx context.Context, name, canonicalJSON string) (*Drawing, error) {
	payload, err := json.Marshal(map[string]any{
		"name":     name,
		"document": json.RawMessage(canonicalJSON),
	})
	if err != nil {
		return nil, err
	}
	var d Drawing
	if err := c.doJSON(ctx, http.MethodPost, "/api/drawings", bytes.NewReader(payload), &d); err != nil {
		return nil, err
	}
	return &d, nil
}
