/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package backend

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

	"labeldesigner/internal/payload"
)

// Client talks to the template server.
type Client struct {
	BaseURL string
	Token   string // bearer token
	client  *http.Client
}

// NewClient creates a client. A trailing slash on baseURL is dropped.
func NewClient(baseURL string, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// WithTransport sets the request timeout and, for self-signed development
// servers, disables certificate verification.
func (c *Client) WithTransport(timeout time.Duration, insecure bool) *Client {
	if timeout > 0 {
		c.client.Timeout = timeout
	}
	if insecure {
		c.client.Transport = &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}} //nolint:gosec // opt-in via config
	}
	return c
}

// StatusError is a non-2xx server reply.
type StatusError struct {
	Method  string
	Path    string
	Code    int
	Status  string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server %s %s: %s: %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("server %s %s: %s", e.Method, e.Path, e.Status)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, dest any) error {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return err
	}
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
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
		se := &StatusError{Method: method, Path: u.Path, Code: resp.StatusCode, Status: resp.Status}
		var e struct {
			Error string `json:"error"`
		}
		if b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10)); json.Unmarshal(b, &e) == nil {
			se.Message = e.Error
		}
		return se
	}
	if dest == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

// RequestToken asks the server for a bearer token and stores it on the client.
func (c *Client) RequestToken(ctx context.Context, subject string, ttl time.Duration) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	req := map[string]any{"subject": subject, "ttl_seconds": int64(ttl / time.Second)}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/token", req, &out); err != nil {
		return "", err
	}
	c.Token = out.Token
	return out.Token, nil
}

// ListTemplates returns summaries matching query (all when empty).
func (c *Client) ListTemplates(ctx context.Context, query string) ([]Summary, error) {
	p := "/api/templates"
	if query != "" {
		p += "?q=" + url.QueryEscape(query)
	}
	var list []Summary
	if err := c.doJSON(ctx, http.MethodGet, p, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetTemplate fetches one stored payload.
func (c *Client) GetTemplate(ctx context.Context, id string) (payload.SavePayload, error) {
	var p payload.SavePayload
	err := c.doJSON(ctx, http.MethodGet, "/api/templates/"+url.PathEscape(id), nil, &p)
	return p, err
}

// CreateTemplate POSTs a new template and returns the accepted payload.
func (c *Client) CreateTemplate(ctx context.Context, p payload.SavePayload, asDefault bool) (payload.SavePayload, error) {
	var out payload.SavePayload
	err := c.doJSON(ctx, http.MethodPost, "/api/templates"+defaultQuery(asDefault), p, &out)
	return out, err
}

// UpdateTemplate PUTs p over the stored template with the same id.
func (c *Client) UpdateTemplate(ctx context.Context, p payload.SavePayload, asDefault bool) (payload.SavePayload, error) {
	var out payload.SavePayload
	err := c.doJSON(ctx, http.MethodPut, "/api/templates/"+url.PathEscape(p.ID)+defaultQuery(asDefault), p, &out)
	return out, err
}

func defaultQuery(asDefault bool) string {
	if asDefault {
		return "?default=true"
	}
	return ""
}
