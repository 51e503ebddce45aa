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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labeldesigner/internal/domain"
	"labeldesigner/internal/payload"
)

const testSecret = "test-secret"

func testPayload(t *testing.T, name string) payload.SavePayload {
	t.Helper()
	ser := payload.Serializer{Now: func() time.Time { return time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC) }}
	return ser.Serialize(payload.Input{
		Name:     name,
		Size:     "A4",
		Elements: domain.SampleElements(),
		Data:     domain.SampleData(),
	})
}

func newTestServer(t *testing.T) (*httptest.Server, *MemRepository, string) {
	t.Helper()
	repo := NewMemRepository()
	srv := httptest.NewServer(NewHandler(repo, testSecret))
	t.Cleanup(srv.Close)
	tok, err := signToken(testSecret, "tester", time.Now().Add(time.Hour))
	require.NoError(t, err)
	return srv, repo, tok
}

func do(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestTokenRoundTrip(t *testing.T) {
	exp := time.Now().Add(time.Minute)
	tok, err := signToken("s", "alice", exp)
	require.NoError(t, err)
	sub, err := verifyToken("s", tok)
	require.NoError(t, err)
	assert.Equal(t, "alice", sub)

	_, err = verifyToken("other", tok)
	assert.Error(t, err)
	_, err = verifyToken("s", "garbage")
	assert.Error(t, err)

	old, err := signToken("s", "alice", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	_, err = verifyToken("s", old)
	assert.Error(t, err)
}

func TestHealthAndVersion(t *testing.T) {
	srv, _, _ := newTestServer(t)
	for _, p := range []string{"/healthz", "/readyz", "/version"} {
		resp := do(t, http.MethodGet, srv.URL+p, "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode, p)
	}
}

func TestTemplatesRequireAuth(t *testing.T) {
	srv, _, _ := newTestServer(t)
	resp := do(t, http.MethodGet, srv.URL+"/api/templates", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp = do(t, http.MethodGet, srv.URL+"/api/templates", "nope.nope", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestIssueTokenEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)
	resp := do(t, http.MethodPost, srv.URL+"/api/auth/token", "", map[string]any{"subject": "bob", "ttl_seconds": 60})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	sub, err := verifyToken(testSecret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, "bob", sub)
}

func TestCreateUpdateGetList(t *testing.T) {
	srv, repo, tok := newTestServer(t)
	p := testPayload(t, "Waybill")

	resp := do(t, http.MethodPost, srv.URL+"/api/templates?default=true", tok, p)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = do(t, http.MethodPost, srv.URL+"/api/templates", tok, p)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	p.Name = "Waybill v2"
	resp = do(t, http.MethodPut, srv.URL+"/api/templates/"+p.ID, tok, p)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/api/templates/"+p.ID, tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got payload.SavePayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "Waybill v2", got.Name)
	assert.Len(t, got.Elements, len(p.Elements))

	list, err := repo.List(context.Background(), "v2")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(2), list[0].Revision)
	assert.True(t, list[0].Default)

	resp = do(t, http.MethodGet, srv.URL+"/api/templates?q=zzz", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var none []Summary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&none))
	assert.Empty(t, none)
}

func TestRejectsBadPayloads(t *testing.T) {
	srv, _, tok := newTestServer(t)
	p := testPayload(t, "Bad")

	resp := do(t, http.MethodPut, srv.URL+"/api/templates/"+p.ID, tok, p)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodPut, srv.URL+"/api/templates/other-id", tok, p)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodPost, srv.URL+"/api/templates", tok, map[string]any{"id": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/api/templates/missing", tok, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestParseVersion(t *testing.T) {
	v, err := parseVersion("migrations/0002_template_search.sql")
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)
	_, err = parseVersion("nounderscore.sql")
	assert.Error(t, err)
	_, err = parseVersion("abc_x.sql")
	assert.Error(t, err)
}

func TestEmbeddedMigrationsOrdered(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	var last int64
	for _, e := range entries {
		v, err := parseVersion(e.Name())
		require.NoError(t, err)
		assert.Greater(t, v, last)
		last = v
	}
}
