/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package telemetry

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collector records request bodies per path.
type collector struct {
	mu     sync.Mutex
	bodies map[string][][]byte
}

func newCollector(t *testing.T) (*collector, *httptest.Server) {
	t.Helper()
	c := &collector{bodies: map[string][][]byte{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		c.mu.Lock()
		c.bodies[r.URL.Path] = append(c.bodies[r.URL.Path], b)
		c.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return c, srv
}

func (c *collector) get(path string) [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.bodies[path]...)
}

func (c *collector) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, b := range c.bodies {
		n += len(b)
	}
	return n
}

func TestClientSendsEventsAndCrashes(t *testing.T) {
	col, srv := newCollector(t)
	c := New(Config{OptIn: true, EventsURL: srv.URL + "/events", CrashURL: srv.URL + "/crash", Timeout: 2 * time.Second})
	defer c.Close()
	require.True(t, c.Enabled())

	c.Event(EventTemplateSaved, map[string]any{"elements": 3, "size": "A5"})
	c.Flush(t.Context())
	require.Eventually(t, func() bool { return len(col.get("/events")) > 0 }, 2*time.Second, 10*time.Millisecond)

	var m map[string]any
	require.NoError(t, json.Unmarshal(col.get("/events")[0], &m))
	assert.Equal(t, EventTemplateSaved, m["name"])
	assert.Equal(t, float64(3), m["elements"])
	assert.Equal(t, "A5", m["size"])
	assert.IsType(t, "", m["ts"])

	c.UploadCrash([]byte("STACKTRACE"))
	require.Eventually(t, func() bool { return len(col.get("/crash")) > 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, string(col.get("/crash")[0]), "STACKTRACE")
}

func TestDisabledClientSendsNothing(t *testing.T) {
	col, srv := newCollector(t)

	off := New(Config{OptIn: false, EventsURL: srv.URL + "/events", CrashURL: srv.URL + "/crash", Timeout: time.Second})
	defer off.Close()
	assert.False(t, off.Enabled())
	off.Event(EventElementAdded, map[string]any{"type": "field"})
	off.UploadCrash([]byte("ignored"))

	on := New(Config{OptIn: true, EventsURL: srv.URL + "/events", Timeout: time.Second})
	defer on.Close()
	on.Event("", nil)
	on.Flush(t.Context())

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, col.total())
}

func TestUnreachableEndpointsAreIgnored(t *testing.T) {
	c := New(Config{
		OptIn:        true,
		EventsURL:    "http://127.0.0.1:1/events",
		CrashURL:     "http://127.0.0.1:1/crash",
		Timeout:      50 * time.Millisecond,
		DebugLogging: true,
	})
	c.Event(EventElementAdded, map[string]any{"type": "image"})
	c.Flush(t.Context())
	c.UploadCrash([]byte("oops"))
	c.Close()
}

func TestNilClientIsSafe(t *testing.T) {
	var c *Client
	assert.False(t, c.Enabled())
	assert.NotPanics(t, func() { c.Event(EventAppStarted, nil) })
}

func TestDefaultClientFromEnv(t *testing.T) {
	t.Setenv("LD_TELEMETRY_OPT_IN", "yes")
	t.Setenv("LD_TELEMETRY_URL", "http://127.0.0.1:0")
	t.Setenv("LD_CRASH_UPLOAD_URL", "")
	t.Setenv("LD_TELEMETRY_TIMEOUT_MS", "100")

	cfg := FromEnv()
	assert.True(t, cfg.OptIn)
	assert.NotEmpty(t, cfg.EventsURL)
	assert.Equal(t, 100*time.Millisecond, cfg.Timeout)

	NewDefault(cfg)
	assert.True(t, Enabled())
	NewDefault(Config{})
	assert.False(t, Enabled())
}
