/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package backend

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientAgainstHandler(t *testing.T) {
	srv, _, _ := newTestServer(t)
	ctx := context.Background()
	c := NewClient(srv.URL+"/", "")

	_, err := c.ListTemplates(ctx, "")
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.Code)

	tok, err := c.RequestToken(ctx, "desk", time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, tok)
	assert.Equal(t, tok, c.Token)

	p := testPayload(t, "Client")
	got, err := c.CreateTemplate(ctx, p, false)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	p.Name = "Client renamed"
	got, err = c.UpdateTemplate(ctx, p, true)
	require.NoError(t, err)
	assert.Equal(t, "Client renamed", got.Name)

	fetched, err := c.GetTemplate(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Client renamed", fetched.Name)

	list, err := c.ListTemplates(ctx, "renamed")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Default)

	_, err = c.GetTemplate(ctx, "missing")
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Code)
	assert.Contains(t, se.Error(), "template not found")
}

func TestClientWithTransport(t *testing.T) {
	c := NewClient("https://example.invalid/", "").WithTransport(3*time.Second, true)
	assert.Equal(t, "https://example.invalid", c.BaseURL)
	assert.Equal(t, 3*time.Second, c.client.Timeout)
	tr, ok := c.client.Transport.(*http.Transport)
	require.True(t, ok)
	assert.True(t, tr.TLSClientConfig.InsecureSkipVerify)
}
