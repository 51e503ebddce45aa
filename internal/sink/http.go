/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package sink

import (
	"context"

	"labeldesigner/internal/backend"
	"labeldesigner/internal/payload"
)

// HTTPSink posts new templates and puts updates to the template server.
type HTTPSink struct {
	Client *backend.Client
	// AsDefault marks saved templates as the server-side default.
	AsDefault bool
}

// NewHTTPSink targets baseURL with an optional bearer token.
func NewHTTPSink(baseURL, token string) *HTTPSink {
	return &HTTPSink{Client: backend.NewClient(baseURL, token)}
}

func (s *HTTPSink) Create(ctx context.Context, p payload.SavePayload) (payload.SavePayload, error) {
	return s.Client.CreateTemplate(ctx, p, s.AsDefault)
}

func (s *HTTPSink) Update(ctx context.Context, p payload.SavePayload) (payload.SavePayload, error) {
	return s.Client.UpdateTemplate(ctx, p, s.AsDefault)
}
