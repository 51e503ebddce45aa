/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"errors"
	"fmt"

	"labeldesigner/internal/domain"
	"labeldesigner/internal/storage"
)

// OpenDir resumes the template project at dir.
func OpenDir(dir string, opts Options) (*Session, *storage.TemplateHandle, error) {
	th, err := storage.Open(dir)
	if err != nil {
		return nil, nil, err
	}
	s, err := Open(th.Payload, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", dir, err)
	}
	return s, th, nil
}

// OpenOrNew resumes dir, or starts a session over the sample layout when dir
// is empty or holds no template yet. The handle is nil for new sessions.
func OpenOrNew(dir string, opts Options) (*Session, *storage.TemplateHandle, error) {
	if dir != "" {
		s, th, err := OpenDir(dir, opts)
		if !errors.Is(err, storage.ErrNoTemplate) {
			return s, th, err
		}
	}
	s, err := New(opts, domain.SampleElements()...)
	return s, nil, err
}
