/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package ui is the desktop designer: field palette, editing canvas, data
// form and live preview. The fyne front end is only compiled with -tags fyne;
// Controller carries the canvas input handling for every build.
package ui

import (
	"labeldesigner/internal/config"
	"labeldesigner/internal/sink"
	"labeldesigner/internal/storage"
)

// Options configures Run.
type Options struct {
	// Dir is the template project to open. Empty starts an unsaved template.
	Dir    string
	Config config.AppConfig
	// Sink receives saves. Nil writes into Dir through a FileSink.
	Sink    sink.Sink
	Catalog *storage.Catalog
}
