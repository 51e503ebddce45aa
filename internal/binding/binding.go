/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package binding resolves {{dotted.path}} tokens in element content against
// a nested data record. Resolution is pure: inputs are never modified and a
// miss leaves the token text in place.
package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var tokenRE = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// Lookup walks a dot-separated path through nested maps. ok is false when a
// segment is missing, an intermediate value is not a map, or the final value
// is nil or the empty string.
func Lookup(record map[string]any, path string) (string, bool) {
	path = strings.TrimSpace(path)
	if path == "" || record == nil {
		return "", false
	}
	var cur any = record
	for _, seg := range strings.Split(path, ".") {
		switch m := cur.(type) {
		case map[string]any:
			v, ok := m[seg]
			if !ok {
				return "", false
			}
			cur = v
		case map[string]string:
			v, ok := m[seg]
			if !ok {
				return "", false
			}
			cur = v
		default:
			return "", false
		}
	}
	s, ok := stringify(cur)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// stringify renders scalar values without locale formatting. Maps and slices
// do not resolve.
func stringify(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case int:
		return strconv.Itoa(t), true
	case int32:
		return strconv.FormatInt(int64(t), 10), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case uint:
		return strconv.FormatUint(uint64(t), 10), true
	case uint64:
		return strconv.FormatUint(t, 10), true
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case map[string]any, map[string]string, []any:
		return "", false
	case fmt.Stringer:
		return t.String(), true
	}
	return fmt.Sprint(v), true
}

// Resolve substitutes every token in content. Each token is resolved against
// the same record independently; unresolvable tokens are kept verbatim.
func Resolve(content string, record map[string]any) string {
	if !strings.Contains(content, "{{") {
		return content
	}
	return tokenRE.ReplaceAllStringFunc(content, func(match string) string {
		path := match[2 : len(match)-2]
		if v, ok := Lookup(record, path); ok {
			return v
		}
		return match
	})
}

// Tokens returns the trimmed token paths in order of appearance.
func Tokens(content string) []string {
	ms := tokenRE.FindAllStringSubmatch(content, -1)
	if len(ms) == 0 {
		return nil
	}
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, strings.TrimSpace(m[1]))
	}
	return out
}

// Label replaces each token with [lastSegment], the compact form the editor
// shows instead of live values.
func Label(content string) string {
	return tokenRE.ReplaceAllStringFunc(content, func(match string) string {
		path := strings.TrimSpace(match[2 : len(match)-2])
		if i := strings.LastIndex(path, "."); i >= 0 {
			path = path[i+1:]
		}
		return "[" + path + "]"
	})
}

// Missing returns the token paths of content that do not resolve against record.
func Missing(content string, record map[string]any) []string {
	var out []string
	for _, p := range Tokens(content) {
		if _, ok := Lookup(record, p); !ok {
			out = append(out, p)
		}
	}
	return out
}
