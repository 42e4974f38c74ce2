// Copyright 2025 Itinera
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package travel

import (
	"strconv"
	"strings"
)

// Loose-typing helpers for provider payloads decoded into map[string]any.
// Providers disagree on whether numbers arrive as JSON numbers or strings,
// so every accessor coerces.

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func asInt(v any) (int, bool) {
	f, ok := asFloat(v)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// parseMoney coerces price strings such as "$1,234" or "1234.50 USD" into a
// float amount. Returns false when no digits are present.
func parseMoney(v any) (float64, bool) {
	if f, ok := asFloat(v); ok {
		return f, true
	}
	s := asString(v)
	if s == "" {
		return 0, false
	}
	var sb strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return 0, false
	}
	f, err := strconv.ParseFloat(sb.String(), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
