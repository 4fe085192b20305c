// Copyright © 2025 Kaleido, Inc.
//
// SPDX-License-Identifier: Apache-2.0
//
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

package confutil

import (
	"cmp"
	"time"

	"github.com/docker/go-units"
)

// Config structs hold pointers so an unset field is distinct from a zero one, and these helpers
// resolve a field against its default. The log package is configured through here, so nothing here logs.

func P[T any](v T) *T {
	return &v
}

// Value returns the configured value, or def when the field is unset
func Value[T any](v *T, def T) T {
	if v == nil {
		return def
	}
	return *v
}

// Min is Value raised to at least min
func Min[T cmp.Ordered](v *T, min, def T) T {
	return max(Value(v, def), min)
}

func StringNotEmpty(v *string, def string) string {
	if s := Value(v, ""); s != "" {
		return s
	}
	return def
}

// Slice keeps an explicitly empty list, only a missing one takes the default
func Slice[T any](v []T, def []T) []T {
	if v == nil {
		return def
	}
	return v
}

// DurationMin parses a Go duration such as "30s", an unparseable value takes the default
func DurationMin(v *string, min time.Duration, def string) time.Duration {
	return max(parseOr(v, def, time.ParseDuration), min)
}

// ByteSize parses a size such as "100Mb" in binary multiples, an unparseable value takes the default
func ByteSize(v *string, min int64, def string) int64 {
	return max(parseOr(v, def, units.RAMInBytes), min)
}

func parseOr[T any](v *string, def string, parse func(string) (T, error)) T {
	if v != nil {
		if parsed, err := parse(*v); err == nil {
			return parsed
		}
	}
	parsed, _ := parse(def)
	return parsed
}
