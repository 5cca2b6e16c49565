// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package cachekey builds deterministic cache keys from a resource path and a
set of already-normalized query parameters.

Two parameter sets with the same key/value pairs always produce the same key,
whatever order they were collected in; any added, removed or changed pair
produces a different key.

	cachekey.Build("/api/v1/chapters", map[string]string{"page": "1", "limit": "10"})
	// "/api/v1/chapters?limit=10&page=1"

Values are used verbatim, so callers must normalize them first (for example
"02" → "2"); otherwise equivalent requests land on different keys.
*/
package cachekey

import (
	"sort"
	"strings"
)

// Build returns "base?k1=v1&k2=v2..." with keys sorted lexicographically.
func Build(base string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var builder strings.Builder
	builder.WriteString(base)
	builder.WriteByte('?')

	for i, key := range keys {
		if i > 0 {
			builder.WriteByte('&')
		}
		builder.WriteString(key)
		builder.WriteByte('=')
		builder.WriteString(params[key])
	}

	return builder.String()
}

// Entity returns the key of a single cached record, e.g. "chapter:<id>".
func Entity(kind, id string) string {
	return kind + ":" + id
}
