// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package textnorm canonicalizes free-form text fields before they are stored,
// filtered on, or used as part of a cache key.
//
// # Pipeline
//
//  1. Normalizes to NFC so that "é" typed as one code point or as "e" plus a
//     combining accent compare equal.
//  2. Trims surrounding whitespace.
//  3. Collapses internal runs of whitespace to a single space.
package textnorm

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Clean returns the canonical form of s.
func Clean(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}
