// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination provides shared page arithmetic for list endpoints.
//
// Pages are 1-indexed. A page beyond the last one is valid and simply empty.
package pagination

// Params holds a validated page and limit.
type Params struct {
	Page  int
	Limit int
}

// Offset returns the SQL OFFSET value derived from [Params.Page] and [Params.Limit].
func (p Params) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Meta is the page metadata derived from a total count.
type Meta struct {
	CurrentPage int
	TotalPages  int
	HasNextPage bool
	HasPrevPage bool
}

// TotalPages returns ceil(total / limit), or 0 when limit is not positive.
func TotalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// NewMeta computes navigation metadata for the given page.
func NewMeta(p Params, total int) Meta {
	totalPages := TotalPages(total, p.Limit)

	return Meta{
		CurrentPage: p.Page,
		TotalPages:  totalPages,
		HasNextPage: p.Page < totalPages,
		HasPrevPage: p.Page > 1,
	}
}
