// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"context"
	"time"
)

// # Read Cache

// Cache is the key/value store holding serialized chapter reads.
//
// Implementations report transport failures as errors; the [Service] treats
// every cache error as non-fatal.
type Cache interface {
	// Get returns the stored value and true, or nil and false on a miss.
	Get(context context.Context, key string) ([]byte, bool, error)

	// Set stores value under key for ttl.
	Set(context context.Context, key string, value []byte, ttl time.Duration) error

	// DeleteMany removes keys and returns how many existed.
	DeleteMany(context context.Context, keys ...string) (int64, error)

	// Track adds key to the index set and refreshes the index expiry to ttl.
	Track(context context.Context, index, key string, ttl time.Duration) error

	// Members returns every key recorded in the index set.
	Members(context context.Context, index string) ([]string, error)
}
