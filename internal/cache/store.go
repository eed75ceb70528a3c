// Package cache holds the best-effort cache used in front of the province and
// regency repositories, the key layout, and the invalidation rules that keep
// it coherent after writes.
package cache

import (
	"context"
	"fmt"
	"time"
)

// DefaultTTL bounds how long a stale entry can survive a missed invalidation.
const DefaultTTL = 12 * time.Hour

// Store is a key-value cache namespaced under a single group.
//
// Every method is best-effort. A missing, expired or undecodable entry and
// an unreachable backend all look the same to the caller: Get reports false,
// Set/Delete/Flush report false. Failures are logged by the implementation
// and never returned, so every caller must keep a correct uncached path.
// Delete of an absent key reports true.
type Store interface {
	// Get decodes the value stored under key into dest.
	Get(ctx context.Context, key string, dest any) bool
	// Set overwrites key unconditionally. ttl <= 0 selects the store default.
	Set(ctx context.Context, key string, value any, ttl time.Duration) bool
	// Delete removes key.
	Delete(ctx context.Context, key string) bool
	// Flush removes every key of the group.
	Flush(ctx context.Context) bool
}

// Pinger is implemented by stores with a remote backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ProvinceListKey caches the full province listing. It carries no
// parameters, so any province write drops the whole listing.
const ProvinceListKey = "province:list"

// ProvinceKey is the single-item key of a province.
func ProvinceKey(id int) string {
	return fmt.Sprintf("province:%d", id)
}

// RegencyKey is the single-item key of a regency.
func RegencyKey(id int) string {
	return fmt.Sprintf("regency:%d", id)
}

// RegencyListKey caches the regency listing of one province.
func RegencyListKey(provinceID int) string {
	return fmt.Sprintf("regency:list:%d", provinceID)
}
