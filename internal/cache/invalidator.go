package cache

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog/log"
)

// Invalidator maps write operations to the keys they make stale.
// Invalidation is best-effort: the database write is the source of truth
// and entries missed here expire after the store TTL.
type Invalidator struct {
	store Store
	reads *ReadThrough
}

// NewInvalidator creates an Invalidator over store that is not tied to a
// ReadThrough. Services use ReadThrough.Invalidator instead.
func NewInvalidator(store Store) *Invalidator {
	return &Invalidator{store: store}
}

// ProvinceKeys lists the keys affected by a write to a province.
func ProvinceKeys(provinceID int) []string {
	return []string{ProvinceKey(provinceID), ProvinceListKey}
}

// RegencyKeys lists the keys affected by a write to a regency. When the
// province's regency count changed (create, delete, move) the province
// entries are included since they carry the count.
func RegencyKeys(regencyID int, provinceIDs []int, countChanged bool) []string {
	keys := []string{RegencyKey(regencyID)}
	seen := make(map[int]bool, len(provinceIDs))
	for _, pid := range provinceIDs {
		if pid <= 0 || seen[pid] {
			continue
		}
		seen[pid] = true
		keys = append(keys, RegencyListKey(pid))
		if countChanged {
			keys = append(keys, ProvinceKey(pid))
		}
	}
	if countChanged {
		keys = append(keys, ProvinceListKey)
	}
	return keys
}

// ProvinceChanged drops cached data for a created, updated or deleted province.
func (i *Invalidator) ProvinceChanged(ctx context.Context, provinceID int) {
	i.drop(ctx, ProvinceKeys(provinceID))
}

// ProvinceDeleted additionally drops the regency listing of the province,
// whose rows were removed by cascade.
func (i *Invalidator) ProvinceDeleted(ctx context.Context, provinceID int) {
	i.drop(ctx, append(ProvinceKeys(provinceID), RegencyListKey(provinceID)))
}

// RegencyChanged drops cached data for a regency write. provinceIDs holds
// every province whose listing the write touched.
func (i *Invalidator) RegencyChanged(ctx context.Context, regencyID int, countChanged bool, provinceIDs ...int) {
	i.drop(ctx, RegencyKeys(regencyID, provinceIDs, countChanged))
}

// All flushes the whole group, used after bulk writes.
func (i *Invalidator) All(ctx context.Context) bool {
	if i.reads != nil {
		i.reads.retire()
	}
	if !i.store.Flush(ctx) {
		log.Warn().Msg("Cache flush after bulk write failed; entries expire after TTL")
		return false
	}
	return true
}

func (i *Invalidator) drop(ctx context.Context, keys []string) {
	if i.reads != nil {
		i.reads.retire(keys...)
	}
	var result *multierror.Error
	for _, key := range keys {
		if !i.store.Delete(ctx, key) {
			result = multierror.Append(result, fmt.Errorf("delete %s", key))
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		log.Warn().Err(err).Strs("keys", keys).Msg("Cache invalidation incomplete; entries expire after TTL")
	}
}
