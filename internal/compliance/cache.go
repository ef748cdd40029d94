package compliance

import (
	"context"
	"time"

	"github.com/novaex/tradepipe/internal/store"
	"github.com/novaex/tradepipe/internal/types"
	gocache "github.com/patrickmn/go-cache"
)

// kycCache is a read-through cache in front of the store's KYC table. A miss
// loads from the store and populates the cache. There is no write path
// through the cache: an entry leaves it only through Invalidate or TTL
// expiry, so a store write that is not followed by Invalidate is seen only
// once the cached entry expires. The
// spec leaves TTL unspecified beyond "should default to short expirations";
// this defaults to a few minutes, matching ComplianceConfig.KYCCacheTTL.
type kycCache struct {
	store store.Store
	cache *gocache.Cache
}

func newKYCCache(s store.Store, ttl time.Duration) *kycCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &kycCache{store: s, cache: gocache.New(ttl, ttl*2)}
}

// Get returns the KYC record for userID, reading through to the store on a
// cache miss. A nil record with no error means no record exists.
func (c *kycCache) Get(ctx context.Context, userID string) (*types.KYCRecord, error) {
	if v, ok := c.cache.Get(userID); ok {
		if v == nil {
			return nil, nil
		}
		rec := v.(types.KYCRecord)
		return &rec, nil
	}

	rec, err := c.store.GetKYCRecord(ctx, userID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		c.cache.SetDefault(userID, nil)
		return nil, nil
	}
	c.cache.SetDefault(userID, *rec)
	return rec, nil
}

// Invalidate drops userID's cached entry, forcing the next Get to read
// through to the store.
func (c *kycCache) Invalidate(userID string) {
	c.cache.Delete(userID)
}
