package schedule

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/spec-kit/care-client/internal/domain"
)

const defaultCacheSize = 64

// Cache holds reconciled day schedules keyed by (provider, date), so
// flipping between dates does not refetch unchanged days. Entries are
// invalidated when a booking lands on them.
type Cache struct {
	entries *lru.Cache[cacheKey, domain.DaySchedule]
}

type cacheKey struct {
	providerID string
	date       string
}

// NewCache builds a cache with the given capacity (<= 0 uses the default).
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = defaultCacheSize
	}
	entries, err := lru.New[cacheKey, domain.DaySchedule](size)
	if err != nil {
		return nil, err
	}
	return &Cache{entries: entries}, nil
}

// Get returns the cached schedule for (provider, date), if present.
func (c *Cache) Get(providerID, date string) (domain.DaySchedule, bool) {
	return c.entries.Get(cacheKey{providerID: providerID, date: date})
}

// Put stores a reconciled schedule.
func (c *Cache) Put(schedule domain.DaySchedule) {
	c.entries.Add(cacheKey{providerID: schedule.ProviderID, date: schedule.Date}, schedule)
}

// Invalidate drops the entry for (provider, date).
func (c *Cache) Invalidate(providerID, date string) {
	c.entries.Remove(cacheKey{providerID: providerID, date: date})
}
