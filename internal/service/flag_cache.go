package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"reporthub/internal/models"
)

// DefaultFlagTTL keeps a reported flag for longer than any reporting period
const DefaultFlagTTL = 45 * 24 * time.Hour

// FlagCache remembers "already reported" flags in process so the reminder
// check can answer without touching the store
type FlagCache struct {
	flags *cache.Cache
}

// NewFlagCache creates a cache whose entries expire after ttl. Expired
// entries are dropped on lookup and by Prune.
func NewFlagCache(ttl time.Duration) *FlagCache {
	return &FlagCache{flags: cache.New(ttl, 0)}
}

func reportedFlagKey(identity string, p models.Period) string {
	return fmt.Sprintf("report-submitted:%s:%d-%s", identity, p.Year, p.Month)
}

// Set marks key as present
func (c *FlagCache) Set(key string) {
	c.flags.SetDefault(key, true)
}

// Has reports whether key is present and unexpired
func (c *FlagCache) Has(key string) bool {
	_, ok := c.flags.Get(key)
	return ok
}

// ClearIdentity drops every flag of one user, used on logout
func (c *FlagCache) ClearIdentity(identity string) {
	prefix := "report-submitted:" + identity + ":"
	for key := range c.flags.Items() {
		if strings.HasPrefix(key, prefix) {
			c.flags.Delete(key)
		}
	}
}

// Prune removes expired entries
func (c *FlagCache) Prune() {
	c.flags.DeleteExpired()
}

// Len returns the number of stored flags, expired ones included until pruned
func (c *FlagCache) Len() int {
	return c.flags.ItemCount()
}
