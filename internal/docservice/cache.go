package docservice

import (
	"slices"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/aventuscto/doc-console/internal/domain/model"
)

// Prometheus-метрики кэша определений тегов.
var (
	tagCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dc_tag_cache_hits_total",
		Help: "Общее количество попаданий в кэш определений мета-тегов.",
	})
	tagCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dc_tag_cache_misses_total",
		Help: "Общее количество промахов кэша определений мета-тегов.",
	})
)

// TagCache — LRU-кэш списка определений мета-тегов с TTL.
// Ключ — отпечаток токена: разные пользователи не видят чужие ответы.
type TagCache struct {
	cache *expirable.LRU[string, []model.TagDefinition]
}

// NewTagCache создаёт кэш на maxSize учётных данных с временем жизни ttl.
func NewTagCache(maxSize int, ttl time.Duration) *TagCache {
	return &TagCache{
		cache: expirable.NewLRU[string, []model.TagDefinition](maxSize, nil, ttl),
	}
}

// Get возвращает копию списка определений для ключа.
func (c *TagCache) Get(key string) ([]model.TagDefinition, bool) {
	defs, ok := c.cache.Get(key)
	if !ok {
		tagCacheMissesTotal.Inc()
		return nil, false
	}
	tagCacheHitsTotal.Inc()
	return slices.Clone(defs), true
}

// Set сохраняет список определений для ключа.
func (c *TagCache) Set(key string, defs []model.TagDefinition) {
	c.cache.Add(key, slices.Clone(defs))
}

// Purge очищает кэш (после создания определения).
func (c *TagCache) Purge() {
	c.cache.Purge()
}

// Len возвращает количество записей.
func (c *TagCache) Len() int {
	return c.cache.Len()
}
