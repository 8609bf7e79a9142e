package model

import (
	"fmt"
	"sync"

	"github.com/aerostat/flight-delay-service/internal/domain"
)

// CachedPredictor wraps a Predictor with an in-memory LRU cache of scores.
// Alignment is deterministic, so a row's scalar fields fully identify its
// feature vector and identical requests score identically.
type CachedPredictor struct {
	inner Predictor
	cache *lruCache
}

// NewCachedPredictor creates a cache decorator around a predictor.
func NewCachedPredictor(inner Predictor, maxEntries int) *CachedPredictor {
	return &CachedPredictor{
		inner: inner,
		cache: newLRUCache(maxEntries),
	}
}

func (c *CachedPredictor) Kind() Kind { return c.inner.Kind() }

func (c *CachedPredictor) Encoding() domain.EncodingMode { return c.inner.Encoding() }

// Predict serves each row from the cache when possible and scores only the
// misses against the wrapped predictor.
func (c *CachedPredictor) Predict(rows []domain.FeatureRow) ([]float64, error) {
	preds := make([]float64, len(rows))
	var missIdx []int
	for i, row := range rows {
		if score, ok := c.cache.get(rowKey(row)); ok {
			preds[i] = score
			continue
		}
		missIdx = append(missIdx, i)
	}
	if len(missIdx) == 0 {
		return preds, nil
	}

	missRows := make([]domain.FeatureRow, len(missIdx))
	for j, i := range missIdx {
		missRows[j] = rows[i]
	}
	scored, err := c.inner.Predict(missRows)
	if err != nil {
		return nil, err
	}
	for j, i := range missIdx {
		preds[i] = scored[j]
		c.cache.put(rowKey(rows[i]), scored[j])
	}
	return preds, nil
}

func rowKey(row domain.FeatureRow) string {
	return fmt.Sprintf("%s|%s|%s|%g|%g|%g|%g",
		row.Airline, row.AirportFrom, row.AirportTo,
		row.DayOfWeek, row.DepHour, row.Length, row.Time,
	)
}

// lruCache is a simple thread-safe LRU cache of scores.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	score float64
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return 0, false
	}
	c.moveToFront(e)
	return e.score, true
}

func (c *lruCache) put(key string, score float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.score = score
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, score: score}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
