package scorerange

import (
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/okian/parley/internal/domain/model"
)

const defaultCacheSize = 1024

// entry is a single cached range in the insertion-ordered list.
type entry struct {
	caseID      string
	fingerprint string
	rng         model.ScoreRange
	err         error
	next        *entry
}

func (e *entry) reset() {
	*e = entry{}
}

// Cache memoizes Calculator results per case. A range depends on the case
// alone, so it is computed once and reused by every report on that case.
// Configuration errors are cached too; Invalidate drops either.
//
// In bounded mode the oldest insertion is evicted once maxSize is reached.
type Cache struct {
	calc *Calculator

	mu      sync.RWMutex
	entries map[string]*entry
	head    *entry // most recently inserted
	maxSize int
	size    atomic.Int64
	pool    sync.Pool

	hits   atomic.Int64
	misses atomic.Int64
	flight singleflight.Group
}

// NewCache wraps calc with a bounded per-case cache.
func NewCache(calc *Calculator, opts ...CacheOption) *Cache {
	if calc == nil {
		calc = NewCalculator()
	}
	c := &Cache{
		calc:    calc,
		maxSize: defaultCacheSize,
		entries: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.pool = sync.Pool{New: func() any { return &entry{} }}
	return c
}

// Get returns the range of cs, computing it on a miss.
func (c *Cache) Get(cs *model.Case) (model.ScoreRange, error) {
	rng, _, err := c.Lookup(cs)
	return rng, err
}

// Lookup is Get that also reports whether the answer came from the cache.
// A cached value is only reused while the case's formulas and parameters are
// unchanged.
func (c *Cache) Lookup(cs *model.Case) (rng model.ScoreRange, hit bool, err error) {
	if cs == nil {
		return model.ScoreRange{}, false, ErrNotScorable
	}
	fp := fingerprint(cs)

	c.mu.RLock()
	if e, ok := c.entries[cs.ID]; ok && e.fingerprint == fp {
		rng, err = e.rng, e.err
		c.mu.RUnlock()
		c.hits.Add(1)
		return rng, true, err
	}
	c.mu.RUnlock()

	c.misses.Add(1)
	v, _, _ := c.flight.Do(cs.ID+"\x00"+fp, func() (any, error) {
		r, err := c.calc.Compute(cs)
		c.store(cs.ID, fp, r, err)
		return result{rng: r, err: err}, nil
	})
	res := v.(result)
	return res.rng, false, res.err
}

type result struct {
	rng model.ScoreRange
	err error
}

func (c *Cache) store(caseID, fp string, rng model.ScoreRange, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[caseID]; ok {
		e.fingerprint, e.rng, e.err = fp, rng, err
		return
	}

	if c.maxSize > 0 && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	e := c.pool.Get().(*entry)
	e.caseID, e.fingerprint, e.rng, e.err = caseID, fp, rng, err
	e.next = c.head
	c.head = e
	c.entries[caseID] = e
	c.size.Add(1)
}

// Invalidate drops the cached range of caseID. It returns false if nothing
// was cached.
func (c *Cache) Invalidate(caseID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[caseID]
	if !ok {
		return false
	}
	delete(c.entries, caseID)
	c.unlink(e)
	return true
}

// unlink removes e from the list and returns it to the pool.
// Must be called with c.mu held.
func (c *Cache) unlink(e *entry) {
	if c.head == e {
		c.head = e.next
	} else {
		cur := c.head
		for cur != nil && cur.next != e {
			cur = cur.next
		}
		if cur != nil {
			cur.next = e.next
		}
	}
	e.reset()
	c.pool.Put(e)
	c.size.Add(-1)
}

// evictOldest removes the tail of the list.
// Must be called with c.mu held.
func (c *Cache) evictOldest() {
	if c.head == nil {
		return
	}
	tail := c.head
	for tail.next != nil {
		tail = tail.next
	}
	delete(c.entries, tail.caseID)
	c.unlink(tail)
}

// Size returns the number of cached cases.
func (c *Cache) Size() int64 {
	return c.size.Load()
}

// Stats returns the hit and miss counts since creation.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func fingerprint(cs *model.Case) string {
	return fmt.Sprintf("%s\x00%s\x00%v", cs.FormulaA, cs.FormulaB, cs.Params)
}
