package scorerange

import "github.com/okian/parley/internal/domain/formula"

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithMaxAssignments caps the size of the Cartesian product searched.
func WithMaxAssignments(n int) Option {
	return func(c *Calculator) {
		if n > 0 {
			c.maxAssignments = n
		}
	}
}

// WithSamples sets how many evenly spaced points a float parameter without a
// step contributes. Values below 2 are ignored.
func WithSamples(n int) Option {
	return func(c *Calculator) {
		if n >= 2 {
			c.samples = n
		}
	}
}

// WithEvaluator replaces the formula evaluator.
func WithEvaluator(e formula.Evaluator) Option {
	return func(c *Calculator) {
		if e != nil {
			c.eval = e
		}
	}
}

// CacheOption applies a configuration option to the Cache.
type CacheOption func(*Cache)

// WithMaxSize sets the number of cases kept. If maxSize <= 0 the cache is
// unbounded.
func WithMaxSize(maxSize int) CacheOption {
	return func(c *Cache) {
		c.maxSize = maxSize
	}
}
