package repository

import "time"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithFixture seeds the store with a fixture's documents.
func WithFixture(f *Fixture) Option {
	return func(s *MemoryStore) {
		if f != nil {
			s.seed = f
		}
	}
}

// MongoOption applies a configuration option to the MongoStore.
type MongoOption func(*MongoStore)

// WithCollections overrides the collection names.
func WithCollections(events, results, surveys, cases string) MongoOption {
	return func(s *MongoStore) {
		if events != "" {
			s.names.events = events
		}
		if results != "" {
			s.names.results = results
		}
		if surveys != "" {
			s.names.surveys = surveys
		}
		if cases != "" {
			s.names.cases = cases
		}
	}
}

// WithConnectTimeout bounds the initial connection and ping.
func WithConnectTimeout(d time.Duration) MongoOption {
	return func(s *MongoStore) {
		if d > 0 {
			s.connectTimeout = d
		}
	}
}
