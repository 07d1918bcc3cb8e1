package service

import (
	"time"

	"github.com/okian/parley/internal/adapters/repository"
	"github.com/okian/parley/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the document store the service reads from.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the wall clock used to gate rounds.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithFetchTimeout bounds the store reads behind one request.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}

// WithRangeCacheSize sets how many case ranges are kept.
func WithRangeCacheSize(n int) Option {
	return func(s *Service) {
		s.rangeCacheSize = n
	}
}

// WithRangeLimits sets the assignment budget and float sampling of the range search.
func WithRangeLimits(maxAssignments, samples int) Option {
	return func(s *Service) {
		if maxAssignments > 0 {
			s.maxAssignments = maxAssignments
		}
		if samples > 1 {
			s.samples = samples
		}
	}
}

// WithScoreScale sets the upper bound of normalized substantive scores.
func WithScoreScale(scale float64) Option {
	return func(s *Service) {
		if scale > 0 {
			s.scale = scale
		}
	}
}

// WithWeights sets the substantive and relational weights of the total.
func WithWeights(sub, rel float64) Option {
	return func(s *Service) {
		if sub >= 0 && rel >= 0 {
			s.policy.SubWeight = sub
			s.policy.RelWeight = rel
		}
	}
}

// WithAITeamPrefix sets the team ID prefix that marks AI counterparts.
func WithAITeamPrefix(prefix string) Option {
	return func(s *Service) {
		s.policy.AIPrefix = prefix
	}
}

// WithLeaderboardConcurrency bounds the rounds derived in parallel.
func WithLeaderboardConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.leaderboardConcurrency = n
		}
	}
}
