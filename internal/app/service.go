// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/parley/internal/adapters/repository"
	"github.com/okian/parley/internal/domain/formula"
	"github.com/okian/parley/internal/domain/model"
	"github.com/okian/parley/internal/domain/outcome"
	"github.com/okian/parley/internal/domain/ranking"
	"github.com/okian/parley/internal/domain/report"
	"github.com/okian/parley/internal/domain/schedule"
	"github.com/okian/parley/internal/domain/scorerange"
	"github.com/okian/parley/internal/domain/types"
	"github.com/okian/parley/pkg/logger"
	"github.com/okian/parley/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultFetchTimeout           = 5 * time.Second
	defaultRangeCacheSize         = 1024
	defaultMaxAssignments         = 250000
	defaultSamples                = 21
	defaultScale                  = 100
	defaultLeaderboardConcurrency = 4
)

// Service derives reports from the document store. Nothing it returns is
// stored: every call re-reads the records and recomputes, so instructor edits
// show up on the next read. Only case score ranges are cached.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   repository.Store
	eval    *formula.ExprEvaluator
	ranges  *scorerange.Cache
	builder *report.Builder

	// Configuration
	fetchTimeout           time.Duration
	rangeCacheSize         int
	maxAssignments         int
	samples                int
	scale                  float64
	policy                 ranking.Policy
	leaderboardConcurrency int
	now                    func() time.Time

	// State
	started      bool
	reportsBuilt atomic.Int64

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		fetchTimeout:           defaultFetchTimeout,
		rangeCacheSize:         defaultRangeCacheSize,
		maxAssignments:         defaultMaxAssignments,
		samples:                defaultSamples,
		scale:                  defaultScale,
		policy:                 ranking.DefaultPolicy(),
		leaderboardConcurrency: defaultLeaderboardConcurrency,
		now:                    time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the scoring components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Named("service")
	}
	if s.store == nil {
		return ErrNoStore
	}

	s.eval = formula.NewEvaluator()
	calc := scorerange.NewCalculator(
		scorerange.WithEvaluator(s.eval),
		scorerange.WithMaxAssignments(s.maxAssignments),
		scorerange.WithSamples(s.samples),
	)
	s.ranges = scorerange.NewCache(calc, scorerange.WithMaxSize(s.rangeCacheSize))
	s.builder = report.NewBuilder(
		report.WithPolicy(s.policy),
		report.WithScale(s.scale),
		report.WithNormalizer(outcome.NewNormalizer(s.eval)),
	)

	s.started = true
	s.logger.Info(ctx, "scoring service started",
		logger.Duration("fetchTimeout", s.fetchTimeout),
		logger.Int("rangeCacheSize", s.rangeCacheSize),
		logger.Int("rangeMaxAssignments", s.maxAssignments),
		logger.Float64("subWeight", s.policy.SubWeight),
		logger.Float64("relWeight", s.policy.RelWeight),
	)
	return nil
}

// Stop shuts the service down and closes the store if it holds a connection.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if closer, ok := s.store.(interface{ Close(context.Context) error }); ok {
		if err := closer.Close(ctx); err != nil {
			s.logger.Warn(ctx, "closing store failed", logger.Error(err))
		}
	}
	s.started = false
	s.logger.Info(ctx, "scoring service stopped")
}

func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// State projects the event's rounds at the current instant.
func (s *Service) State(ctx context.Context, eventID string) (schedule.State, error) {
	if err := s.ready(); err != nil {
		return schedule.State{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	event, err := s.store.FetchEvent(ctx, eventID)
	if err != nil {
		return schedule.State{}, fmt.Errorf("state: %w", err)
	}
	return schedule.Project(event.Rounds, s.now()), nil
}

// Report derives the report of the 1-based round of an event. The round must
// be visible (view time reached) or finished.
func (s *Service) Report(ctx context.Context, eventID string, round int) (*report.Report, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	start := time.Now()

	fctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	event, err := s.store.FetchEvent(fctx, eventID)
	if err != nil {
		metrics.RecordReportError("fetch")
		return nil, fmt.Errorf("report: %w", err)
	}
	now := s.now()
	if _, ok := event.Round(round); !ok {
		metrics.RecordReportError("unknown_round")
		return nil, fmt.Errorf("report: %w: event %s has %d rounds", report.ErrUnknownRound, eventID, len(event.Rounds))
	}
	if !schedule.RoundVisible(event, round, now) {
		metrics.RecordReportError("not_visible")
		return nil, fmt.Errorf("report: round %d of %s: %w", round, eventID, ErrRoundNotVisible)
	}

	results, err := s.store.FetchResults(fctx, eventID)
	if err != nil {
		metrics.RecordReportError("fetch")
		return nil, fmt.Errorf("report: %w", err)
	}

	rep, err := s.buildRound(fctx, event, round, results, now)
	if err != nil {
		metrics.RecordReportError("fetch")
		return nil, fmt.Errorf("report: %w", err)
	}

	s.reportsBuilt.Add(1)
	metrics.RecordReportBuilt(float64(time.Since(start).Microseconds()) / 1000)
	for _, t := range rep.ByTeam {
		metrics.RecordTeamOutcome(t.Class.String())
	}
	s.logger.Debug(ctx, "report built",
		logger.String("event", eventID),
		logger.Int("round", round),
		logger.Int("teams", len(rep.ByTeam)),
		logger.Duration("took", time.Since(start)),
	)
	return rep, nil
}

// buildRound fetches the round's surveys and case concurrently and builds its report.
func (s *Service) buildRound(ctx context.Context, event *model.Event, index int, results []model.AgreementResult, now time.Time) (*report.Report, error) {
	round, _ := event.Round(index)

	var (
		surveys []model.SurveyResponse
		cs      *model.Case
		caseErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		surveys, err = s.store.FetchSurveys(gctx, round.ID)
		return err
	})
	g.Go(func() error {
		var err error
		cs, err = s.store.FetchCase(gctx, round.CaseID)
		if errors.Is(err, repository.ErrNotFound) {
			// a missing case is a configuration error of this round, not a failed read
			caseErr = fmt.Errorf("%w: case %q not found", scorerange.ErrCaseConfig, round.CaseID)
			return nil
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	in := report.Input{
		Event:      event,
		RoundIndex: index,
		Case:       cs,
		Results:    results,
		Surveys:    surveys,
		Now:        now,
	}
	if caseErr != nil {
		in.RangeErr = caseErr
	} else {
		rng, err := s.caseRange(ctx, cs)
		if err != nil {
			in.RangeErr = err
		} else {
			in.Range = &rng
		}
	}
	if in.RangeErr != nil && !errors.Is(in.RangeErr, scorerange.ErrNotScorable) {
		s.logger.Warn(ctx, "case configuration error",
			logger.String("event", event.ID),
			logger.Int("round", index),
			logger.String("case", round.CaseID),
			logger.Error(in.RangeErr),
		)
		metrics.RecordErrorByComponent("scorerange", "case_config")
	}

	return s.builder.Build(in)
}

// caseRange looks the range up in the cache and records the outcome.
func (s *Service) caseRange(_ context.Context, cs *model.Case) (model.ScoreRange, error) {
	rng, hit, err := s.ranges.Lookup(cs)
	if hit {
		metrics.RecordRangeCacheHit()
	} else {
		metrics.RecordRangeCacheMiss()
		if err == nil {
			metrics.RecordRangeComputation(rng.Assignments)
		}
	}
	if err != nil && !errors.Is(err, scorerange.ErrNotScorable) {
		metrics.RecordRangeError()
	}
	metrics.UpdateRangeCacheSize(int(s.ranges.Size()))
	return rng, err
}

// Leaderboard sums each team's total z-score over the event's finished rounds.
func (s *Service) Leaderboard(ctx context.Context, eventID string) ([]types.Standing, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	fctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	event, err := s.store.FetchEvent(fctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	now := s.now()

	var finished []int
	for i := range event.Rounds {
		if schedule.RoundFinished(event, i+1, now) {
			finished = append(finished, i+1)
		}
	}
	if len(finished) == 0 {
		metrics.RecordLeaderboardBuilt()
		return []types.Standing{}, nil
	}

	results, err := s.store.FetchResults(fctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}

	reports := make([]*report.Report, len(finished))
	g, gctx := errgroup.WithContext(fctx)
	g.SetLimit(s.leaderboardConcurrency)
	for i, idx := range finished {
		g.Go(func() error {
			rep, err := s.buildRound(gctx, event, idx, results, now)
			if err != nil {
				return fmt.Errorf("round %d: %w", idx, err)
			}
			reports[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}

	metrics.RecordLeaderboardBuilt()
	return report.Leaderboard(reports, event), nil
}

// CaseRange returns the achievable score range of a case.
func (s *Service) CaseRange(ctx context.Context, caseID string) (model.ScoreRange, error) {
	if err := s.ready(); err != nil {
		return model.ScoreRange{}, err
	}
	fctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	cs, err := s.store.FetchCase(fctx, caseID)
	if err != nil {
		return model.ScoreRange{}, fmt.Errorf("case range: %w", err)
	}
	rng, err := s.caseRange(ctx, cs)
	if err != nil {
		return model.ScoreRange{}, fmt.Errorf("case range: %w", err)
	}
	return rng, nil
}

// InvalidateCase drops the cached range of a case after an edit. It reports
// whether a range was cached.
func (s *Service) InvalidateCase(ctx context.Context, caseID string) bool {
	if s.ready() != nil {
		return false
	}
	dropped := s.ranges.Invalidate(caseID)
	metrics.UpdateRangeCacheSize(int(s.ranges.Size()))
	s.logger.Info(ctx, "case range invalidated",
		logger.String("case", caseID),
		logger.Bool("cached", dropped),
	)
	return dropped
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":        s.started,
		"fetchTimeoutMs": s.fetchTimeout.Milliseconds(),
		"rangeCacheSize": s.rangeCacheSize,
		"subWeight":      s.policy.SubWeight,
		"relWeight":      s.policy.RelWeight,
		"reportsBuilt":   s.reportsBuilt.Load(),
	}

	if s.started {
		hits, misses := s.ranges.Stats()
		stats["rangesCached"] = s.ranges.Size()
		stats["rangeCacheHits"] = hits
		stats["rangeCacheMisses"] = misses
		stats["formulasCompiled"] = s.eval.Cached()
	}

	return stats
}
