package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/parley/internal/domain/model"
)

var (
	_ Store  = (*MemoryStore)(nil)
	_ Writer = (*MemoryStore)(nil)
)

// resultKey identifies one team's record in one round.
type resultKey struct {
	round string
	team  string
}

// MemoryStore keeps documents in process memory. It backs local runs, the
// CLI and tests, and accepts instructor edits through Writer.
type MemoryStore struct {
	mu      sync.RWMutex
	events  map[string]model.Event
	cases   map[string]model.Case
	results map[resultKey]model.AgreementResult
	surveys map[resultKey]model.SurveyResponse
	seed    *Fixture
}

// NewMemoryStore creates an empty store, optionally seeded from a fixture.
func NewMemoryStore(opts ...Option) (*MemoryStore, error) {
	s := &MemoryStore{
		events:  make(map[string]model.Event),
		cases:   make(map[string]model.Case),
		results: make(map[resultKey]model.AgreementResult),
		surveys: make(map[resultKey]model.SurveyResponse),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.seed != nil {
		if err := s.Load(context.Background(), s.seed); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Load adds every document of f to the store. Agreements without an event
// ID inherit the event that owns their round.
func (s *MemoryStore) Load(ctx context.Context, f *Fixture) error {
	owner := map[string]string{}
	for _, e := range f.Events {
		if err := s.PutEvent(ctx, e); err != nil {
			return err
		}
		for _, r := range e.Rounds {
			owner[r.ID] = e.ID
		}
	}
	for _, c := range f.Cases {
		if err := s.PutCase(ctx, c); err != nil {
			return err
		}
	}
	for _, r := range f.Results {
		if r.EventID == "" {
			r.EventID = owner[r.RoundID]
		}
		if err := s.PutResult(ctx, r); err != nil {
			return err
		}
	}
	for _, sv := range f.Surveys {
		if err := s.PutSurvey(ctx, sv); err != nil {
			return err
		}
	}
	return nil
}

// FetchEvent returns a copy of the event.
func (s *MemoryStore) FetchEvent(ctx context.Context, eventID string) (*model.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.events[eventID]
	if !ok {
		return nil, fmt.Errorf("event %s: %w", eventID, ErrNotFound)
	}
	e.Rounds = append([]model.Round(nil), e.Rounds...)
	e.Teams = append([]model.Team(nil), e.Teams...)
	return &e, nil
}

// FetchResults returns the event's agreement records.
func (s *MemoryStore) FetchResults(ctx context.Context, eventID string) ([]model.AgreementResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.AgreementResult
	for _, r := range s.results {
		if r.EventID == eventID {
			out = append(out, r)
		}
	}
	return out, nil
}

// FetchSurveys returns the round's survey responses.
func (s *MemoryStore) FetchSurveys(ctx context.Context, roundID string) ([]model.SurveyResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.SurveyResponse
	for k, sv := range s.surveys {
		if k.round == roundID {
			out = append(out, sv)
		}
	}
	return out, nil
}

// FetchCase returns a copy of the case.
func (s *MemoryStore) FetchCase(ctx context.Context, caseID string) (*model.Case, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.cases[caseID]
	if !ok {
		return nil, fmt.Errorf("case %s: %w", caseID, ErrNotFound)
	}
	c.Params = append([]model.Parameter(nil), c.Params...)
	return &c, nil
}

// PutEvent stores or replaces an event. Rounds inherit the event ID and
// their 1-based index when unset.
func (s *MemoryStore) PutEvent(_ context.Context, e model.Event) error {
	if e.ID == "" {
		return fmt.Errorf("%w: event without id", ErrInvalidRecord)
	}
	rounds := make([]model.Round, len(e.Rounds))
	for i, r := range e.Rounds {
		if r.EventID == "" {
			r.EventID = e.ID
		}
		if r.Index == 0 {
			r.Index = i + 1
		}
		rounds[i] = r
	}
	e.Rounds = rounds

	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[e.ID] = e
	return nil
}

// PutCase stores or replaces a case.
func (s *MemoryStore) PutCase(_ context.Context, c model.Case) error {
	if c.ID == "" {
		return fmt.Errorf("%w: case without id", ErrInvalidRecord)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cases[c.ID] = c
	return nil
}

// PutResult stores a team's agreement, replacing its previous record for the round.
func (s *MemoryStore) PutResult(_ context.Context, r model.AgreementResult) error {
	if r.RoundID == "" || r.TeamID == "" {
		return fmt.Errorf("%w: agreement needs round and team", ErrInvalidRecord)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[resultKey{round: r.RoundID, team: r.TeamID}] = r
	return nil
}

// PutSurvey stores a team's survey, replacing its previous response for the round.
func (s *MemoryStore) PutSurvey(_ context.Context, sv model.SurveyResponse) error {
	if sv.RoundID == "" || sv.TeamID == "" {
		return fmt.Errorf("%w: survey needs round and team", ErrInvalidRecord)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.surveys[resultKey{round: sv.RoundID, team: sv.TeamID}] = sv
	return nil
}

// Counts returns the number of stored documents by kind.
func (s *MemoryStore) Counts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]int{
		"events":  len(s.events),
		"cases":   len(s.cases),
		"results": len(s.results),
		"surveys": len(s.surveys),
	}
}
