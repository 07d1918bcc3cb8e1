// Package repository reads the platform's documents (events, agreements,
// surveys and cases) for the scoring engine.
package repository

import (
	"context"

	"github.com/okian/parley/internal/domain/model"
)

// Store provides read access to the platform's documents. Reads are
// snapshots; nothing is written back by the engine.
type Store interface {
	// FetchEvent returns the event with its rounds and roster.
	// Returns ErrNotFound if the event is unknown.
	FetchEvent(ctx context.Context, eventID string) (*model.Event, error)

	// FetchResults returns every agreement record of the event.
	FetchResults(ctx context.Context, eventID string) ([]model.AgreementResult, error)

	// FetchSurveys returns every survey submitted for the round.
	FetchSurveys(ctx context.Context, roundID string) ([]model.SurveyResponse, error)

	// FetchCase returns the case definition.
	// Returns ErrNotFound if the case is unknown.
	FetchCase(ctx context.Context, caseID string) (*model.Case, error)
}

// Writer applies instructor edits. Only the in-memory store implements it;
// the platform owns writes to the document database.
type Writer interface {
	PutEvent(ctx context.Context, e model.Event) error
	PutCase(ctx context.Context, c model.Case) error
	PutResult(ctx context.Context, r model.AgreementResult) error
	PutSurvey(ctx context.Context, s model.SurveyResponse) error
}
