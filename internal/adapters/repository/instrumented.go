package repository

import (
	"context"
	"time"

	"github.com/okian/parley/internal/domain/model"
	"github.com/okian/parley/pkg/metrics"
)

// instrumented records read latency and failures of the wrapped store.
type instrumented struct {
	next Store
}

// Instrument wraps s so every read is observed in the store metrics.
func Instrument(s Store) Store {
	return &instrumented{next: s}
}

func observe(op string, start time.Time, err error) {
	metrics.RecordStoreFetch(op, float64(time.Since(start).Microseconds())/1000, err)
}

func (i *instrumented) FetchEvent(ctx context.Context, id string) (e *model.Event, err error) {
	defer func(start time.Time) { observe("event", start, err) }(time.Now())
	return i.next.FetchEvent(ctx, id)
}

func (i *instrumented) FetchResults(ctx context.Context, eventID string) (r []model.AgreementResult, err error) {
	defer func(start time.Time) { observe("results", start, err) }(time.Now())
	return i.next.FetchResults(ctx, eventID)
}

func (i *instrumented) FetchSurveys(ctx context.Context, roundID string) (s []model.SurveyResponse, err error) {
	defer func(start time.Time) { observe("surveys", start, err) }(time.Now())
	return i.next.FetchSurveys(ctx, roundID)
}

func (i *instrumented) FetchCase(ctx context.Context, id string) (c *model.Case, err error) {
	defer func(start time.Time) { observe("case", start, err) }(time.Now())
	return i.next.FetchCase(ctx, id)
}

// Close releases the wrapped store when it holds a connection.
func (i *instrumented) Close(ctx context.Context) error {
	if c, ok := i.next.(interface{ Close(context.Context) error }); ok {
		return c.Close(ctx)
	}
	return nil
}
