package repository

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/okian/parley/internal/domain/model"
)

// Fixture is a snapshot of platform documents in JSON form.
type Fixture struct {
	Events  []model.Event           `json:"events"`
	Cases   []model.Case            `json:"cases"`
	Results []model.AgreementResult `json:"results"`
	Surveys []model.SurveyResponse  `json:"surveys"`
}

// ReadFixture decodes a fixture. Unknown fields are rejected so typos in
// hand-written fixtures surface early.
func ReadFixture(r io.Reader) (*Fixture, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var f Fixture
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFixture, err)
	}
	for _, e := range f.Events {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("%w: event %s: %w", ErrInvalidFixture, e.ID, err)
		}
	}
	return &f, nil
}

// LoadFixture reads a fixture file.
func LoadFixture(path string) (*Fixture, error) {
	fh, err := os.Open(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFixture, err)
	}
	defer func() { _ = fh.Close() }()
	return ReadFixture(fh)
}
