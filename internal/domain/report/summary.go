package report

import (
	"encoding/json"

	"github.com/okian/parley/internal/domain/model"
	"github.com/okian/parley/internal/domain/outcome"
	"github.com/okian/parley/internal/domain/ranking"
	"github.com/okian/parley/internal/domain/survey"
	"github.com/okian/parley/internal/domain/types"
)

// ResultSummary is one team's placement in a round report.
type ResultSummary struct {
	Team        string
	Name        string
	Side        model.Side
	Rank        int
	Class       ranking.Class
	Substantive outcome.Outcome
	Relational  survey.Relational
	SubZ        types.Score
	Total       types.Score
	HasSvi      bool
	SurveyState survey.Completeness
}

type summaryJSON struct {
	Team         string                 `json:"team"`
	Name         string                 `json:"name"`
	Side         model.Side             `json:"side,omitempty"`
	Rank         int                    `json:"rank"`
	Class        ranking.Class          `json:"class"`
	Outcome      outcome.State          `json:"outcome"`
	Relational   survey.RelationalState `json:"relational"`
	SubScore     types.Score            `json:"subScore"`
	SubZScore    types.Score            `json:"subZScore"`
	RelScore     types.Score            `json:"relScore"`
	TotalZScore  types.Score            `json:"totalZScore"`
	Disqualified bool                   `json:"disqualified"`
	HasSvi       bool                   `json:"hasSvi"`
	NoEnemySvi   bool                   `json:"noEnemySvi"`
	Pending      bool                   `json:"pending"`
	PartialSvi   bool                   `json:"partialSvi"`
	SurveyState  survey.Completeness    `json:"surveyState"`
	Error        string                 `json:"error,omitempty"`
}

// MarshalJSON flattens the tagged states into the report's wire shape.
// Numbers are null whenever the underlying state withholds them.
func (s ResultSummary) MarshalJSON() ([]byte, error) {
	out := summaryJSON{
		Team:         s.Team,
		Name:         s.Name,
		Side:         s.Side,
		Rank:         s.Rank,
		Class:        s.Class,
		Outcome:      s.Substantive.State,
		Relational:   s.Relational.State,
		SubZScore:    s.SubZ,
		TotalZScore:  s.Total,
		Disqualified: s.Substantive.State == outcome.Disqualified,
		HasSvi:       s.HasSvi,
		NoEnemySvi:   s.Relational.State == survey.NoEnemySvi,
		Pending:      s.Substantive.State == outcome.Pending,
		PartialSvi:   s.Relational.Flagged(),
		SurveyState:  s.SurveyState,
	}
	if v, ok := s.Substantive.Value(); ok {
		out.SubScore = types.Some(v)
	}
	if z, ok := s.Relational.Value(); ok {
		out.RelScore = types.Some(z)
	}
	if s.Substantive.Err != nil {
		out.Error = s.Substantive.Err.Error()
	}
	return json.Marshal(out)
}
