package model

import "time"

// AgreementResult is what one team reached in one round.
type AgreementResult struct {
	EventID   string         `json:"eventId" bson:"eventId"`
	RoundID   string         `json:"roundId" bson:"roundId"`
	TeamID    string         `json:"teamId" bson:"teamId"`
	Values    map[string]any `json:"values" bson:"values"`
	MadeDeal  bool           `json:"madeDeal" bson:"madeDeal"`
	Final     bool           `json:"final" bson:"final"`
	UpdatedAt time.Time      `json:"updatedAt" bson:"updatedAt"`
}

// SurveyResponse is one team's relational survey for one round.
// Ratings keep the submitted text; the store does not enforce a schema.
type SurveyResponse struct {
	RoundID     string    `json:"roundId" bson:"roundId"`
	TeamID      string    `json:"teamId" bson:"teamId"`
	Ratings     Ratings   `json:"ratings" bson:"ratings"`
	SubmittedAt time.Time `json:"submittedAt" bson:"submittedAt"`
}
