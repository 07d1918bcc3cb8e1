package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/okian/parley/internal/domain/model"
)

const defaultConnectTimeout = 10 * time.Second

var _ Store = (*MongoStore)(nil)

type collectionNames struct {
	events  string
	results string
	surveys string
	cases   string
}

// MongoStore reads documents from the platform's MongoDB database.
type MongoStore struct {
	client         *mongo.Client
	db             *mongo.Database
	names          collectionNames
	connectTimeout time.Duration
}

func newMongoStore(opts []MongoOption) *MongoStore {
	s := &MongoStore{
		names: collectionNames{
			events:  "events",
			results: "results",
			surveys: "surveys",
			cases:   "cases",
		},
		connectTimeout: defaultConnectTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewMongoStore wraps an existing database handle. The caller keeps
// ownership of the client.
func NewMongoStore(db *mongo.Database, opts ...MongoOption) *MongoStore {
	s := newMongoStore(opts)
	s.db = db
	return s
}

// ConnectMongo dials uri, verifies the primary is reachable and returns a
// store over database. Close releases the connection.
func ConnectMongo(ctx context.Context, uri, database string, opts ...MongoOption) (*MongoStore, error) {
	s := newMongoStore(opts)

	ctx, cancel := context.WithTimeout(ctx, s.connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	s.client = client
	s.db = client.Database(database)
	return s, nil
}

// Ping checks that the database answers.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, readpref.Primary())
}

// Close disconnects a store created by ConnectMongo.
func (s *MongoStore) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

// FetchEvent returns the event document.
func (s *MongoStore) FetchEvent(ctx context.Context, eventID string) (*model.Event, error) {
	var e model.Event
	if err := s.findOne(ctx, s.names.events, eventID, &e); err != nil {
		return nil, fmt.Errorf("event %s: %w", eventID, err)
	}
	for i := range e.Rounds {
		if e.Rounds[i].EventID == "" {
			e.Rounds[i].EventID = e.ID
		}
		if e.Rounds[i].Index == 0 {
			e.Rounds[i].Index = i + 1
		}
	}
	return &e, nil
}

// FetchResults returns the event's agreement records.
func (s *MongoStore) FetchResults(ctx context.Context, eventID string) ([]model.AgreementResult, error) {
	var out []model.AgreementResult
	if err := s.findAll(ctx, s.names.results, bson.M{"eventId": eventID}, &out); err != nil {
		return nil, fmt.Errorf("results of event %s: %w", eventID, err)
	}
	return out, nil
}

// FetchSurveys returns the round's survey responses.
func (s *MongoStore) FetchSurveys(ctx context.Context, roundID string) ([]model.SurveyResponse, error) {
	var out []model.SurveyResponse
	if err := s.findAll(ctx, s.names.surveys, bson.M{"roundId": roundID}, &out); err != nil {
		return nil, fmt.Errorf("surveys of round %s: %w", roundID, err)
	}
	return out, nil
}

// FetchCase returns the case document.
func (s *MongoStore) FetchCase(ctx context.Context, caseID string) (*model.Case, error) {
	var c model.Case
	if err := s.findOne(ctx, s.names.cases, caseID, &c); err != nil {
		return nil, fmt.Errorf("case %s: %w", caseID, err)
	}
	return &c, nil
}

func (s *MongoStore) findOne(ctx context.Context, coll, id string, out any) error {
	err := s.db.Collection(coll).FindOne(ctx, bson.M{"_id": id}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

func (s *MongoStore) findAll(ctx context.Context, coll string, filter bson.M, out any) error {
	cur, err := s.db.Collection(coll).Find(ctx, filter)
	if err != nil {
		return err
	}
	return cur.All(ctx, out)
}
