// internal/app/store/clienterrors/store.go
package clienterrors

import (
	"context"
	"time"

	"github.com/dalemusser/adminusers/internal/app/system/indexes"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Sources of client errors.
const (
	SourceSystemUsers = "system_users"
)

// Event is one failed remote operation seen by an admin panel.
type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Timestamp time.Time          `bson:"timestamp"`

	Source  string `bson:"source"`
	PanelID string `bson:"panel_id,omitempty"`
	Op      string `bson:"op"` // remote operation, e.g. "search profiles"

	Message    string `bson:"message"`
	StatusCode int    `bson:"status_code,omitempty"` // remote HTTP status when known

	Details map[string]string `bson:"details,omitempty"`
}

// QueryFilter defines filters for querying client errors.
type QueryFilter struct {
	Source    string
	PanelID   string
	Op        string
	StartTime *time.Time
	Limit     int64
	Offset    int64
}

// Store manages client error records.
type Store struct {
	c *mongo.Collection
}

// New creates a new client error Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("client_errors")}
}

// EnsureIndexes creates necessary indexes for efficient querying.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	return indexes.Ensure(ctx, s.c, []mongo.IndexModel{
		// Most recent first
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_client_errors_ts"),
		},
		// Per panel
		{
			Keys: bson.D{
				{Key: "panel_id", Value: 1},
				{Key: "timestamp", Value: -1},
			},
			Options: options.Index().SetName("idx_client_errors_panel_ts"),
		},
		// Per operation
		{
			Keys: bson.D{
				{Key: "source", Value: 1},
				{Key: "op", Value: 1},
				{Key: "timestamp", Value: -1},
			},
			Options: options.Index().SetName("idx_client_errors_source_op_ts"),
		},
	})
}

// Log records a client error.
func (s *Store) Log(ctx context.Context, event Event) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_, err := s.c.InsertOne(ctx, event)
	return err
}

func buildQuery(filter QueryFilter) bson.M {
	query := bson.M{}
	if filter.Source != "" {
		query["source"] = filter.Source
	}
	if filter.PanelID != "" {
		query["panel_id"] = filter.PanelID
	}
	if filter.Op != "" {
		query["op"] = filter.Op
	}
	if filter.StartTime != nil {
		query["timestamp"] = bson.M{"$gte": *filter.StartTime}
	}
	return query
}

// Query retrieves client errors matching the filter, newest first.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit).
		SetSkip(filter.Offset)

	cursor, err := s.c.Find(ctx, buildQuery(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// CountByFilter returns the count of errors matching the filter.
func (s *Store) CountByFilter(ctx context.Context, filter QueryFilter) (int64, error) {
	return s.c.CountDocuments(ctx, buildQuery(filter))
}
