package profilestore

import (
	"context"

	"github.com/dalemusser/adminusers/internal/app/system/indexes"
	"github.com/dalemusser/adminusers/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store caches profiles loaded by the System Users panel. It is the
// ProfileMap the panel populates: one document per user id, replaced
// whenever a newer copy arrives.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("profiles")}
}

// EnsureIndexes creates the lookup indexes used by the cache.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	return indexes.Ensure(ctx, s.c, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username_ci", Value: 1}}, Options: options.Index().SetName("idx_profiles_username_ci")},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName("idx_profiles_email")},
	})
}

// ReceiveProfiles upserts profiles by id. An empty slice is a no-op.
func (s *Store) ReceiveProfiles(ctx context.Context, profiles []models.Profile) error {
	if len(profiles) == 0 {
		return nil
	}

	writes := make([]mongo.WriteModel, 0, len(profiles))
	for _, p := range profiles {
		if p.ID == "" {
			continue
		}
		p.UsernameCI = text.Fold(p.Username)
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": p.ID}).
			SetReplacement(p).
			SetUpsert(true))
	}
	if len(writes) == 0 {
		return nil
	}

	_, err := s.c.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	return err
}

// GetByID loads one cached profile. Returns mongo.ErrNoDocuments if absent.
func (s *Store) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	var p models.Profile
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByIDs loads cached profiles in the order of ids. Ids missing from
// the cache are skipped.
func (s *Store) GetByIDs(ctx context.Context, ids []string) ([]models.Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var found []models.Profile
	if err := cur.All(ctx, &found); err != nil {
		return nil, err
	}

	byID := make(map[string]models.Profile, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]models.Profile, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// Count returns the number of cached profiles from collection metadata.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.EstimatedDocumentCount(ctx)
}
