// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

/*
Ensure reconciles the desired indexes of one collection. It is idempotent:
an index with the same keys, name and uniqueness is reused; one with the
same keys but a different name or uniqueness is dropped and recreated;
anything missing is created. Every index model must use bson.D keys and
should carry a name.

Problems are aggregated so one bad index does not hide the others.
*/
func Ensure(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	existing, err := list(ctx, coll)
	if err != nil {
		return fmt.Errorf("%s: list indexes: %w", coll.Name(), err)
	}

	var problems []string
	for _, m := range models {
		if err := ensureOne(ctx, coll, m, existing); err != nil {
			problems = append(problems, err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func list(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := map[string]existingIndex{} // key signature -> index
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		out[keySig(idx.Key)] = idx
	}
	return out, cur.Err()
}

func ensureOne(ctx context.Context, coll *mongo.Collection, m mongo.IndexModel, existing map[string]existingIndex) error {
	keys, ok := m.Keys.(bson.D)
	if !ok {
		return fmt.Errorf("%s: index keys must be bson.D", coll.Name())
	}

	var name string
	var unique *bool
	if m.Options != nil {
		if m.Options.Name != nil {
			name = *m.Options.Name
		}
		unique = m.Options.Unique
	}
	sig := keySig(keys)
	start := time.Now()

	if ex, ok := existing[sig]; ok {
		if sameBoolPtr(unique, ex.Unique) && (name == "" || ex.Name == name) {
			zap.L().Debug("reusing existing index",
				zap.String("collection", coll.Name()),
				zap.String("name", ex.Name),
				zap.String("keys", sig))
			return nil
		}

		// Same keys under another name or with other options.
		if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
			return fmt.Errorf("%s(%s): drop failed: %v", coll.Name(), ex.Name, err)
		}
	}

	if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
		if unique != nil && *unique && isDuplicateKeyErr(err) {
			return fmt.Errorf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), name)
		}
		return fmt.Errorf("%s(%s): %v", coll.Name(), name, err)
	}

	zap.L().Info("index ensured",
		zap.String("collection", coll.Name()),
		zap.String("name", name),
		zap.String("keys", sig),
		zap.Bool("unique", unique != nil && *unique),
		zap.String("took", time.Since(start).String()))
	return nil
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	return (a != nil && *a) == (b != nil && *b)
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}
