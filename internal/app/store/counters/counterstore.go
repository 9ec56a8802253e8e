// internal/app/store/counters/counterstore.go

// Package counterstore allocates monotonically increasing sequence
// numbers per id prefix. The allocation is a single atomic upsert, so
// concurrent creators under the same prefix never collide and never need
// to scan existing content for the highest sequence in use.
package counterstore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/synkteam/municipath/internal/app/content/errs"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("counters")}
}

type counter struct {
	ID  string `bson:"_id"`
	Seq int    `bson:"seq"`
}

// Next returns the next unused sequence number for a prefix, starting at
// zero for a fresh prefix.
func (s *Store) Next(ctx context.Context, prefix string) (int, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	var doc counter
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": prefix},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts).Decode(&doc)
	if err != nil {
		return 0, errs.Storage(err)
	}
	return doc.Seq - 1, nil
}
