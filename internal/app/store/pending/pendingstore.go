// internal/app/store/pending/pendingstore.go
package pendingstore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/synkteam/municipath/internal/app/content/errs"
	"github.com/synkteam/municipath/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("pending_requests")}
}

func (s *Store) Get(ctx context.Context, id string) (*models.PendingRequest, error) {
	var req models.PendingRequest
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&req)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, errs.Storage(err)
	}
	return &req, nil
}

// Save upserts on the target content id: a later submission for the same
// content replaces the earlier request.
func (s *Store) Save(ctx context.Context, req *models.PendingRequest) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.c.ReplaceOne(ctx, bson.M{"_id": req.ID}, req, opts)
	if err != nil {
		return errs.Storage(err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errs.Storage(err)
	}
	if res.DeletedCount == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (s *Store) ByCity(ctx context.Context, cityID string) ([]*models.PendingRequest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"city_id": cityID}, opts)
	if err != nil {
		return nil, errs.Storage(err)
	}
	defer cur.Close(ctx)
	var reqs []*models.PendingRequest
	if err := cur.All(ctx, &reqs); err != nil {
		return nil, errs.Storage(err)
	}
	return reqs, nil
}

func (s *Store) DropCity(ctx context.Context, cityID string) error {
	_, err := s.c.DeleteMany(ctx, bson.M{"city_id": cityID})
	if err != nil {
		return errs.Storage(err)
	}
	return nil
}
