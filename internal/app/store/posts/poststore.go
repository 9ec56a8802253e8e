// internal/app/store/posts/poststore.go
package poststore

import (
	"context"
	"errors"
	"time"

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
	return &Store{c: db.Collection("posts")}
}

func (s *Store) Get(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, errs.Storage(err)
	}
	return &post, nil
}

func (s *Store) Save(ctx context.Context, post *models.Post) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.c.ReplaceOne(ctx, bson.M{"_id": post.ID}, post, opts)
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

func (s *Store) ByPoint(ctx context.Context, pointID string) ([]*models.Post, error) {
	return s.find(ctx, bson.M{"point_id": pointID})
}

func (s *Store) ByCity(ctx context.Context, cityID string) ([]*models.Post, error) {
	return s.find(ctx, bson.M{"city_id": cityID})
}

// IncrementViews bumps the view counter atomically; concurrent readers
// never lose a count to a replace race.
func (s *Store) IncrementViews(ctx context.Context, id string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$inc": bson.M{"views": 1}})
	if err != nil {
		return errs.Storage(err)
	}
	if res.MatchedCount == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Expired lists non-persistent posts whose window closed before cutoff.
func (s *Store) Expired(ctx context.Context, cutoff time.Time) ([]*models.Post, error) {
	return s.find(ctx, bson.M{
		"persistence": false,
		"end_time":    bson.M{"$lt": cutoff},
	})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]*models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, errs.Storage(err)
	}
	defer cur.Close(ctx)
	var posts []*models.Post
	if err := cur.All(ctx, &posts); err != nil {
		return nil, errs.Storage(err)
	}
	return posts, nil
}
