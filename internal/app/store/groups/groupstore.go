// internal/app/store/groups/groupstore.go
package groupstore

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
	return &Store{c: db.Collection("groups")}
}

func (s *Store) Get(ctx context.Context, id string) (*models.Group, error) {
	var group models.Group
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&group)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, errs.Storage(err)
	}
	return &group, nil
}

func (s *Store) Save(ctx context.Context, group *models.Group) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.c.ReplaceOne(ctx, bson.M{"_id": group.ID}, group, opts)
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

func (s *Store) ByCity(ctx context.Context, cityID string) ([]*models.Group, error) {
	return s.find(ctx, bson.M{"city_id": cityID})
}

// ContainingPost lists groups whose member list includes the post.
func (s *Store) ContainingPost(ctx context.Context, postID string) ([]*models.Group, error) {
	return s.find(ctx, bson.M{"post_ids": postID})
}

// Expired lists non-persistent groups whose window closed before cutoff.
func (s *Store) Expired(ctx context.Context, cutoff time.Time) ([]*models.Group, error) {
	return s.find(ctx, bson.M{
		"persistence": false,
		"end_time":    bson.M{"$lt": cutoff},
	})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]*models.Group, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, errs.Storage(err)
	}
	defer cur.Close(ctx)
	var groups []*models.Group
	if err := cur.All(ctx, &groups); err != nil {
		return nil, errs.Storage(err)
	}
	return groups, nil
}
