// internal/app/store/saved/savedstore.go
package savedstore

import (
	"context"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
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
	return &Store{c: db.Collection("saved_content")}
}

func (s *Store) Save(ctx context.Context, entry *models.SavedContent) error {
	_, err := s.c.InsertOne(ctx, entry)
	if wafflemongo.IsDup(err) {
		return errs.ErrDuplicate
	}
	if err != nil {
		return errs.Storage(err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, contentID, username string) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"content_id": contentID, "username": username})
	if err != nil {
		return errs.Storage(err)
	}
	if res.DeletedCount == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (s *Store) ByUser(ctx context.Context, username string) ([]*models.SavedContent, error) {
	return s.find(ctx, bson.M{"username": username})
}

func (s *Store) ByContent(ctx context.Context, contentID string) ([]*models.SavedContent, error) {
	return s.find(ctx, bson.M{"content_id": contentID})
}

func (s *Store) DropContent(ctx context.Context, contentID string) error {
	_, err := s.c.DeleteMany(ctx, bson.M{"content_id": contentID})
	if err != nil {
		return errs.Storage(err)
	}
	return nil
}

func (s *Store) DropUser(ctx context.Context, username string) error {
	_, err := s.c.DeleteMany(ctx, bson.M{"username": username})
	if err != nil {
		return errs.Storage(err)
	}
	return nil
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]*models.SavedContent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, errs.Storage(err)
	}
	defer cur.Close(ctx)
	var rows []*models.SavedContent
	if err := cur.All(ctx, &rows); err != nil {
		return nil, errs.Storage(err)
	}
	return rows, nil
}
