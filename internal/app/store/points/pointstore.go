// internal/app/store/points/pointstore.go
package pointstore

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
	return &Store{c: db.Collection("points")}
}

func (s *Store) Get(ctx context.Context, id string) (*models.Point, error) {
	var point models.Point
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&point)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, errs.Storage(err)
	}
	return &point, nil
}

func (s *Store) Save(ctx context.Context, point *models.Point) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.c.ReplaceOne(ctx, bson.M{"_id": point.ID}, point, opts)
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

func (s *Store) ByCity(ctx context.Context, cityID string) ([]*models.Point, error) {
	cur, err := s.c.Find(ctx, bson.M{"city_id": cityID})
	if err != nil {
		return nil, errs.Storage(err)
	}
	defer cur.Close(ctx)
	var points []*models.Point
	if err := cur.All(ctx, &points); err != nil {
		return nil, errs.Storage(err)
	}
	return points, nil
}
