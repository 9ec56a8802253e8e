// internal/app/store/cities/citystore.go
package citystore

import (
	"context"
	"errors"
	"regexp"

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
	return &Store{c: db.Collection("cities")}
}

func (s *Store) Get(ctx context.Context, id string) (*models.City, error) {
	var city models.City
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&city)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, errs.Storage(err)
	}
	return &city, nil
}

func (s *Store) Save(ctx context.Context, city *models.City) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.c.ReplaceOne(ctx, bson.M{"_id": city.ID}, city, opts)
	if wafflemongo.IsDup(err) {
		return errs.ErrDuplicate
	}
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

func (s *Store) All(ctx context.Context) ([]*models.City, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errs.Storage(err)
	}
	defer cur.Close(ctx)
	var cities []*models.City
	if err := cur.All(ctx, &cities); err != nil {
		return nil, errs.Storage(err)
	}
	return cities, nil
}

// SearchByName matches folded-name prefixes server-side.
func (s *Store) SearchByName(ctx context.Context, nameCI string) ([]*models.City, error) {
	filter := bson.M{"name_ci": bson.M{"$regex": "^" + regexp.QuoteMeta(nameCI)}}
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, errs.Storage(err)
	}
	defer cur.Close(ctx)
	var cities []*models.City
	if err := cur.All(ctx, &cities); err != nil {
		return nil, errs.Storage(err)
	}
	return cities, nil
}
