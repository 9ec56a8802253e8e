// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"

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
	return &Store{c: db.Collection("users")}
}

func (s *Store) Get(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.c.FindOne(ctx, bson.M{"_id": username}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, errs.Storage(err)
	}
	return &user, nil
}

func (s *Store) Save(ctx context.Context, user *models.User) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.c.ReplaceOne(ctx, bson.M{"_id": user.Username}, user, opts)
	if wafflemongo.IsDup(err) {
		return errs.ErrDuplicate
	}
	if err != nil {
		return errs.Storage(err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, username string) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": username})
	if err != nil {
		return errs.Storage(err)
	}
	if res.DeletedCount == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// FollowersOf lists the users following a city.
func (s *Store) FollowersOf(ctx context.Context, cityID string) ([]*models.User, error) {
	cur, err := s.c.Find(ctx, bson.M{"following": cityID})
	if err != nil {
		return nil, errs.Storage(err)
	}
	defer cur.Close(ctx)
	var users []*models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, errs.Storage(err)
	}
	return users, nil
}

// RemoveFollowing strips a city from every follow list. Used when the
// city disappears.
func (s *Store) RemoveFollowing(ctx context.Context, cityID string) error {
	_, err := s.c.UpdateMany(ctx,
		bson.M{"following": cityID},
		bson.M{"$pull": bson.M{"following": cityID}})
	if err != nil {
		return errs.Storage(err)
	}
	return nil
}
