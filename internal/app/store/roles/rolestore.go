// internal/app/store/roles/rolestore.go
package rolestore

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
	return &Store{c: db.Collection("role_assignments")}
}

func rowID(cityID, username string) string {
	return cityID + "#" + username
}

// RoleOf resolves a user's role in a city. Absence is RoleNone, not an
// error: the role policy treats every unknown pair as an outsider.
func (s *Store) RoleOf(ctx context.Context, cityID, username string) (models.Role, error) {
	var assignment models.RoleAssignment
	err := s.c.FindOne(ctx, bson.M{"_id": rowID(cityID, username)}).Decode(&assignment)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.RoleNone, nil
	}
	if err != nil {
		return models.RoleNone, errs.Storage(err)
	}
	return assignment.Role, nil
}

func (s *Store) Set(ctx context.Context, cityID, username string, role models.Role) error {
	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"city_id":    cityID,
			"username":   username,
			"role":       role,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"created_at": now,
		},
	}
	opts := options.Update().SetUpsert(true)
	_, err := s.c.UpdateByID(ctx, rowID(cityID, username), update, opts)
	if err != nil {
		return errs.Storage(err)
	}
	return nil
}

func (s *Store) Unset(ctx context.Context, cityID, username string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": rowID(cityID, username)})
	if err != nil {
		return errs.Storage(err)
	}
	return nil
}

func (s *Store) DropCity(ctx context.Context, cityID string) error {
	_, err := s.c.DeleteMany(ctx, bson.M{"city_id": cityID})
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
