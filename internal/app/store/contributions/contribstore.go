// internal/app/store/contributions/contribstore.go
package contribstore

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
	return &Store{c: db.Collection("contributions")}
}

func (s *Store) Get(ctx context.Context, id string) (*models.Contribution, error) {
	var contribution models.Contribution
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&contribution)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, errs.Storage(err)
	}
	return &contribution, nil
}

func (s *Store) Save(ctx context.Context, contribution *models.Contribution) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.c.ReplaceOne(ctx, bson.M{"_id": contribution.ID}, contribution, opts)
	if err != nil {
		return errs.Storage(err)
	}
	return nil
}

func (s *Store) ByContest(ctx context.Context, contestID string) ([]*models.Contribution, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"contest_id": contestID}, opts)
	if err != nil {
		return nil, errs.Storage(err)
	}
	defer cur.Close(ctx)
	var contributions []*models.Contribution
	if err := cur.All(ctx, &contributions); err != nil {
		return nil, errs.Storage(err)
	}
	return contributions, nil
}

func (s *Store) DeleteByContest(ctx context.Context, contestID string) error {
	_, err := s.c.DeleteMany(ctx, bson.M{"contest_id": contestID})
	if err != nil {
		return errs.Storage(err)
	}
	return nil
}
