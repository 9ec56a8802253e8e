// internal/app/store/feedback/feedbackstore.go
package feedbackstore

import (
	"context"

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
	return &Store{c: db.Collection("feedback")}
}

// Upsert keys on the row id, so re-rating replaces the earlier score.
// CreatedAt is preserved on overwrite.
func (s *Store) Upsert(ctx context.Context, f *models.Feedback) error {
	update := bson.M{
		"$set": bson.M{
			"content_id": f.ContentID,
			"username":   f.Username,
			"score":      f.Score,
			"updated_at": f.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"created_at": f.CreatedAt,
		},
	}
	opts := options.Update().SetUpsert(true)
	_, err := s.c.UpdateByID(ctx, f.ID, update, opts)
	if err != nil {
		return errs.Storage(err)
	}
	return nil
}

func (s *Store) ByContent(ctx context.Context, contentID string) ([]*models.Feedback, error) {
	cur, err := s.c.Find(ctx, bson.M{"content_id": contentID})
	if err != nil {
		return nil, errs.Storage(err)
	}
	defer cur.Close(ctx)
	var rows []*models.Feedback
	if err := cur.All(ctx, &rows); err != nil {
		return nil, errs.Storage(err)
	}
	return rows, nil
}

func (s *Store) DropContent(ctx context.Context, contentID string) error {
	_, err := s.c.DeleteMany(ctx, bson.M{"content_id": contentID})
	if err != nil {
		return errs.Storage(err)
	}
	return nil
}
