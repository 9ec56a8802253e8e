// internal/app/store/notifications/notifstore.go
package notifstore

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
	return &Store{c: db.Collection("notifications")}
}

func (s *Store) Save(ctx context.Context, n *models.Notification) error {
	_, err := s.c.InsertOne(ctx, n)
	if err != nil {
		return errs.Storage(err)
	}
	return nil
}

// ByRecipient lists a user's inbox, newest first.
func (s *Store) ByRecipient(ctx context.Context, username string) ([]*models.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"recipient": username}, opts)
	if err != nil {
		return nil, errs.Storage(err)
	}
	defer cur.Close(ctx)
	var notifications []*models.Notification
	if err := cur.All(ctx, &notifications); err != nil {
		return nil, errs.Storage(err)
	}
	return notifications, nil
}

// MarkRead flags one entry. The recipient filter keeps users out of each
// other's inboxes.
func (s *Store) MarkRead(ctx context.Context, username, id string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "recipient": username},
		bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return errs.Storage(err)
	}
	if res.MatchedCount == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (s *Store) DropRecipient(ctx context.Context, username string) error {
	_, err := s.c.DeleteMany(ctx, bson.M{"recipient": username})
	if err != nil {
		return errs.Storage(err)
	}
	return nil
}
