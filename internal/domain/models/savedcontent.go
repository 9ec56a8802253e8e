// internal/domain/models/savedcontent.go
package models

import "time"

// SavedContent records that a user saved a content item. For events the
// savers double as the participant list.
type SavedContent struct {
	ID        string    `bson:"_id" json:"id"`
	ContentID string    `bson:"content_id" json:"content_id"`
	Username  string    `bson:"username" json:"username"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
