// internal/domain/models/notification.go
package models

import "time"

// Notification is one entry in a user's inbox. Delivery is best-effort
// and never blocks the operation that produced it.
type Notification struct {
	ID        string    `bson:"_id" json:"id"`
	Recipient string    `bson:"recipient" json:"recipient"`
	Author    string    `bson:"author" json:"author"`
	Message   string    `bson:"message" json:"message"`
	ContentID string    `bson:"content_id,omitempty" json:"content_id,omitempty"`
	Read      bool      `bson:"read" json:"read"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
