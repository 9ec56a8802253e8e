// internal/domain/models/feedback.go
package models

import "time"

// Feedback is one user's 1-5 score for a content item. One row per
// (content, user); re-rating overwrites.
type Feedback struct {
	ID        string    `bson:"_id" json:"id"`
	ContentID string    `bson:"content_id" json:"content_id"`
	Username  string    `bson:"username" json:"username"`
	Score     int       `bson:"score" json:"score"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Score is the aggregate feedback of a content item.
type Score struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}
