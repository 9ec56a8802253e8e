// internal/domain/models/contribution.go
package models

import "time"

// Contribution is one entry in a contest's ledger. The ledger is
// append-only until the contest author declares a winner, at which point
// it is torn down and the contest post is rewritten as a social post.
type Contribution struct {
	ID        string    `bson:"_id" json:"id"`
	ContestID string    `bson:"contest_id" json:"contest_id"`
	Author    string    `bson:"author" json:"author"`
	Content   []string  `bson:"content" json:"content"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
