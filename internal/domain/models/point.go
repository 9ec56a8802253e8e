// internal/domain/models/point.go
package models

import "time"

// Point is a location within a city. It owns the ordered list of post ids
// at that position and disappears when its last post is removed. A point
// is never created without a first post.
type Point struct {
	ID      string   `bson:"_id" json:"id"`
	CityID  string   `bson:"city_id" json:"city_id"`
	Pos     Position `bson:"pos" json:"pos"`
	PostIDs []string `bson:"post_ids" json:"post_ids"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
