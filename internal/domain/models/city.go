// internal/domain/models/city.go
package models

import "time"

// City is the top-level tenant. It owns points, groups and a curator.
// The ID is derived from name+postal code and is dot-free, so it can be
// used as the first segment of every content identifier in the city.
type City struct {
	ID         string   `bson:"_id" json:"id"`
	Name       string   `bson:"name" json:"name"`
	NameCI     string   `bson:"name_ci" json:"name_ci"`
	PostalCode int      `bson:"postal_code" json:"postal_code"`
	Curator    string   `bson:"curator" json:"curator"`
	Pos        Position `bson:"pos" json:"pos"`

	// PrimePostID names the city's institutional first post. The prime
	// post cannot be edited or deleted through the content operations;
	// it changes only when the city itself is updated or deleted.
	PrimePostID string `bson:"prime_post_id" json:"prime_post_id"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
