// internal/domain/models/user.go
package models

import "time"

// User is an account keyed by username. Validated gates everything except
// registration; Manager marks platform administrators; CuratorOf is the
// id of the city the user curates, empty for everyone else.
type User struct {
	Username     string `bson:"_id" json:"username"`
	Email        string `bson:"email,omitempty" json:"email,omitempty"`
	PasswordHash string `bson:"password_hash" json:"-"`
	Validated    bool   `bson:"validated" json:"validated"`
	Manager      bool   `bson:"manager" json:"manager"`
	CuratorOf    string `bson:"curator_of,omitempty" json:"curator_of,omitempty"`

	// Cities the user follows; publications there are fanned out to the
	// user's notification inbox.
	Following []string `bson:"following,omitempty" json:"following,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
