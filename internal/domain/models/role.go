// internal/domain/models/role.go
package models

import "time"

// Role is a user's city-scoped role tag. The ordinal authorization level
// is derived from it by the role policy; nothing else inspects raw roles.
type Role string

const (
	RoleNone                  Role = ""
	RoleTourist               Role = "tourist"
	RoleContributor           Role = "contributor"
	RoleContributorAuthorized Role = "contributor_authorized"
	RoleModerator             Role = "moderator"
	RoleCurator               Role = "curator"
)

// RoleAssignment binds a user to a role within one city.
type RoleAssignment struct {
	ID       string `bson:"_id" json:"id"`
	CityID   string `bson:"city_id" json:"city_id"`
	Username string `bson:"username" json:"username"`
	Role     Role   `bson:"role" json:"role"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
