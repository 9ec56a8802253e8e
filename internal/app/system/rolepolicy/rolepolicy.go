// internal/app/system/rolepolicy/rolepolicy.go

// Package rolepolicy maps a (city, user) pair to an ordinal authorization
// level and exposes the three gates the rest of the system is allowed to
// depend on. No other component inspects raw roles.
package rolepolicy

import (
	"context"

	"github.com/synkteam/municipath/internal/domain/models"
)

// Level is the ordinal authorization rank, highest first:
// Curator > Moderator > ContributorAuthorized > Contributor > Tourist > None.
type Level int

const (
	LevelNone Level = iota
	LevelTourist
	LevelContributor
	LevelContributorAuthorized
	LevelModerator
	LevelCurator
)

// RoleSource resolves a user's city-scoped role. Absence of any role is
// reported as models.RoleNone, not as an error.
type RoleSource interface {
	RoleOf(ctx context.Context, cityID, username string) (models.Role, error)
}

// Policy derives levels and gates from a RoleSource.
type Policy struct {
	src RoleSource
}

func New(src RoleSource) *Policy {
	return &Policy{src: src}
}

// FromRole maps a role tag to its level.
func FromRole(role models.Role) Level {
	switch role {
	case models.RoleCurator:
		return LevelCurator
	case models.RoleModerator:
		return LevelModerator
	case models.RoleContributorAuthorized:
		return LevelContributorAuthorized
	case models.RoleContributor:
		return LevelContributor
	case models.RoleTourist:
		return LevelTourist
	default:
		return LevelNone
	}
}

// LevelOf returns the actor's level in a city. Source failures degrade to
// LevelNone: authorization fails closed.
func (p *Policy) LevelOf(ctx context.Context, cityID, username string) Level {
	role, err := p.src.RoleOf(ctx, cityID, username)
	if err != nil {
		return LevelNone
	}
	return FromRole(role)
}

// CanSubmit reports whether the actor may submit content at all.
func (p *Policy) CanSubmit(ctx context.Context, cityID, username string) bool {
	return p.LevelOf(ctx, cityID, username).CanSubmit()
}

// CanPublish reports whether the actor's content goes live without
// passing through the moderation queue.
func (p *Policy) CanPublish(ctx context.Context, cityID, username string) bool {
	return p.LevelOf(ctx, cityID, username).CanPublish()
}

// IsStaff reports whether the actor may moderate and edit or delete other
// people's content in the city.
func (p *Policy) IsStaff(ctx context.Context, cityID, username string) bool {
	return p.LevelOf(ctx, cityID, username).IsStaff()
}

func (l Level) CanSubmit() bool  { return l > LevelTourist }
func (l Level) CanPublish() bool { return l > LevelContributor }
func (l Level) IsStaff() bool    { return l > LevelContributorAuthorized }
