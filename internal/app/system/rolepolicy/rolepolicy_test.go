package rolepolicy_test

import (
	"context"
	"errors"
	"testing"

	"github.com/synkteam/municipath/internal/app/system/rolepolicy"
	"github.com/synkteam/municipath/internal/domain/models"
)

type fakeSource struct {
	roles map[string]models.Role
	err   error
}

func (f *fakeSource) RoleOf(_ context.Context, cityID, username string) (models.Role, error) {
	if f.err != nil {
		return models.RoleNone, f.err
	}
	return f.roles[cityID+"/"+username], nil
}

func TestLevelOf_Monotonic(t *testing.T) {
	src := &fakeSource{roles: map[string]models.Role{
		"c1/ann":   models.RoleCurator,
		"c1/bob":   models.RoleModerator,
		"c1/cleo":  models.RoleContributorAuthorized,
		"c1/dan":   models.RoleContributor,
		"c1/erin":  models.RoleTourist,
		"c1/frank": models.RoleNone,
	}}
	p := rolepolicy.New(src)
	ctx := context.Background()

	order := []struct {
		user string
		want rolepolicy.Level
	}{
		{"ann", rolepolicy.LevelCurator},
		{"bob", rolepolicy.LevelModerator},
		{"cleo", rolepolicy.LevelContributorAuthorized},
		{"dan", rolepolicy.LevelContributor},
		{"erin", rolepolicy.LevelTourist},
		{"frank", rolepolicy.LevelNone},
		{"nobody", rolepolicy.LevelNone},
	}
	prev := rolepolicy.LevelCurator + 1
	for _, tt := range order {
		got := p.LevelOf(ctx, "c1", tt.user)
		if got != tt.want {
			t.Errorf("LevelOf(c1, %s) = %d, want %d", tt.user, got, tt.want)
		}
		if got > prev {
			t.Errorf("levels increase at %s", tt.user)
		}
		prev = got
	}
}

func TestGates(t *testing.T) {
	tests := []struct {
		level      rolepolicy.Level
		canSubmit  bool
		canPublish bool
		isStaff    bool
	}{
		{rolepolicy.LevelNone, false, false, false},
		{rolepolicy.LevelTourist, false, false, false},
		{rolepolicy.LevelContributor, true, false, false},
		{rolepolicy.LevelContributorAuthorized, true, true, false},
		{rolepolicy.LevelModerator, true, true, true},
		{rolepolicy.LevelCurator, true, true, true},
	}
	for _, tt := range tests {
		if got := tt.level.CanSubmit(); got != tt.canSubmit {
			t.Errorf("level %d CanSubmit = %v, want %v", tt.level, got, tt.canSubmit)
		}
		if got := tt.level.CanPublish(); got != tt.canPublish {
			t.Errorf("level %d CanPublish = %v, want %v", tt.level, got, tt.canPublish)
		}
		if got := tt.level.IsStaff(); got != tt.isStaff {
			t.Errorf("level %d IsStaff = %v, want %v", tt.level, got, tt.isStaff)
		}
	}
}

func TestLevelOf_SourceFailureFailsClosed(t *testing.T) {
	p := rolepolicy.New(&fakeSource{err: errors.New("connection reset")})
	if got := p.LevelOf(context.Background(), "c1", "ann"); got != rolepolicy.LevelNone {
		t.Errorf("LevelOf on source failure = %d, want LevelNone", got)
	}
}
