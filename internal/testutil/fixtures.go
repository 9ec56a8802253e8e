package testutil

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/synkteam/municipath/internal/app/content/cities"
	"github.com/synkteam/municipath/internal/app/content/contest"
	"github.com/synkteam/municipath/internal/app/content/feedback"
	"github.com/synkteam/municipath/internal/app/content/groups"
	"github.com/synkteam/municipath/internal/app/content/lifecycle"
	"github.com/synkteam/municipath/internal/app/content/pending"
	"github.com/synkteam/municipath/internal/app/content/posts"
	"github.com/synkteam/municipath/internal/app/content/saved"
	"github.com/synkteam/municipath/internal/app/content/users"
	"github.com/synkteam/municipath/internal/app/store/memory"
	"github.com/synkteam/municipath/internal/app/system/rolepolicy"
	"github.com/synkteam/municipath/internal/app/system/weather"
	"github.com/synkteam/municipath/internal/domain/models"
)

// Harness is a fully wired engine stack on memory stores. Tests drive
// the engines through their public operations and may reach into the
// stores directly to seed or assert.
type Harness struct {
	Engines lifecycle.Engines
	Coord   *lifecycle.Coordinator
	Policy  *rolepolicy.Policy

	CityStore         *memory.Cities
	PostStore         *memory.Posts
	PointStore        *memory.Points
	GroupStore        *memory.Groups
	RequestStore      *memory.Requests
	ContributionStore *memory.Contributions
	FeedbackStore     *memory.Feedback
	SavedStore        *memory.Saved
	UserStore         *memory.Users
	RoleStore         *memory.Roles
	NotificationStore *memory.Notifications
	Counters          *memory.Counters
}

// NewHarness builds the full engine stack on fresh memory stores, with a
// static weather provider, no mail channel and no audit sink.
func NewHarness(t *testing.T) *Harness {
	t.Helper()

	h := &Harness{
		CityStore:         memory.NewCities(),
		PostStore:         memory.NewPosts(),
		PointStore:        memory.NewPoints(),
		GroupStore:        memory.NewGroups(),
		RequestStore:      memory.NewRequests(),
		ContributionStore: memory.NewContributions(),
		FeedbackStore:     memory.NewFeedback(),
		SavedStore:        memory.NewSaved(),
		UserStore:         memory.NewUsers(),
		RoleStore:         memory.NewRoles(),
		NotificationStore: memory.NewNotifications(),
		Counters:          memory.NewCounters(),
	}

	log := zap.NewNop()
	h.Policy = rolepolicy.New(h.RoleStore)
	wx := weather.NewProxy(weather.Static{Report: weather.Forecast{Summary: "clear", Temperature: 20}}, time.Minute, log)

	h.Engines = lifecycle.Engines{
		Cities:   cities.New(h.CityStore, nil, log),
		Posts:    posts.New(h.PostStore, h.PointStore, h.Counters, h.Policy, wx, log),
		Groups:   groups.New(h.GroupStore, h.Counters, h.Policy, log),
		Pending:  pending.New(h.RequestStore, h.Policy, nil, log),
		Contest:  contest.New(h.ContributionStore, h.Policy, nil, log),
		Users:    users.New(h.UserStore, h.RoleStore, h.NotificationStore, h.Policy, nil, nil, log),
		Feedback: feedback.New(h.FeedbackStore, h.Policy, log),
		Saved:    saved.New(h.SavedStore, h.Policy, log),
	}
	h.Coord = lifecycle.Bind(h.Engines)
	return h
}

// SeedManager plants a validated platform administrator directly in the
// user store.
func (h *Harness) SeedManager(t *testing.T, username string) {
	t.Helper()
	h.seedUser(t, username, true, true)
}

// SeedUser plants a validated, non-manager account.
func (h *Harness) SeedUser(t *testing.T, username string) {
	t.Helper()
	h.seedUser(t, username, true, false)
}

// SeedUnvalidatedUser plants an account that has not been validated.
func (h *Harness) SeedUnvalidatedUser(t *testing.T, username string) {
	t.Helper()
	h.seedUser(t, username, false, false)
}

func (h *Harness) seedUser(t *testing.T, username string, validated, manager bool) {
	t.Helper()
	now := time.Now()
	err := h.UserStore.Save(context.Background(), &models.User{
		Username:  username,
		Validated: validated,
		Manager:   manager,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("failed to seed user %q: %v", username, err)
	}
}

// GrantRole plants a city-scoped role assignment directly in the role
// store, bypassing the curator-only engine path.
func (h *Harness) GrantRole(t *testing.T, cityID, username string, role models.Role) {
	t.Helper()
	if err := h.RoleStore.Set(context.Background(), cityID, username, role); err != nil {
		t.Fatalf("failed to grant role %q to %q: %v", role, username, err)
	}
}

// CreateCity registers a city through the engine, seeding the manager
// and a validated curator as needed. Returns the created city.
func (h *Harness) CreateCity(t *testing.T, name string, postalCode int, curator string) *models.City {
	t.Helper()
	ctx := context.Background()

	if ok, _ := h.Engines.Users.IsManager(ctx, "admin"); !ok {
		h.SeedManager(t, "admin")
	}
	if _, err := h.Engines.Users.Get(ctx, curator); err != nil {
		h.SeedUser(t, curator)
	}

	city, err := h.Engines.Cities.Create(ctx, "admin", name, postalCode, curator, models.Position{Lat: 45.07, Lon: 7.69})
	if err != nil {
		t.Fatalf("failed to create test city %q: %v", name, err)
	}
	return city
}

// NormalDraft returns a minimal persistent post draft.
func NormalDraft(title string) models.PostDraft {
	return models.PostDraft{
		Title:       title,
		Text:        "some text",
		Type:        models.PostNormal,
		Persistence: true,
	}
}

// EventDraft returns an event draft with the given window.
func EventDraft(title string, start, end time.Time) models.PostDraft {
	return models.PostDraft{
		Title:     title,
		Text:      "event details",
		Type:      models.PostEvent,
		StartTime: &start,
		EndTime:   &end,
	}
}

// ContestDraft returns a contest draft ending at the given time.
func ContestDraft(title string, end time.Time) models.PostDraft {
	start := end.Add(-24 * time.Hour)
	return models.PostDraft{
		Title:     title,
		Text:      "contest rules",
		Type:      models.PostContest,
		StartTime: &start,
		EndTime:   &end,
	}
}

// GroupDraft returns a persistent group draft over the given posts.
func GroupDraft(title string, postIDs ...string) models.GroupDraft {
	return models.GroupDraft{
		Title:       title,
		PostIDs:     postIDs,
		Persistence: true,
	}
}
