package groups_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/synkteam/municipath/internal/app/content/errs"
	"github.com/synkteam/municipath/internal/domain/models"
	"github.com/synkteam/municipath/internal/testutil"
)

// seedPosts creates a city with an authorized contributor "paolo" and n
// published posts at distinct positions.
func seedPosts(t *testing.T, h *testutil.Harness, n int) (*models.City, []*models.Post) {
	t.Helper()
	ctx := context.Background()
	city := h.CreateCity(t, "Torino", 10121, "carla")
	h.SeedUser(t, "paolo")
	h.GrantRole(t, city.ID, "paolo", models.RoleContributorAuthorized)

	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		pos := models.Position{Lat: 45.2 + float64(i)/100, Lon: 7.6}
		p, err := h.Engines.Posts.Create(ctx, "paolo", city.ID, pos, testutil.NormalDraft("stop"))
		if err != nil {
			t.Fatalf("seed post %d: %v", i, err)
		}
		posts = append(posts, p)
	}
	return city, posts
}

func TestCreate_PublisherGoesLive(t *testing.T) {
	h := testutil.NewHarness(t)
	ctx := context.Background()
	city, posts := seedPosts(t, h, 2)

	group, err := h.Engines.Groups.Create(ctx, "paolo", city.ID,
		testutil.GroupDraft("old town walk", posts[0].ID, posts[1].ID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !group.Published {
		t.Error("authorized contributor's group should publish immediately")
	}
	if group.CityID != city.ID {
		t.Errorf("city = %q, want %q", group.CityID, city.ID)
	}
}

func TestCreate_ContributorQueuesModeration(t *testing.T) {
	h := testutil.NewHarness(t)
	ctx := context.Background()
	city, posts := seedPosts(t, h, 2)
	h.SeedUser(t, "mona")
	h.GrantRole(t, city.ID, "mona", models.RoleContributor)

	group, err := h.Engines.Groups.Create(ctx, "mona", city.ID,
		testutil.GroupDraft("walk", posts[0].ID, posts[1].ID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if group.Published {
		t.Error("plain contributor's group should be held for moderation")
	}
	reqs, _ := h.Engines.Pending.ListPending(ctx, "carla", city.ID)
	if len(reqs) != 1 || reqs[0].ID != group.ID || reqs[0].Kind != models.KindGroup {
		t.Fatalf("expected one group create request, got %+v", reqs)
	}
}

func TestCreate_RejectsThinOrDanglingComposition(t *testing.T) {
	h := testutil.NewHarness(t)
	ctx := context.Background()
	city, posts := seedPosts(t, h, 2)

	_, err := h.Engines.Groups.Create(ctx, "paolo", city.ID,
		testutil.GroupDraft("thin", posts[0].ID))
	if !errors.Is(err, errs.ErrMissingField) {
		t.Fatalf("one member: err = %v, want ErrMissingField", err)
	}

	_, err = h.Engines.Groups.Create(ctx, "paolo", city.ID,
		testutil.GroupDraft("dangling", posts[0].ID, posts[0].PointID+".99"))
	if !errors.Is(err, errs.ErrDanglingReference) {
		t.Fatalf("missing member: err = %v, want ErrDanglingReference", err)
	}
}

func TestCreate_RejectsForeignMembers(t *testing.T) {
	h := testutil.NewHarness(t)
	ctx := context.Background()
	city, posts := seedPosts(t, h, 2)

	h.SeedUser(t, "dario")
	other, err := h.Engines.Cities.Create(ctx, "admin", "Asti", 14100, "dario",
		models.Position{Lat: 44.9, Lon: 8.2})
	if err != nil {
		t.Fatalf("second city: %v", err)
	}
	h.GrantRole(t, other.ID, "paolo", models.RoleContributorAuthorized)
	foreign, err := h.Engines.Posts.Create(ctx, "paolo", other.ID,
		models.Position{Lat: 44.91, Lon: 8.21}, testutil.NormalDraft("elsewhere"))
	if err != nil {
		t.Fatalf("foreign post: %v", err)
	}

	_, err = h.Engines.Groups.Create(ctx, "paolo", city.ID,
		testutil.GroupDraft("mixed", posts[0].ID, foreign.ID))
	if !errors.Is(err, errs.ErrDanglingReference) {
		t.Fatalf("cross-city member: err = %v, want ErrDanglingReference", err)
	}
}

func TestCreate_TransientNeedsWindow(t *testing.T) {
	h := testutil.NewHarness(t)
	ctx := context.Background()
	city, posts := seedPosts(t, h, 2)

	draft := testutil.GroupDraft("weekend", posts[0].ID, posts[1].ID)
	draft.Persistence = false
	_, err := h.Engines.Groups.Create(ctx, "paolo", city.ID, draft)
	if !errors.Is(err, errs.ErrInvalidTiming) {
		t.Fatalf("err = %v, want ErrInvalidTiming", err)
	}
}

func TestEdit_ReordersAndRecomposes(t *testing.T) {
	h := testutil.NewHarness(t)
	ctx := context.Background()
	city, posts := seedPosts(t, h, 3)
	group, _ := h.Engines.Groups.Create(ctx, "paolo", city.ID,
		testutil.GroupDraft("walk", posts[0].ID, posts[1].ID))

	draft := testutil.GroupDraft("walk", posts[2].ID, posts[0].ID)
	draft.Sorted = true
	if err := h.Engines.Groups.Edit(ctx, "paolo", group.ID, draft); err != nil {
		t.Fatalf("edit: %v", err)
	}
	got, _ := h.Engines.Groups.Get(ctx, group.ID)
	if !got.Sorted {
		t.Error("group should now be an itinerary")
	}
	if len(got.PostIDs) != 2 || got.PostIDs[0] != posts[2].ID {
		t.Errorf("members = %v, want [%s %s]", got.PostIDs, posts[2].ID, posts[0].ID)
	}
}

func TestApplyEdit_RevalidatesComposition(t *testing.T) {
	h := testutil.NewHarness(t)
	ctx := context.Background()
	_, posts := seedPosts(t, h, 2)
	group, err := h.Engines.Groups.Create(ctx, "paolo", posts[0].CityID,
		testutil.GroupDraft("walk", posts[0].ID, posts[1].ID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// An approved snapshot that went thin in the queue must not install.
	thin := testutil.GroupDraft("walk", posts[0].ID)
	if err := h.Engines.Groups.ApplyEdit(ctx, group.ID, thin); !errors.Is(err, errs.ErrMissingField) {
		t.Fatalf("err = %v, want ErrMissingField", err)
	}
	live, _ := h.Engines.Groups.Get(ctx, group.ID)
	if len(live.PostIDs) != 2 {
		t.Errorf("members = %v, want the original pair", live.PostIDs)
	}
}

func TestDelete_LeavesMemberPosts(t *testing.T) {
	h := testutil.NewHarness(t)
	ctx := context.Background()
	city, posts := seedPosts(t, h, 2)
	group, _ := h.Engines.Groups.Create(ctx, "paolo", city.ID,
		testutil.GroupDraft("walk", posts[0].ID, posts[1].ID))

	if err := h.Engines.Groups.Delete(ctx, "paolo", group.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	for _, p := range posts {
		if _, err := h.Engines.Posts.Get(ctx, p.ID); err != nil {
			t.Errorf("member post %s should survive: %v", p.ID, err)
		}
	}
}

func TestRemoveFromAll_PurgesBelowMinimum(t *testing.T) {
	h := testutil.NewHarness(t)
	ctx := context.Background()
	city, posts := seedPosts(t, h, 3)

	big, _ := h.Engines.Groups.Create(ctx, "paolo", city.ID,
		testutil.GroupDraft("big", posts[0].ID, posts[1].ID, posts[2].ID))
	small, _ := h.Engines.Groups.Create(ctx, "paolo", city.ID,
		testutil.GroupDraft("small", posts[0].ID, posts[1].ID))

	if err := h.Engines.Posts.Delete(ctx, "paolo", posts[0].ID); err != nil {
		t.Fatalf("delete member: %v", err)
	}

	shrunk, err := h.Engines.Groups.Get(ctx, big.ID)
	if err != nil {
		t.Fatalf("big group should shrink, not die: %v", err)
	}
	if len(shrunk.PostIDs) != 2 {
		t.Errorf("big group members = %v, want 2", shrunk.PostIDs)
	}
	if _, err := h.Engines.Groups.Get(ctx, small.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("small group should be purged, got %v", err)
	}
}

func TestContainingPost_OnlyPublished(t *testing.T) {
	h := testutil.NewHarness(t)
	ctx := context.Background()
	city, posts := seedPosts(t, h, 2)
	h.SeedUser(t, "mona")
	h.GrantRole(t, city.ID, "mona", models.RoleContributor)

	published, _ := h.Engines.Groups.Create(ctx, "paolo", city.ID,
		testutil.GroupDraft("live", posts[0].ID, posts[1].ID))
	held, _ := h.Engines.Groups.Create(ctx, "mona", city.ID,
		testutil.GroupDraft("held", posts[0].ID, posts[1].ID))

	got, err := h.Engines.Groups.ContainingPost(ctx, posts[0].ID)
	if err != nil {
		t.Fatalf("containing: %v", err)
	}
	if len(got) != 1 || got[0] != published.ID {
		t.Errorf("containing = %v, want only %s (not held %s)", got, published.ID, held.ID)
	}
}

func TestSweepExpired_RemovesClosedWindows(t *testing.T) {
	h := testutil.NewHarness(t)
	ctx := context.Background()
	city, posts := seedPosts(t, h, 2)

	draft := testutil.GroupDraft("over", posts[0].ID, posts[1].ID)
	draft.Persistence = false
	start := time.Now().Add(-2 * time.Hour)
	end := time.Now().Add(-time.Hour)
	draft.StartTime, draft.EndTime = &start, &end
	expired, err := h.Engines.Groups.Create(ctx, "paolo", city.ID, draft)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	keeper, _ := h.Engines.Groups.Create(ctx, "paolo", city.ID,
		testutil.GroupDraft("forever", posts[0].ID, posts[1].ID))

	removed, err := h.Engines.Groups.SweepExpired(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, err := h.Engines.Groups.Get(ctx, expired.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("expired group should be gone, got %v", err)
	}
	if _, err := h.Engines.Groups.Get(ctx, keeper.ID); err != nil {
		t.Errorf("persistent group should survive: %v", err)
	}
}

func TestGroupsOf_VisibilityFilter(t *testing.T) {
	h := testutil.NewHarness(t)
	ctx := context.Background()
	city, posts := seedPosts(t, h, 2)
	h.SeedUser(t, "mona")
	h.GrantRole(t, city.ID, "mona", models.RoleContributor)

	h.Engines.Groups.Create(ctx, "paolo", city.ID, testutil.GroupDraft("live", posts[0].ID, posts[1].ID))
	held, _ := h.Engines.Groups.Create(ctx, "mona", city.ID, testutil.GroupDraft("held", posts[0].ID, posts[1].ID))

	anon, _ := h.Engines.Groups.GroupsOf(ctx, "", city.ID)
	if len(anon) != 1 {
		t.Errorf("anonymous viewer sees %d groups, want 1", len(anon))
	}
	mine, _ := h.Engines.Groups.GroupsOf(ctx, "mona", city.ID)
	found := false
	for _, g := range mine {
		if g.ID == held.ID {
			found = true
		}
	}
	if !found {
		t.Error("author should see their held group")
	}
}
