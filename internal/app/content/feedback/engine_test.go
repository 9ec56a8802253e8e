package feedback_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/synkteam/municipath/internal/app/content/errs"
	"github.com/synkteam/municipath/internal/domain/models"
	"github.com/synkteam/municipath/internal/testutil"
)

// ratedPost seeds a city with a published post and two contributors,
// "rita" and "sam".
func ratedPost(t *testing.T, h *testutil.Harness) *models.Post {
	t.Helper()
	ctx := context.Background()
	city := h.CreateCity(t, "Torino", 10121, "carla")
	h.SeedUser(t, "paolo")
	h.GrantRole(t, city.ID, "paolo", models.RoleContributorAuthorized)
	for _, u := range []string{"rita", "sam"} {
		h.SeedUser(t, u)
		h.GrantRole(t, city.ID, u, models.RoleContributor)
	}
	post, err := h.Engines.Posts.Create(ctx, "paolo", city.ID,
		models.Position{Lat: 45.2, Lon: 7.6}, testutil.NormalDraft("market"))
	if err != nil {
		t.Fatalf("seed post: %v", err)
	}
	return post
}

func TestRate_AggregatesAcrossUsers(t *testing.T) {
	h := testutil.NewHarness(t)
	ctx := context.Background()
	post := ratedPost(t, h)

	if err := h.Engines.Feedback.Rate(ctx, "rita", post.ID, 5); err != nil {
		t.Fatalf("rate: %v", err)
	}
	if err := h.Engines.Feedback.Rate(ctx, "sam", post.ID, 2); err != nil {
		t.Fatalf("rate: %v", err)
	}

	score, err := h.Engines.Feedback.ScoreOf(ctx, post.ID)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if score.Count != 2 || math.Abs(score.Average-3.5) > 1e-9 {
		t.Errorf("score = %+v, want count 2 average 3.5", score)
	}
}

func TestRate_ReRatingOverwrites(t *testing.T) {
	h := testutil.NewHarness(t)
	ctx := context.Background()
	post := ratedPost(t, h)

	h.Engines.Feedback.Rate(ctx, "rita", post.ID, 1)
	if err := h.Engines.Feedback.Rate(ctx, "rita", post.ID, 4); err != nil {
		t.Fatalf("re-rate: %v", err)
	}
	score, _ := h.Engines.Feedback.ScoreOf(ctx, post.ID)
	if score.Count != 1 || score.Average != 4 {
		t.Errorf("score = %+v, want count 1 average 4", score)
	}
}

func TestRate_BoundsAndTargets(t *testing.T) {
	h := testutil.NewHarness(t)
	ctx := context.Background()
	post := ratedPost(t, h)

	for _, bad := range []int{0, 6, -1} {
		if err := h.Engines.Feedback.Rate(ctx, "rita", post.ID, bad); !errors.Is(err, errs.ErrMissingField) {
			t.Errorf("score %d: err = %v, want ErrMissingField", bad, err)
		}
	}
	if err := h.Engines.Feedback.Rate(ctx, "rita", post.PointID+".99", 3); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("missing content: err = %v, want ErrNotFound", err)
	}
	if err := h.Engines.Feedback.Rate(ctx, "rita", "12345..3.9", 3); !errors.Is(err, errs.ErrMalformedID) {
		t.Errorf("malformed id: err = %v, want ErrMalformedID", err)
	}
}

func TestRate_RequiresRole(t *testing.T) {
	h := testutil.NewHarness(t)
	ctx := context.Background()
	post := ratedPost(t, h)
	h.SeedUser(t, "stranger")

	if err := h.Engines.Feedback.Rate(ctx, "stranger", post.ID, 3); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestRate_GroupsAreRateable(t *testing.T) {
	h := testutil.NewHarness(t)
	ctx := context.Background()
	post := ratedPost(t, h)
	second, err := h.Engines.Posts.Create(ctx, "paolo", post.CityID,
		models.Position{Lat: 45.3, Lon: 7.5}, testutil.NormalDraft("other"))
	if err != nil {
		t.Fatalf("second post: %v", err)
	}
	group, err := h.Engines.Groups.Create(ctx, "paolo", post.CityID,
		testutil.GroupDraft("walk", post.ID, second.ID))
	if err != nil {
		t.Fatalf("group: %v", err)
	}

	if err := h.Engines.Feedback.Rate(ctx, "rita", group.ID, 5); err != nil {
		t.Fatalf("rate group: %v", err)
	}
	score, _ := h.Engines.Feedback.ScoreOf(ctx, group.ID)
	if score.Count != 1 {
		t.Errorf("group score = %+v, want one rating", score)
	}
}

func TestScoreOf_NoRatingsIsZero(t *testing.T) {
	h := testutil.NewHarness(t)
	post := ratedPost(t, h)

	score, err := h.Engines.Feedback.ScoreOf(context.Background(), post.ID)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if score.Count != 0 || score.Average != 0 {
		t.Errorf("score = %+v, want zero value", score)
	}
}
