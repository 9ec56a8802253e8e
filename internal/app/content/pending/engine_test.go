package pending_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/synkteam/municipath/internal/app/content/errs"
	"github.com/synkteam/municipath/internal/domain/models"
	"github.com/synkteam/municipath/internal/testutil"
)

var plazaPos = models.Position{Lat: 45.2, Lon: 7.6}

// heldPost seeds a city with contributor "mona" and returns her queued,
// unpublished post.
func heldPost(t *testing.T, h *testutil.Harness) (*models.City, *models.Post) {
	t.Helper()
	ctx := context.Background()
	city := h.CreateCity(t, "Torino", 10121, "carla")
	h.SeedUser(t, "mona")
	h.GrantRole(t, city.ID, "mona", models.RoleContributor)
	post, err := h.Engines.Posts.Create(ctx, "mona", city.ID, plazaPos, testutil.NormalDraft("held"))
	if err != nil {
		t.Fatalf("seed held post: %v", err)
	}
	return city, post
}

func TestListPending_StaffOnly(t *testing.T) {
	h := testutil.NewHarness(t)
	ctx := context.Background()
	city, _ := heldPost(t, h)

	if _, err := h.Engines.Pending.ListPending(ctx, "mona", city.ID); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("submitter listing queue: err = %v, want ErrUnauthorized", err)
	}

	h.SeedUser(t, "max")
	h.GrantRole(t, city.ID, "max", models.RoleModerator)
	reqs, err := h.Engines.Pending.ListPending(ctx, "max", city.ID)
	if err != nil {
		t.Fatalf("moderator listing queue: %v", err)
	}
	if len(reqs) != 1 {
		t.Fatalf("queue length = %d, want 1", len(reqs))
	}
}

func TestJudge_AcceptCreatePublishes(t *testing.T) {
	h := testutil.NewHarness(t)
	ctx := context.Background()
	_, post := heldPost(t, h)

	if err := h.Engines.Pending.Judge(ctx, "carla", post.ID, true, "fits the district plan"); err != nil {
		t.Fatalf("judge: %v", err)
	}
	got, _ := h.Engines.Posts.Get(ctx, post.ID)
	if !got.Published {
		t.Error("accepted create should be published")
	}
	inbox, _ := h.Engines.Users.Inbox(ctx, "mona")
	if len(inbox) == 0 {
		t.Fatal("submitter should be told the verdict")
	}
	if !strings.Contains(inbox[0].Message, "fits the district plan") {
		t.Errorf("verdict notice = %q, want the moderator's reason included", inbox[0].Message)
	}
}

func TestJudge_RejectCreateDeletesPlaceholder(t *testing.T) {
	h := testutil.NewHarness(t)
	ctx := context.Background()
	city, post := heldPost(t, h)

	if err := h.Engines.Pending.Judge(ctx, "carla", post.ID, false, "off topic"); err != nil {
		t.Fatalf("judge: %v", err)
	}
	if _, err := h.Engines.Posts.Get(ctx, post.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("rejected placeholder should be gone, got %v", err)
	}
	if reqs, _ := h.Engines.Pending.ListPending(ctx, "carla", city.ID); len(reqs) != 0 {
		t.Errorf("queue should be empty, got %d", len(reqs))
	}
	// The submitter hears about the rejection even though the
	// placeholder no longer exists.
	inbox, _ := h.Engines.Users.Inbox(ctx, "mona")
	if len(inbox) == 0 {
		t.Fatal("submitter should be told about the rejection")
	}
	if !strings.Contains(inbox[0].Message, "rejected") || !strings.Contains(inbox[0].Message, "off topic") {
		t.Errorf("verdict notice = %q, want the outcome and reason", inbox[0].Message)
	}
}

func TestJudge_AcceptEditInstallsSnapshot(t *testing.T) {
	h := testutil.NewHarness(t)
	ctx := context.Background()
	_, post := heldPost(t, h)
	if err := h.Engines.Pending.Judge(ctx, "carla", post.ID, true, ""); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if err := h.Engines.Posts.Edit(ctx, "mona", post.ID, testutil.NormalDraft("proposed")); err != nil {
		t.Fatalf("submit edit: %v", err)
	}
	// The live post is untouched while the proposal is pending.
	live, _ := h.Engines.Posts.Get(ctx, post.ID)
	if live.Title != "held" {
		t.Errorf("pending edit leaked into live content: title = %q", live.Title)
	}

	if err := h.Engines.Pending.Judge(ctx, "carla", post.ID, true, ""); err != nil {
		t.Fatalf("judge edit: %v", err)
	}
	got, _ := h.Engines.Posts.Get(ctx, post.ID)
	if got.Title != "proposed" {
		t.Errorf("title = %q, want proposed", got.Title)
	}
}

func TestJudge_RejectEditLeavesContent(t *testing.T) {
	h := testutil.NewHarness(t)
	ctx := context.Background()
	_, post := heldPost(t, h)
	h.Engines.Pending.Judge(ctx, "carla", post.ID, true, "")

	h.Engines.Posts.Edit(ctx, "mona", post.ID, testutil.NormalDraft("proposed"))
	if err := h.Engines.Pending.Judge(ctx, "carla", post.ID, false, ""); err != nil {
		t.Fatalf("judge: %v", err)
	}
	got, err := h.Engines.Posts.Get(ctx, post.ID)
	if err != nil {
		t.Fatalf("live content should survive a rejected edit: %v", err)
	}
	if got.Title != "held" {
		t.Errorf("title = %q, want held", got.Title)
	}
}

func TestSubmitEdit_LastWriterWins(t *testing.T) {
	h := testutil.NewHarness(t)
	ctx := context.Background()
	city, post := heldPost(t, h)
	h.Engines.Pending.Judge(ctx, "carla", post.ID, true, "")

	h.Engines.Posts.Edit(ctx, "mona", post.ID, testutil.NormalDraft("first"))
	h.Engines.Posts.Edit(ctx, "mona", post.ID, testutil.NormalDraft("second"))

	reqs, _ := h.Engines.Pending.ListPending(ctx, "carla", city.ID)
	if len(reqs) != 1 {
		t.Fatalf("queue length = %d, want 1 (later submission replaces earlier)", len(reqs))
	}
	if reqs[0].Post == nil || reqs[0].Post.Title != "second" {
		t.Errorf("queued draft = %+v, want the second submission", reqs[0].Post)
	}
}

func TestJudge_NonStaffRefused(t *testing.T) {
	h := testutil.NewHarness(t)
	ctx := context.Background()
	city, post := heldPost(t, h)
	h.SeedUser(t, "rita")
	h.GrantRole(t, city.ID, "rita", models.RoleContributorAuthorized)

	if err := h.Engines.Pending.Judge(ctx, "rita", post.ID, true, ""); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestJudge_SecondVerdictFindsNothing(t *testing.T) {
	h := testutil.NewHarness(t)
	ctx := context.Background()
	_, post := heldPost(t, h)

	if err := h.Engines.Pending.Judge(ctx, "carla", post.ID, true, ""); err != nil {
		t.Fatalf("first verdict: %v", err)
	}
	if err := h.Engines.Pending.Judge(ctx, "carla", post.ID, false, ""); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("second verdict: err = %v, want ErrNotFound", err)
	}
}

func TestJudge_ConcurrentVerdictsOneWins(t *testing.T) {
	h := testutil.NewHarness(t)
	ctx := context.Background()
	_, post := heldPost(t, h)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = h.Engines.Pending.Judge(ctx, "carla", post.ID, true, "")
		}(i)
	}
	wg.Wait()

	var ok, notFound int
	for _, err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, errs.ErrNotFound):
			notFound++
		default:
			t.Fatalf("unexpected verdict error: %v", err)
		}
	}
	if ok != 1 || notFound != 1 {
		t.Fatalf("want exactly one winner and one ErrNotFound, got ok=%d notFound=%d", ok, notFound)
	}
}

func TestDrop_MissingRequestIsNoop(t *testing.T) {
	h := testutil.NewHarness(t)
	if err := h.Engines.Pending.Drop(context.Background(), "12345.0x0.0"); err != nil {
		t.Fatalf("drop of absent request: %v", err)
	}
}
