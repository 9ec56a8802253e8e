package api_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synkteam/municipath/internal/api"
	"github.com/synkteam/municipath/internal/domain/models"
	"github.com/synkteam/municipath/internal/testutil"
)

// serve runs one request through the full API router of a harness.
func serve(h *testutil.Harness, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	api.Routes(h.Engines).ServeHTTP(rec, r)
	return rec
}

func TestCreateCity_ManagerOnly(t *testing.T) {
	h := testutil.NewHarness(t)
	h.SeedManager(t, "admin")
	h.SeedUser(t, "carla")

	body := api.CityRequest{
		Name: "Torino", PostalCode: 10121, Curator: "carla",
		Pos: models.Position{Lat: 45.07, Lon: 7.69},
	}

	rec := serve(h, testutil.NewRequest(t, http.MethodPost, "/cities", body))
	assert.Equal(t, http.StatusForbidden, rec.Code, "anonymous caller")

	rec = serve(h, testutil.WithActor(testutil.NewRequest(t, http.MethodPost, "/cities", body), "admin"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var city models.City
	testutil.DecodeJSON(t, rec, &city)
	assert.Equal(t, "Torino", city.Name)
	assert.NotEmpty(t, city.PrimePostID)

	// The same natural key conflicts.
	rec = serve(h, testutil.WithActor(testutil.NewRequest(t, http.MethodPost, "/cities", body), "admin"))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetCity_NotFound(t *testing.T) {
	h := testutil.NewHarness(t)
	rec := serve(h, testutil.NewRequest(t, http.MethodGet, "/cities/99999", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var er api.ErrorResponse
	testutil.DecodeJSON(t, rec, &er)
	assert.NotEmpty(t, er.Error)
}

func TestSearchCities(t *testing.T) {
	h := testutil.NewHarness(t)
	h.CreateCity(t, "Torino", 10121, "carla")

	rec := serve(h, testutil.NewRequest(t, http.MethodGet, "/cities/search?q=tor", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.City
	testutil.DecodeJSON(t, rec, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Torino", list[0].Name)
}

func TestPostLifecycleOverHTTP(t *testing.T) {
	h := testutil.NewHarness(t)
	city := h.CreateCity(t, "Torino", 10121, "carla")
	h.SeedUser(t, "paolo")
	h.GrantRole(t, city.ID, "paolo", models.RoleContributorAuthorized)

	create := api.CreatePostRequest{
		CityID: city.ID,
		Pos:    models.Position{Lat: 45.2, Lon: 7.6},
		Draft:  testutil.NormalDraft("market"),
	}
	rec := serve(h, testutil.WithActor(testutil.NewRequest(t, http.MethodPost, "/posts", create), "paolo"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var post models.Post
	testutil.DecodeJSON(t, rec, &post)
	assert.True(t, post.Published)

	// View decorates with the forecast and bumps the counter.
	rec = serve(h, testutil.NewRequest(t, http.MethodGet, "/posts/"+post.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var view struct {
		Post     models.Post `json:"post"`
		Forecast *struct {
			Summary string `json:"summary"`
		} `json:"forecast"`
	}
	testutil.DecodeJSON(t, rec, &view)
	assert.EqualValues(t, 1, view.Post.Views)
	require.NotNil(t, view.Forecast)
	assert.Equal(t, "clear", view.Forecast.Summary)

	// Edit, then delete.
	rec = serve(h, testutil.WithActor(
		testutil.NewRequest(t, http.MethodPut, "/posts/"+post.ID, testutil.NormalDraft("updated")), "paolo"))
	assert.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = serve(h, testutil.WithActor(testutil.NewRequest(t, http.MethodDelete, "/posts/"+post.ID, nil), "paolo"))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(h, testutil.NewRequest(t, http.MethodGet, "/posts/"+post.ID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreatePost_BadBody(t *testing.T) {
	h := testutil.NewHarness(t)
	req := httptest.NewRequest(http.MethodPost, "/posts", nil)
	rec := serve(h, testutil.WithActor(req, "paolo"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestModerationOverHTTP(t *testing.T) {
	h := testutil.NewHarness(t)
	ctx := context.Background()
	city := h.CreateCity(t, "Torino", 10121, "carla")
	h.SeedUser(t, "mona")
	h.GrantRole(t, city.ID, "mona", models.RoleContributor)

	post, err := h.Engines.Posts.Create(ctx, "mona", city.ID,
		models.Position{Lat: 45.2, Lon: 7.6}, testutil.NormalDraft("held"))
	require.NoError(t, err)

	// The submitter cannot read the queue.
	rec := serve(h, testutil.WithActor(
		testutil.NewRequest(t, http.MethodGet, "/pending/city/"+city.ID, nil), "mona"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(h, testutil.WithActor(
		testutil.NewRequest(t, http.MethodGet, "/pending/city/"+city.ID, nil), "carla"))
	require.Equal(t, http.StatusOK, rec.Code)
	var queue []models.PendingRequest
	testutil.DecodeJSON(t, rec, &queue)
	require.Len(t, queue, 1)

	rec = serve(h, testutil.WithActor(
		testutil.NewRequest(t, http.MethodPost, "/pending/"+post.ID+"/judge",
			api.JudgeRequest{Accept: true}), "carla"))
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	got, err := h.Engines.Posts.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.True(t, got.Published)

	// A second verdict on the same request finds nothing.
	rec = serve(h, testutil.WithActor(
		testutil.NewRequest(t, http.MethodPost, "/pending/"+post.ID+"/judge",
			api.JudgeRequest{Accept: false}), "carla"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContestOverHTTP(t *testing.T) {
	h := testutil.NewHarness(t)
	ctx := context.Background()
	city := h.CreateCity(t, "Torino", 10121, "carla")
	h.SeedUser(t, "paolo")
	h.GrantRole(t, city.ID, "paolo", models.RoleContributorAuthorized)
	h.SeedUser(t, "rita")
	h.GrantRole(t, city.ID, "rita", models.RoleContributor)

	contest, err := h.Engines.Posts.Create(ctx, "paolo", city.ID,
		models.Position{Lat: 45.2, Lon: 7.6},
		testutil.ContestDraft("photo contest", time.Now().Add(time.Hour)))
	require.NoError(t, err)

	rec := serve(h, testutil.WithActor(
		testutil.NewRequest(t, http.MethodPost, "/contests/"+contest.ID+"/contributions",
			api.ContributionRequest{Content: []string{"photo-1"}}), "rita"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var c models.Contribution
	testutil.DecodeJSON(t, rec, &c)

	// Ledger reads are author-only.
	rec = serve(h, testutil.WithActor(
		testutil.NewRequest(t, http.MethodGet, "/contests/"+contest.ID+"/contributions", nil), "rita"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Declaring before the deadline conflicts.
	rec = serve(h, testutil.WithActor(
		testutil.NewRequest(t, http.MethodPost, "/contests/"+contest.ID+"/winner",
			api.DeclareWinnerRequest{ContributionID: c.ID}), "paolo"))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUserEndpoints(t *testing.T) {
	h := testutil.NewHarness(t)

	rec := serve(h, testutil.NewRequest(t, http.MethodPost, "/users/register",
		api.RegisterRequest{Username: "mona", Email: "mona@example.com", Password: "hunter2"}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created models.User
	testutil.DecodeJSON(t, rec, &created)
	assert.False(t, created.Validated)
	assert.NotContains(t, rec.Body.String(), "password_hash", "hash must not leak")

	rec = serve(h, testutil.NewRequest(t, http.MethodPost, "/users/register",
		api.RegisterRequest{Username: "mona", Password: "other"}))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = serve(h, testutil.NewRequest(t, http.MethodPost, "/users/login",
		api.LoginRequest{Username: "mona", Password: "wrong"}))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(h, testutil.NewRequest(t, http.MethodPost, "/users/login",
		api.LoginRequest{Username: "mona", Password: "hunter2"}))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Following a city that does not exist.
	rec = serve(h, testutil.WithActor(testutil.NewRequest(t, http.MethodPost, "/users/follow",
		api.FollowRequest{CityID: "99999", Follow: true}), "mona"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInboxOverHTTP(t *testing.T) {
	h := testutil.NewHarness(t)
	ctx := context.Background()
	h.SeedUser(t, "mona")
	h.Engines.Users.Notify(ctx, "carla", "mona", "welcome", "")

	rec := serve(h, testutil.WithActor(testutil.NewRequest(t, http.MethodGet, "/users/inbox", nil), "mona"))
	require.Equal(t, http.StatusOK, rec.Code)
	var inbox []models.Notification
	testutil.DecodeJSON(t, rec, &inbox)
	require.Len(t, inbox, 1)

	target := fmt.Sprintf("/users/inbox/%s/read", inbox[0].ID)
	rec = serve(h, testutil.WithActor(testutil.NewRequest(t, http.MethodPost, target, nil), "mona"))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestFeedbackAndSavedOverHTTP(t *testing.T) {
	h := testutil.NewHarness(t)
	ctx := context.Background()
	city := h.CreateCity(t, "Torino", 10121, "carla")
	h.SeedUser(t, "paolo")
	h.GrantRole(t, city.ID, "paolo", models.RoleContributorAuthorized)
	h.SeedUser(t, "rita")
	h.GrantRole(t, city.ID, "rita", models.RoleContributor)

	post, err := h.Engines.Posts.Create(ctx, "paolo", city.ID,
		models.Position{Lat: 45.2, Lon: 7.6}, testutil.NormalDraft("market"))
	require.NoError(t, err)

	rec := serve(h, testutil.WithActor(
		testutil.NewRequest(t, http.MethodPut, "/content/"+post.ID+"/score",
			api.RateRequest{Score: 9}), "rita"))
	assert.Equal(t, http.StatusBadRequest, rec.Code, "out-of-range score")

	rec = serve(h, testutil.WithActor(
		testutil.NewRequest(t, http.MethodPut, "/content/"+post.ID+"/score",
			api.RateRequest{Score: 4}), "rita"))
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = serve(h, testutil.NewRequest(t, http.MethodGet, "/content/"+post.ID+"/score", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var score models.Score
	testutil.DecodeJSON(t, rec, &score)
	assert.Equal(t, 1, score.Count)
	assert.Equal(t, 4.0, score.Average)

	rec = serve(h, testutil.WithActor(
		testutil.NewRequest(t, http.MethodPut, "/saved/"+post.ID, nil), "rita"))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(h, testutil.WithActor(testutil.NewRequest(t, http.MethodGet, "/saved", nil), "rita"))
	require.Equal(t, http.StatusOK, rec.Code)
	var saved []string
	testutil.DecodeJSON(t, rec, &saved)
	assert.Equal(t, []string{post.ID}, saved)

	// Participant lists are author/staff only.
	rec = serve(h, testutil.WithActor(
		testutil.NewRequest(t, http.MethodGet, "/saved/"+post.ID+"/participants", nil), "rita"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = serve(h, testutil.WithActor(
		testutil.NewRequest(t, http.MethodGet, "/saved/"+post.ID+"/participants", nil), "paolo"))
	require.Equal(t, http.StatusOK, rec.Code)
	var participants []string
	testutil.DecodeJSON(t, rec, &participants)
	assert.Equal(t, []string{"rita"}, participants)
}

func TestGroupsOverHTTP(t *testing.T) {
	h := testutil.NewHarness(t)
	ctx := context.Background()
	city := h.CreateCity(t, "Torino", 10121, "carla")
	h.SeedUser(t, "paolo")
	h.GrantRole(t, city.ID, "paolo", models.RoleContributorAuthorized)

	a, err := h.Engines.Posts.Create(ctx, "paolo", city.ID,
		models.Position{Lat: 45.2, Lon: 7.6}, testutil.NormalDraft("a"))
	require.NoError(t, err)
	b, err := h.Engines.Posts.Create(ctx, "paolo", city.ID,
		models.Position{Lat: 45.3, Lon: 7.5}, testutil.NormalDraft("b"))
	require.NoError(t, err)

	rec := serve(h, testutil.WithActor(testutil.NewRequest(t, http.MethodPost, "/groups",
		api.CreateGroupRequest{CityID: city.ID, Draft: testutil.GroupDraft("walk", a.ID, b.ID)}), "paolo"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var group models.Group
	testutil.DecodeJSON(t, rec, &group)

	rec = serve(h, testutil.NewRequest(t, http.MethodGet, "/groups/city/"+city.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.Group
	testutil.DecodeJSON(t, rec, &list)
	require.Len(t, list, 1)

	// A one-member composition is a bad request.
	rec = serve(h, testutil.WithActor(testutil.NewRequest(t, http.MethodPost, "/groups",
		api.CreateGroupRequest{CityID: city.ID, Draft: testutil.GroupDraft("thin", a.ID)}), "paolo"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(h, testutil.WithActor(
		testutil.NewRequest(t, http.MethodDelete, "/groups/"+group.ID, nil), "paolo"))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestPointsOverHTTP(t *testing.T) {
	h := testutil.NewHarness(t)
	ctx := context.Background()
	city := h.CreateCity(t, "Torino", 10121, "carla")
	h.SeedUser(t, "paolo")
	h.GrantRole(t, city.ID, "paolo", models.RoleContributorAuthorized)
	post, err := h.Engines.Posts.Create(ctx, "paolo", city.ID,
		models.Position{Lat: 45.2, Lon: 7.6}, testutil.NormalDraft("market"))
	require.NoError(t, err)

	rec := serve(h, testutil.NewRequest(t, http.MethodGet, "/points/city/"+city.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var points []models.Point
	testutil.DecodeJSON(t, rec, &points)
	assert.Len(t, points, 2, "prime point plus the new one")

	rec = serve(h, testutil.NewRequest(t, http.MethodGet, "/points/"+post.PointID+"/posts", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.Post
	testutil.DecodeJSON(t, rec, &list)
	require.Len(t, list, 1)
	assert.Equal(t, post.ID, list[0].ID)
}

func TestHealthEndpoint_NoClient(t *testing.T) {
	h := api.NewHealthHandler(nil, nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}
