// internal/app/content/lifecycle/coordinator.go

// Package lifecycle wires the content families together. Each engine
// depends only on the narrow slice of cross-family behavior it declares;
// the Coordinator implements all of those slices by delegating to the
// engines, and Bind closes the loop after construction.
package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/synkteam/municipath/internal/app/content/cities"
	"github.com/synkteam/municipath/internal/app/content/contest"
	"github.com/synkteam/municipath/internal/app/content/errs"
	"github.com/synkteam/municipath/internal/app/content/feedback"
	"github.com/synkteam/municipath/internal/app/content/groups"
	"github.com/synkteam/municipath/internal/app/content/pending"
	"github.com/synkteam/municipath/internal/app/content/posts"
	"github.com/synkteam/municipath/internal/app/content/saved"
	"github.com/synkteam/municipath/internal/app/content/users"
	"github.com/synkteam/municipath/internal/app/system/ids"
	"github.com/synkteam/municipath/internal/domain/models"
)

// Engines collects every content family.
type Engines struct {
	Cities   *cities.Engine
	Posts    *posts.Engine
	Groups   *groups.Engine
	Pending  *pending.Engine
	Contest  *contest.Engine
	Users    *users.Engine
	Feedback *feedback.Engine
	Saved    *saved.Engine
}

// Coordinator routes cross-family calls. It holds no state of its own.
type Coordinator struct {
	e Engines
}

// Bind builds the coordinator and attaches it to every engine.
func Bind(e Engines) *Coordinator {
	c := &Coordinator{e: e}
	e.Cities.Bind(c)
	e.Posts.Bind(c)
	e.Groups.Bind(c)
	e.Pending.Bind(c)
	e.Contest.Bind(c)
	e.Users.Bind(c)
	e.Feedback.Bind(c)
	e.Saved.Bind(c)
	return c
}

// --- city lookups ---

func (c *Coordinator) City(ctx context.Context, cityID string) (*models.City, error) {
	return c.e.Cities.Get(ctx, cityID)
}

func (c *Coordinator) CityExists(ctx context.Context, cityID string) (bool, error) {
	_, err := c.e.Cities.Get(ctx, cityID)
	if errors.Is(err, errs.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *Coordinator) IsManager(ctx context.Context, username string) (bool, error) {
	return c.e.Users.IsManager(ctx, username)
}

// --- moderation queue ---

func (c *Coordinator) EnqueueCreate(ctx context.Context, cityID, contentID string, kind models.ContentKind) error {
	return c.e.Pending.SubmitCreate(ctx, cityID, contentID, kind)
}

func (c *Coordinator) EnqueuePostEdit(ctx context.Context, cityID, postID string, draft *models.PostDraft) error {
	return c.e.Pending.SubmitPostEdit(ctx, cityID, postID, draft)
}

func (c *Coordinator) EnqueueGroupEdit(ctx context.Context, cityID, groupID string, draft *models.GroupDraft) error {
	return c.e.Pending.SubmitGroupEdit(ctx, cityID, groupID, draft)
}

func (c *Coordinator) DropCityRequests(ctx context.Context, cityID string) error {
	return c.e.Pending.DropCity(ctx, cityID)
}

// --- verdict application ---

func (c *Coordinator) ApprovePost(ctx context.Context, postID string) error {
	return c.e.Posts.Approve(ctx, postID)
}

func (c *Coordinator) ApproveGroup(ctx context.Context, groupID string) error {
	return c.e.Groups.Approve(ctx, groupID)
}

func (c *Coordinator) ApplyPostEdit(ctx context.Context, postID string, draft *models.PostDraft) error {
	return c.e.Posts.ApplyEdit(ctx, postID, *draft)
}

func (c *Coordinator) ApplyGroupEdit(ctx context.Context, groupID string, draft *models.GroupDraft) error {
	return c.e.Groups.ApplyEdit(ctx, groupID, *draft)
}

func (c *Coordinator) DeletePostInternal(ctx context.Context, postID string) error {
	return c.e.Posts.DeleteInternal(ctx, postID)
}

func (c *Coordinator) DeleteGroupInternal(ctx context.Context, groupID string) error {
	return c.e.Groups.DeleteInternal(ctx, groupID)
}

// --- content resolution ---

func (c *Coordinator) Post(ctx context.Context, postID string) (*models.Post, error) {
	return c.e.Posts.Get(ctx, postID)
}

func (c *Coordinator) PostsIfAllExist(ctx context.Context, postIDs []string) ([]*models.Post, error) {
	return c.e.Posts.PostsIfAllExist(ctx, postIDs)
}

func (c *Coordinator) ContentExists(ctx context.Context, contentID string) (bool, error) {
	_, _, err := c.AuthorAndCityOf(ctx, contentID)
	if errors.Is(err, errs.ErrNotFound) || errors.Is(err, errs.ErrMalformedID) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// AuthorOf resolves the author of any content id.
func (c *Coordinator) AuthorOf(ctx context.Context, contentID string) (string, error) {
	author, _, err := c.AuthorAndCityOf(ctx, contentID)
	return author, err
}

// AuthorAndCityOf resolves the author and owning city of any content id,
// dispatching on the id's segment pattern.
func (c *Coordinator) AuthorAndCityOf(ctx context.Context, contentID string) (string, string, error) {
	kind, err := ids.KindOf(contentID)
	if err != nil {
		return "", "", err
	}
	switch kind {
	case models.KindGroup:
		group, err := c.e.Groups.Get(ctx, contentID)
		if err != nil {
			return "", "", err
		}
		return group.Author, group.CityID, nil
	case models.KindPost:
		post, err := c.e.Posts.Get(ctx, contentID)
		if err != nil {
			return "", "", err
		}
		return post.Author, post.CityID, nil
	default:
		return "", "", fmt.Errorf("%w: %q is not a content id", errs.ErrMalformedID, contentID)
	}
}

// --- cascade plumbing ---

func (c *Coordinator) RemoveFromAllGroups(ctx context.Context, postID string) error {
	return c.e.Groups.RemoveFromAll(ctx, postID)
}

// PurgeContentData removes the satellites of a content item: ratings,
// saved-list entries and any moderation request targeting it.
func (c *Coordinator) PurgeContentData(ctx context.Context, contentID string) error {
	if err := c.e.Feedback.PurgeContent(ctx, contentID); err != nil {
		return err
	}
	if err := c.e.Saved.PurgeContent(ctx, contentID); err != nil {
		return err
	}
	return c.e.Pending.Drop(ctx, contentID)
}

// DropSavedOf removes a departing user's saved-content entries.
func (c *Coordinator) DropSavedOf(ctx context.Context, username string) error {
	return c.e.Saved.PurgeUser(ctx, username)
}

func (c *Coordinator) TeardownContest(ctx context.Context, contestID string) error {
	return c.e.Contest.Teardown(ctx, contestID)
}

// --- city teardown and prime post ---

func (c *Coordinator) CreatePrimePost(ctx context.Context, city *models.City) (*models.Post, error) {
	return c.e.Posts.CreatePrime(ctx, city)
}

func (c *Coordinator) RehomePrimePost(ctx context.Context, city *models.City, oldPrimeID string) (*models.Post, error) {
	return c.e.Posts.RehomePrime(ctx, city, oldPrimeID)
}

func (c *Coordinator) DeleteCityPoints(ctx context.Context, cityID string) error {
	return c.e.Posts.DeleteCityPoints(ctx, cityID)
}

func (c *Coordinator) RemoveAllGroupsFromCity(ctx context.Context, cityID string) error {
	return c.e.Groups.RemoveAllFromCity(ctx, cityID)
}

// --- people ---

func (c *Coordinator) MatchCurator(ctx context.Context, username, cityID string) error {
	return c.e.Users.MatchCurator(ctx, username, cityID)
}

func (c *Coordinator) DiscreditCurator(ctx context.Context, username, cityID string) error {
	return c.e.Users.DiscreditCurator(ctx, username, cityID)
}

func (c *Coordinator) DropCityRoles(ctx context.Context, cityID string) error {
	return c.e.Users.DropCityRoles(ctx, cityID)
}

// --- read-side decoration ---

func (c *Coordinator) GroupsContaining(ctx context.Context, postID string) ([]string, error) {
	return c.e.Groups.ContainingPost(ctx, postID)
}

func (c *Coordinator) ScoreOf(ctx context.Context, contentID string) (models.Score, error) {
	return c.e.Feedback.ScoreOf(ctx, contentID)
}

// --- notifications ---

func (c *Coordinator) Notify(ctx context.Context, author, recipient, message, contentID string) {
	c.e.Users.Notify(ctx, author, recipient, message, contentID)
}

func (c *Coordinator) NotifyPublication(ctx context.Context, cityID, contentID, author, title string) {
	c.e.Users.NotifyFollowers(ctx, cityID, author, contentID, title)
}
