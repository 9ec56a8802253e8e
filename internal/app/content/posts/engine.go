// internal/app/content/posts/engine.go

// Package posts implements the post family: creation, moderation-aware
// publication, editing, viewing and cascading removal of posts together
// with the points that anchor them on the map.
package posts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/synkteam/municipath/internal/app/content/errs"
	"github.com/synkteam/municipath/internal/app/system/ids"
	"github.com/synkteam/municipath/internal/app/system/rolepolicy"
	"github.com/synkteam/municipath/internal/app/system/weather"
	"github.com/synkteam/municipath/internal/domain/models"
)

// PostStore is the persistence surface the engine needs for posts.
type PostStore interface {
	Get(ctx context.Context, id string) (*models.Post, error)
	Save(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id string) error
	ByPoint(ctx context.Context, pointID string) ([]*models.Post, error)
	ByCity(ctx context.Context, cityID string) ([]*models.Post, error)
	IncrementViews(ctx context.Context, id string) error
	Expired(ctx context.Context, cutoff time.Time) ([]*models.Post, error)
}

// PointStore is the persistence surface the engine needs for points.
type PointStore interface {
	Get(ctx context.Context, id string) (*models.Point, error)
	Save(ctx context.Context, point *models.Point) error
	Delete(ctx context.Context, id string) error
	ByCity(ctx context.Context, cityID string) ([]*models.Point, error)
}

// Sequencer allocates the next unused sequence number for an id prefix,
// starting at zero.
type Sequencer interface {
	Next(ctx context.Context, prefix string) (int, error)
}

// Coordinator is the slice of the content coordinator the post family
// calls across family boundaries.
type Coordinator interface {
	City(ctx context.Context, cityID string) (*models.City, error)
	EnqueueCreate(ctx context.Context, cityID, contentID string, kind models.ContentKind) error
	EnqueuePostEdit(ctx context.Context, cityID, postID string, draft *models.PostDraft) error
	RemoveFromAllGroups(ctx context.Context, postID string) error
	PurgeContentData(ctx context.Context, contentID string) error
	TeardownContest(ctx context.Context, contestID string) error
	GroupsContaining(ctx context.Context, postID string) ([]string, error)
	ScoreOf(ctx context.Context, contentID string) (models.Score, error)
	Notify(ctx context.Context, author, recipient, message, contentID string)
	NotifyPublication(ctx context.Context, cityID, contentID, author, title string)
}

// View is a post decorated with the read-side extras: the forecast at its
// position, the groups it belongs to and its feedback score.
type View struct {
	Post     *models.Post      `json:"post"`
	Forecast *weather.Forecast `json:"forecast,omitempty"`
	Groups   []string          `json:"groups"`
	Score    models.Score      `json:"score"`
}

type Engine struct {
	posts   PostStore
	points  PointStore
	seq     Sequencer
	policy  *rolepolicy.Policy
	weather *weather.Proxy
	coord   Coordinator
	log     *zap.Logger
}

// New builds the engine. The coordinator is attached later via Bind, once
// every family exists.
func New(posts PostStore, points PointStore, seq Sequencer, policy *rolepolicy.Policy, wx *weather.Proxy, log *zap.Logger) *Engine {
	return &Engine{posts: posts, points: points, seq: seq, policy: policy, weather: wx, log: log}
}

func (e *Engine) Bind(c Coordinator) { e.coord = c }

// Create validates a draft and stores the resulting post. Publishers see
// it live immediately; lower levels get an unpublished placeholder and a
// queued moderation request.
func (e *Engine) Create(ctx context.Context, author, cityID string, pos models.Position, draft models.PostDraft) (*models.Post, error) {
	lvl := e.policy.LevelOf(ctx, cityID, author)
	if !lvl.CanSubmit() {
		return nil, errs.ErrUnauthorized
	}
	now := time.Now()
	if err := validateDraft(&draft, now); err != nil {
		return nil, err
	}
	if _, err := e.coord.City(ctx, cityID); err != nil {
		return nil, err
	}

	pointID := ids.PointID(cityID, pos)
	point, err := e.points.Get(ctx, pointID)
	switch {
	case errors.Is(err, errs.ErrNotFound):
		point = &models.Point{ID: pointID, CityID: cityID, Pos: pos, CreatedAt: now}
	case err != nil:
		return nil, err
	}

	seq, err := e.seq.Next(ctx, pointID)
	if err != nil {
		return nil, err
	}
	post := assemble(&draft, ids.PostID(pointID, seq), pointID, cityID, author, pos, now)
	if lvl.CanPublish() {
		post.Published = true
		post.PublicationTime = now
	}

	if err := e.posts.Save(ctx, post); err != nil {
		return nil, err
	}
	point.PostIDs = append(point.PostIDs, post.ID)
	point.UpdatedAt = now
	if err := e.points.Save(ctx, point); err != nil {
		return nil, err
	}

	if post.Published {
		e.coord.NotifyPublication(ctx, cityID, post.ID, author, post.Title)
	} else if err := e.coord.EnqueueCreate(ctx, cityID, post.ID, models.KindPost); err != nil {
		return nil, err
	}
	e.log.Info("post created",
		zap.String("post", post.ID),
		zap.String("author", author),
		zap.Bool("published", post.Published))
	return post, nil
}

// Edit updates a post. The author edits their own post, going through
// moderation when they cannot publish; staff edit anyone's post directly,
// with a courtesy notification to the author. The prime post is refused.
func (e *Engine) Edit(ctx context.Context, actor, postID string, draft models.PostDraft) error {
	post, err := e.posts.Get(ctx, postID)
	if err != nil {
		return err
	}
	if prime, err := e.isPrime(ctx, post); err != nil {
		return err
	} else if prime {
		return fmt.Errorf("%w: prime post is immutable", errs.ErrUnauthorized)
	}
	if err := validateDraft(&draft, time.Now()); err != nil {
		return err
	}

	switch {
	case actor == post.Author:
		if !e.policy.CanPublish(ctx, post.CityID, actor) {
			return e.coord.EnqueuePostEdit(ctx, post.CityID, postID, &draft)
		}
		return e.apply(ctx, post, &draft)
	case e.policy.IsStaff(ctx, post.CityID, actor):
		if err := e.apply(ctx, post, &draft); err != nil {
			return err
		}
		e.coord.Notify(ctx, actor, post.Author, "your post was edited by the municipality", postID)
		return nil
	default:
		return errs.ErrUnauthorized
	}
}

// ApplyEdit installs an approved draft without authorization checks. It
// is the coordinator's entry point for accepted edit requests and for the
// contest winner rewrite; the result is always published.
func (e *Engine) ApplyEdit(ctx context.Context, postID string, draft models.PostDraft) error {
	post, err := e.posts.Get(ctx, postID)
	if err != nil {
		return err
	}
	// The snapshot may have gone stale between submission and judgement;
	// timing is re-checked at install time.
	if err := validateDraft(&draft, time.Now()); err != nil {
		return err
	}
	return e.apply(ctx, post, &draft)
}

func (e *Engine) apply(ctx context.Context, post *models.Post, draft *models.PostDraft) error {
	// An edit that turns a contest into something else orphans its
	// contribution ledger; tear it down before the type changes.
	if post.Type == models.PostContest && draft.Type != models.PostContest {
		if err := e.coord.TeardownContest(ctx, post.ID); err != nil {
			return err
		}
	}
	now := time.Now()
	applyDraft(post, draft, now)
	if !post.Published {
		post.Published = true
		post.PublicationTime = now
	}
	return e.posts.Save(ctx, post)
}

// Approve publishes a post that was held for moderation. Approving an
// already-published post is a no-op.
func (e *Engine) Approve(ctx context.Context, postID string) error {
	post, err := e.posts.Get(ctx, postID)
	if err != nil {
		return err
	}
	if post.Published {
		return nil
	}
	post.Published = true
	post.PublicationTime = time.Now()
	post.UpdatedAt = post.PublicationTime
	if err := e.posts.Save(ctx, post); err != nil {
		return err
	}
	e.coord.NotifyPublication(ctx, post.CityID, post.ID, post.Author, post.Title)
	return nil
}

// Delete removes a post and everything that hangs off it. Only the author
// or city staff may delete, and the prime post is refused.
func (e *Engine) Delete(ctx context.Context, actor, postID string) error {
	post, err := e.posts.Get(ctx, postID)
	if err != nil {
		return err
	}
	if actor != post.Author && !e.policy.IsStaff(ctx, post.CityID, actor) {
		return errs.ErrUnauthorized
	}
	if prime, err := e.isPrime(ctx, post); err != nil {
		return err
	} else if prime {
		return fmt.Errorf("%w: prime post is immutable", errs.ErrUnauthorized)
	}
	return e.cascade(ctx, post)
}

// DeleteInternal removes a post bypassing authorization and the prime
// guard. It serves the coordinator: rejected creates, expiry sweeps and
// city teardown.
func (e *Engine) DeleteInternal(ctx context.Context, postID string) error {
	post, err := e.posts.Get(ctx, postID)
	if err != nil {
		return err
	}
	return e.cascade(ctx, post)
}

// cascade is the single removal path. Order matters: the contest ledger
// goes first so no contribution can arrive mid-teardown, then the post
// row, then point membership, then group membership, then the per-content
// satellites (feedback, saved lists, pending requests).
func (e *Engine) cascade(ctx context.Context, post *models.Post) error {
	if post.Type == models.PostContest {
		if err := e.coord.TeardownContest(ctx, post.ID); err != nil {
			return err
		}
	}
	if err := e.posts.Delete(ctx, post.ID); err != nil {
		return err
	}

	point, err := e.points.Get(ctx, post.PointID)
	switch {
	case errors.Is(err, errs.ErrNotFound):
		// Point already gone; nothing to unlink.
	case err != nil:
		return err
	default:
		point.PostIDs = remove(point.PostIDs, post.ID)
		point.UpdatedAt = time.Now()
		if len(point.PostIDs) == 0 {
			if err := e.points.Delete(ctx, point.ID); err != nil {
				return err
			}
		} else if err := e.points.Save(ctx, point); err != nil {
			return err
		}
	}

	if err := e.coord.RemoveFromAllGroups(ctx, post.ID); err != nil {
		return err
	}
	if err := e.coord.PurgeContentData(ctx, post.ID); err != nil {
		return err
	}
	e.log.Info("post deleted", zap.String("post", post.ID))
	return nil
}

// DeleteCityPoints tears down every post and point of a city. Called by
// the city family during city deletion, before groups are removed.
func (e *Engine) DeleteCityPoints(ctx context.Context, cityID string) error {
	posts, err := e.posts.ByCity(ctx, cityID)
	if err != nil {
		return err
	}
	for _, p := range posts {
		if err := e.cascade(ctx, p); err != nil && !errors.Is(err, errs.ErrNotFound) {
			return err
		}
	}
	// Cascading empties points as posts disappear; sweep up any stragglers.
	points, err := e.points.ByCity(ctx, cityID)
	if err != nil {
		return err
	}
	for _, pt := range points {
		if err := e.points.Delete(ctx, pt.ID); err != nil && !errors.Is(err, errs.ErrNotFound) {
			return err
		}
	}
	return nil
}

// Get returns the raw post without visibility filtering. Intended for
// other families (group validation, contest checks), not for viewers.
func (e *Engine) Get(ctx context.Context, postID string) (*models.Post, error) {
	return e.posts.Get(ctx, postID)
}

// View returns a post for a viewer, bumping the view counter and
// decorating the result. Posts the viewer may not see are reported as
// absent, not as forbidden.
func (e *Engine) View(ctx context.Context, viewer, postID string) (*View, error) {
	post, err := e.posts.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !e.visible(ctx, post, viewer) {
		return nil, errs.ErrNotFound
	}

	if err := e.posts.IncrementViews(ctx, postID); err != nil {
		e.log.Warn("view counter update failed", zap.String("post", postID), zap.Error(err))
	} else {
		post.Views++
	}

	view := &View{Post: post}
	if e.weather != nil {
		if fc, err := e.weather.Forecast(ctx, post.Pos); err == nil {
			view.Forecast = &fc
		}
	}
	if groups, err := e.coord.GroupsContaining(ctx, postID); err == nil {
		view.Groups = groups
	}
	if score, err := e.coord.ScoreOf(ctx, postID); err == nil {
		view.Score = score
	}
	return view, nil
}

// PostsAt lists the posts of a point the viewer is allowed to see.
func (e *Engine) PostsAt(ctx context.Context, viewer, pointID string) ([]*models.Post, error) {
	if _, err := e.points.Get(ctx, pointID); err != nil {
		return nil, err
	}
	all, err := e.posts.ByPoint(ctx, pointID)
	if err != nil {
		return nil, err
	}
	visible := make([]*models.Post, 0, len(all))
	for _, p := range all {
		if e.visible(ctx, p, viewer) {
			visible = append(visible, p)
		}
	}
	return visible, nil
}

// PointsOf lists the points of a city that carry at least one post the
// viewer may see. Points whose content is entirely hidden do not appear
// on the viewer's map.
func (e *Engine) PointsOf(ctx context.Context, viewer, cityID string) ([]*models.Point, error) {
	points, err := e.points.ByCity(ctx, cityID)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Point, 0, len(points))
	for _, pt := range points {
		posts, err := e.posts.ByPoint(ctx, pt.ID)
		if err != nil {
			return nil, err
		}
		for _, p := range posts {
			if e.visible(ctx, p, viewer) {
				out = append(out, pt)
				break
			}
		}
	}
	return out, nil
}

// PostsIfAllExist resolves a set of post ids all-or-nothing. Any id that
// is missing, or that is not a post id at all, fails the whole lookup
// with ErrDanglingReference. Group validation runs on this.
func (e *Engine) PostsIfAllExist(ctx context.Context, postIDs []string) ([]*models.Post, error) {
	out := make([]*models.Post, 0, len(postIDs))
	for _, id := range postIDs {
		kind, err := ids.KindOf(id)
		if err != nil || kind != models.KindPost {
			return nil, fmt.Errorf("%w: %q", errs.ErrDanglingReference, id)
		}
		post, err := e.posts.Get(ctx, id)
		if errors.Is(err, errs.ErrNotFound) {
			return nil, fmt.Errorf("%w: %q", errs.ErrDanglingReference, id)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, post)
	}
	return out, nil
}

// SweepExpired removes non-persistent posts whose window has closed. Each
// candidate is re-fetched and re-checked right before removal so a
// concurrent edit that extended the window wins over the sweep.
func (e *Engine) SweepExpired(ctx context.Context) (int, error) {
	now := time.Now()
	candidates, err := e.posts.Expired(ctx, now)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, c := range candidates {
		post, err := e.posts.Get(ctx, c.ID)
		if errors.Is(err, errs.ErrNotFound) {
			continue
		}
		if err != nil {
			return removed, err
		}
		if post.Persistence || post.EndTime == nil || post.EndTime.After(now) {
			continue
		}
		if err := e.cascade(ctx, post); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// CreatePrime publishes the institutional first post of a new or re-homed
// city and returns it. The caller records the id on the city row.
func (e *Engine) CreatePrime(ctx context.Context, city *models.City) (*models.Post, error) {
	now := time.Now()
	pointID := ids.PointID(city.ID, city.Pos)
	point, err := e.points.Get(ctx, pointID)
	switch {
	case errors.Is(err, errs.ErrNotFound):
		point = &models.Point{ID: pointID, CityID: city.ID, Pos: city.Pos, CreatedAt: now}
	case err != nil:
		return nil, err
	}
	seq, err := e.seq.Next(ctx, pointID)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		ID:              ids.PostID(pointID, seq),
		PointID:         pointID,
		CityID:          city.ID,
		Author:          city.Curator,
		Title:           city.Name,
		Text:            fmt.Sprintf("Welcome to %s.", city.Name),
		Type:            models.PostInstitutional,
		Pos:             city.Pos,
		Published:       true,
		PublicationTime: now,
		Persistence:     true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := e.posts.Save(ctx, post); err != nil {
		return nil, err
	}
	point.PostIDs = append(point.PostIDs, post.ID)
	point.UpdatedAt = now
	if err := e.points.Save(ctx, point); err != nil {
		return nil, err
	}
	return post, nil
}

// RehomePrime moves the prime post after a city update. The old prime is
// torn down and a fresh one is created at the city's current position.
func (e *Engine) RehomePrime(ctx context.Context, city *models.City, oldPrimeID string) (*models.Post, error) {
	if oldPrimeID != "" {
		old, err := e.posts.Get(ctx, oldPrimeID)
		switch {
		case errors.Is(err, errs.ErrNotFound):
			// Already gone; create the replacement anyway.
		case err != nil:
			return nil, err
		default:
			if err := e.cascade(ctx, old); err != nil {
				return nil, err
			}
		}
	}
	return e.CreatePrime(ctx, city)
}

// visible implements the read-side rule: authors and staff always see
// their content, everyone else sees only published posts whose window,
// if they are transient, has not closed.
func (e *Engine) visible(ctx context.Context, post *models.Post, viewer string) bool {
	if viewer != "" && viewer == post.Author {
		return true
	}
	if viewer != "" && e.policy.IsStaff(ctx, post.CityID, viewer) {
		return true
	}
	if !post.Published {
		return false
	}
	if !post.Persistence && post.EndTime != nil && post.EndTime.Before(time.Now()) {
		return false
	}
	return true
}

func (e *Engine) isPrime(ctx context.Context, post *models.Post) (bool, error) {
	city, err := e.coord.City(ctx, post.CityID)
	if errors.Is(err, errs.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return city.PrimePostID == post.ID, nil
}

func remove(list []string, id string) []string {
	out := list[:0]
	for _, v := range list {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
