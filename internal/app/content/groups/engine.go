// internal/app/content/groups/engine.go

// Package groups implements post collections: itineraries when ordered,
// experiences when not. Groups reference posts by id and never own them;
// a group that falls under two members is purged.
package groups

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/synkteam/municipath/internal/app/content/errs"
	"github.com/synkteam/municipath/internal/app/system/htmlsanitize"
	"github.com/synkteam/municipath/internal/app/system/ids"
	"github.com/synkteam/municipath/internal/app/system/rolepolicy"
	"github.com/synkteam/municipath/internal/domain/models"
)

// minMembers is the smallest composition a group may have. Removals that
// go below it purge the group instead of shrinking it.
const minMembers = 2

// GroupStore is the persistence surface the engine needs.
type GroupStore interface {
	Get(ctx context.Context, id string) (*models.Group, error)
	Save(ctx context.Context, group *models.Group) error
	Delete(ctx context.Context, id string) error
	ByCity(ctx context.Context, cityID string) ([]*models.Group, error)
	ContainingPost(ctx context.Context, postID string) ([]*models.Group, error)
	Expired(ctx context.Context, cutoff time.Time) ([]*models.Group, error)
}

// Sequencer allocates the next unused sequence number for an id prefix,
// starting at zero.
type Sequencer interface {
	Next(ctx context.Context, prefix string) (int, error)
}

// Coordinator is the slice of the content coordinator the group family
// calls across family boundaries.
type Coordinator interface {
	City(ctx context.Context, cityID string) (*models.City, error)
	PostsIfAllExist(ctx context.Context, postIDs []string) ([]*models.Post, error)
	EnqueueCreate(ctx context.Context, cityID, contentID string, kind models.ContentKind) error
	EnqueueGroupEdit(ctx context.Context, cityID, groupID string, draft *models.GroupDraft) error
	PurgeContentData(ctx context.Context, contentID string) error
	ScoreOf(ctx context.Context, contentID string) (models.Score, error)
	Notify(ctx context.Context, author, recipient, message, contentID string)
	NotifyPublication(ctx context.Context, cityID, contentID, author, title string)
}

// View is a group decorated with its feedback score.
type View struct {
	Group *models.Group `json:"group"`
	Score models.Score  `json:"score"`
}

type Engine struct {
	groups GroupStore
	seq    Sequencer
	policy *rolepolicy.Policy
	coord  Coordinator
	log    *zap.Logger
}

func New(groups GroupStore, seq Sequencer, policy *rolepolicy.Policy, log *zap.Logger) *Engine {
	return &Engine{groups: groups, seq: seq, policy: policy, log: log}
}

func (e *Engine) Bind(c Coordinator) { e.coord = c }

// validateDraft checks the group invariants: a title, a lawful window and
// at least the minimum composition. Member existence is checked by the
// caller against the post family.
func validateDraft(d *models.GroupDraft) error {
	if d.Title == "" {
		return fmt.Errorf("%w: title", errs.ErrMissingField)
	}
	if len(d.PostIDs) < minMembers {
		return fmt.Errorf("%w: a group needs at least %d posts", errs.ErrMissingField, minMembers)
	}
	if !validWindow(d.StartTime, d.EndTime, d.Persistence) {
		return errs.ErrInvalidTiming
	}
	return nil
}

func validWindow(start, end *time.Time, persistence bool) bool {
	if persistence && start == nil && end == nil {
		return true
	}
	return start != nil && end != nil && end.After(*start)
}

// resolveMembers verifies every member post exists and lives in the
// group's city.
func (e *Engine) resolveMembers(ctx context.Context, cityID string, postIDs []string) error {
	posts, err := e.coord.PostsIfAllExist(ctx, postIDs)
	if err != nil {
		return err
	}
	for _, p := range posts {
		if p.CityID != cityID {
			return fmt.Errorf("%w: %q belongs to another city", errs.ErrDanglingReference, p.ID)
		}
	}
	return nil
}

// Create validates and stores a group, publishing immediately for
// publishers and queueing a moderation request otherwise.
func (e *Engine) Create(ctx context.Context, author, cityID string, draft models.GroupDraft) (*models.Group, error) {
	lvl := e.policy.LevelOf(ctx, cityID, author)
	if !lvl.CanSubmit() {
		return nil, errs.ErrUnauthorized
	}
	if err := validateDraft(&draft); err != nil {
		return nil, err
	}
	if _, err := e.coord.City(ctx, cityID); err != nil {
		return nil, err
	}
	if err := e.resolveMembers(ctx, cityID, draft.PostIDs); err != nil {
		return nil, err
	}

	seq, err := e.seq.Next(ctx, cityID+".g")
	if err != nil {
		return nil, err
	}
	now := time.Now()
	group := &models.Group{
		ID:          ids.GroupID(cityID, seq),
		CityID:      cityID,
		Author:      author,
		Title:       htmlsanitize.SanitizeTitle(draft.Title),
		Sorted:      draft.Sorted,
		PostIDs:     draft.PostIDs,
		Persistence: draft.Persistence,
		StartTime:   draft.StartTime,
		EndTime:     draft.EndTime,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if lvl.CanPublish() {
		group.Published = true
		group.PublicationTime = now
	}
	if err := e.groups.Save(ctx, group); err != nil {
		return nil, err
	}
	if group.Published {
		e.coord.NotifyPublication(ctx, cityID, group.ID, author, group.Title)
	} else if err := e.coord.EnqueueCreate(ctx, cityID, group.ID, models.KindGroup); err != nil {
		return nil, err
	}
	e.log.Info("group created",
		zap.String("group", group.ID),
		zap.String("author", author),
		zap.Bool("published", group.Published))
	return group, nil
}

// Edit updates a group: the author directly when they can publish,
// through the moderation queue when they cannot, and staff directly with
// a notification to the author.
func (e *Engine) Edit(ctx context.Context, actor, groupID string, draft models.GroupDraft) error {
	group, err := e.groups.Get(ctx, groupID)
	if err != nil {
		return err
	}
	if err := validateDraft(&draft); err != nil {
		return err
	}
	if err := e.resolveMembers(ctx, group.CityID, draft.PostIDs); err != nil {
		return err
	}

	switch {
	case actor == group.Author:
		if !e.policy.CanPublish(ctx, group.CityID, actor) {
			return e.coord.EnqueueGroupEdit(ctx, group.CityID, groupID, &draft)
		}
		return e.apply(ctx, group, &draft)
	case e.policy.IsStaff(ctx, group.CityID, actor):
		if err := e.apply(ctx, group, &draft); err != nil {
			return err
		}
		e.coord.Notify(ctx, actor, group.Author, "your group was edited by the municipality", groupID)
		return nil
	default:
		return errs.ErrUnauthorized
	}
}

// ApplyEdit installs an approved draft without authorization checks; the
// coordinator calls it for accepted edit requests.
func (e *Engine) ApplyEdit(ctx context.Context, groupID string, draft models.GroupDraft) error {
	group, err := e.groups.Get(ctx, groupID)
	if err != nil {
		return err
	}
	// Re-validated at install time: the composition or window may have
	// gone stale while the snapshot sat in the queue.
	if err := validateDraft(&draft); err != nil {
		return err
	}
	if err := e.resolveMembers(ctx, group.CityID, draft.PostIDs); err != nil {
		return err
	}
	return e.apply(ctx, group, &draft)
}

func (e *Engine) apply(ctx context.Context, group *models.Group, draft *models.GroupDraft) error {
	now := time.Now()
	group.Title = htmlsanitize.SanitizeTitle(draft.Title)
	group.Sorted = draft.Sorted
	group.PostIDs = draft.PostIDs
	group.Persistence = draft.Persistence
	group.StartTime = draft.StartTime
	group.EndTime = draft.EndTime
	group.UpdatedAt = now
	if !group.Published {
		group.Published = true
		group.PublicationTime = now
	}
	return e.groups.Save(ctx, group)
}

// Approve publishes a group held for moderation.
func (e *Engine) Approve(ctx context.Context, groupID string) error {
	group, err := e.groups.Get(ctx, groupID)
	if err != nil {
		return err
	}
	if group.Published {
		return nil
	}
	group.Published = true
	group.PublicationTime = time.Now()
	group.UpdatedAt = group.PublicationTime
	if err := e.groups.Save(ctx, group); err != nil {
		return err
	}
	e.coord.NotifyPublication(ctx, group.CityID, group.ID, group.Author, group.Title)
	return nil
}

// Delete removes a group. Member posts are untouched: groups reference,
// they do not own.
func (e *Engine) Delete(ctx context.Context, actor, groupID string) error {
	group, err := e.groups.Get(ctx, groupID)
	if err != nil {
		return err
	}
	if actor != group.Author && !e.policy.IsStaff(ctx, group.CityID, actor) {
		return errs.ErrUnauthorized
	}
	return e.purge(ctx, groupID)
}

// DeleteInternal removes a group bypassing authorization: rejected
// creates, expiry sweeps, city teardown.
func (e *Engine) DeleteInternal(ctx context.Context, groupID string) error {
	if _, err := e.groups.Get(ctx, groupID); err != nil {
		return err
	}
	return e.purge(ctx, groupID)
}

func (e *Engine) purge(ctx context.Context, groupID string) error {
	if err := e.groups.Delete(ctx, groupID); err != nil {
		return err
	}
	if err := e.coord.PurgeContentData(ctx, groupID); err != nil {
		return err
	}
	e.log.Info("group deleted", zap.String("group", groupID))
	return nil
}

// Get returns the raw group without visibility filtering.
func (e *Engine) Get(ctx context.Context, groupID string) (*models.Group, error) {
	return e.groups.Get(ctx, groupID)
}

// View returns a group for a viewer, decorated with its score. Hidden
// groups are reported as absent.
func (e *Engine) View(ctx context.Context, viewer, groupID string) (*View, error) {
	group, err := e.groups.Get(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !e.visible(ctx, group, viewer) {
		return nil, errs.ErrNotFound
	}
	view := &View{Group: group}
	if score, err := e.coord.ScoreOf(ctx, groupID); err == nil {
		view.Score = score
	}
	return view, nil
}

// GroupsOf lists the groups of a city the viewer may see.
func (e *Engine) GroupsOf(ctx context.Context, viewer, cityID string) ([]*models.Group, error) {
	all, err := e.groups.ByCity(ctx, cityID)
	if err != nil {
		return nil, err
	}
	visible := make([]*models.Group, 0, len(all))
	for _, g := range all {
		if e.visible(ctx, g, viewer) {
			visible = append(visible, g)
		}
	}
	return visible, nil
}

// ContainingPost lists the ids of published groups that include a post.
// Used to decorate post views.
func (e *Engine) ContainingPost(ctx context.Context, postID string) ([]string, error) {
	groups, err := e.groups.ContainingPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		if g.Published {
			out = append(out, g.ID)
		}
	}
	return out, nil
}

// RemoveFromAll drops a post from every group that references it. Groups
// depleted below the minimum composition are purged, not shrunk.
func (e *Engine) RemoveFromAll(ctx context.Context, postID string) error {
	groups, err := e.groups.ContainingPost(ctx, postID)
	if err != nil {
		return err
	}
	for _, g := range groups {
		g.PostIDs = remove(g.PostIDs, postID)
		if len(g.PostIDs) < minMembers {
			if err := e.purge(ctx, g.ID); err != nil && !errors.Is(err, errs.ErrNotFound) {
				return err
			}
			continue
		}
		g.UpdatedAt = time.Now()
		if err := e.groups.Save(ctx, g); err != nil {
			return err
		}
	}
	return nil
}

// RemoveAllFromCity purges every group of a city. Part of city teardown.
func (e *Engine) RemoveAllFromCity(ctx context.Context, cityID string) error {
	groups, err := e.groups.ByCity(ctx, cityID)
	if err != nil {
		return err
	}
	for _, g := range groups {
		if err := e.purge(ctx, g.ID); err != nil && !errors.Is(err, errs.ErrNotFound) {
			return err
		}
	}
	return nil
}

// SweepExpired removes non-persistent groups whose window has closed,
// re-checking each candidate just before removal.
func (e *Engine) SweepExpired(ctx context.Context) (int, error) {
	now := time.Now()
	candidates, err := e.groups.Expired(ctx, now)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, c := range candidates {
		group, err := e.groups.Get(ctx, c.ID)
		if errors.Is(err, errs.ErrNotFound) {
			continue
		}
		if err != nil {
			return removed, err
		}
		if group.Persistence || group.EndTime == nil || group.EndTime.After(now) {
			continue
		}
		if err := e.purge(ctx, group.ID); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func (e *Engine) visible(ctx context.Context, group *models.Group, viewer string) bool {
	if viewer != "" && viewer == group.Author {
		return true
	}
	if viewer != "" && e.policy.IsStaff(ctx, group.CityID, viewer) {
		return true
	}
	if !group.Published {
		return false
	}
	if !group.Persistence && group.EndTime != nil && group.EndTime.Before(time.Now()) {
		return false
	}
	return true
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
