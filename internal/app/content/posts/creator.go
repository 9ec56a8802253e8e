// internal/app/content/posts/creator.go
package posts

import (
	"fmt"
	"time"

	"github.com/synkteam/municipath/internal/app/content/errs"
	"github.com/synkteam/municipath/internal/app/system/htmlsanitize"
	"github.com/synkteam/municipath/internal/domain/models"
)

// strategy validates the kind-specific rules of a post draft. Assembly is
// common to all kinds; only validation varies. Adding a post kind means
// adding a strategy to the table below and nothing else.
type strategy interface {
	Validate(d *models.PostDraft, now time.Time) error
}

var strategies = map[models.PostType]strategy{
	models.PostNormal:        normalStrategy{},
	models.PostEvent:         eventStrategy{},
	models.PostContest:       contestStrategy{},
	models.PostSocial:        normalStrategy{},
	models.PostInstitutional: normalStrategy{},
}

func strategyFor(t models.PostType) (strategy, error) {
	s, ok := strategies[t]
	if !ok {
		return nil, fmt.Errorf("%w: unknown post type %q", errs.ErrMissingField, t)
	}
	return s, nil
}

// validateDraft applies the validation precedence: required fields first,
// then kind-specific timing.
func validateDraft(d *models.PostDraft, now time.Time) error {
	if d.Title == "" {
		return fmt.Errorf("%w: title", errs.ErrMissingField)
	}
	if d.Text == "" {
		return fmt.Errorf("%w: text", errs.ErrMissingField)
	}
	s, err := strategyFor(d.Type)
	if err != nil {
		return err
	}
	return s.Validate(d, now)
}

// assemble builds the unpublished item from a validated draft. Publication
// is always the caller's decision; assemble never publishes.
func assemble(d *models.PostDraft, id, pointID, cityID, author string, pos models.Position, now time.Time) *models.Post {
	return &models.Post{
		ID:          id,
		PointID:     pointID,
		CityID:      cityID,
		Author:      author,
		Title:       htmlsanitize.SanitizeTitle(d.Title),
		Text:        htmlsanitize.Sanitize(d.Text),
		Type:        d.Type,
		Pos:         pos,
		Persistence: d.Persistence,
		StartTime:   d.StartTime,
		EndTime:     d.EndTime,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// applyDraft overwrites the mutable fields of a live post from a draft.
func applyDraft(post *models.Post, d *models.PostDraft, now time.Time) {
	post.Title = htmlsanitize.SanitizeTitle(d.Title)
	post.Text = htmlsanitize.Sanitize(d.Text)
	post.Type = d.Type
	post.Persistence = d.Persistence
	post.StartTime = d.StartTime
	post.EndTime = d.EndTime
	post.UpdatedAt = now
}

// validWindow enforces the persistence invariant: a non-persistent item
// needs a window, a persistent one may have none or a valid one.
func validWindow(start, end *time.Time, persistence bool) bool {
	if persistence && start == nil && end == nil {
		return true
	}
	return start != nil && end != nil && end.After(*start)
}

type normalStrategy struct{}

func (normalStrategy) Validate(d *models.PostDraft, _ time.Time) error {
	if !validWindow(d.StartTime, d.EndTime, d.Persistence) {
		return errs.ErrInvalidTiming
	}
	return nil
}

type eventStrategy struct{}

// Events are time-bounded by definition: the window is required even for
// persistent events.
func (eventStrategy) Validate(d *models.PostDraft, _ time.Time) error {
	if d.StartTime == nil || d.EndTime == nil || !d.EndTime.After(*d.StartTime) {
		return errs.ErrInvalidTiming
	}
	return nil
}

type contestStrategy struct{}

// Contests are events whose deadline must still be open at creation.
func (contestStrategy) Validate(d *models.PostDraft, now time.Time) error {
	if err := (eventStrategy{}).Validate(d, now); err != nil {
		return err
	}
	if !d.EndTime.After(now) {
		return errs.ErrInvalidTiming
	}
	return nil
}
