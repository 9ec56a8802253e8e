// internal/app/content/saved/engine.go

// Package saved implements personal content lists. Saving an event also
// enrolls the user in its participant list, which the event author and
// city staff may read.
package saved

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/synkteam/municipath/internal/app/content/errs"
	"github.com/synkteam/municipath/internal/app/system/rolepolicy"
	"github.com/synkteam/municipath/internal/domain/models"
)

// SavedStore is the persistence surface the engine needs.
type SavedStore interface {
	Save(ctx context.Context, s *models.SavedContent) error
	Delete(ctx context.Context, contentID, username string) error
	ByUser(ctx context.Context, username string) ([]*models.SavedContent, error)
	ByContent(ctx context.Context, contentID string) ([]*models.SavedContent, error)
	DropContent(ctx context.Context, contentID string) error
	DropUser(ctx context.Context, username string) error
}

// Coordinator is the slice of the content coordinator the saved-content
// family needs.
type Coordinator interface {
	ContentExists(ctx context.Context, contentID string) (bool, error)
	AuthorAndCityOf(ctx context.Context, contentID string) (author, cityID string, err error)
}

type Engine struct {
	saved  SavedStore
	policy *rolepolicy.Policy
	coord  Coordinator
	log    *zap.Logger
}

func New(saved SavedStore, policy *rolepolicy.Policy, log *zap.Logger) *Engine {
	return &Engine{saved: saved, policy: policy, log: log}
}

func (e *Engine) Bind(c Coordinator) { e.coord = c }

// RowID is the deterministic row key of a user's saved entry. Saving the
// same content twice is a no-op.
func RowID(contentID, username string) string {
	return contentID + "#" + username
}

// Save adds a content item to a user's list.
func (e *Engine) Save(ctx context.Context, actor, contentID string) error {
	ok, err := e.coord.ContentExists(ctx, contentID)
	if err != nil {
		return err
	}
	if !ok {
		return errs.ErrNotFound
	}
	err = e.saved.Save(ctx, &models.SavedContent{
		ID:        RowID(contentID, actor),
		ContentID: contentID,
		Username:  actor,
		CreatedAt: time.Now(),
	})
	if errors.Is(err, errs.ErrDuplicate) {
		return nil
	}
	return err
}

// Unsave removes a content item from a user's list. Removing an entry
// that was never saved is a no-op.
func (e *Engine) Unsave(ctx context.Context, actor, contentID string) error {
	err := e.saved.Delete(ctx, contentID, actor)
	if errors.Is(err, errs.ErrNotFound) {
		return nil
	}
	return err
}

// SavedOf lists the content ids a user has saved.
func (e *Engine) SavedOf(ctx context.Context, username string) ([]string, error) {
	rows, err := e.saved.ByUser(ctx, username)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ContentID)
	}
	return out, nil
}

// Participants lists the users who saved a content item. Only the
// content's author and city staff may read the list.
func (e *Engine) Participants(ctx context.Context, actor, contentID string) ([]string, error) {
	author, cityID, err := e.coord.AuthorAndCityOf(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if actor != author && !e.policy.IsStaff(ctx, cityID, actor) {
		return nil, errs.ErrUnauthorized
	}
	rows, err := e.saved.ByContent(ctx, contentID)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Username)
	}
	return out, nil
}

// PurgeContent drops every saved entry of a content item. Part of the
// content deletion cascade.
func (e *Engine) PurgeContent(ctx context.Context, contentID string) error {
	return e.saved.DropContent(ctx, contentID)
}

// PurgeUser drops every saved entry of a user. Part of account deletion.
func (e *Engine) PurgeUser(ctx context.Context, username string) error {
	return e.saved.DropUser(ctx, username)
}
