// internal/app/content/feedback/engine.go

// Package feedback implements 1-5 scoring of posts and groups. One row
// per (content, user); re-rating overwrites.
package feedback

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/synkteam/municipath/internal/app/content/errs"
	"github.com/synkteam/municipath/internal/app/system/ids"
	"github.com/synkteam/municipath/internal/app/system/rolepolicy"
	"github.com/synkteam/municipath/internal/domain/models"
)

// FeedbackStore is the persistence surface the engine needs. Upsert is
// keyed on the row id, so a user's second rating replaces the first.
type FeedbackStore interface {
	Upsert(ctx context.Context, f *models.Feedback) error
	ByContent(ctx context.Context, contentID string) ([]*models.Feedback, error)
	DropContent(ctx context.Context, contentID string) error
}

// Coordinator is the slice of the content coordinator the feedback
// family needs.
type Coordinator interface {
	ContentExists(ctx context.Context, contentID string) (bool, error)
}

type Engine struct {
	feedback FeedbackStore
	policy   *rolepolicy.Policy
	coord    Coordinator
	log      *zap.Logger
}

func New(feedback FeedbackStore, policy *rolepolicy.Policy, log *zap.Logger) *Engine {
	return &Engine{feedback: feedback, policy: policy, log: log}
}

func (e *Engine) Bind(c Coordinator) { e.coord = c }

// RowID is the deterministic row key of a user's rating for a content
// item; upserting on it makes re-rating overwrite.
func RowID(contentID, username string) string {
	return contentID + "#" + username
}

// Rate records a user's score for a post or group.
func (e *Engine) Rate(ctx context.Context, actor, contentID string, score int) error {
	if score < 1 || score > 5 {
		return fmt.Errorf("%w: score must be 1-5", errs.ErrMissingField)
	}
	cityID, err := ids.CityOf(contentID)
	if err != nil {
		return err
	}
	if !e.policy.CanSubmit(ctx, cityID, actor) {
		return errs.ErrUnauthorized
	}
	ok, err := e.coord.ContentExists(ctx, contentID)
	if err != nil {
		return err
	}
	if !ok {
		return errs.ErrNotFound
	}

	now := time.Now()
	return e.feedback.Upsert(ctx, &models.Feedback{
		ID:        RowID(contentID, actor),
		ContentID: contentID,
		Username:  actor,
		Score:     score,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// ScoreOf aggregates a content item's ratings. No ratings is a zero
// score, not an error.
func (e *Engine) ScoreOf(ctx context.Context, contentID string) (models.Score, error) {
	rows, err := e.feedback.ByContent(ctx, contentID)
	if err != nil {
		return models.Score{}, err
	}
	if len(rows) == 0 {
		return models.Score{}, nil
	}
	sum := 0
	for _, r := range rows {
		sum += r.Score
	}
	return models.Score{
		Average: float64(sum) / float64(len(rows)),
		Count:   len(rows),
	}, nil
}

// PurgeContent drops every rating of a content item. Part of the content
// deletion cascade.
func (e *Engine) PurgeContent(ctx context.Context, contentID string) error {
	return e.feedback.DropContent(ctx, contentID)
}
