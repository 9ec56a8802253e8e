// internal/app/content/contest/engine.go

// Package contest runs the contribution sub-workflow attached to contest
// posts. Contributions live in their own ledger keyed by contest id; the
// ledger is torn down when the contest ends or disappears.
package contest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/synkteam/municipath/internal/app/content/errs"
	"github.com/synkteam/municipath/internal/app/system/auditlog"
	"github.com/synkteam/municipath/internal/app/system/rolepolicy"
	"github.com/synkteam/municipath/internal/domain/models"
)

// ContributionStore is the persistence surface for the ledger.
type ContributionStore interface {
	Get(ctx context.Context, id string) (*models.Contribution, error)
	Save(ctx context.Context, c *models.Contribution) error
	ByContest(ctx context.Context, contestID string) ([]*models.Contribution, error)
	DeleteByContest(ctx context.Context, contestID string) error
}

// Coordinator is the slice of the content coordinator the contest family
// calls across family boundaries.
type Coordinator interface {
	Post(ctx context.Context, postID string) (*models.Post, error)
	ApplyPostEdit(ctx context.Context, postID string, draft *models.PostDraft) error
	Notify(ctx context.Context, author, recipient, message, contentID string)
}

type Engine struct {
	contributions ContributionStore
	policy        *rolepolicy.Policy
	coord         Coordinator
	audit         *auditlog.Logger
	log           *zap.Logger
}

func New(contributions ContributionStore, policy *rolepolicy.Policy, audit *auditlog.Logger, log *zap.Logger) *Engine {
	return &Engine{contributions: contributions, policy: policy, audit: audit, log: log}
}

func (e *Engine) Bind(c Coordinator) { e.coord = c }

// contestPost resolves a contest id to its live post, rejecting ids that
// point at anything else.
func (e *Engine) contestPost(ctx context.Context, contestID string) (*models.Post, error) {
	post, err := e.coord.Post(ctx, contestID)
	if err != nil {
		return nil, err
	}
	if post.Type != models.PostContest {
		return nil, fmt.Errorf("%w: %q is not a contest", errs.ErrNotFound, contestID)
	}
	return post, nil
}

// AddContribution records a participant's entry. Contributions are
// accepted only while the contest is open.
func (e *Engine) AddContribution(ctx context.Context, actor, contestID string, content []string) (*models.Contribution, error) {
	post, err := e.contestPost(ctx, contestID)
	if err != nil {
		return nil, err
	}
	if !e.policy.CanSubmit(ctx, post.CityID, actor) {
		return nil, errs.ErrUnauthorized
	}
	if post.EndTime != nil && !post.EndTime.After(time.Now()) {
		return nil, errs.ErrExpired
	}
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: content", errs.ErrMissingField)
	}

	contribution := &models.Contribution{
		ID:        uuid.NewString(),
		ContestID: contestID,
		Author:    actor,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := e.contributions.Save(ctx, contribution); err != nil {
		return nil, err
	}
	e.log.Info("contribution recorded",
		zap.String("contest", contestID),
		zap.String("author", actor))
	return contribution, nil
}

// Contributions lists a contest's entries. Only the contest author sees
// them; participants see nothing, not even their own, until the winner
// announcement.
func (e *Engine) Contributions(ctx context.Context, actor, contestID string) ([]*models.Contribution, error) {
	post, err := e.contestPost(ctx, contestID)
	if err != nil {
		return nil, err
	}
	if actor != post.Author {
		return nil, errs.ErrUnauthorized
	}
	return e.contributions.ByContest(ctx, contestID)
}

// DeclareWinner closes a contest: the ledger is destroyed, the contest
// post is rewritten in place as a persistent social announcement, and the
// winner is notified. Only the contest author may declare, and only after
// the deadline has passed.
func (e *Engine) DeclareWinner(ctx context.Context, actor, contestID, contributionID string) error {
	post, err := e.contestPost(ctx, contestID)
	if err != nil {
		return err
	}
	if actor != post.Author {
		return errs.ErrUnauthorized
	}
	if post.EndTime != nil && post.EndTime.After(time.Now()) {
		return errs.ErrNotYetEnded
	}

	winner, err := e.contributions.Get(ctx, contributionID)
	if err != nil {
		return err
	}
	if winner.ContestID != contestID {
		return fmt.Errorf("%w: contribution %q is not part of %q", errs.ErrNotFound, contributionID, contestID)
	}

	if err := e.contributions.DeleteByContest(ctx, contestID); err != nil {
		return err
	}

	announcement := &models.PostDraft{
		Title:       post.Title,
		Text:        winnerText(post.Text, winner),
		Type:        models.PostSocial,
		Persistence: true,
	}
	if err := e.coord.ApplyPostEdit(ctx, contestID, announcement); err != nil {
		return err
	}

	e.coord.Notify(ctx, actor, winner.Author, "your contribution won the contest", contestID)
	e.audit.WinnerDeclared(ctx, actor, contestID, post.CityID, contributionID)
	e.log.Info("winner declared",
		zap.String("contest", contestID),
		zap.String("winner", winner.Author))
	return nil
}

// Teardown destroys a contest's ledger. Called by the post family when a
// contest post is removed.
func (e *Engine) Teardown(ctx context.Context, contestID string) error {
	return e.contributions.DeleteByContest(ctx, contestID)
}

func winnerText(original string, winner *models.Contribution) string {
	return fmt.Sprintf("%s\n\nWinner: %s\n%s",
		original, winner.Author, strings.Join(winner.Content, "\n"))
}
