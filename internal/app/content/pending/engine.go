// internal/app/content/pending/engine.go

// Package pending implements the moderation queue. Every request is
// keyed by the id of the content it targets, so there is at most one
// outstanding request per content item and a later edit submission
// silently replaces an earlier one.
package pending

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/synkteam/municipath/internal/app/content/errs"
	"github.com/synkteam/municipath/internal/app/system/auditlog"
	"github.com/synkteam/municipath/internal/app/system/rolepolicy"
	"github.com/synkteam/municipath/internal/domain/models"
)

// RequestStore is the persistence surface the engine needs.
type RequestStore interface {
	Get(ctx context.Context, id string) (*models.PendingRequest, error)
	Save(ctx context.Context, req *models.PendingRequest) error
	Delete(ctx context.Context, id string) error
	ByCity(ctx context.Context, cityID string) ([]*models.PendingRequest, error)
	DropCity(ctx context.Context, cityID string) error
}

// Coordinator is the slice of the content coordinator the moderation
// queue calls to apply verdicts.
type Coordinator interface {
	ApprovePost(ctx context.Context, postID string) error
	ApproveGroup(ctx context.Context, groupID string) error
	ApplyPostEdit(ctx context.Context, postID string, draft *models.PostDraft) error
	ApplyGroupEdit(ctx context.Context, groupID string, draft *models.GroupDraft) error
	DeletePostInternal(ctx context.Context, postID string) error
	DeleteGroupInternal(ctx context.Context, groupID string) error
	AuthorOf(ctx context.Context, contentID string) (string, error)
	Notify(ctx context.Context, author, recipient, message, contentID string)
}

type Engine struct {
	requests RequestStore
	policy   *rolepolicy.Policy
	coord    Coordinator
	audit    *auditlog.Logger
	log      *zap.Logger

	// locks serializes judgments per request id. Two moderators judging
	// the same request race to the lock; the loser finds the request
	// gone and gets ErrNotFound.
	locks keyedLocks
}

func New(requests RequestStore, policy *rolepolicy.Policy, audit *auditlog.Logger, log *zap.Logger) *Engine {
	return &Engine{requests: requests, policy: policy, audit: audit, log: log}
}

func (e *Engine) Bind(c Coordinator) { e.coord = c }

// SubmitCreate queues a moderation request for a freshly stored,
// unpublished content item.
func (e *Engine) SubmitCreate(ctx context.Context, cityID, contentID string, kind models.ContentKind) error {
	return e.requests.Save(ctx, &models.PendingRequest{
		ID:        contentID,
		CityID:    cityID,
		New:       true,
		Kind:      kind,
		CreatedAt: time.Now(),
	})
}

// SubmitPostEdit queues a proposed post edit. A second submission for the
// same post overwrites the first: last writer wins.
func (e *Engine) SubmitPostEdit(ctx context.Context, cityID, postID string, draft *models.PostDraft) error {
	return e.requests.Save(ctx, &models.PendingRequest{
		ID:        postID,
		CityID:    cityID,
		Kind:      models.KindPost,
		Post:      draft,
		CreatedAt: time.Now(),
	})
}

// SubmitGroupEdit queues a proposed group edit, last-writer-wins.
func (e *Engine) SubmitGroupEdit(ctx context.Context, cityID, groupID string, draft *models.GroupDraft) error {
	return e.requests.Save(ctx, &models.PendingRequest{
		ID:        groupID,
		CityID:    cityID,
		Kind:      models.KindGroup,
		Group:     draft,
		CreatedAt: time.Now(),
	})
}

// Drop removes the request targeting a content item, if any. Called when
// the content itself disappears.
func (e *Engine) Drop(ctx context.Context, contentID string) error {
	err := e.requests.Delete(ctx, contentID)
	if errors.Is(err, errs.ErrNotFound) {
		return nil
	}
	return err
}

// DropCity discards a city's entire moderation queue. Part of city
// teardown; the held content is removed separately by its own family.
func (e *Engine) DropCity(ctx context.Context, cityID string) error {
	return e.requests.DropCity(ctx, cityID)
}

// ListPending returns a city's moderation queue. Staff only.
func (e *Engine) ListPending(ctx context.Context, actor, cityID string) ([]*models.PendingRequest, error) {
	if !e.policy.IsStaff(ctx, cityID, actor) {
		return nil, errs.ErrUnauthorized
	}
	return e.requests.ByCity(ctx, cityID)
}

// Judge applies a verdict to a request. Accepting a create publishes the
// held content; accepting an edit installs the proposed snapshot.
// Rejecting a create deletes the unpublished placeholder; rejecting an
// edit discards only the proposal and leaves the live content untouched.
// The request itself is removed either way, and the submitter is told
// the outcome and the moderator's reason on a best-effort basis.
func (e *Engine) Judge(ctx context.Context, actor, requestID string, accept bool, reason string) error {
	unlock := e.locks.lock(requestID)
	defer unlock()

	req, err := e.requests.Get(ctx, requestID)
	if err != nil {
		return err
	}
	if !e.policy.IsStaff(ctx, req.CityID, actor) {
		return errs.ErrUnauthorized
	}

	// Resolve the submitter up front: a rejected create deletes the
	// placeholder, taking its author record with it.
	author, authorErr := e.coord.AuthorOf(ctx, requestID)

	if err := e.applyVerdict(ctx, req, accept); err != nil {
		return err
	}
	if err := e.requests.Delete(ctx, requestID); err != nil && !errors.Is(err, errs.ErrNotFound) {
		return err
	}

	if authorErr == nil {
		verdict := "accepted"
		if !accept {
			verdict = "rejected"
		}
		message := fmt.Sprintf("your submission was %s", verdict)
		if reason != "" {
			message += ": " + reason
		}
		e.coord.Notify(ctx, actor, author, message, requestID)
	} else {
		e.log.Warn("could not resolve submitter for verdict notice",
			zap.String("request", requestID), zap.Error(authorErr))
	}

	e.audit.RequestJudged(ctx, actor, requestID, req.CityID, accept)
	return nil
}

func (e *Engine) applyVerdict(ctx context.Context, req *models.PendingRequest, accept bool) error {
	switch {
	case accept && req.New && req.Kind == models.KindPost:
		return e.coord.ApprovePost(ctx, req.ID)
	case accept && req.New && req.Kind == models.KindGroup:
		return e.coord.ApproveGroup(ctx, req.ID)
	case accept && req.Kind == models.KindPost:
		return e.coord.ApplyPostEdit(ctx, req.ID, req.Post)
	case accept && req.Kind == models.KindGroup:
		return e.coord.ApplyGroupEdit(ctx, req.ID, req.Group)
	case !accept && req.New && req.Kind == models.KindPost:
		return e.coord.DeletePostInternal(ctx, req.ID)
	case !accept && req.New && req.Kind == models.KindGroup:
		return e.coord.DeleteGroupInternal(ctx, req.ID)
	default:
		// Rejected edit: the proposal dies, the content stays.
		return nil
	}
}

// keyedLocks is a mutex per key with reference counting so idle entries
// do not accumulate.
type keyedLocks struct {
	mu sync.Mutex
	m  map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedLocks) lock(key string) (unlock func()) {
	k.mu.Lock()
	if k.m == nil {
		k.m = make(map[string]*lockEntry)
	}
	entry, ok := k.m[key]
	if !ok {
		entry = &lockEntry{}
		k.m[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.m, key)
		}
		k.mu.Unlock()
	}
}
