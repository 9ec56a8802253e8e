// internal/app/content/users/engine.go

// Package users implements accounts, city-scoped roles, the curator
// lifecycle and the notification inbox. Usernames are the account key;
// e-mail is an optional delivery channel.
package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/synkteam/municipath/internal/app/content/errs"
	"github.com/synkteam/municipath/internal/app/system/auditlog"
	"github.com/synkteam/municipath/internal/app/system/mailer"
	"github.com/synkteam/municipath/internal/app/system/rolepolicy"
	"github.com/synkteam/municipath/internal/domain/models"
)

// UserStore is the persistence surface for accounts.
type UserStore interface {
	Get(ctx context.Context, username string) (*models.User, error)
	Save(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, username string) error
	FollowersOf(ctx context.Context, cityID string) ([]*models.User, error)
	RemoveFollowing(ctx context.Context, cityID string) error
}

// RoleStore is the persistence surface for city-scoped role assignments.
// It doubles as the rolepolicy.RoleSource.
type RoleStore interface {
	RoleOf(ctx context.Context, cityID, username string) (models.Role, error)
	Set(ctx context.Context, cityID, username string, role models.Role) error
	Unset(ctx context.Context, cityID, username string) error
	DropCity(ctx context.Context, cityID string) error
	DropUser(ctx context.Context, username string) error
}

// NotificationStore is the persistence surface for inboxes.
type NotificationStore interface {
	Save(ctx context.Context, n *models.Notification) error
	ByRecipient(ctx context.Context, username string) ([]*models.Notification, error)
	MarkRead(ctx context.Context, username, id string) error
	DropRecipient(ctx context.Context, username string) error
}

// Coordinator is the slice of the content coordinator the user family
// calls across family boundaries.
type Coordinator interface {
	CityExists(ctx context.Context, cityID string) (bool, error)
	DropSavedOf(ctx context.Context, username string) error
}

type Engine struct {
	users         UserStore
	roles         RoleStore
	notifications NotificationStore
	policy        *rolepolicy.Policy
	mail          *mailer.Mailer
	coord         Coordinator
	audit         *auditlog.Logger
	log           *zap.Logger
}

// New builds the engine. mail may be nil; notifications then stay
// inbox-only.
func New(users UserStore, roles RoleStore, notifications NotificationStore, policy *rolepolicy.Policy, mail *mailer.Mailer, audit *auditlog.Logger, log *zap.Logger) *Engine {
	return &Engine{
		users:         users,
		roles:         roles,
		notifications: notifications,
		policy:        policy,
		mail:          mail,
		audit:         audit,
		log:           log,
	}
}

func (e *Engine) Bind(c Coordinator) { e.coord = c }

// hashPassword hashes a password using bcrypt with a cost of 12.
func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Register creates an unvalidated account. E-mail is optional.
func (e *Engine) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password", errs.ErrMissingField)
	}
	if _, err := e.users.Get(ctx, username); err == nil {
		return nil, fmt.Errorf("%w: user %q", errs.ErrDuplicate, username)
	} else if !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := e.users.Save(ctx, user); err != nil {
		return nil, err
	}
	e.log.Info("user registered", zap.String("user", username))
	return user, nil
}

// CheckCredentials verifies a username/password pair. Unknown users and
// wrong passwords are indistinguishable to the caller.
func (e *Engine) CheckCredentials(ctx context.Context, username, password string) (*models.User, error) {
	user, err := e.users.Get(ctx, username)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, errs.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, errs.ErrUnauthorized
	}
	return user, nil
}

// ChangePassword replaces a user's password after verifying the old one.
func (e *Engine) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	user, err := e.CheckCredentials(ctx, username, oldPassword)
	if err != nil {
		return err
	}
	if newPassword == "" {
		return fmt.Errorf("%w: password", errs.ErrMissingField)
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.UpdatedAt = time.Now()
	return e.users.Save(ctx, user)
}

// Validate marks an account as a real person. Manager only.
func (e *Engine) Validate(ctx context.Context, actor, username string) error {
	if err := e.requireManager(ctx, actor); err != nil {
		return err
	}
	user, err := e.users.Get(ctx, username)
	if err != nil {
		return err
	}
	if user.Validated {
		return nil
	}
	user.Validated = true
	user.UpdatedAt = time.Now()
	if err := e.users.Save(ctx, user); err != nil {
		return err
	}
	e.audit.UserValidated(ctx, actor, username)
	return nil
}

// SetManager grants or revokes platform administration. Manager only.
func (e *Engine) SetManager(ctx context.Context, actor, username string, manager bool) error {
	if err := e.requireManager(ctx, actor); err != nil {
		return err
	}
	user, err := e.users.Get(ctx, username)
	if err != nil {
		return err
	}
	user.Manager = manager
	user.UpdatedAt = time.Now()
	return e.users.Save(ctx, user)
}

// DeleteUser removes an account and its satellites. Users delete
// themselves; managers delete anyone. A sitting curator cannot be
// deleted: the city needs a handover first.
func (e *Engine) DeleteUser(ctx context.Context, actor, username string) error {
	if actor != username {
		if err := e.requireManager(ctx, actor); err != nil {
			return err
		}
	}
	user, err := e.users.Get(ctx, username)
	if err != nil {
		return err
	}
	if user.CuratorOf != "" {
		return fmt.Errorf("%w: user curates city %s", errs.ErrUnauthorized, user.CuratorOf)
	}

	if err := e.roles.DropUser(ctx, username); err != nil {
		return err
	}
	if err := e.notifications.DropRecipient(ctx, username); err != nil {
		return err
	}
	if err := e.coord.DropSavedOf(ctx, username); err != nil {
		return err
	}
	if err := e.users.Delete(ctx, username); err != nil {
		return err
	}
	e.audit.UserDeleted(ctx, actor, username)
	return nil
}

// Get returns an account by username.
func (e *Engine) Get(ctx context.Context, username string) (*models.User, error) {
	return e.users.Get(ctx, username)
}

// IsManager reports whether a user is a platform administrator.
func (e *Engine) IsManager(ctx context.Context, username string) (bool, error) {
	user, err := e.users.Get(ctx, username)
	if errors.Is(err, errs.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return user.Manager, nil
}

// SetRole assigns a city-scoped role. Only the city's curator assigns
// roles, and the curator role itself is never assigned here: it moves
// only through the city operations.
func (e *Engine) SetRole(ctx context.Context, actor, cityID, username string, role models.Role) error {
	if e.policy.LevelOf(ctx, cityID, actor) != rolepolicy.LevelCurator {
		return errs.ErrUnauthorized
	}
	if role == models.RoleCurator {
		return fmt.Errorf("%w: curator changes go through the city", errs.ErrUnauthorized)
	}
	user, err := e.users.Get(ctx, username)
	if err != nil {
		return err
	}
	if !user.Validated && rolepolicy.FromRole(role) > rolepolicy.LevelContributor {
		return fmt.Errorf("%w: %q is not validated", errs.ErrUnauthorized, username)
	}

	if role == models.RoleNone {
		if err := e.roles.Unset(ctx, cityID, username); err != nil {
			return err
		}
	} else if err := e.roles.Set(ctx, cityID, username, role); err != nil {
		return err
	}
	e.audit.RoleChanged(ctx, actor, username, cityID, string(role))
	return nil
}

// MatchCurator installs a user as a city's curator. The user must exist,
// be validated and not already curate another city.
func (e *Engine) MatchCurator(ctx context.Context, username, cityID string) error {
	user, err := e.users.Get(ctx, username)
	if err != nil {
		return err
	}
	if !user.Validated {
		return fmt.Errorf("%w: %q is not validated", errs.ErrUnauthorized, username)
	}
	if user.CuratorOf != "" {
		return fmt.Errorf("%w: %q already curates city %s", errs.ErrDuplicate, username, user.CuratorOf)
	}

	user.CuratorOf = cityID
	user.UpdatedAt = time.Now()
	if err := e.users.Save(ctx, user); err != nil {
		return err
	}
	return e.roles.Set(ctx, cityID, username, models.RoleCurator)
}

// DiscreditCurator releases a user from curatorship of a city.
func (e *Engine) DiscreditCurator(ctx context.Context, username, cityID string) error {
	user, err := e.users.Get(ctx, username)
	if errors.Is(err, errs.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if user.CuratorOf == cityID {
		user.CuratorOf = ""
		user.UpdatedAt = time.Now()
		if err := e.users.Save(ctx, user); err != nil {
			return err
		}
	}
	return e.roles.Unset(ctx, cityID, username)
}

// DropCityRoles removes every role assignment of a city and strips the
// city from follow lists. Part of city teardown.
func (e *Engine) DropCityRoles(ctx context.Context, cityID string) error {
	if err := e.roles.DropCity(ctx, cityID); err != nil {
		return err
	}
	return e.users.RemoveFollowing(ctx, cityID)
}

// Follow subscribes or unsubscribes a user to a city's publications.
func (e *Engine) Follow(ctx context.Context, username, cityID string, follow bool) error {
	ok, err := e.coord.CityExists(ctx, cityID)
	if err != nil {
		return err
	}
	if !ok {
		return errs.ErrNotFound
	}
	user, err := e.users.Get(ctx, username)
	if err != nil {
		return err
	}

	following := make([]string, 0, len(user.Following))
	for _, id := range user.Following {
		if id != cityID {
			following = append(following, id)
		}
	}
	if follow {
		following = append(following, cityID)
	}
	user.Following = following
	user.UpdatedAt = time.Now()
	return e.users.Save(ctx, user)
}

// Notify drops a message into a user's inbox and, when the recipient has
// an e-mail address and SMTP is configured, mirrors it over mail.
// Delivery is best-effort: failures are logged, never returned.
func (e *Engine) Notify(ctx context.Context, author, recipient, message, contentID string) {
	n := &models.Notification{
		ID:        uuid.NewString(),
		Recipient: recipient,
		Author:    author,
		Message:   message,
		ContentID: contentID,
		CreatedAt: time.Now(),
	}
	if err := e.notifications.Save(ctx, n); err != nil {
		e.log.Warn("notification store failed",
			zap.String("recipient", recipient), zap.Error(err))
		return
	}
	if e.mail == nil {
		return
	}
	user, err := e.users.Get(ctx, recipient)
	if err != nil || user.Email == "" {
		return
	}
	if err := e.mail.Send(user.Email, "MuniciPath notification", mailer.NotificationBody(author, message, contentID)); err != nil {
		e.log.Warn("notification mail failed",
			zap.String("recipient", recipient), zap.Error(err))
	}
}

// NotifyFollowers fans a publication out to every follower of a city.
func (e *Engine) NotifyFollowers(ctx context.Context, cityID, author, contentID, title string) {
	followers, err := e.users.FollowersOf(ctx, cityID)
	if err != nil {
		e.log.Warn("follower fan-out failed", zap.String("city", cityID), zap.Error(err))
		return
	}
	for _, f := range followers {
		if f.Username == author {
			continue
		}
		e.Notify(ctx, author, f.Username, fmt.Sprintf("new publication: %s", title), contentID)
	}
}

// Inbox lists a user's notifications, newest first.
func (e *Engine) Inbox(ctx context.Context, username string) ([]*models.Notification, error) {
	return e.notifications.ByRecipient(ctx, username)
}

// MarkRead flags one inbox entry as read.
func (e *Engine) MarkRead(ctx context.Context, username, notificationID string) error {
	return e.notifications.MarkRead(ctx, username, notificationID)
}

func (e *Engine) requireManager(ctx context.Context, actor string) error {
	ok, err := e.IsManager(ctx, actor)
	if err != nil {
		return err
	}
	if !ok {
		return errs.ErrUnauthorized
	}
	return nil
}
