// internal/app/bootstrap/engines.go
package bootstrap

import (
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/synkteam/municipath/internal/app/content/cities"
	"github.com/synkteam/municipath/internal/app/content/contest"
	"github.com/synkteam/municipath/internal/app/content/feedback"
	"github.com/synkteam/municipath/internal/app/content/groups"
	"github.com/synkteam/municipath/internal/app/content/lifecycle"
	"github.com/synkteam/municipath/internal/app/content/pending"
	"github.com/synkteam/municipath/internal/app/content/posts"
	"github.com/synkteam/municipath/internal/app/content/saved"
	"github.com/synkteam/municipath/internal/app/content/users"
	"github.com/synkteam/municipath/internal/app/store/audit"
	citystore "github.com/synkteam/municipath/internal/app/store/cities"
	contribstore "github.com/synkteam/municipath/internal/app/store/contributions"
	counterstore "github.com/synkteam/municipath/internal/app/store/counters"
	feedbackstore "github.com/synkteam/municipath/internal/app/store/feedback"
	groupstore "github.com/synkteam/municipath/internal/app/store/groups"
	notifstore "github.com/synkteam/municipath/internal/app/store/notifications"
	pendingstore "github.com/synkteam/municipath/internal/app/store/pending"
	pointstore "github.com/synkteam/municipath/internal/app/store/points"
	poststore "github.com/synkteam/municipath/internal/app/store/posts"
	rolestore "github.com/synkteam/municipath/internal/app/store/roles"
	savedstore "github.com/synkteam/municipath/internal/app/store/saved"
	userstore "github.com/synkteam/municipath/internal/app/store/users"
	"github.com/synkteam/municipath/internal/app/system/auditlog"
	"github.com/synkteam/municipath/internal/app/system/mailer"
	"github.com/synkteam/municipath/internal/app/system/rolepolicy"
	"github.com/synkteam/municipath/internal/app/system/weather"
	"github.com/synkteam/municipath/internal/app/system/workers"
)

// stack bundles the wired engine families with the background worker
// built over them. Startup fills it; BuildHandler and Shutdown use it.
type stack struct {
	engines lifecycle.Engines
	sweep   *workers.ExpirySweep
	users   *userstore.Store
}

// appStack is set once during Startup. WAFFLE runs the lifecycle hooks
// sequentially, so no locking is needed.
var appStack *stack

// buildStack constructs the Mongo stores, the system collaborators and
// the engine families, and binds them through the lifecycle coordinator.
func buildStack(db *mongo.Database, appCfg AppConfig, logger *zap.Logger) *stack {
	usersStore := userstore.New(db)
	rolesStore := rolestore.New(db)
	policy := rolepolicy.New(rolesStore)

	var provider weather.Provider
	if appCfg.WeatherProvider == "open-meteo" {
		provider = weather.NewOpenMeteo()
	} else {
		provider = weather.Static{}
	}
	wx := weather.NewProxy(provider, appCfg.WeatherCacheTTL, logger)

	var mail *mailer.Mailer
	if appCfg.MailSMTPHost != "" {
		mail = mailer.New(mailer.Config{
			Host:     appCfg.MailSMTPHost,
			Port:     appCfg.MailSMTPPort,
			Username: appCfg.MailSMTPUser,
			Password: appCfg.MailSMTPPass,
			From:     appCfg.MailFrom,
			FromName: appCfg.MailFromName,
		}, logger)
	}

	auditLogger := auditlog.New(audit.New(db), logger, auditlog.Config{
		Moderation: appCfg.AuditLogModeration,
		Admin:      appCfg.AuditLogAdmin,
	})

	counters := counterstore.New(db)
	engines := lifecycle.Engines{
		Cities:   cities.New(citystore.New(db), auditLogger, logger),
		Posts:    posts.New(poststore.New(db), pointstore.New(db), counters, policy, wx, logger),
		Groups:   groups.New(groupstore.New(db), counters, policy, logger),
		Pending:  pending.New(pendingstore.New(db), policy, auditLogger, logger),
		Contest:  contest.New(contribstore.New(db), policy, auditLogger, logger),
		Users:    users.New(usersStore, rolesStore, notifstore.New(db), policy, mail, auditLogger, logger),
		Feedback: feedback.New(feedbackstore.New(db), policy, logger),
		Saved:    saved.New(savedstore.New(db), policy, logger),
	}
	lifecycle.Bind(engines)

	return &stack{
		engines: engines,
		sweep:   workers.NewExpirySweep(engines.Posts, engines.Groups, logger, appCfg.SweepInterval),
		users:   usersStore,
	}
}
