// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"

	"go.uber.org/zap"

	"github.com/synkteam/municipath/internal/app/store/audit"
)

// Config holds audit logging configuration.
type Config struct {
	// Moderation controls logging for moderation events (verdicts,
	// deletions, contest outcomes).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Moderation string
	// Admin controls logging for administrative events (city CRUD, role
	// and curator changes, account lifecycle).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Admin string
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
	}

	if event.Actor != "" {
		fields = append(fields, zap.String("actor", event.Actor))
	}
	if event.Subject != "" {
		fields = append(fields, zap.String("subject", event.Subject))
	}
	if event.CityID != "" {
		fields = append(fields, zap.String("city_id", event.CityID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
// Logging destination is controlled by config: "all", "db", "log", or "off".
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	// Determine which config setting applies based on event category
	var setting string
	switch event.Category {
	case audit.CategoryModeration:
		setting = l.config.Moderation
	case audit.CategoryAdmin:
		setting = l.config.Admin
	default:
		setting = "all" // Default to logging everything for unknown categories
	}

	// Check if logging is disabled for this category
	if setting == "off" {
		return
	}

	// Log to zap if configured
	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	// Log to MongoDB if configured
	if setting == "all" || setting == "db" {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Moderation Events ---

// RequestJudged logs a moderation verdict on a pending request.
func (l *Logger) RequestJudged(ctx context.Context, actor, contentID, cityID string, accepted bool) {
	eventType := audit.EventRequestAccepted
	if !accepted {
		eventType = audit.EventRequestRejected
	}
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryModeration,
		EventType: eventType,
		Actor:     actor,
		Subject:   contentID,
		CityID:    cityID,
		Success:   true,
	})
}

// ContentDeleted logs removal of a post or group.
func (l *Logger) ContentDeleted(ctx context.Context, actor, contentID, cityID string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryModeration,
		EventType: audit.EventContentDeleted,
		Actor:     actor,
		Subject:   contentID,
		CityID:    cityID,
		Success:   true,
	})
}

// WinnerDeclared logs the outcome of a contest.
func (l *Logger) WinnerDeclared(ctx context.Context, actor, contestID, cityID, contributionID string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryModeration,
		EventType: audit.EventWinnerDeclared,
		Actor:     actor,
		Subject:   contestID,
		CityID:    cityID,
		Success:   true,
		Details: map[string]string{
			"contribution_id": contributionID,
		},
	})
}

// --- Admin Events ---

// CityCreated logs creation of a city.
func (l *Logger) CityCreated(ctx context.Context, actor, cityID, cityName string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventCityCreated,
		Actor:     actor,
		Subject:   cityID,
		CityID:    cityID,
		Success:   true,
		Details: map[string]string{
			"city_name": cityName,
		},
	})
}

// CityUpdated logs an update of a city's details.
func (l *Logger) CityUpdated(ctx context.Context, actor, cityID, fieldsChanged string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventCityUpdated,
		Actor:     actor,
		Subject:   cityID,
		CityID:    cityID,
		Success:   true,
		Details: map[string]string{
			"fields_changed": fieldsChanged,
		},
	})
}

// CityDeleted logs removal of a city and its content tree.
func (l *Logger) CityDeleted(ctx context.Context, actor, cityID, cityName string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventCityDeleted,
		Actor:     actor,
		Subject:   cityID,
		CityID:    cityID,
		Success:   true,
		Details: map[string]string{
			"city_name": cityName,
		},
	})
}

// RoleChanged logs a role assignment change within a city.
func (l *Logger) RoleChanged(ctx context.Context, actor, username, cityID, role string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventRoleChanged,
		Actor:     actor,
		Subject:   username,
		CityID:    cityID,
		Success:   true,
		Details: map[string]string{
			"role": role,
		},
	})
}

// CuratorChanged logs a curator handover for a city.
func (l *Logger) CuratorChanged(ctx context.Context, actor, cityID, oldCurator, newCurator string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventCuratorChanged,
		Actor:     actor,
		Subject:   newCurator,
		CityID:    cityID,
		Success:   true,
		Details: map[string]string{
			"old_curator": oldCurator,
		},
	})
}

// UserValidated logs validation of a registered account.
func (l *Logger) UserValidated(ctx context.Context, actor, username string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventUserValidated,
		Actor:     actor,
		Subject:   username,
		Success:   true,
	})
}

// UserDeleted logs removal of an account.
func (l *Logger) UserDeleted(ctx context.Context, actor, username string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventUserDeleted,
		Actor:     actor,
		Subject:   username,
		Success:   true,
	})
}
