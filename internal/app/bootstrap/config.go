// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for MuniciPath.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, sweep_interval, etc.
//   - Environment variables: MUNICIPATH_MONGO_URI, MUNICIPATH_SWEEP_INTERVAL, etc.
//   - Command-line flags: --mongo_uri, --sweep_interval, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "municipath", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Platform administration bootstrap
	{Name: "manager_username", Default: "", Desc: "Username promoted/created as platform manager on startup"},

	// Expiry sweep
	{Name: "sweep_interval", Default: "5m", Desc: "How often the expiry sweep runs (e.g., 5m, 1h)"},

	// Weather decoration
	{Name: "weather_provider", Default: "open-meteo", Desc: "Weather provider: 'open-meteo' or 'static'"},
	{Name: "weather_cache_ttl", Default: "15m", Desc: "Forecast cache lifetime per position"},

	// Write throttle
	{Name: "rate_limit_requests", Default: 60, Desc: "Max mutating requests per actor per window (0 disables)"},
	{Name: "rate_limit_window", Default: "1m", Desc: "Sliding window for the write throttle"},

	// Email/SMTP configuration (empty host disables the mail channel)
	{Name: "mail_smtp_host", Default: "", Desc: "SMTP server host (empty disables mail delivery)"},
	{Name: "mail_smtp_port", Default: 587, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_from", Default: "noreply@municipath.example", Desc: "From email address"},
	{Name: "mail_from_name", Default: "MuniciPath", Desc: "From display name"},

	// Audit logging settings
	{Name: "audit_log_moderation", Default: "all", Desc: "Moderation event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "MUNICIPATH", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		ManagerUsername: appValues.String("manager_username"),

		SweepInterval: appValues.Duration("sweep_interval", 5*time.Minute),

		WeatherProvider: appValues.String("weather_provider"),
		WeatherCacheTTL: appValues.Duration("weather_cache_ttl", 15*time.Minute),

		RateLimitRequests: appValues.Int("rate_limit_requests"),
		RateLimitWindow:   appValues.Duration("rate_limit_window", time.Minute),

		MailSMTPHost: appValues.String("mail_smtp_host"),
		MailSMTPPort: appValues.Int("mail_smtp_port"),
		MailSMTPUser: appValues.String("mail_smtp_user"),
		MailSMTPPass: appValues.String("mail_smtp_pass"),
		MailFrom:     appValues.String("mail_from"),
		MailFromName: appValues.String("mail_from_name"),

		AuditLogModeration: appValues.String("audit_log_moderation"),
		AuditLogAdmin:      appValues.String("audit_log_admin"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// MuniciPath validates the MongoDB URI format to catch configuration
// errors early, before attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.SweepInterval <= 0 {
		return fmt.Errorf("sweep_interval must be positive, got %s", appCfg.SweepInterval)
	}

	if appCfg.RateLimitRequests < 0 {
		return fmt.Errorf("rate_limit_requests must be >= 0, got %d", appCfg.RateLimitRequests)
	}

	switch appCfg.WeatherProvider {
	case "open-meteo", "static":
	default:
		return fmt.Errorf("weather_provider must be 'open-meteo' or 'static', got %q", appCfg.WeatherProvider)
	}

	return nil
}
