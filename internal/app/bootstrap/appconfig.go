// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration: WAFFLE's CoreConfig
// handles framework settings like ports, TLS, logging level and CORS.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Platform administration bootstrap
	ManagerUsername string // Username promoted/created as platform manager on startup

	// Expiry sweep configuration
	SweepInterval time.Duration // How often the expiry sweep runs

	// Weather decoration configuration
	WeatherProvider string        // "open-meteo" or "static"
	WeatherCacheTTL time.Duration // Forecast cache lifetime per position

	// Write throttle (0 requests disables the limiter)
	RateLimitRequests int           // Max mutating requests per actor per window
	RateLimitWindow   time.Duration // Sliding window duration

	// Email/SMTP configuration (empty host disables the mail channel;
	// notifications then stay inbox-only)
	MailSMTPHost string // SMTP server host
	MailSMTPPort int    // SMTP server port
	MailSMTPUser string // SMTP username
	MailSMTPPass string // SMTP password
	MailFrom     string // From email address
	MailFromName string // From display name

	// Audit logging settings ("all", "db", "log", or "off")
	AuditLogModeration string // Moderation events: verdicts, deletions, contest outcomes
	AuditLogAdmin      string // Admin events: city CRUD, role and account lifecycle
}
