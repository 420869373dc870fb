// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig covers the framework-level settings (ports, TLS,
// logging, CORS). Everything the System Users panel service needs lives
// here and is passed to every lifecycle hook.
type AppConfig struct {
	// MongoDB holds the profile cache and the client error log.
	MongoURI      string
	MongoDatabase string

	// Remote profile API. A static token wins over client credentials.
	ProfileAPIURL          string
	ProfileAPIToken        string
	ProfileAPIClientID     string
	ProfileAPIClientSecret string
	ProfileAPITokenURL     string
	ProfileAPIRate         float64 // requests per second, 0 means unlimited

	// Panel lifecycle
	PanelIdleTimeout  time.Duration
	PanelReapInterval time.Duration

	// Client error logging: "all" (db+log), "db", "log", or "off"
	ErrorLog string

	// I/O deadlines; zero keeps the built-in default.
	TimeoutPing   time.Duration
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
}
