// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"net/url"
	"time"

	"github.com/dalemusser/adminusers/internal/app/system/errorlog"
	"github.com/dalemusser/adminusers/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for the admin users service.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, profile_api_url, etc.
//   - Environment variables: ADMINUSERS_MONGO_URI, ADMINUSERS_PROFILE_API_URL, etc.
//   - Command-line flags: --mongo_uri, --profile_api_url, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "admin_users", Desc: "MongoDB database name"},

	// Remote profile API
	{Name: "profile_api_url", Default: "http://localhost:8065", Desc: "Base URL of the remote profile API"},
	{Name: "profile_api_token", Default: "", Desc: "Static bearer token for the profile API"},
	{Name: "profile_api_client_id", Default: "", Desc: "OAuth2 client ID for the profile API (client credentials)"},
	{Name: "profile_api_client_secret", Default: "", Desc: "OAuth2 client secret for the profile API"},
	{Name: "profile_api_token_url", Default: "", Desc: "OAuth2 token endpoint for the profile API"},
	{Name: "profile_api_rate", Default: 20, Desc: "Outbound profile API requests per second (0 = unlimited)"},

	// Panel lifecycle
	{Name: "panel_idle_timeout", Default: "30m", Desc: "Close panels unused for this long (e.g., 30m, 1h)"},
	{Name: "panel_reap_interval", Default: "1m", Desc: "How often idle panels are swept"},

	// Client error logging
	{Name: "error_log", Default: "all", Desc: "Client error logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// I/O deadlines
	{Name: "timeout_ping", Default: "2s", Desc: "Deadline for MongoDB health pings"},
	{Name: "timeout_short", Default: "5s", Desc: "Deadline for single reads, the startup ping and index creation"},
	{Name: "timeout_medium", Default: "10s", Desc: "Deadline for profile cache writes and error log queries"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges .env files, config files,
// environment variables (WAFFLE_* for core, ADMINUSERS_* for app) and
// command-line flags, with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "ADMINUSERS", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:      appValues.String("mongo_uri"),
		MongoDatabase: appValues.String("mongo_database"),

		ProfileAPIURL:          appValues.String("profile_api_url"),
		ProfileAPIToken:        appValues.String("profile_api_token"),
		ProfileAPIClientID:     appValues.String("profile_api_client_id"),
		ProfileAPIClientSecret: appValues.String("profile_api_client_secret"),
		ProfileAPITokenURL:     appValues.String("profile_api_token_url"),
		ProfileAPIRate:         float64(appValues.Int("profile_api_rate")),

		PanelIdleTimeout:  appValues.Duration("panel_idle_timeout", 30*time.Minute),
		PanelReapInterval: appValues.Duration("panel_reap_interval", time.Minute),

		ErrorLog: appValues.String("error_log"),

		TimeoutPing:   appValues.Duration("timeout_ping", timeouts.DefaultPing),
		TimeoutShort:  appValues.Duration("timeout_short", timeouts.DefaultShort),
		TimeoutMedium: appValues.Duration("timeout_medium", timeouts.DefaultMedium),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// It catches configuration errors before any connection is attempted:
// the MongoDB URI format, the profile API URL, half-configured client
// credentials and the panel timers.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	return validateAppConfig(appCfg)
}

func validateAppConfig(appCfg AppConfig) error {
	u, err := url.Parse(appCfg.ProfileAPIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("profile_api_url must be an absolute http(s) URL, got %q", appCfg.ProfileAPIURL)
	}

	if appCfg.ProfileAPIToken == "" {
		creds := []string{appCfg.ProfileAPIClientID, appCfg.ProfileAPIClientSecret, appCfg.ProfileAPITokenURL}
		set := 0
		for _, c := range creds {
			if c != "" {
				set++
			}
		}
		if set != 0 && set != len(creds) {
			return fmt.Errorf("profile_api_client_id, profile_api_client_secret and profile_api_token_url must be set together")
		}
	}

	if appCfg.ProfileAPIRate < 0 {
		return fmt.Errorf("profile_api_rate must not be negative")
	}
	if appCfg.PanelIdleTimeout <= 0 || appCfg.PanelReapInterval <= 0 {
		return fmt.Errorf("panel_idle_timeout and panel_reap_interval must be positive")
	}

	if appCfg.TimeoutPing < 0 || appCfg.TimeoutShort < 0 || appCfg.TimeoutMedium < 0 {
		return fmt.Errorf("timeout_ping, timeout_short and timeout_medium must not be negative")
	}

	switch appCfg.ErrorLog {
	case errorlog.ModeAll, errorlog.ModeDB, errorlog.ModeLog, errorlog.ModeOff:
	default:
		return fmt.Errorf("error_log must be one of all, db, log, off; got %q", appCfg.ErrorLog)
	}
	return nil
}

// configureTimeouts applies the configured I/O deadlines process-wide.
func configureTimeouts(appCfg AppConfig) {
	timeouts.Configure(timeouts.Config{
		Ping:   appCfg.TimeoutPing,
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
	})
}
