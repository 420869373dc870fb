// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/adminusers/internal/app/clients/profileapi"
	"github.com/dalemusser/adminusers/internal/app/store/clienterrors"
	profilestore "github.com/dalemusser/adminusers/internal/app/store/profiles"
	"github.com/dalemusser/adminusers/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB applies the configured I/O deadlines, connects to MongoDB and
// builds the remote profile API client.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	configureTimeouts(appCfg)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(appCfg.MongoURI))
	if err != nil {
		logger.Error("MongoDB connect failed", zap.Error(err))
		return DBDeps{}, fmt.Errorf("connect mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		logger.Error("MongoDB ping failed", zap.Error(err))
		return DBDeps{}, fmt.Errorf("ping mongo: %w", err)
	}
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	api, err := profileapi.New(profileAPIConfig(appCfg), logger)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("profile api client: %w", err)
	}

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
		ProfileAPI:    api,
		Runtime:       &Runtime{},
	}, nil
}

func profileAPIConfig(appCfg AppConfig) profileapi.Config {
	return profileapi.Config{
		BaseURL:       appCfg.ProfileAPIURL,
		Token:         appCfg.ProfileAPIToken,
		ClientID:      appCfg.ProfileAPIClientID,
		ClientSecret:  appCfg.ProfileAPIClientSecret,
		TokenURL:      appCfg.ProfileAPITokenURL,
		RatePerSecond: appCfg.ProfileAPIRate,
	}
}

// EnsureSchema creates the indexes of the profile cache and the client
// error log.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := profilestore.New(deps.MongoDatabase).EnsureIndexes(ctx); err != nil {
		logger.Error("profile indexes failed", zap.Error(err))
		return fmt.Errorf("profile indexes: %w", err)
	}
	if err := clienterrors.New(deps.MongoDatabase).EnsureIndexes(ctx); err != nil {
		logger.Error("client error indexes failed", zap.Error(err))
		return fmt.Errorf("client error indexes: %w", err)
	}
	return nil
}
