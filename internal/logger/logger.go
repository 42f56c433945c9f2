package logger

import (
	"context"

	"crm-notifications/internal/config"
	"crm-notifications/internal/database"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewLogger builds the application logger. With a database every entry is
// also written to the logs collection; mongodb may be nil for in-memory runs.
func NewLogger(lc fx.Lifecycle, cfg *config.Config, mongodb *database.MongodbDB) (*zap.Logger, error) {
	var zapConfig zap.Config
	if cfg.Environment == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	// Caller function names end up in the DB rows
	zapConfig.EncoderConfig.FunctionKey = "func"

	baseLogger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}

	if mongodb == nil || mongodb.DB == nil {
		return baseLogger.WithOptions(zap.AddCaller()), nil
	}

	dbWriter := NewDBLogWriter(mongodb.DB, cfg)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			_ = baseLogger.Sync()
			return dbWriter.Close(ctx)
		},
	})

	return zap.New(NewDBCore(baseLogger.Core(), dbWriter), zap.AddCaller()), nil
}
