package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/iequus/iequus_backend/config"
	"github.com/iequus/iequus_backend/internal/repo"
	"github.com/iequus/iequus_backend/internal/schema"
	"github.com/iequus/iequus_backend/pkg/authorize"
	"github.com/iequus/iequus_backend/pkg/database"
	"github.com/iequus/iequus_backend/pkg/email"
	"github.com/iequus/iequus_backend/pkg/media"
	"github.com/iequus/iequus_backend/pkg/observability"
	"github.com/iequus/iequus_backend/pkg/pdfconv"
	"github.com/iequus/iequus_backend/pkg/predict"
	redispkg "github.com/iequus/iequus_backend/pkg/redis"
	"github.com/iequus/iequus_backend/pkg/token"
	"github.com/iequus/iequus_backend/pkg/util/password"
)

// InfraModule provides all infrastructure dependencies.
var InfraModule = fx.Module("infra",
	fx.Provide(ProvideLogger),
	fx.Provide(ProvideDB),
	fx.Provide(ProvideRedis),
	fx.Provide(ProvideAuthorization),
	fx.Provide(ProvideEmailClient),
	fx.Provide(ProvideOTel),
	fx.Provide(ProvideMediaStore),
	fx.Provide(ProvideConverter),
	fx.Provide(ProvidePredictClient),
	fx.Provide(ProvideEstimator),
	fx.Provide(ProvideTokenManager),
	fx.Provide(ProvideHasher),
	fx.Provide(ProvidePasswordPolicy),
)

// ProvideLogger hands the process-wide logger to services.
func ProvideLogger() *slog.Logger {
	return slog.Default()
}

func ProvideDB(lc fx.Lifecycle, cfg *config.Config, logger *slog.Logger) (*repo.DB, error) {
	dbCfg := database.FromCentralConfig(cfg.Database)
	conn, err := database.Open(dbCfg)
	if err != nil {
		return nil, err
	}

	if cfg.Database.Migrations.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.TimeoutSeconds)*time.Second)
		err := database.Migrate(ctx, conn, cfg.Database.Migrations.SafeMode, schema.Tables...)
		cancel()
		if err != nil {
			conn.Close()
			return nil, err
		}
		logger.Info("database schema migrated")
	}

	db := repo.New(conn, logger, dbCfg.SlowQueryThreshold())
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing main database connection")
			return db.Close()
		},
	})
	return db, nil
}

func ProvideRedis(lc fx.Lifecycle, cfg *config.Config) (*redis.Client, error) {
	rdb, err := redispkg.NewRedisFromCentral(cfg.Redis)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing Redis connection")
			return rdb.Close()
		},
	})
	return rdb, nil
}

// ProvideAuthorization uses the casbin database when one is configured and
// otherwise keeps policies in memory, seeded on start.
func ProvideAuthorization(lc fx.Lifecycle, cfg *config.Config, logger *slog.Logger) (authorize.IAuthorization, error) {
	if cfg.CasbinDatabase.Host == "" {
		enforcer, err := authorize.NewMemoryEnforcer(cfg.Authorization.CasbinModelPath)
		if err != nil {
			return nil, err
		}
		baseAuth, err := authorize.NewAuthorization(enforcer)
		if err != nil {
			return nil, err
		}
		if err := authorize.SeedDefaultPolicies(context.Background(), baseAuth); err != nil {
			return nil, err
		}
		logger.Warn("casbin database not configured, hospital roles are kept in memory")
		return wrapAudit(cfg, baseAuth, logger), nil
	}

	dsn := database.NewDSN(cfg.CasbinDatabase)
	enforcer, cleanup, err := authorize.NewEnforcer(cfg.Authorization.CasbinModelPath, dsn)
	if err != nil {
		return nil, err
	}
	baseAuth, err := authorize.NewAuthorization(enforcer)
	if err != nil {
		cleanup(context.Background())
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("cleaning up Casbin enforcer")
			cleanup(ctx)
			return nil
		},
	})
	return wrapAudit(cfg, baseAuth, logger), nil
}

func wrapAudit(cfg *config.Config, auth authorize.IAuthorization, logger *slog.Logger) authorize.IAuthorization {
	if !cfg.Authorization.EnableAudit {
		return auth
	}
	return authorize.NewAuditedAuthorization(auth, logger)
}

func ProvideEmailClient(cfg *config.Config) email.Sender {
	return email.NewFromCentral(cfg.Email)
}

func ProvideOTel(lc fx.Lifecycle, cfg *config.Config) (*observability.Provider, error) {
	if !cfg.Observability.Enabled {
		return nil, nil
	}
	provider, err := observability.InitTelemetry(context.Background(), observability.FromCentralConfig(cfg))
	if err != nil {
		return nil, err
	}
	slog.Info("observability initialized",
		"tracing", cfg.Observability.Tracing.Enabled,
		"metrics", cfg.Observability.Metrics.Enabled,
	)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("shutting down observability providers")
			return provider.Shutdown(ctx)
		},
	})
	return provider, nil
}

func ProvideMediaStore(cfg *config.Config) (media.Store, error) {
	return media.New(cfg)
}

func ProvideConverter(cfg *config.Config) *pdfconv.Converter {
	return pdfconv.New(cfg.Conversion, cfg.Media.MaxImageDimension)
}

func ProvidePredictClient(cfg *config.Config) *predict.Client {
	return predict.NewClient(cfg.Prediction)
}

func ProvideEstimator(cfg *config.Config, client *predict.Client) *predict.Estimator {
	return &predict.Estimator{
		Scorer:            client,
		WeightPlaceholder: cfg.Prediction.WeightPlaceholder,
	}
}

func ProvideTokenManager(cfg *config.Config) (*token.Manager, error) {
	return token.New(token.FromCentralConfig(cfg.Authentication))
}

func ProvideHasher(cfg *config.Config) *password.Hasher {
	return password.NewHasher(password.FromCentralConfig(cfg.Password))
}

func ProvidePasswordPolicy(cfg *config.Config) password.Policy {
	return password.Policy{
		MinLength: cfg.Authentication.MinPasswordLength,
		MinScore:  cfg.Authentication.MinPasswordScore,
	}
}
