package app

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/iequus/iequus_backend/config"
	"github.com/iequus/iequus_backend/internal/repo"
	"github.com/iequus/iequus_backend/internal/service/access"
	"github.com/iequus/iequus_backend/internal/service/appointment"
	"github.com/iequus/iequus_backend/internal/service/auth"
	"github.com/iequus/iequus_backend/internal/service/client"
	"github.com/iequus/iequus_backend/internal/service/health"
	"github.com/iequus/iequus_backend/internal/service/horse"
	"github.com/iequus/iequus_backend/internal/service/hospital"
	"github.com/iequus/iequus_backend/internal/service/measure"
	"github.com/iequus/iequus_backend/internal/service/veterinarian"
	"github.com/iequus/iequus_backend/internal/service/xray"
	"github.com/iequus/iequus_backend/pkg/authorize"
	"github.com/iequus/iequus_backend/pkg/email"
	"github.com/iequus/iequus_backend/pkg/media"
	"github.com/iequus/iequus_backend/pkg/pdfconv"
	"github.com/iequus/iequus_backend/pkg/predict"
	redispkg "github.com/iequus/iequus_backend/pkg/redis"
	"github.com/iequus/iequus_backend/pkg/token"
	"github.com/iequus/iequus_backend/pkg/util/password"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvideAccessService,
		ProvideAuthService,
		ProvideVeterinarianService,
		ProvideHospitalService,
		ProvideHorseService,
		ProvideClientService,
		ProvideAppointmentService,
		ProvideMeasureService,
		ProvideXRayService,
		ProvideHealthService,
	),
)

func ProvideAccessService(db *repo.DB) access.Service {
	return access.New(db)
}

type authParams struct {
	fx.In

	DB     *repo.DB
	Redis  *redis.Client
	Hasher *password.Hasher
	Policy password.Policy
	Tokens *token.Manager
	Mail   email.Sender
	Authz  authorize.IAuthorization
	Logger *slog.Logger
}

func ProvideAuthService(p authParams) auth.Service {
	return auth.New(auth.Deps{
		DB:     p.DB,
		Redis:  p.Redis,
		Hasher: p.Hasher,
		Policy: p.Policy,
		Tokens: p.Tokens,
		Mail:   p.Mail,
		Authz:  p.Authz,
		Logger: p.Logger,
	})
}

func ProvideVeterinarianService(db *repo.DB, acc access.Service, authz authorize.IAuthorization, logger *slog.Logger) veterinarian.Service {
	return veterinarian.New(db, acc, authz, logger)
}

func ProvideHospitalService(cfg *config.Config, db *repo.DB, authz authorize.IAuthorization, store media.Store, logger *slog.Logger) hospital.Service {
	return hospital.New(hospital.Deps{
		DB:          db,
		Authz:       authz,
		Store:       store,
		MaxImageDim: cfg.Media.MaxImageDimension,
		Logger:      logger,
	})
}

func ProvideHorseService(cfg *config.Config, db *repo.DB, acc access.Service, store media.Store, logger *slog.Logger) horse.Service {
	return horse.New(horse.Deps{
		DB:          db,
		Access:      acc,
		Store:       store,
		MaxImageDim: cfg.Media.MaxImageDimension,
		Logger:      logger,
	})
}

func ProvideClientService(db *repo.DB, acc access.Service) client.Service {
	return client.New(db, acc)
}

func ProvideAppointmentService(db *repo.DB, acc access.Service, store media.Store, conv *pdfconv.Converter, logger *slog.Logger) appointment.Service {
	return appointment.New(appointment.Deps{
		DB:        db,
		Access:    acc,
		Store:     store,
		Converter: conv,
		Logger:    logger,
	})
}

func ProvideMeasureService(cfg *config.Config, db *repo.DB, acc access.Service, store media.Store, est *predict.Estimator, logger *slog.Logger) measure.Service {
	return measure.New(measure.Deps{
		DB:          db,
		Access:      acc,
		Store:       store,
		Estimator:   est,
		MaxImageDim: cfg.Media.MaxImageDimension,
		Logger:      logger,
	})
}

func ProvideXRayService(acc access.Service, store media.Store, logger *slog.Logger) xray.Service {
	return xray.New(acc, store, logger)
}

func ProvideHealthService(db *repo.DB, rdb *redis.Client, pc *predict.Client, logger *slog.Logger) health.Service {
	return health.New(health.Probes{
		Database: db.Ping,
		Predict:  pc.Health,
		Redis: func(ctx context.Context) error {
			return redispkg.Probe(ctx, rdb)
		},
	}, logger)
}
