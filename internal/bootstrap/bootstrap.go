package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appAuth "github.com/denokazs/thku-sub000/internal/app/auth"
	appControllers "github.com/denokazs/thku-sub000/internal/app/controllers"
	appMigrations "github.com/denokazs/thku-sub000/internal/app/migrations"
	appRepos "github.com/denokazs/thku-sub000/internal/app/repositories"
	"github.com/denokazs/thku-sub000/internal/app/repositories/cache"
	"github.com/denokazs/thku-sub000/internal/app/repositories/memstore"
	appRoutes "github.com/denokazs/thku-sub000/internal/app/routes"
	appServices "github.com/denokazs/thku-sub000/internal/app/services"
	"github.com/denokazs/thku-sub000/internal/config"
	"github.com/denokazs/thku-sub000/internal/db"
	appMiddleware "github.com/denokazs/thku-sub000/internal/middleware"
	pkgAuth "github.com/denokazs/thku-sub000/internal/pkg/auth"
	"github.com/denokazs/thku-sub000/internal/pkg/events"
	"github.com/denokazs/thku-sub000/internal/pkg/helpers"
	"github.com/denokazs/thku-sub000/internal/pkg/logger"
	"github.com/denokazs/thku-sub000/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Database     *db.PostgresDB // nil with the memory driver
	Cache        *cache.RedisStore
	Repos        *appRepos.Repositories
	Services     *appServices.Services
	Publisher    events.Publisher
	JWTService   *pkgAuth.JWTService
	AuthzService *appAuth.AuthorizationService

	AuthMiddleware *appMiddleware.AuthMiddleware
	Controllers    appRoutes.Controllers
	Logger         zerolog.Logger
}

// Close releases the publisher, the cache client and the database pool
func (d *Dependencies) Close() error {
	var err error
	if d.Publisher != nil {
		err = d.Publisher.Close()
	}
	if d.Cache != nil {
		err = errors.Join(err, d.Cache.Close())
	}
	if d.Database != nil {
		d.Database.Close()
	}
	return err
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	if err := config.LoadDotEnv(config.GetEnv("ENV_FILE", ".env")); err != nil {
		logger.Error().Err(err).Msg("Failed to load env file")
		return nil, zerolog.Logger{}, err
	}

	configPath := config.GetEnv("CONFIG_PATH", filepath.Join("configs", "config.yaml"))
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Close()
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool, lgr)
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		database.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return database, nil
}

// SetupPublisher picks the Kafka publisher when enabled and the log publisher
// otherwise
func SetupPublisher(cfg *config.Config, lgr zerolog.Logger) (events.Publisher, error) {
	if !cfg.Kafka.Enabled {
		lgr.Info().Msg("Kafka disabled, domain events are logged only")
		return events.NewLogPublisher(lgr), nil
	}

	publisher, err := events.NewKafkaPublisher(events.KafkaConfig{
		Brokers: cfg.KafkaBrokers(),
		Topic:   cfg.Kafka.Topic,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}
	lgr.Info().Strs("brokers", cfg.KafkaBrokers()).Str("topic", cfg.Kafka.Topic).Msg("Kafka publisher configured")
	return publisher, nil
}

// BuildDependencies initializes storage, services, and controllers.
func BuildDependencies(cfg *config.Config, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	var pinger appControllers.Pinger
	switch cfg.Database.Driver {
	case config.DriverMemory:
		lgr.Warn().Msg("Using the in-memory store; data is lost on restart")
		deps.Repos = memstore.New().Repositories()
	default:
		database, err := SetupDatabase(cfg, lgr)
		if err != nil {
			return nil, err
		}
		deps.Database = database
		deps.Repos = appRepos.NewRepositories(database)
		pinger = database
	}

	if cfg.Redis.Enabled {
		store, err := cache.NewRedisStore(context.Background(), cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		deps.Cache = store
		ttl := helpers.ParseDuration(cfg.Redis.ClubTTL, 10*time.Minute)
		deps.Repos.ClubRepository = cache.NewClubRepository(deps.Repos.ClubRepository, store, ttl, lgr)
		lgr.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", ttl).Msg("Club lookups cached in redis")
	}

	if cfg.Seed.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := seed.CreateDefaultData(ctx, deps.Repos.ClubRepository, lgr); err != nil {
			lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
		}
		cancel()
	}

	publisher, err := SetupPublisher(cfg, lgr)
	if err != nil {
		deps.Close()
		return nil, err
	}
	deps.Publisher = publisher

	deps.AuthzService = appAuth.NewAuthorizationService()
	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:   cfg.JWT.Secret,
		TokenIssuer: cfg.JWT.Issuer,
	})
	deps.Services = appServices.NewServices(deps.Repos, deps.AuthzService, deps.Publisher, lgr)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)
	deps.Controllers = appRoutes.Controllers{
		Club:       appControllers.NewClubController(deps.Services.ClubService),
		Membership: appControllers.NewMembershipController(deps.Services.MembershipService),
		Event:      appControllers.NewEventController(deps.Services.EventService),
		Message:    appControllers.NewMessageController(deps.Services.MessageService),
		Health:     appControllers.NewHealthController(cfg.Database.Driver, pinger),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		appMiddleware.RequestIDMiddleware(),
		appMiddleware.LoggerMiddleware(lgr),
	)

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	return router
}
