// Command api runs the school management HTTP API.
//
// @title                       Gestion Escolar API
// @version                     1.0
// @description                 School management API: identity bootstrap, capabilities, school records and reports.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	_ "github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/docs"
	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/api"
	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/service"
	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/infrastructure/db/mongo"
	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/infrastructure/db/postgres"
	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/infrastructure/db/redis"
	httpserver "github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/infrastructure/http"
	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/infrastructure/http/handlers"
	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/infrastructure/identity"
	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/infrastructure/queue"
	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/pkg/config"
	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "gestion-escolar-api",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("api stopped with error")
	}
	log.Info().Msg("api stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Stores ---
	db, err := postgres.Connect(ctx, postgres.Config{
		DSN:          cfg.Postgres.DSN,
		MaxOpenConns: cfg.Postgres.MaxOpenConns,
		MaxIdleConns: cfg.Postgres.MaxIdleConns,
	})
	if err != nil {
		return err
	}
	if cfg.Postgres.AutoMigrate {
		if err := postgres.Migrate(db); err != nil {
			return err
		}
	}

	mongoClient, auditDB, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()
	if err := mongo.EnsureIndexes(ctx, auditDB); err != nil {
		return err
	}

	rdb, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	verifier, err := identity.New(ctx, cfg.Auth)
	if err != nil {
		return err
	}

	// --- Repositories ---
	users := postgres.NewUserRepository(db)
	institutions := postgres.NewInstitutionRepository(db)
	courses := postgres.NewCourseRepository(db)
	students := postgres.NewStudentRepository(db)
	subjects := postgres.NewSubjectRepository(db)
	grades := postgres.NewGradeRepository(db)

	// --- Services ---
	identitySvc := service.NewIdentityService(users, cfg.Bootstrap.DefaultRole, logger.Component("identity"))
	schoolLog := logger.Component("school")
	lifecycle := service.NewLifecycleService(
		users,
		mongo.NewIdentityEventRepository(auditDB),
		redis.NewDedupChecker(rdb, 0),
		logger.Component("lifecycle"),
	)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.Webhook.Workers, lifecycle, logger.Component("dispatcher"))
	dispatcher.Start(workerCtx)
	defer func() {
		drainCtx, cancel := context.WithTimeout(context.Background(), cfg.Webhook.DrainTimeout)
		defer cancel()
		if err := dispatcher.Shutdown(drainCtx); err != nil {
			log.Warn().Err(err).Msg("identity event drain incomplete")
		}
		cancelWorkers()
		dispatcher.Wait()
	}()

	e := api.NewRouter(api.Dependencies{
		Log:           log,
		Verifier:      verifier,
		Identity:      identitySvc,
		Institutions:  service.NewInstitutionService(institutions, schoolLog),
		Courses:       service.NewCourseService(courses, institutions, schoolLog),
		Students:      service.NewStudentService(students, courses, schoolLog),
		Subjects:      service.NewSubjectService(subjects, schoolLog),
		Grades:        service.NewGradeService(grades, students, subjects, schoolLog),
		Reports:       service.NewReportService(postgres.NewReportRepository(db), schoolLog),
		Dispatcher:    dispatcher,
		WebhookSecret: cfg.Webhook.Secret,
		HealthChecks: map[string]handlers.Check{
			"postgres": func(ctx context.Context) error { return postgres.Ping(ctx, db) },
			"mongodb":  func(ctx context.Context) error { return mongo.Ping(ctx, mongoClient) },
			"redis":    func(ctx context.Context) error { return redis.Ping(ctx, rdb, 0) },
		},
	})

	return httpserver.Serve(ctx, e, ":"+cfg.Port, log)
}
