package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"speedrun_backend/internal/adapters/storage"
	"speedrun_backend/internal/archive"
	"speedrun_backend/internal/contacts"
	"speedrun_backend/internal/email"
	"speedrun_backend/internal/events"
	"speedrun_backend/internal/exports"
	apphttp "speedrun_backend/internal/http"
	"speedrun_backend/internal/http/router"
	"speedrun_backend/internal/scheduler"
	"speedrun_backend/internal/speedrun"
	"speedrun_backend/migrations"
	"speedrun_backend/platform/config"
	"speedrun_backend/platform/db"
	"speedrun_backend/platform/logger"
	"speedrun_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Environment)
	log.Info("starting server", "env", cfg.Environment, "port", cfg.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Infrastructure.

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.Migrate(cfg.DatabaseURL, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	redisOpt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Error("invalid redis url", "error", err)
		panic("invalid redis url: " + err.Error())
	}
	redisClient := redis.NewClient(redisOpt)
	defer redisClient.Close()

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	// Domain modules.

	contactsModule := contacts.NewModule(pool, eventBus, val, cfg.DefaultTimezone)

	speedrunModule, err := speedrun.NewModule(pool, redisClient, eventBus, val, cfg, log, contactsModule.Repo())
	if err != nil {
		log.Error("failed to initialize speedrun module", "error", err)
		panic("failed to initialize speedrun module: " + err.Error())
	}

	exportsModule := exports.NewModule(speedrunModule.Tracker())

	// Daily digest mail is optional; without SMTP settings the target events
	// are simply not consumed.
	if cfg.SMTPHost != "" {
		sender := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername,
			cfg.SMTPPassword, cfg.EmailFrom, cfg.EmailFromName)
		email.NewNotifier(sender, speedrunModule.Service(), speedrunModule.Service(), log).Subscribe(eventBus)
		log.Info("daily digest mailer enabled", "host", cfg.SMTPHost)
	} else {
		log.Warn("SMTP_HOST not configured; daily digest disabled")
	}

	// Ledger archiving is optional; without MinIO the archive job is a no-op.
	var archiver *archive.Archiver
	if objectStore, err := storage.NewMinIOStore(cfg); err != nil {
		log.Warn("object storage not configured; ledger archiving disabled", "reason", err)
	} else {
		if err := withRetry(ctx, log, "ensure archive bucket", 5, 2*time.Second, func() error {
			return objectStore.EnsureBucketExists(ctx, cfg.MinIOBucket)
		}); err != nil {
			log.Error("failed to ensure archive bucket", "error", err, "bucket", cfg.MinIOBucket)
			panic("failed to ensure archive bucket: " + err.Error())
		}
		archiver = archive.New(speedrunModule.Tracker(), objectStore, cfg.MinIOBucket, log)
		log.Info("ledger archiving enabled", "bucket", cfg.MinIOBucket)
	}

	schedulerClient, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		panic("failed to initialize scheduler client: " + err.Error())
	}
	defer schedulerClient.Close()
	scheduler.NewSubscriber(schedulerClient, cfg.RetentionDays, log).Subscribe(eventBus)

	worker, err := scheduler.NewWorker(cfg, archiver, speedrunModule.Store(), log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	// HTTP layer.

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   speedrunModule.Store(),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			contactsModule,
			speedrunModule,
			exportsModule,
		},
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.New(app),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		worker.Run(gctx)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		panic("server error: " + err.Error())
	}
	log.Info("server stopped")
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
