package main

import (
	"context"
	"embed"
	"io/fs"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/fatimahitawala/Transition-Services-sub002/modules"
	transitionoutbox "github.com/fatimahitawala/Transition-Services-sub002/modules/transition/infrastructure/notify"
	outboxdispatcher "github.com/fatimahitawala/Transition-Services-sub002/modules/transition/infrastructure/outbox"
	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/services"
	"github.com/fatimahitawala/Transition-Services-sub002/pkg/application"
	"github.com/fatimahitawala/Transition-Services-sub002/pkg/composables"
	"github.com/fatimahitawala/Transition-Services-sub002/pkg/configuration"
	"github.com/fatimahitawala/Transition-Services-sub002/pkg/eventbus"
	"github.com/fatimahitawala/Transition-Services-sub002/pkg/metrics"
	"github.com/fatimahitawala/Transition-Services-sub002/pkg/middleware"
	"github.com/fatimahitawala/Transition-Services-sub002/pkg/outbox"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	logger := conf.Logger()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	pool, err := pgxpool.New(ctx, conf.Database.ConnectionString())
	cancel()
	if err != nil {
		logger.WithError(err).Fatal("failed to create database pool")
	}
	defer pool.Close()

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
	})
	if err := modules.Load(app, modules.BuiltInModules...); err != nil {
		logger.WithError(err).Fatal("failed to load modules")
	}
	if err := applySchemas(context.Background(), pool, app.Schemas()); err != nil {
		logger.WithError(err).Fatal("failed to apply database schema")
	}

	router := mux.NewRouter()
	if conf.Prometheus.Enabled {
		metrics.NewPrometheusController(conf.Prometheus.Path).Register(router)
	}

	// Tenant resolution only guards application routes; the metrics endpoint
	// stays open for scrapers.
	apiRouter := router.PathPrefix("/").Subrouter()
	apiRouter.Use(
		middleware.ProvideParams(),
		middleware.RequestLogger(logger),
		middleware.ProvideTenant(),
	)
	apiRouter.Use(app.Middleware()...)
	for _, controller := range app.Controllers() {
		controller.Register(apiRouter)
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startNotificationRelay(runCtx, pool, app, conf)

	baseCtx := composables.WithPool(context.Background(), pool)
	srv := &http.Server{
		Addr:         conf.SocketAddress,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return baseCtx },
	}
	go func() {
		logger.WithField("addr", srv.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-runCtx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("server shutdown was not clean")
	}
}

// startNotificationRelay runs the outbox relay and cleaner until the context
// is cancelled. Only one relay instance is active per table across the
// deployment; the others wait on the advisory lock.
func startNotificationRelay(ctx context.Context, pool *pgxpool.Pool, app application.Application, conf *configuration.Configuration) {
	logger := app.Logger()
	if !conf.Outbox.RelayEnabled {
		logger.Info("notification relay disabled")
		return
	}

	transport := transitionoutbox.NewLogTransport(conf.Notification.FromAddress, logger)
	dispatcher := outboxdispatcher.NewEmailDispatcher(transport, logger)

	relay, err := outbox.NewRelay(pool, services.NotificationOutboxTable, dispatcher, outbox.RelayOptions{
		PollInterval:    conf.Outbox.RelayPollInterval,
		BatchSize:       conf.Outbox.RelayBatchSize,
		LockTTL:         conf.Outbox.RelayLockTTL,
		MaxAttempts:     conf.Outbox.RelayMaxAttempts,
		SingleActive:    conf.Outbox.RelaySingleActive,
		DispatchTimeout: conf.Outbox.RelayDispatchTimeout,
		LastErrorMaxLen: conf.Outbox.LastErrorMaxBytes,
		Logger:          logrus.NewEntry(logger),
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to build notification relay")
	}
	go func() {
		if err := relay.Run(ctx); err != nil && ctx.Err() == nil {
			logger.WithError(err).Error("notification relay stopped")
		}
	}()

	if !conf.Outbox.CleanerEnabled {
		return
	}
	cleaner, err := outbox.NewCleaner(pool, services.NotificationOutboxTable, outbox.CleanerOptions{
		Enabled:   true,
		Interval:  conf.Outbox.CleanerInterval,
		Retention: conf.Outbox.CleanerRetention,
		Logger:    logrus.NewEntry(logger),
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to build notification cleaner")
	}
	go func() {
		if err := cleaner.Run(ctx); err != nil && ctx.Err() == nil {
			logger.WithError(err).Error("notification cleaner stopped")
		}
	}()
}

func applySchemas(ctx context.Context, pool *pgxpool.Pool, schemas []*embed.FS) error {
	for _, schema := range schemas {
		err := fs.WalkDir(schema, ".", func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || path.Ext(p) != ".sql" {
				return nil
			}
			contents, err := fs.ReadFile(schema, p)
			if err != nil {
				return err
			}
			_, err = pool.Exec(ctx, string(contents))
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}
