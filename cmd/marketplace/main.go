package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"marketplace/internal/config"
	"marketplace/internal/events"
	"marketplace/internal/http/handlers"
	applog "marketplace/internal/log"
	"marketplace/internal/repos"
	"marketplace/internal/storage"
)

func main() {
	app := &cli.App{
		Name:   "marketplace",
		Usage:  "marketplace back office API",
		Action: serve,
		Commands: []*cli.Command{
			{Name: "serve", Usage: "run the HTTP API and the image reaper", Action: serve},
			{Name: "migrate", Usage: "apply database migrations and exit", Action: migrate},
			{Name: "reap", Usage: "drain the image deletion outbox once", Action: reap},
		},
	}
	if err := app.Run(os.Args); err != nil {
		applog.Base().WithError(err).Fatal("marketplace.exit")
	}
}

func load() (config.Config, error) {
	cfg, err := config.Load(applog.Base())
	if err != nil {
		return cfg, errors.Wrap(err, "load config")
	}
	applog.Setup(cfg.LogLevel, cfg.LogFile)
	return cfg, nil
}

func objectStore(ctx context.Context, cfg config.Config) (storage.ObjectStore, error) {
	if cfg.ImagesBucket == "" {
		applog.Base().Warn("no images bucket configured, uploads disabled")
		return storage.NopStore{}, nil
	}
	return storage.NewS3Store(ctx, storage.S3Config{
		Region:          cfg.AWSRegion,
		ImagesBucket:    cfg.ImagesBucket,
		DocumentsBucket: cfg.DocumentsBucket,
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretKey,
		CDNBaseURL:      cfg.CDNBaseURL,
	})
}

func publisher(cfg config.Config) (events.Publisher, func()) {
	if cfg.RabbitMQURL == "" {
		return events.LogPublisher{}, func() {}
	}
	p, err := events.NewAMQPPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
	if err != nil {
		applog.Base().WithError(err).Warn("rabbitmq unavailable, events go to the log")
		return events.LogPublisher{}, func() {}
	}
	return p, func() { _ = p.Close() }
}

func wire(ctx context.Context, cfg config.Config, seed bool) (*handlers.Deps, func(), error) {
	db, err := repos.OpenDB(cfg.DBDSN, seed)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open db")
	}
	store, err := objectStore(ctx, cfg)
	if err != nil {
		db.Close()
		return nil, nil, errors.Wrap(err, "object store")
	}
	pub, closePub := publisher(cfg)
	deps, err := handlers.NewDeps(db, cfg, store, pub)
	if err != nil {
		closePub()
		db.Close()
		return nil, nil, err
	}
	return deps, func() { closePub(); db.Close() }, nil
}

func serve(c *cli.Context) error {
	cfg, err := load()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, cleanup, err := wire(ctx, cfg, cfg.Seed)
	if err != nil {
		return err
	}
	defer cleanup()

	app := handlers.NewApp(cfg, deps)
	go deps.Reaper.Run(ctx)

	errc := make(chan error, 1)
	go func() { errc <- app.Listen(":" + cfg.Port) }()
	applog.Base().WithField("port", cfg.Port).Info("server.started")

	select {
	case err := <-errc:
		return errors.Wrap(err, "listen")
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	applog.Base().Info("server.stopped")
	return nil
}

func migrate(*cli.Context) error {
	cfg, err := load()
	if err != nil {
		return err
	}
	db, err := repos.OpenDB(cfg.DBDSN, false)
	if err != nil {
		return errors.Wrap(err, "migrate")
	}
	defer db.Close()
	applog.Base().WithField("db_dsn", cfg.DBDSN).Info("migrate.done")
	return nil
}

func reap(c *cli.Context) error {
	cfg, err := load()
	if err != nil {
		return err
	}
	deps, cleanup, err := wire(c.Context, cfg, false)
	if err != nil {
		return err
	}
	defer cleanup()
	res, err := deps.Reaper.Drain(c.Context)
	if err != nil {
		return errors.Wrap(err, "drain")
	}
	applog.Base().WithFields(logrus.Fields{
		"deleted": res.Deleted, "skipped": res.Skipped, "failed": res.Failed,
	}).Info("reap.done")
	return nil
}
