package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/bertostore/db"
	"github.com/monocle-dev/bertostore/internal/auth"
	"github.com/monocle-dev/bertostore/internal/config"
	"github.com/monocle-dev/bertostore/internal/handlers"
	"github.com/monocle-dev/bertostore/internal/router"
	"github.com/monocle-dev/bertostore/internal/scheduler"
	"github.com/monocle-dev/bertostore/internal/services"
	"github.com/monocle-dev/bertostore/internal/store"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func main() {
	app := &cli.App{
		Name:  "bertostore",
		Usage: "storefront and back-office API",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "env-file",
				Usage: "dotenv files to load before reading the environment",
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Action: serve,
			},
			{
				Name:   "seed",
				Usage:  "create the data store, seed the admin user and catalog, and exit",
				Action: seed,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("bertostore exited with an error")
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.StringSlice("env-file")...)

	if err != nil {
		return nil, err
	}

	if err := setupLogging(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setupLogging(cfg *config.Config) error {
	level, err := log.ParseLevel(cfg.LogLevel)

	if err != nil {
		return errors.Wrapf(err, "invalid LOG_LEVEL %q", cfg.LogLevel)
	}

	log.SetLevel(level)

	if strings.EqualFold(cfg.LogFormat, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	return nil
}

func openStore(cfg *config.Config) (store.Store, error) {
	opts := []store.Option{
		store.WithLogger(log.WithField("component", "store")),
		store.WithSeed(store.Seed{
			AdminEmail:    cfg.AdminEmail,
			AdminPassword: cfg.AdminPassword,
			Products:      store.SeedProducts(),
		}),
	}

	if cfg.Driver == config.DriverPostgres {
		database, err := db.ConnectDatabase(cfg.DatabaseURL)

		if err != nil {
			return nil, err
		}

		return store.NewPostgresStore(database, opts...), nil
	}

	return store.NewFileStore(cfg.DataDir, opts...), nil
}

func seed(c *cli.Context) error {
	cfg, err := loadConfig(c)

	if err != nil {
		return err
	}

	st, err := openStore(cfg)

	if err != nil {
		return err
	}

	if err := st.EnsureReady(c.Context); err != nil {
		return err
	}

	log.WithField("driver", cfg.Driver).Info("Store is initialized")

	return nil
}

func serve(c *cli.Context) error {
	cfg, err := loadConfig(c)

	if err != nil {
		return err
	}

	st, err := openStore(cfg)

	if err != nil {
		return err
	}

	if err := st.EnsureReady(c.Context); err != nil {
		return err
	}

	if cfg.InsecureSecret() {
		log.Warn("SESSION_SECRET is not set; sessions are signed with the insecure default secret")
	}

	gin.SetMode(cfg.GinMode)

	notifier := services.NewNotifier(cfg.DiscordWebhookURL, cfg.SlackWebhookURL)
	hub := handlers.NewHub(cfg.AllowedOrigins(), log.WithField("component", "ws"))
	sweeper := scheduler.NewScheduler(st, notifier, cfg.LowStockInterval, cfg.LowStockThreshold, log.WithField("component", "scheduler"))

	h := handlers.New(handlers.Options{
		Store:     st,
		Codec:     auth.NewCodec(cfg.SessionSecret),
		Hub:       hub,
		Notifier:  notifier,
		Scheduler: sweeper,
		Cookie:    handlers.CookieConfig{Domain: cfg.Domain, Secure: cfg.CookieSecure},
		Logger:    log.WithField("component", "api"),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.NewRouter(h, cfg.AllowedOrigins(), log.WithField("component", "http")),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.WithFields(log.Fields{"port": cfg.Port, "driver": cfg.Driver}).Info("Starting server")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "listen")
		}

		return nil
	})

	group.Go(func() error {
		return sweeper.Run(ctx)
	})

	group.Go(func() error {
		<-ctx.Done()
		log.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
