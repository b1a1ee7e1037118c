package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/visitor-register/internal/config"
	"github.com/iliyamo/visitor-register/internal/database"
	"github.com/iliyamo/visitor-register/internal/handler"
	"github.com/iliyamo/visitor-register/internal/media"
	"github.com/iliyamo/visitor-register/internal/middleware"
	"github.com/iliyamo/visitor-register/internal/repository"
	"github.com/iliyamo/visitor-register/internal/router"
	"github.com/iliyamo/visitor-register/internal/service"
	"github.com/iliyamo/visitor-register/internal/visitor"
)

func main() {
	_ = godotenv.Load() // .env is optional
	cfg := config.Load()
	logger := config.NewLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(database.Options{
		Driver: cfg.DBDriver,
		User:   cfg.DBUser,
		Pass:   cfg.DBPass,
		Host:   cfg.DBHost,
		Port:   cfg.DBPort,
		Name:   cfg.DBName,
		Path:   cfg.DBPath,
	})
	if err != nil {
		logger.WithError(err).Fatal("open database")
	}
	defer db.Close()
	version, err := database.Migrate(db, cfg.DBDriver)
	if err != nil {
		logger.WithError(err).Fatal("migrate database")
	}
	logger.WithField("version", version).Info("schema up to date")

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		logger.Warn("redis unreachable; rate limiting and response cache disabled")
	} else {
		defer rdb.Close()
	}

	mc := config.LoadMediaConfig()
	store, closeStore, err := newStore(ctx, mc)
	if err != nil {
		logger.WithError(err).Fatal("media store")
	}
	defer closeStore()

	publisher, closePublisher, err := newPublisher(ctx, cfg, mc.GCSCredentials)
	if err != nil {
		logger.WithError(err).Fatal("event publisher")
	}
	defer closePublisher()

	members := repository.NewMemberRepo(db)
	tokens := repository.NewTokenRepo(db)
	workbooks := repository.NewWorkbookRepo(db)
	projector := visitor.NewProjector(mc.BaseURL)

	wbSvc := service.NewWorkbookService(repository.NewWorkbookTypeRepo(db), workbooks, logger)
	visitorSvc := &service.VisitorService{
		Workbooks: workbooks,
		Visitors:  repository.NewVisitorRepo(db),
		Attacher:  media.NewAttacher(store, mc.MaxDim),
		Publisher: publisher,
		Projector: projector,
		Logger:    logger,
	}

	deps := router.Deps{
		DB:        db,
		JWTSecret: cfg.JWTSecret,
		Cache:     middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		Auth:      handler.NewAuthHandler(cfg, members, tokens, logger),
		Workbooks: handler.NewWorkbookHandler(wbSvc, projector, logger),
		Visitors:  handler.NewVisitorHandler(visitorSvc, mc.MaxUploadBytes, logger),
	}
	if mc.Provider != "gcs" {
		deps.MediaRoot = mc.Root
	}
	e := router.New(deps)

	addr := ":" + cfg.Port
	go func() {
		logger.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env, "db": cfg.DBDriver}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server stopped")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("shutdown")
	}
}

func newStore(ctx context.Context, mc config.MediaConfig) (media.Store, func(), error) {
	if mc.Provider == "gcs" {
		s, err := media.NewGCSStore(ctx, mc.GCSBucket, mc.GCSCredentials)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	}
	return media.NewLocalStore(mc.Root), func() {}, nil
}

func newPublisher(ctx context.Context, cfg config.Config, credentialsJSON string) (service.Publisher, func(), error) {
	switch cfg.EventBroker {
	case "rabbitmq":
		return service.NewRabbitPublisher(cfg.RabbitURL), func() {}, nil
	case "pubsub":
		p, err := service.NewPubSubPublisher(ctx, cfg.PubSubProjectID, cfg.PubSubTopic, credentialsJSON)
		if err != nil {
			return nil, nil, err
		}
		return p, func() { _ = p.Close() }, nil
	}
	return service.NopPublisher{}, func() {}, nil
}
