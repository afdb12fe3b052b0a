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

	"golang.org/x/sync/errgroup"

	"instagram-relay/domain/repository"
	"instagram-relay/infrastructure/cache"
	downstreamclient "instagram-relay/infrastructure/clients/downstream"
	instagramclient "instagram-relay/infrastructure/clients/instagram"
	"instagram-relay/infrastructure/configuration"
	"instagram-relay/infrastructure/logger"
	"instagram-relay/infrastructure/persistence"
	"instagram-relay/infrastructure/signature"
	"instagram-relay/infrastructure/state"
	"instagram-relay/infrastructure/worker"
	httpHandler "instagram-relay/interfaces/http"
	"instagram-relay/server"
	"instagram-relay/usecase"
)

const (
	webhookQueueSize = 256
	webhookWorkers   = 4
)

var httpServer *http.Server

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	defer recoverPanic()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	g, ctx := errgroup.WithContext(ctx)

	// Load env from files (non-destructive; OS env still has precedence)
	configuration.LoadEnvFromFile("config.env", ".env")
	configuration.Reload()

	if err := configuration.Validate(&configuration.C); err != nil {
		logger.GetLogger().WithField("error", err).Error("Configuration invalid")
		os.Exit(1)
	}
	conf := configuration.C

	codec, err := state.NewCodec([]byte(conf.Instagram.StateSecret))
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("State codec initialization failed")
		os.Exit(1)
	}

	igClient := instagramclient.NewClient(instagramclient.Config{
		AppID:        conf.Instagram.AppID,
		AppSecret:    conf.Instagram.AppSecret,
		RedirectURI:  conf.Instagram.RedirectURI,
		AuthBaseURL:  conf.Instagram.AuthBaseURL,
		TokenBaseURL: conf.Instagram.TokenBaseURL,
		GraphBaseURL: conf.Instagram.GraphBaseURL,
	}, nil)

	// Replay-guard store: Redis when configured, otherwise in-memory.
	var nonceStore repository.INonceStore
	if conf.RedisClient.Host != "" {
		redisClient, err := cache.NewCache(
			ctx,
			fmt.Sprintf("%s:%s", conf.RedisClient.Host, conf.RedisClient.Port),
			conf.RedisClient.Username,
			conf.RedisClient.Password,
		)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Redis not available, using in-memory nonce store")
			nonceStore = cache.NewMemoryNonceStore()
		} else {
			logger.GetLogger().Info("Redis client initialized successfully.")
			nonceStore = cache.NewRedisNonceStore(redisClient)
		}
	} else {
		nonceStore = cache.NewMemoryNonceStore()
	}

	// Publish audit log is optional; the workflow runs without it.
	var publishLog repository.IPublishLog
	if conf.Database.Psql.Host != "" {
		psqlDb, err := persistence.NewPostgreSQLDB()
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("PostgreSQL not available, publish audit log disabled")
		} else {
			if err := persistence.EnsurePublishLogSchema(psqlDb); err != nil {
				logger.GetLogger().WithField("error", err).Error("failed ensuring publish log schema")
			}
			publishLog = persistence.NewPublishLogRepository(psqlDb)
		}
	}

	verifier := signature.NewVerifier(conf.Instagram.AppSecret)
	forwarder := downstreamclient.NewForwarder(conf.Downstream.BaseURL, conf.Downstream.APIKey, nil)
	pool := worker.NewPool(webhookQueueSize)
	g.Go(func() error {
		err := pool.Run(ctx, webhookWorkers)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	authUsecase := usecase.NewAuthUsecase(igClient, codec, nonceStore)
	publishUsecase := usecase.NewPublishUsecase(igClient, publishLog)
	webhookUsecase := usecase.NewWebhookUsecase(verifier, forwarder, pool, conf.Instagram.VerifyToken)

	authHandler := httpHandler.NewAuthHandler(authUsecase, conf.Downstream.DefaultCallbackURL)
	webhookHandler := httpHandler.NewWebhookHandler(webhookUsecase)
	publishHandler := httpHandler.NewPublishHandler(publishUsecase, authUsecase)
	systemHandler := httpHandler.NewSystemHandler(webhookUsecase, publishLog)

	router := server.InitiateRouter(authHandler, webhookHandler, publishHandler, systemHandler)

	port := conf.App.Port
	logger.GetLogger().WithField("port", port).Info("Starting application")
	g.Go(func() error {
		httpServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
		}
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	select {
	case <-interrupt:
		logger.GetLogger().Info("Application shutdown requested")
	case <-ctx.Done():
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if httpServer != nil {
		_ = httpServer.Shutdown(shutdownCtx)
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		os.Exit(2)
	}
}
