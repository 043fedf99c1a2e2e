package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskdesk/taskdesk/broker"
	"taskdesk/taskdesk/config"
	"taskdesk/taskdesk/database"
	applog "taskdesk/taskdesk/logger"
	"taskdesk/taskdesk/middleware"
	"taskdesk/taskdesk/routes"
	"taskdesk/taskdesk/services"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	log := applog.Init(applog.Options{
		Level:  cfg.LogLevel,
		Pretty: !cfg.IsProduction(),
	})

	db, err := database.Setup(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer db.Close()

	checks := map[string]routes.Check{
		"database": db.Ping,
	}

	// Sessions live in Redis when configured, otherwise in the database.
	var sessionStore services.SessionStore = services.NewDatabaseSessionStore(db)
	if cfg.Redis.Addr != "" {
		rdb, err := services.ConnectRedis(context.Background(), cfg.Redis.Addr, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("failed to connect to redis")
		}
		defer rdb.Close()
		sessionStore = services.NewRedisSessionStore(rdb)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		log.Info().Str("addr", cfg.Redis.Addr).Msg("using redis session store")
	}

	webSocketService := services.NewWebSocketService()
	defer webSocketService.Stop()

	// Events go through NATS when it is reachable, otherwise straight to the local hub.
	var producer broker.Producer
	if cfg.NATS.URL != "" {
		conn, err := broker.Connect(cfg.NATS.URL)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to nats, events will only reach local websocket clients")
		} else {
			natsProducer := broker.NewNatsProducer(conn)
			defer natsProducer.Close()
			producer = natsProducer
		}
	}
	eventService := services.NewEventService(producer, webSocketService)
	if natsProducer, ok := producer.(*broker.NatsProducer); ok {
		consumer, err := broker.StartConsumer(natsProducer.Conn(), broker.Topics(), eventService.HandleBrokerMessage)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to start nats consumer")
		}
		defer consumer.Close()
	}

	credentialService := services.NewCredentialService(db, cfg.BcryptCost, eventService)
	sessionService := services.NewSessionService(sessionStore, cfg.Session.Secret, cfg.Session.TTL)
	taskService := services.NewTaskService(db, eventService)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	router.Use(middleware.SessionMiddleware(sessionService, cfg.Session.CookieName))

	routes.RegisterHealthRoutes(router, checks)
	routes.RegisterAuthRoutes(router, credentialService, sessionService, routes.CookieSettings{
		Name:   cfg.Session.CookieName,
		Secure: cfg.IsProduction(),
	})
	routes.RegisterTaskRoutes(router, taskService, credentialService)
	routes.RegisterWebSocketRoutes(router, webSocketService)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.AppPort).Msg("API server is running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
}
