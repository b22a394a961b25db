package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dias221467/Activity_Notifier/internal/config"
	"github.com/Dias221467/Activity_Notifier/internal/database"
	"github.com/Dias221467/Activity_Notifier/internal/gateway"
	"github.com/Dias221467/Activity_Notifier/internal/handlers"
	"github.com/Dias221467/Activity_Notifier/internal/metrics"
	"github.com/Dias221467/Activity_Notifier/internal/realtime"
	"github.com/Dias221467/Activity_Notifier/internal/registry"
	"github.com/Dias221467/Activity_Notifier/internal/repository"
	"github.com/Dias221467/Activity_Notifier/internal/scheduler"
	"github.com/Dias221467/Activity_Notifier/internal/services"
	"github.com/Dias221467/Activity_Notifier/pkg/email"
	"github.com/Dias221467/Activity_Notifier/pkg/httpclient"
	"github.com/Dias221467/Activity_Notifier/pkg/logger"
	"github.com/Dias221467/Activity_Notifier/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

const (
	heartbeatInterval = 30 * time.Second
	presenceTTL       = time.Hour
	purgeSchedule     = "@hourly"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger(cfg.LogLevel)
	logger.Log.Info("Logger initialized")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.ConnectDB(cfg)
	if err != nil {
		logger.Log.Fatalf("Database connection error: %v", err)
	}

	types, err := loadRegistry(cfg.ActivityConfigPath)
	if err != nil {
		logger.Log.Fatalf("Activity type registry error: %v", err)
	}

	// --- Repositories ---
	activityRepo := repository.NewActivityRepository(db)
	watcherRepo := repository.NewWatcherRepository(db)
	notificationRepo := repository.NewNotificationRepository(db, cfg.NotificationTTL)
	preferenceRepo := repository.NewPreferenceRepository(db)
	merchTeamRepo := repository.NewMerchTeamRepository(db)

	// --- Gateways ---
	resources := gateway.NewResourceGateway(httpclient.New(cfg.ResourceBaseURL, cfg.GatewayTimeout))
	directory := gateway.NewAuthGateway(httpclient.New(cfg.AuthBaseURL, cfg.GatewayTimeout))

	// --- Realtime ---
	var (
		presence realtime.Presence
		relay    realtime.Relay
	)
	if cfg.RedisAddr != "" {
		rdb, err := realtime.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			logger.Log.WithError(err).Warn("Redis unavailable, rooms stay local to this instance")
		} else {
			defer rdb.Close()
			presence = realtime.NewRedisPresence(rdb, presenceTTL)
			relay = realtime.NewRedisRelay(rdb)
		}
	}
	hub := realtime.NewHub(presence, relay)
	go hub.Heartbeat(ctx, heartbeatInterval)
	go func() {
		if err := hub.Listen(ctx); err != nil {
			logger.Log.WithError(err).Error("Event relay stopped")
		}
	}()

	// --- Services ---
	emailService := services.NewEmailService(
		email.NewRenderer(cfg.EmailTemplateDir),
		email.NewSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPSender, cfg.SMTPPassword),
	)
	dispatcher := services.NewDispatcher(hub, emailService, cfg.IsMailOn, cfg.BaseURL)
	activityService := services.NewActivityService(services.ActivityServiceDeps{
		Activities:    activityRepo,
		Watchers:      watcherRepo,
		Notifications: notificationRepo,
		Preferences:   preferenceRepo,
		Resources:     resources,
		Directory:     directory,
		Registry:      types,
		Dispatcher:    dispatcher,
		Concurrency:   cfg.FanOutConcurrency,
		Timeout:       cfg.FanOutTimeout,
	})
	preferenceService := services.NewPreferenceService(preferenceRepo, merchTeamRepo)
	notificationService := services.NewNotificationService(notificationRepo)

	// --- Handlers ---
	activityHandler := handlers.NewActivityHandler(activityService, activityRepo)
	preferenceHandler := handlers.NewPreferenceHandler(preferenceService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	wsHandler := handlers.NewWSHandler(hub, cfg.JWTSecret)

	router := mux.NewRouter()
	router.Handle("/metrics", metrics.Handler()).Methods("GET")
	router.HandleFunc("/ws", wsHandler.WebSocketHandler).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	api.HandleFunc("/activity", activityHandler.SaveActivityHandler).Methods("POST")
	api.HandleFunc("/activity/{resourceName}/{resourceId}", activityHandler.GetResourceActivitiesHandler).Methods("GET")
	api.HandleFunc("/notification/preference/save", preferenceHandler.SavePreferenceHandler).Methods("POST")
	api.HandleFunc("/notification/preference/read/{userId}", preferenceHandler.GetPreferenceHandler).Methods("GET")
	api.HandleFunc("/notifications", notificationHandler.GetUserNotificationsHandler).Methods("GET")
	api.HandleFunc("/notifications/{id}/read", notificationHandler.MarkAsReadHandler).Methods("POST")
	api.HandleFunc("/notifications/{id}", notificationHandler.DeleteNotificationHandler).Methods("DELETE")

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.BaseURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	cronJobs, err := scheduler.StartNotificationCronJobs(notificationService, purgeSchedule)
	if err != nil {
		logger.Log.Fatalf("Failed to schedule housekeeping: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Infof("Server running on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Warn("HTTP server shutdown")
	}
	<-cronJobs.Stop().Done()
	dispatcher.Wait()
	if err := db.Client().Disconnect(shutdownCtx); err != nil {
		logger.Log.WithError(err).Warn("Mongo disconnect")
	}
}

// loadRegistry reads the override file when one is configured and falls back
// to the embedded activity types otherwise.
func loadRegistry(path string) (*registry.Registry, error) {
	if path == "" {
		return registry.Default()
	}
	logger.Log.WithField("path", path).Info("Loading activity types")
	return registry.Load(path)
}
