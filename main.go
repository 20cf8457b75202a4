package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CUknot/studymatch_backend/config"
	"github.com/CUknot/studymatch_backend/controllers"
	"github.com/CUknot/studymatch_backend/database"
	"github.com/CUknot/studymatch_backend/docs"
	"github.com/CUknot/studymatch_backend/middleware"
	"github.com/CUknot/studymatch_backend/registry"
	"github.com/CUknot/studymatch_backend/repository"
	"github.com/CUknot/studymatch_backend/services"
	"github.com/CUknot/studymatch_backend/websocket"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// @title           StudyMatch API
// @version         1.0
// @description     API Server for the StudyMatch study-room matching service
// @host            localhost:8080
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using system environment variables")
	}
	cfg := config.Load()
	setupLogging(cfg)

	store, err := openStore(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to open store")
	}

	reg := registry.New()
	hub := websocket.NewHub(reg)
	go hub.Run()

	authService := services.NewAuthService(store.Users, cfg.JWTSecret, cfg.JWTExpiry)
	userService := services.NewUserService(store.Users, store.History, hub)
	roomService := services.NewRoomService(store, reg, hub, cfg.MeetBaseURL)
	notificationService := services.NewNotificationService(store, roomService, hub)
	taskService := services.NewTaskService(store.Tasks)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = roomService.LoadRegistry(ctx)
	cancel()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load room registry")
	}

	// Set up Swagger info
	docs.SwaggerInfo.Host = "localhost:" + cfg.Port

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := controllers.NewRouter(controllers.Router{
		Auth:         controllers.NewAuthController(authService),
		User:         controllers.NewUserController(userService),
		Room:         controllers.NewRoomController(roomService),
		Notification: controllers.NewNotificationController(notificationService),
		Todo:         controllers.NewTodoController(taskService),
		Tokens:       authService,
		AuthLimiter:  authLimiter(cfg),
		Websocket:    websocket.NewHandler(hub, authService, userService, roomService, notificationService, cfg.CORSOrigins).HandleConnection,
		AllowOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logrus.Infof("Server running on port %s", cfg.Port)
		logrus.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutdown signal received, shutting down server gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Server forced to shutdown")
	}
	logrus.Info("Server exiting")
}

func setupLogging(cfg *config.Config) {
	if cfg.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.WithField("level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

func openStore(cfg *config.Config) (*repository.Store, error) {
	if cfg.Store == config.StoreMemory {
		logrus.Warn("Using in-memory store; data is lost on restart")
		return repository.NewMemoryStore(), nil
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	return repository.NewGormStore(db), nil
}

// authLimiter rate limits the auth endpoints when Redis is configured.
func authLimiter(cfg *config.Config) gin.HandlerFunc {
	if cfg.RedisAddr == "" || cfg.AuthRateLimit <= 0 || cfg.AuthRateWindow <= 0 {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logrus.WithError(err).Warn("Redis unreachable, auth rate limiting will let requests through until it recovers")
	}
	return middleware.RateLimit(rdb, "auth", cfg.AuthRateLimit, cfg.AuthRateWindow)
}
