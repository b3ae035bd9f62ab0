package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"collabedit/internal/auth"
	"collabedit/internal/config"
	"collabedit/internal/handlers"
	"collabedit/internal/models"
	"collabedit/internal/repositories"
	mongorepo "collabedit/internal/repositories/mongo"
	"collabedit/internal/routers"
	"collabedit/internal/session"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg := config.Load()
	ctx := context.Background()

	mongoClient, err := mongorepo.NewClient(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Fatal("mongo connect failed", zap.Error(err))
	}
	roomRepo, err := mongorepo.NewRoomRepo(mongoClient)
	if err != nil {
		logger.Fatal("room repository init failed", zap.Error(err))
	}
	messageRepo, err := mongorepo.NewMessageRepo(mongoClient)
	if err != nil {
		logger.Fatal("message repository init failed", zap.Error(err))
	}
	snippetRepo, err := mongorepo.NewSnippetRepo(mongoClient)
	if err != nil {
		logger.Fatal("snippet repository init failed", zap.Error(err))
	}

	if cfg.PostgresDSN == "" {
		logger.Fatal("POSTGRES_DSN is required")
	}
	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("postgres connect failed", zap.Error(err))
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		logger.Fatal("postgres migrate failed", zap.Error(err))
	}

	jwt := auth.NewJWT(cfg.JWTSecret, cfg.JWTTTL)
	userRepo := repositories.NewUserRepository(db)

	coordinator := session.NewCoordinator(logger, roomRepo, messageRepo, jwt)

	var fabric *session.RedisFabric
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		fabric = session.NewRedisFabric(rdb, uuid.New().String(), logger)
		coordinator.SetFabric(fabric)
		go fabric.Run(ctx, coordinator)
	}

	router := routers.New(routers.Deps{
		JWT:        jwt,
		Auth:       handlers.NewAuthHandler(userRepo, jwt),
		Rooms:      handlers.NewRoomHandler(logger, roomRepo),
		Snippets:   handlers.NewSnippetHandler(logger, snippetRepo),
		Executor:   handlers.NewExecutorHandler(logger, cfg.ExecutorURL),
		WS:         handlers.NewWSHandler(logger, coordinator),
		CORSOrigin: cfg.CORSOrigin,
	})

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("collabedit server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("collabedit server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if fabric != nil {
		fabric.Stop()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	if err := mongoClient.Close(shutdownCtx); err != nil {
		logger.Warn("mongo disconnect failed", zap.Error(err))
	}

	logger.Info("collabedit server exited")
}
