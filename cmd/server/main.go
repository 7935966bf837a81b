package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scolaria/class_admin/internal/app"
	"github.com/scolaria/class_admin/internal/config"
	"github.com/scolaria/class_admin/internal/controller"
	"github.com/scolaria/class_admin/internal/repository"
	"github.com/scolaria/class_admin/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment, "class-admin")
	defer logger.Sync()

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Sugar().Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath)
	if err != nil {
		logger.Sugar().Fatalf("Failed to create migrator: %v", err)
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Sugar().Fatalf("Failed to apply migrations: %v", err)
	}
	migrator.Close()

	classRepo := repository.NewClassRepository(pool)
	rightsRepo := repository.NewPublicationRightRepository(pool)
	requestRepo := repository.NewAccessRequestRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	classService := service.NewClassService(classRepo, rightsRepo, userRepo, logger)
	rightsService := service.NewRightsService(rightsRepo, classRepo, userRepo, logger)
	requestService := service.NewAccessRequestService(requestRepo, classRepo, logger)

	handler := controller.NewHandler(classService, rightsService, requestService, logger)

	engine := gin.New()
	engine.Use(gin.Recovery())
	controller.RegisterRoutes(engine, handler, cfg.JWTSecret)

	server := app.NewServer(cfg.HTTPAddr, cfg.Environment, engine, logger)
	if err := server.Run(); err != nil {
		logger.Sugar().Fatalf("Server stopped with error: %v", err)
	}
}
