package main

import (
	"context"
	"errors"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-ddd-user-service/config"
	"github.com/oksasatya/go-ddd-user-service/internal/application"
	"github.com/oksasatya/go-ddd-user-service/internal/domain/entity"
	pginfra "github.com/oksasatya/go-ddd-user-service/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-user-service/pkg/helpers"
)

var demoUsers = []application.CreateUserInput{
	{Email: "ada@example.com", Name: "Ada Lovelace"},
	{Email: "grace@example.com", Name: "Grace Hopper"},
	{Email: "linus@example.com", Name: "Linus Torvalds"},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		logger.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		logger.Fatalf("migration failed: %v", err)
	}

	svc := application.NewService(pginfra.NewUserRepository(pool), nil, nil, logger, cfg.AppName)
	for _, in := range demoUsers {
		u, err := svc.CreateUser(ctx, in)
		var conflict *entity.ConflictError
		switch {
		case errors.As(err, &conflict):
			logger.WithField("email", in.Email).Info("already seeded")
		case err != nil:
			logger.WithError(err).WithField("email", in.Email).Fatal("failed to seed user")
		default:
			logger.WithField("id", u.ID).WithField("email", u.Email).Info("seeded user")
		}
	}
}
