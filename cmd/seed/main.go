package main

import (
	"context"
	"log"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/persistence"
	"github.com/spec-kit/helpdesk/internal/repository"
	"github.com/spec-kit/helpdesk/internal/seed"
	"github.com/spec-kit/helpdesk/internal/service"
)

func main() {
	tickets := pflag.Int("tickets", 30, "number of tickets to create")
	password := pflag.String("password", "changeme123", "password for seeded accounts")
	randSeed := pflag.Int64("seed", time.Now().UnixNano(), "random seed for reproducible runs")
	migrate := pflag.Bool("migrate", true, "apply migrations before seeding")
	pflag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if *migrate {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)

	seeder := seed.NewSeeder(
		repository.NewUserRepository(pool),
		repository.NewCategoryRepository(pool),
		repository.NewClientRepository(pool),
		repository.NewTechnicianRepository(pool),
		ticketRepo,
		service.NewAdmissionController(ticketRepo, nil),
		logger,
		*randSeed,
	)

	err = seeder.Run(ctx, seed.Options{
		Tickets:    *tickets,
		BcryptCost: cfg.Auth.BcryptCost,
		Password:   *password,
	})
	if err != nil {
		logger.Fatal("seeding failed", zap.Error(err))
	}
}
