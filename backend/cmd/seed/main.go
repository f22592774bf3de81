package main

import (
	"context"
	"flag"

	"educprogress/backend/config"
	"educprogress/backend/services"
	"educprogress/backend/utils"
)

func main() {
	password := flag.String("password", "demo1234", "password for the demo accounts")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		utils.InitLogger().Fatalf("Error loading config: %v", err)
	}

	logger := utils.InitLogger(utils.LoggerConfig{
		Format: cfg.LogFormat,
		Level:  cfg.LogLevel,
	})

	db, err := utils.InitDB(cfg)
	if err != nil {
		logger.Fatalf("Error initializing database: %v", err)
	}

	if err := utils.Seed(context.Background(), db, services.NewGormIdentityStore(db), *password, logger); err != nil {
		logger.Fatalf("Error seeding database: %v", err)
	}
}
