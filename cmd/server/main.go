package main

import (
	"log"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/nextgenbank/onboarding-api/internal/config"
	"github.com/nextgenbank/onboarding-api/internal/model"
	"github.com/nextgenbank/onboarding-api/internal/server"
	"github.com/nextgenbank/onboarding-api/pkg/database"
	"github.com/nextgenbank/onboarding-api/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db := database.Connect(cfg.DatabaseDSN())
	if err := migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
	}

	imageStorage, err := storage.NewCloudinaryStorage()
	if err != nil {
		log.Printf("cloudinary storage unavailable, photo uploads disabled: %v", err)
		imageStorage = nil
	}

	srv := server.NewServer(cfg, db, redisClient, imageStorage)

	if err := srv.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Profile{},
		&model.NextOfKin{},
		&model.ContentView{},
	); err != nil {
		return err
	}

	// Partial unique indexes are outside AutoMigrate's vocabulary; the
	// database enforces the single-primary rule so concurrent writers cannot
	// race past the application-level check.
	return db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_next_of_kin_one_primary
		 ON next_of_kins (profile_id) WHERE is_primary`,
	).Error
}
