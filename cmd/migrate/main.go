package main

import (
	"context"
	"time"

	mongoMigration "slotly/internal/migrations/mongo"
	"slotly/pkg/config"
)

const JobName = "mongo-migration"

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Mongo migration job")
	err := mongoMigration.RunMigration(ctx, cfg.Client.Mongo, mongoMigration.Options{
		Database:          cfg.MongoDatabaseName,
		EnforceUniqueSlot: cfg.EnforceUniqueSlot,
	}, cfg.Log)
	if err != nil {
		cfg.Log.Error("Migration failed", "error", err)
		cfg.GracefulShutdown()
		cfg.Log.Fatal("Migration job aborted")
	}
	cfg.Log.Info("Migration completed successfully")
}
