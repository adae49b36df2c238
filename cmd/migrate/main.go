package main

import (
	"context"
	"flag"
	"os"
	"time"

	mongoMigration "carrental/internal/migrations/mongo"
	"carrental/internal/rentals/validator"
	"carrental/pkg/config"
)

const JobName = "mongo-migration"

func main() {
	seedPath := flag.String("seed", "", "optional JSON file with an array of cars to upsert into the catalog")
	timeout := flag.Duration("timeout", 120*time.Second, "overall deadline for the job")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Mongo migration job")
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)

	if err := mongoMigration.RunMigration(ctx, db, cfg.Log); err != nil {
		cfg.Log.Error("Migration failed", "error", err)
		cfg.GracefulShutdown()
		os.Exit(1)
	}

	if *seedPath != "" {
		if err := seed(ctx, cfg, *seedPath); err != nil {
			cfg.Log.Error("Seeding failed", "file", *seedPath, "error", err)
			cfg.GracefulShutdown()
			os.Exit(1)
		}
	}

	cfg.Log.Info("Migration completed successfully")
}

func seed(ctx context.Context, cfg *config.Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	carValidator := validator.NewRentalValidator(cfg.Log)
	cars, err := mongoMigration.ReadSeedCars(f, carValidator.ValidateCar)
	if err != nil {
		return err
	}
	return mongoMigration.SeedCars(ctx, cfg.Client.Mongo.Database(cfg.MongoDatabaseName), cars, cfg.Log)
}
