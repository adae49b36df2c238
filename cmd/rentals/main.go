package main

import (
	"carrental/internal/rentals/events"
	"carrental/internal/rentals/handler"
	"carrental/internal/rentals/repository"
	"carrental/internal/rentals/service"
	"carrental/internal/rentals/validator"
	"carrental/internal/rentalwindow"
	"carrental/pkg/app"
	"carrental/pkg/config"
	"carrental/pkg/kafka"
	kafka_config "carrental/pkg/kafka/config"
	kafka_middleware "carrental/pkg/kafka/middleware"
)

const ServiceName = "rentals"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Rentals service")

	serverApp := app.NewApplication(cfg)
	publisher, metrics := initPublisher(cfg, serverApp)
	rentalService, availabilityService := initServices(cfg, publisher)

	serverApp.SetApp(
		handler.NewHealthHandler(cfg.Client.Mongo, cfg.Client.Redis, metrics, cfg.Log),
		handler.NewRentalHandler(rentalService, cfg.Log),
		handler.NewAvailabilityHandler(availabilityService, cfg.Log),
	)
	serverApp.Run()
}

// initPublisher returns a Kafka-backed publisher when KAFKA_ENABLED is set and a
// logging no-op otherwise. metrics is nil without Kafka.
func initPublisher(cfg *config.Config, serverApp *app.Application) (events.Publisher, *kafka_middleware.Metrics) {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, rental events will only be logged")
		return events.NewNoopPublisher(cfg.Log), nil
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.KafkaRentalsTopic, cfg.KafkaRentalsDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	metrics := kafka_middleware.NewMetrics()
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(metrics.ProducerMiddleware())
	}

	serverApp.OnShutdown(func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	})

	cfg.Log.Info("Kafka producer initialized", "topic", producer.Topic())
	return events.NewKafkaPublisher(producer, ServiceName), metrics
}

func initServices(cfg *config.Config, publisher events.Publisher) (service.RentalService, service.AvailabilityService) {
	calc := rentalwindow.NewCalculator(rentalwindow.Policy{
		MaxHourlyDuration: cfg.RentalMaxHourlyDuration,
		Location:          cfg.RentalLocation,
	})
	rentalValidator := validator.NewRentalValidator(cfg.Log)

	carRepo := repository.NewMongoCarRepository(cfg)
	rentalRepo := repository.NewMongoRentalRepository(cfg)
	walletRepo := repository.NewMongoWalletRepository(cfg)
	lockRepo := repository.NewRentalLockRepository(cfg)

	rentalService := service.NewRentalService(
		rentalRepo,
		carRepo,
		walletRepo,
		lockRepo,
		rentalValidator,
		calc,
		publisher,
		cfg,
	)
	availabilityService := service.NewAvailabilityService(
		carRepo,
		rentalRepo,
		rentalValidator,
		calc,
		cfg,
	)

	cfg.Log.Info("Rental services initialized",
		"database", cfg.MongoDatabaseName,
		"timezone", cfg.RentalLocation.String(),
		"max_hourly_duration", cfg.RentalMaxHourlyDuration,
	)
	return rentalService, availabilityService
}
