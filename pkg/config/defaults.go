package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "carrental"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRedisDB = 0

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute
	DefaultRateLimitBurst    = 10

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultKafkaEnabled         = false
	DefaultKafkaRentalsTopic    = "rentals.events"
	DefaultKafkaRentalsDLQTopic = "rentals.events.dlq"

	DefaultRentalMaxHourlyDuration = 72
	DefaultRentalTimezone          = "UTC"
	DefaultRentalAdvancePercent    = 20
	DefaultRentalLockTTL           = 10 * time.Second

	DefaultPaginationLimit = 100
	MinPaginationLimit     = 10
)
