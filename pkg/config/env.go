package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"
	EnvRateLimitBurst    = "RATE_LIMIT_BURST"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvKafkaEnabled         = "KAFKA_ENABLED"
	EnvKafkaRentalsTopic    = "KAFKA_RENTALS_TOPIC"
	EnvKafkaRentalsDLQTopic = "KAFKA_RENTALS_DLQ_TOPIC"

	EnvRentalMaxHourlyDuration = "RENTAL_MAX_HOURLY_DURATION"
	EnvRentalTimezone          = "RENTAL_TIMEZONE"
	EnvRentalAdvancePercent    = "RENTAL_ADVANCE_PERCENT"
	EnvRentalLockTTL           = "RENTAL_LOCK_TTL"
)
