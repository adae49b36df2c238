package kafka_config

import "time"

const (
	DefaultKafkaBrokers = "localhost:9092"

	// Producer
	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchSize    = 100
	DefaultProducerBatchBytes   = 1 << 20
	DefaultProducerBatchTimeout = 10 * time.Millisecond
	DefaultProducerWriteTimeout = 5 * time.Second
	DefaultProducerRequireAcks  = -1
	DefaultProducerCompression  = "snappy"

	DefaultEnableMiddleware = true
)
