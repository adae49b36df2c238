package kafka_middleware

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"carrental/pkg/kafka"
)

// Metrics counts producer outcomes
type Metrics struct {
	published            atomic.Int64
	failed               atomic.Int64
	deadLettered         atomic.Int64
	publishDurationTotal atomic.Int64 // Nanoseconds
}

// Snapshot is a point-in-time copy of Metrics, shaped for JSON
type Snapshot struct {
	Published          int64  `json:"published"`
	Failed             int64  `json:"failed"`
	DeadLettered       int64  `json:"dead_lettered"`
	AvgPublishDuration string `json:"avg_publish_duration"`
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

// Reset zeroes all counters
func (m *Metrics) Reset() {
	m.published.Store(0)
	m.failed.Store(0)
	m.deadLettered.Store(0)
	m.publishDurationTotal.Store(0)
}

// AvgPublishDuration returns the average duration of successful publishes
func (m *Metrics) AvgPublishDuration() time.Duration {
	published := m.published.Load()
	if published == 0 {
		return 0
	}
	return time.Duration(m.publishDurationTotal.Load() / published)
}

func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		Published:          m.published.Load(),
		Failed:             m.failed.Load(),
		DeadLettered:       m.deadLettered.Load(),
		AvgPublishDuration: m.AvgPublishDuration().String(),
	}
}

// ProducerMiddleware tracks producer metrics
func (m *Metrics) ProducerMiddleware() kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()

		err := next(ctx, msg)
		if err != nil {
			m.failed.Add(1)
			var pubErr *kafka.PublishError
			if errors.As(err, &pubErr) && pubErr.SentToDLQ {
				m.deadLettered.Add(1)
			}
			return err
		}

		m.publishDurationTotal.Add(int64(time.Since(start)))
		m.published.Add(1)
		return nil
	}
}
