// Package monitor feeds (operation, table, duration, outcome) events from
// the driver's interceptor chain into a zap logger and prometheus
// collectors, and produces health reports for external probes.
package monitor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/snapdb/snapdb/internal/driver"
)

const (
	outcomeOK    = "ok"
	outcomeError = "error"
)

// Logging returns an interceptor that logs every operation with its
// duration and outcome.
func Logging(log *zap.Logger) driver.Interceptor {
	return func(op driver.Op, table string, next driver.OpFunc) error {
		start := time.Now()
		err := next()
		fields := []zap.Field{
			zap.String("operation", string(op)),
			zap.String("table", table),
			zap.Duration("duration", time.Since(start)),
		}
		if err != nil {
			log.Error("operation failed", append(fields, zap.Error(err))...)
		} else {
			log.Debug("operation", append(fields, zap.String("outcome", outcomeOK))...)
		}
		return err
	}
}

type Collector struct {
	operations *prometheus.CounterVec
	durations  *prometheus.HistogramVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "snapdb",
			Name:      "operations_total",
			Help:      "Driver operations by table and outcome.",
		}, []string{"operation", "table", "outcome"}),
		durations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "snapdb",
			Name:      "operation_duration_seconds",
			Help:      "Driver operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "table"}),
	}
}

// Interceptor records one counter increment and one latency observation per
// operation.
func (c *Collector) Interceptor() driver.Interceptor {
	return func(op driver.Op, table string, next driver.OpFunc) error {
		start := time.Now()
		err := next()

		outcome := outcomeOK
		if err != nil {
			outcome = outcomeError
		}
		c.operations.WithLabelValues(string(op), table, outcome).Inc()
		c.durations.WithLabelValues(string(op), table).Observe(time.Since(start).Seconds())
		return err
	}
}
