package metrics

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/harborview/harborview/pkg/types"
)

var defaultMetrics *Metrics

// Metric holds the data points from a single container recreation.
type Metric struct {
	Status   types.RecreateStatus // Terminal status of the recreation.
	Duration time.Duration        // Wall time of the whole operation.
}

// Metrics handles processing and exposing recreation metrics.
type Metrics struct {
	channel        chan *Metric       // Channel for queuing metrics.
	total          prometheus.Counter // Counter for recreations attempted.
	succeeded      prometheus.Counter // Counter for successful recreations.
	restored       prometheus.Counter // Counter for recreations rolled back to the original.
	rollbackFailed prometheus.Counter // Counter for recreations whose rollback also failed.
	failed         prometheus.Counter // Counter for recreations that failed with rollback disabled.
	dropped        prometheus.Counter // Counter for dropped metrics.
	lastDuration   prometheus.Gauge   // Gauge for the duration of the last recreation.

	// Plain counters mirror the Prometheus ones so the JSON
	// summary endpoint can read them back.
	totalCount          atomic.Int64
	succeededCount      atomic.Int64
	restoredCount       atomic.Int64
	rollbackFailedCount atomic.Int64
	failedCount         atomic.Int64

	stopCh       chan struct{}
	shutdownOnce sync.Once
	//nolint:containedctx
	ctx    context.Context
	cancel context.CancelFunc
}

// NewWithRegistry creates a new Metrics handler with a custom Prometheus registry.
//
// Parameters:
//   - registry: Prometheus registerer to use for metric registration.
//
// Returns:
//   - (*Metrics, error): Metrics handler with Prometheus metrics and goroutine, or an error if registration fails.
func NewWithRegistry(registry prometheus.Registerer) (*Metrics, error) {
	// channelBufferSize sets the metrics channel capacity.
	const channelBufferSize = 10

	ctx, cancel := context.WithCancel(context.Background())

	metrics := &Metrics{
		total: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "harborview_recreations_total",
			Help: "Number of container recreations attempted since harborview started",
		}),
		succeeded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "harborview_recreations_succeeded_total",
			Help: "Number of container recreations that ended with the new container running",
		}),
		restored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "harborview_recreations_restored_total",
			Help: "Number of container recreations rolled back to the original container",
		}),
		rollbackFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "harborview_recreations_rollback_failed_total",
			Help: "Number of container recreations whose rollback also failed",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "harborview_recreations_failed_total",
			Help: "Number of container recreations that failed with rollback disabled",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "harborview_metrics_dropped_total",
			Help: "Number of metrics dropped due to full channel",
		}),
		lastDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "harborview_recreation_duration_seconds",
			Help: "Duration of the last container recreation in seconds",
		}),
		channel: make(chan *Metric, channelBufferSize),
		stopCh:  make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}

	metricsList := []prometheus.Collector{
		metrics.total,
		metrics.succeeded,
		metrics.restored,
		metrics.rollbackFailed,
		metrics.failed,
		metrics.dropped,
		metrics.lastDuration,
	}
	for _, m := range metricsList {
		if err := registry.Register(m); err != nil {
			cancel()

			return nil, err
		}
	}

	go metrics.handleUpdates()

	return metrics, nil
}

// Default initializes or returns the singleton Metrics handler. It panics on
// registration failure, such as duplicate registration against the default registry.
func Default() *Metrics {
	if defaultMetrics != nil {
		return defaultMetrics
	}

	var err error

	defaultMetrics, err = NewWithRegistry(prometheus.DefaultRegisterer)
	if err != nil {
		panic(err)
	}

	return defaultMetrics
}

// Register attempts to enqueue a metric for processing.
// If the channel is full, the metric is dropped and the dropped counter is incremented.
func (m *Metrics) Register(metric *Metric) {
	select {
	case m.channel <- metric:
	default:
		m.dropped.Inc()
	}
}

// QueueIsEmpty checks if the metrics channel is empty.
func (m *Metrics) QueueIsEmpty() bool {
	return len(m.channel) == 0
}

// Total returns the number of recreations attempted.
func (m *Metrics) Total() int64 { return m.totalCount.Load() }

// Succeeded returns the number of successful recreations.
func (m *Metrics) Succeeded() int64 { return m.succeededCount.Load() }

// Restored returns the number of recreations rolled back to the original.
func (m *Metrics) Restored() int64 { return m.restoredCount.Load() }

// RollbackFailed returns the number of recreations whose rollback also failed.
func (m *Metrics) RollbackFailed() int64 { return m.rollbackFailedCount.Load() }

// Failed returns the number of recreations that failed with rollback disabled.
func (m *Metrics) Failed() int64 { return m.failedCount.Load() }

// Shutdown gracefully stops the metrics processing goroutine.
// This method is idempotent and can be called multiple times safely.
func (m *Metrics) Shutdown() {
	m.shutdownOnce.Do(func() {
		close(m.stopCh)
		m.cancel()
	})
}

// handleUpdates processes metrics from the channel.
func (m *Metrics) handleUpdates() {
	for {
		select {
		case metric, ok := <-m.channel:
			if !ok {
				return
			}

			if metric == nil {
				continue
			}

			m.total.Inc()
			m.totalCount.Add(1)
			m.lastDuration.Set(metric.Duration.Seconds())

			switch metric.Status {
			case types.StatusSuccess:
				m.succeeded.Inc()
				m.succeededCount.Add(1)
			case types.StatusRestored:
				m.restored.Inc()
				m.restoredCount.Add(1)
			case types.StatusRollbackFailed:
				m.rollbackFailed.Inc()
				m.rollbackFailedCount.Add(1)
			case types.StatusFailed:
				m.failed.Inc()
				m.failedCount.Add(1)
			}
		case <-m.stopCh:
			return
		case <-m.ctx.Done():
			return
		}
	}
}
