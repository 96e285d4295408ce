package app

import (
	"context"
	"runtime"
	"time"

	"coda-dashboard/internal/bus"
	"coda-dashboard/internal/logging"
	"coda-dashboard/internal/metrics"
)

const metricsLogInterval = 30 * time.Second

// logMetricsLoop periodically logs performance statistics until the
// shutdown context is cancelled.
func logMetricsLoop(ctx context.Context, logger *logging.Logger, tracker *metrics.Tracker, eventBus *bus.Bus, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			logMetrics(logger, tracker, eventBus)
		case <-ctx.Done():
			return
		}
	}
}

// logMetrics emits one debug record with bus health and the per-component
// latency snapshot.
func logMetrics(logger *logging.Logger, tracker *metrics.Tracker, eventBus *bus.Bus) {
	fields := map[string]interface{}{
		"dropped_events": eventBus.Dropped(),
		"goroutines":     runtime.NumGoroutine(),
	}
	for _, s := range tracker.Snapshot() {
		fields[s.Component+"_count"] = s.Count
		fields[s.Component+"_avg_ms"] = s.Avg.Milliseconds()
		fields[s.Component+"_p95_ms"] = s.P95.Milliseconds()
	}

	logger.Debug("Metrics", "performance snapshot", fields)
}
