package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// dependencyUp is 1 when the last probe of a dependency (postgres, redis) succeeded.
	dependencyUp = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "outreach",
		Subsystem: "dependency",
		Name:      "up",
		Help:      "Dependency availability (1=up, 0=down).",
	}, []string{"dependency"})

	// dependencyPingSeconds observes probe latency in seconds.
	dependencyPingSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "outreach",
		Subsystem: "dependency",
		Name:      "ping_seconds",
		Help:      "Dependency ping latency in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"dependency"})
)

// Probe runs ping, records availability and latency for name, and returns ping's error.
func Probe(ctx context.Context, name string, ping func(context.Context) error) error {
	start := time.Now()
	err := ping(ctx)
	dependencyPingSeconds.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		dependencyUp.WithLabelValues(name).Set(0)
		return err
	}
	dependencyUp.WithLabelValues(name).Set(1)
	return nil
}
