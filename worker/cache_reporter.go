package worker

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/Motimate/extant-email/utils"
	"github.com/Motimate/extant-email/verifier"
)

// SizedCache is any cache that can report how many entries it holds.
type SizedCache interface {
	Len() int
}

// CacheReporter periodically publishes cache sizes as gauges and logs them.
type CacheReporter struct {
	Caches   map[string]SizedCache
	Interval time.Duration
	Gauge    *prometheus.GaugeVec
	Logger   *logrus.Entry
}

func NewCacheReporter(engine *verifier.Engine, interval time.Duration, logger *logrus.Entry) *CacheReporter {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &CacheReporter{
		Caches: map[string]SizedCache{
			"mx":     engine.MxCache,
			"result": engine.ResultCache,
		},
		Interval: interval,
		Gauge:    verifier.CacheEntries,
		Logger:   logger.WithField("component", "cache_reporter"),
	}
}

// Start blocks until ctx is done. A non-positive interval disables reporting.
func (cr *CacheReporter) Start(ctx context.Context) {
	if cr.Interval <= 0 {
		cr.Logger.Info("Cache reporter disabled")
		return
	}

	cr.Logger.WithField("interval", utils.FormatDuration(cr.Interval)).Info("Cache reporter started")

	ticker := time.NewTicker(cr.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			cr.Logger.Info("Cache reporter shutting down...")
			return
		case <-ticker.C:
			cr.Report()
		}
	}
}

// Report publishes the current size of every cache once.
func (cr *CacheReporter) Report() {
	fields := logrus.Fields{}
	for name, cache := range cr.Caches {
		n := cache.Len()
		if cr.Gauge != nil {
			cr.Gauge.WithLabelValues(name).Set(float64(n))
		}
		fields[name+"_entries"] = n
	}
	cr.Logger.WithFields(fields).Debug("Cache sizes")
}
