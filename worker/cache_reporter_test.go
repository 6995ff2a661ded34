package worker

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Motimate/extant-email/models"
	"github.com/Motimate/extant-email/verifier"
)

type fixedCache int

func (c fixedCache) Len() int { return int(c) }

func newTestReporter(interval time.Duration) (*CacheReporter, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	gauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "test_cache_entries"}, []string{"cache"})
	return &CacheReporter{
		Caches:   map[string]SizedCache{"mx": fixedCache(3), "result": fixedCache(7)},
		Interval: interval,
		Gauge:    gauge,
		Logger:   logrus.NewEntry(logger),
	}, hook
}

func TestCacheReporterReport(t *testing.T) {
	cr, hook := newTestReporter(time.Minute)

	cr.Report()

	assert.Equal(t, float64(3), testutil.ToFloat64(cr.Gauge.WithLabelValues("mx")))
	assert.Equal(t, float64(7), testutil.ToFloat64(cr.Gauge.WithLabelValues("result")))
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, 3, entry.Data["mx_entries"])
	assert.Equal(t, 7, entry.Data["result_entries"])
}

func TestCacheReporterStartStops(t *testing.T) {
	cr, _ := newTestReporter(5 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		cr.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(cr.Gauge.WithLabelValues("result")) == 7
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reporter did not stop")
	}
}

func TestCacheReporterDisabled(t *testing.T) {
	cr, hook := newTestReporter(0)

	cr.Start(context.Background())

	assert.Equal(t, "Cache reporter disabled", hook.LastEntry().Message)
}

func TestNewCacheReporterWatchesEngineCaches(t *testing.T) {
	engine, err := verifier.NewEngine(verifier.EngineConfig{
		Resolver: staticResolver{},
		Prober:   verifier.NewSyntheticProber(1),
	})
	require.NoError(t, err)
	defer engine.Close()

	engine.CheckBatch(context.Background(), []string{"a@example.com"}, models.RequestOptions{}, 1)

	cr := NewCacheReporter(engine, time.Minute, nil)
	require.Contains(t, cr.Caches, "mx")
	require.Contains(t, cr.Caches, "result")
	assert.Equal(t, 1, cr.Caches["mx"].Len())
}

type staticResolver struct{}

func (staticResolver) LookupMX(ctx context.Context, domain string) ([]string, error) {
	return []string{"mx." + domain}, nil
}
