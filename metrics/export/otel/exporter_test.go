package otel

import (
	"context"
	"sync"
	"testing"

	"github.com/MrEthical07/hrauth"
	"github.com/MrEthical07/hrauth/session"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

type fakeSource struct {
	mu       sync.RWMutex
	snapshot hrauth.MetricsSnapshot
	dropped  uint64
	sess     session.Session
}

func (f *fakeSource) MetricsSnapshot() hrauth.MetricsSnapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := hrauth.MetricsSnapshot{
		Counters:   make(map[hrauth.MetricID]uint64, len(f.snapshot.Counters)),
		Histograms: make(map[hrauth.MetricID][]uint64, len(f.snapshot.Histograms)),
	}
	for k, v := range f.snapshot.Counters {
		out.Counters[k] = v
	}
	for k, buckets := range f.snapshot.Histograms {
		next := make([]uint64, len(buckets))
		copy(next, buckets)
		out.Histograms[k] = next
	}
	return out
}

func (f *fakeSource) AuditDropped() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dropped
}

func (f *fakeSource) Session() session.Session {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.sess.Clone()
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func TestExporterRegistersAndCollects(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := provider.Meter("hrauth-test")

	src := &fakeSource{
		snapshot: hrauth.MetricsSnapshot{
			Counters: map[hrauth.MetricID]uint64{
				hrauth.MetricLoginSuccess: 3,
			},
			Histograms: map[hrauth.MetricID][]uint64{
				hrauth.MetricLoginLatency: {1, 1, 1, 1, 1, 1, 1, 1},
			},
		},
		dropped: 1,
	}

	exp, err := NewOTelExporterFromSource(meter, src)
	if err != nil {
		t.Fatalf("NewOTelExporterFromSource failed: %v", err)
	}
	defer func() {
		if err := exp.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(rm.ScopeMetrics) == 0 {
		t.Fatal("expected collected metrics, got none")
	}
}

func TestExporterRejectsNilSource(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := provider.Meter("hrauth-test")

	if _, err := NewOTelExporterFromSource(meter, nil); err == nil {
		t.Fatal("expected error for nil source")
	}
}

func TestExporterConcurrentCollectNoPanic(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := provider.Meter("hrauth-test")

	src := &fakeSource{
		snapshot: hrauth.MetricsSnapshot{
			Counters: map[hrauth.MetricID]uint64{
				hrauth.MetricLoginSuccess: 1,
			},
			Histograms: map[hrauth.MetricID][]uint64{
				hrauth.MetricLoginLatency: {1, 0, 0, 0, 0, 0, 0, 0},
			},
		},
	}

	exp, err := NewOTelExporterFromSource(meter, src)
	if err != nil {
		t.Fatalf("NewOTelExporterFromSource failed: %v", err)
	}
	defer func() {
		if err := exp.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(v uint64) {
			defer wg.Done()
			src.mu.Lock()
			src.snapshot.Counters[hrauth.MetricLoginSuccess] = v
			src.mu.Unlock()

			var rm metricdata.ResourceMetrics
			_ = reader.Collect(context.Background(), &rm)
		}(uint64(i + 1))
	}
	wg.Wait()
}

func TestExporterPublishesHrauthNames(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := provider.Meter("hrauth-test")

	src := &fakeSource{
		snapshot: hrauth.MetricsSnapshot{
			Counters: map[hrauth.MetricID]uint64{
				hrauth.MetricDecisionAllow: 5,
			},
			Histograms: map[hrauth.MetricID][]uint64{},
		},
	}
	exp, err := NewOTelExporterFromSource(meter, src)
	if err != nil {
		t.Fatalf("NewOTelExporterFromSource failed: %v", err)
	}
	defer func() { _ = exp.Close() }()

	data := collect(t, reader)
	sum, ok := data["hrauth_decision_allow_total"].(metricdata.Sum[int64])
	if !ok || len(sum.DataPoints) != 1 || sum.DataPoints[0].Value != 5 {
		t.Fatalf("unexpected data %+v", data["hrauth_decision_allow_total"])
	}
	if _, ok := data["hrauth_login_latency_seconds_count"]; ok {
		t.Fatal("latency observed while histograms are disabled")
	}
}

func TestExporterSessionGauges(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := provider.Meter("hrauth-test")

	src := &fakeSource{
		snapshot: hrauth.MetricsSnapshot{
			Counters:   map[hrauth.MetricID]uint64{},
			Histograms: map[hrauth.MetricID][]uint64{},
		},
		sess: session.Session{
			Initialized: true,
			User:        &session.User{SubjectID: "EMP002", RoleID: "hr", ExpiresAt: 1_800_000_000},
		},
	}
	exp, err := NewOTelExporterFromSource(meter, src)
	if err != nil {
		t.Fatalf("NewOTelExporterFromSource failed: %v", err)
	}
	defer func() { _ = exp.Close() }()

	data := collect(t, reader)
	for name, want := range map[string]int64{
		"hrauth_session_state":              2,
		"hrauth_session_expires_at_seconds": 1_800_000_000,
	} {
		g, ok := data[name].(metricdata.Gauge[int64])
		if !ok || len(g.DataPoints) != 1 || g.DataPoints[0].Value != want {
			t.Fatalf("%s: unexpected data %+v", name, data[name])
		}
	}
	if _, ok := data["hrauth_login_success_total"]; ok {
		t.Fatal("counters observed while metrics are disabled")
	}
}

func TestNewOTelExporterNilEngine(t *testing.T) {
	meter := sdkmetric.NewMeterProvider().Meter("hrauth-test")
	if _, err := NewOTelExporter(meter, nil); err != ErrNilSource {
		t.Fatalf("got %v", err)
	}
}
