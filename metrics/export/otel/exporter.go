package otel

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/metric"

	"github.com/MrEthical07/hrauth"
	"github.com/MrEthical07/hrauth/metrics/export/internaldefs"
)

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

type counterInstrument struct {
	id hrauth.MetricID
	ob metric.Int64ObservableCounter
}

type gaugeInstrument struct {
	def internaldefs.GaugeDef
	ob  metric.Int64ObservableGauge
}

// histogramInstruments flattens one histogram into a gauge per cumulative
// bucket plus a count gauge.
type histogramInstruments struct {
	id      hrauth.MetricID
	buckets [8]metric.Int64ObservableGauge
	count   metric.Int64ObservableGauge
}

// OTelExporter publishes engine metrics as asynchronous instruments. All
// instruments are observed by one callback that takes a single snapshot.
type OTelExporter struct {
	source       internaldefs.Source
	registration metric.Registration

	counters     []counterInstrument
	gauges       []gaugeInstrument
	histograms   []histogramInstruments
	auditDropped metric.Int64ObservableCounter
}

// NewOTelExporter registers instruments on meter reading from engine.
func NewOTelExporter(meter metric.Meter, engine *hrauth.Engine) (*OTelExporter, error) {
	if engine == nil {
		return nil, ErrNilSource
	}
	return NewOTelExporterFromSource(meter, engine)
}

// NewOTelExporterFromSource registers instruments on meter reading from
// source. Close unregisters the callback.
func NewOTelExporterFromSource(meter metric.Meter, source internaldefs.Source) (*OTelExporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	e := &OTelExporter{source: source}
	var observables []metric.Observable

	for _, def := range internaldefs.CounterDefs {
		ob, err := meter.Int64ObservableCounter(def.Name, metric.WithDescription(def.Help))
		if err != nil {
			return nil, fmt.Errorf("counter %s: %w", def.Name, err)
		}
		e.counters = append(e.counters, counterInstrument{id: def.ID, ob: ob})
		observables = append(observables, ob)
	}

	for _, def := range internaldefs.GaugeDefs {
		ob, err := meter.Int64ObservableGauge(def.Name, metric.WithDescription(def.Help))
		if err != nil {
			return nil, fmt.Errorf("gauge %s: %w", def.Name, err)
		}
		e.gauges = append(e.gauges, gaugeInstrument{def: def, ob: ob})
		observables = append(observables, ob)
	}

	for _, def := range internaldefs.HistogramDefs {
		h := histogramInstruments{id: def.ID}
		for i, suffix := range internaldefs.HistogramBoundSuffix {
			name := def.Name + "_bucket_le_" + suffix
			ob, err := meter.Int64ObservableGauge(name, metric.WithDescription("Cumulative histogram bucket count."))
			if err != nil {
				return nil, fmt.Errorf("histogram bucket %s: %w", name, err)
			}
			h.buckets[i] = ob
			observables = append(observables, ob)
		}
		ob, err := meter.Int64ObservableGauge(def.Name+"_count", metric.WithDescription("Histogram sample count."))
		if err != nil {
			return nil, fmt.Errorf("histogram count %s: %w", def.Name, err)
		}
		h.count = ob
		observables = append(observables, ob)
		e.histograms = append(e.histograms, h)
	}

	dropped, err := meter.Int64ObservableCounter(internaldefs.AuditDroppedName,
		metric.WithDescription(internaldefs.AuditDroppedHelp))
	if err != nil {
		return nil, fmt.Errorf("counter %s: %w", internaldefs.AuditDroppedName, err)
	}
	e.auditDropped = dropped
	observables = append(observables, dropped)

	reg, err := meter.RegisterCallback(e.observe, observables...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}
	e.registration = reg
	return e, nil
}

func (e *OTelExporter) observe(_ context.Context, o metric.Observer) error {
	snapshot := e.source.MetricsSnapshot()
	sess := e.source.Session()

	if len(snapshot.Counters) > 0 {
		for _, c := range e.counters {
			o.ObserveInt64(c.ob, int64(snapshot.Counters[c.id]))
		}
	}
	for _, g := range e.gauges {
		o.ObserveInt64(g.ob, g.def.Value(sess))
	}
	for _, h := range e.histograms {
		raw, ok := snapshot.Histograms[h.id]
		if !ok {
			continue
		}
		cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(raw))
		for i, v := range cumulative {
			o.ObserveInt64(h.buckets[i], int64(v))
		}
		o.ObserveInt64(h.count, int64(cumulative[len(cumulative)-1]))
	}
	o.ObserveInt64(e.auditDropped, int64(e.source.AuditDropped()))
	return nil
}

// Close unregisters the collection callback.
func (e *OTelExporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
