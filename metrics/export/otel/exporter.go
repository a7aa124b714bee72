package otel

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/aspxauth"
	"github.com/MrEthical07/aspxauth/metrics/export/internaldefs"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	// ErrNilMeter is returned when no meter is supplied.
	ErrNilMeter = errors.New("nil meter")
	// ErrNilSource is returned when no metrics source is supplied.
	ErrNilSource = errors.New("nil metrics source")
)

// MetricsSource is the read side of an engine needed by the exporter.
type MetricsSource interface {
	MetricsSnapshot() aspxauth.MetricsSnapshot
	Mode() aspxauth.Mode
}

type observedCounter struct {
	id         aspxauth.MetricID
	instrument metric.Int64ObservableCounter
}

type observedHistogram struct {
	id      aspxauth.MetricID
	buckets [8]metric.Int64ObservableGauge
	count   metric.Int64ObservableGauge
}

// OTelExporter publishes engine metrics as observable instruments on a caller-owned meter.
type OTelExporter struct {
	source       MetricsSource
	registration metric.Registration
	counters     []observedCounter
	histograms   []observedHistogram
	info         metric.Int64ObservableGauge
}

// NewOTelExporter registers instruments for engine on meter.
func NewOTelExporter(meter metric.Meter, engine *aspxauth.Engine) (*OTelExporter, error) {
	if engine == nil {
		return nil, ErrNilSource
	}
	return NewOTelExporterFromSource(meter, engine)
}

// NewOTelExporterFromSource registers instruments for a custom [MetricsSource].
func NewOTelExporterFromSource(meter metric.Meter, source MetricsSource) (*OTelExporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	exporter := &OTelExporter{
		source:     source,
		counters:   make([]observedCounter, 0, len(internaldefs.CounterDefs)),
		histograms: make([]observedHistogram, 0, len(internaldefs.HistogramDefs)),
	}

	observables := make([]metric.Observable, 0, len(internaldefs.CounterDefs)+len(internaldefs.HistogramDefs)*9+1)

	for _, def := range internaldefs.CounterDefs {
		ins, err := meter.Int64ObservableCounter(def.Name, metric.WithDescription(def.Help))
		if err != nil {
			return nil, fmt.Errorf("create observable counter %s: %w", def.Name, err)
		}
		exporter.counters = append(exporter.counters, observedCounter{id: def.ID, instrument: ins})
		observables = append(observables, ins)
	}

	for _, def := range internaldefs.HistogramDefs {
		h, err := newObservedHistogram(meter, def)
		if err != nil {
			return nil, err
		}
		exporter.histograms = append(exporter.histograms, h)
		observables = append(observables, h.count)
		for _, b := range h.buckets {
			observables = append(observables, b)
		}
	}

	info, err := meter.Int64ObservableGauge("aspxauth_engine_info", metric.WithDescription("Engine protection mode."))
	if err != nil {
		return nil, fmt.Errorf("create engine info gauge: %w", err)
	}
	exporter.info = info
	observables = append(observables, info)

	registration, err := meter.RegisterCallback(exporter.observe, observables...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}

	exporter.registration = registration
	return exporter, nil
}

func newObservedHistogram(meter metric.Meter, def internaldefs.HistogramDef) (observedHistogram, error) {
	h := observedHistogram{id: def.ID}
	for i, suffix := range internaldefs.HistogramBoundSuffix {
		name := def.Name + "_bucket_le_" + suffix
		ins, err := meter.Int64ObservableGauge(name, metric.WithDescription("Cumulative histogram bucket count."))
		if err != nil {
			return h, fmt.Errorf("create histogram bucket gauge %s: %w", name, err)
		}
		h.buckets[i] = ins
	}
	countName := def.Name + "_count"
	countIns, err := meter.Int64ObservableGauge(countName, metric.WithDescription("Histogram total sample count."))
	if err != nil {
		return h, fmt.Errorf("create histogram count gauge %s: %w", countName, err)
	}
	h.count = countIns
	return h, nil
}

func (e *OTelExporter) observe(_ context.Context, observer metric.Observer) error {
	snapshot := e.source.MetricsSnapshot()
	for _, c := range e.counters {
		observer.ObserveInt64(c.instrument, int64(snapshot.Counters[c.id]))
	}
	for _, h := range e.histograms {
		nonCumulative := internaldefs.NormalizeBuckets(snapshot.Histograms[h.id])
		cumulative := internaldefs.CumulativeBuckets(nonCumulative)
		for i := 0; i < len(cumulative); i++ {
			observer.ObserveInt64(h.buckets[i], int64(cumulative[i]))
		}
		observer.ObserveInt64(h.count, int64(cumulative[len(cumulative)-1]))
	}
	observer.ObserveInt64(e.info, 1, metric.WithAttributes(attribute.String("mode", string(e.source.Mode()))))
	return nil
}

// Close unregisters the collection callback.
func (e *OTelExporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
