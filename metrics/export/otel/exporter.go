package otel

import (
	"context"
	"errors"
	"fmt"

	goCinema "github.com/MrEthical07/goCinema"
	"github.com/MrEthical07/goCinema/metrics/export/internaldefs"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

type metricsSource interface {
	MetricsSnapshot() goCinema.MetricsSnapshot
	EventStats() goCinema.EventStats
}

type observedSeries struct {
	id   goCinema.MetricID
	opts metric.ObserveOption
}

type observedFamily struct {
	instrument metric.Int64ObservableCounter
	series     []observedSeries
}

type observedHistogram struct {
	id      goCinema.MetricID
	buckets metric.Int64ObservableGauge
	count   metric.Int64ObservableGauge
}

// OTelExporter publishes engine metrics as observable instruments read on
// every collection cycle. Each family is one instrument whose series are
// told apart by attributes.
type OTelExporter struct {
	source       metricsSource
	registration metric.Registration
	families     []observedFamily
	histograms   []observedHistogram
	delivered    metric.Int64ObservableCounter
	dropped      metric.Int64ObservableCounter
}

func NewOTelExporter(meter metric.Meter, engine *goCinema.Engine) (*OTelExporter, error) {
	return NewOTelExporterFromSource(meter, engine)
}

func NewOTelExporterFromSource(meter metric.Meter, source metricsSource) (*OTelExporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	exporter := &OTelExporter{
		source:     source,
		families:   make([]observedFamily, 0, len(internaldefs.CounterFamilies)),
		histograms: make([]observedHistogram, 0, len(internaldefs.HistogramDefs)),
	}
	observables := make([]metric.Observable, 0, len(internaldefs.CounterFamilies)+len(internaldefs.HistogramDefs)*2+2)

	for _, fam := range internaldefs.CounterFamilies {
		ins, err := meter.Int64ObservableCounter(fam.Name, metric.WithDescription(fam.Help))
		if err != nil {
			return nil, fmt.Errorf("create observable counter %s: %w", fam.Name, err)
		}
		of := observedFamily{instrument: ins, series: make([]observedSeries, 0, len(fam.Series))}
		for _, s := range fam.Series {
			of.series = append(of.series, observedSeries{id: s.ID, opts: attributes(s.Labels)})
		}
		exporter.families = append(exporter.families, of)
		observables = append(observables, ins)
	}

	for _, def := range internaldefs.HistogramDefs {
		bucketName := def.Name + "_bucket"
		buckets, err := meter.Int64ObservableGauge(bucketName, metric.WithDescription("Cumulative histogram bucket count by upper bound le."))
		if err != nil {
			return nil, fmt.Errorf("create histogram bucket gauge %s: %w", bucketName, err)
		}
		countName := def.Name + "_count"
		count, err := meter.Int64ObservableGauge(countName, metric.WithDescription("Histogram total sample count."))
		if err != nil {
			return nil, fmt.Errorf("create histogram count gauge %s: %w", countName, err)
		}
		exporter.histograms = append(exporter.histograms, observedHistogram{id: def.ID, buckets: buckets, count: count})
		observables = append(observables, buckets, count)
	}

	var err error
	exporter.delivered, err = meter.Int64ObservableCounter(internaldefs.EventsDeliveredName, metric.WithDescription(internaldefs.EventsDeliveredHelp))
	if err != nil {
		return nil, fmt.Errorf("create events delivered counter: %w", err)
	}
	exporter.dropped, err = meter.Int64ObservableCounter(internaldefs.EventsDroppedName, metric.WithDescription(internaldefs.EventsDroppedHelp))
	if err != nil {
		return nil, fmt.Errorf("create events dropped counter: %w", err)
	}
	observables = append(observables, exporter.delivered, exporter.dropped)

	leOpts := make([]metric.ObserveOption, len(internaldefs.HistogramBounds))
	for i, le := range internaldefs.HistogramBounds {
		leOpts[i] = metric.WithAttributes(attribute.String("le", le))
	}
	eventOpts := make([]metric.ObserveOption, len(internaldefs.EventTypes))
	for i, et := range internaldefs.EventTypes {
		eventOpts[i] = metric.WithAttributes(attribute.String(internaldefs.EventTypeLabel, et))
	}

	registration, err := meter.RegisterCallback(func(_ context.Context, observer metric.Observer) error {
		snapshot := exporter.source.MetricsSnapshot()
		if len(snapshot.Counters) > 0 {
			for _, fam := range exporter.families {
				for _, s := range fam.series {
					observer.ObserveInt64(fam.instrument, int64(snapshot.Counters[s.id]), s.opts)
				}
			}
		}
		for _, h := range exporter.histograms {
			raw, ok := snapshot.Histograms[h.id]
			if !ok {
				continue
			}
			cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(raw))
			for i := range cumulative {
				observer.ObserveInt64(h.buckets, int64(cumulative[i]), leOpts[i])
			}
			observer.ObserveInt64(h.count, int64(cumulative[len(cumulative)-1]))
		}

		stats := exporter.source.EventStats()
		for i, et := range internaldefs.EventTypes {
			observer.ObserveInt64(exporter.delivered, int64(stats.Delivered[et]), eventOpts[i])
			observer.ObserveInt64(exporter.dropped, int64(stats.Dropped[et]), eventOpts[i])
		}
		return nil
	}, observables...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}

	exporter.registration = registration
	return exporter, nil
}

func attributes(labels []internaldefs.Label) metric.ObserveOption {
	kvs := make([]attribute.KeyValue, 0, len(labels))
	for _, l := range labels {
		kvs = append(kvs, attribute.String(l.Name, l.Value))
	}
	return metric.WithAttributes(kvs...)
}

// Close unregisters the collection callback.
func (e *OTelExporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
