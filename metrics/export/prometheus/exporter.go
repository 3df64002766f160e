package prometheus

import (
	"net/http"
	"strconv"
	"strings"

	goCinema "github.com/MrEthical07/goCinema"
	"github.com/MrEthical07/goCinema/metrics/export/internaldefs"
)

type metricsSource interface {
	MetricsSnapshot() goCinema.MetricsSnapshot
	EventStats() goCinema.EventStats
}

// PrometheusExporter renders engine metrics in Prometheus text exposition format.
type PrometheusExporter struct {
	source metricsSource
}

// NewPrometheusExporter creates a Prometheus exporter that reads from the given [goCinema.Engine].
func NewPrometheusExporter(engine *goCinema.Engine) *PrometheusExporter {
	return &PrometheusExporter{source: engine}
}

// NewPrometheusExporterFromSource creates a Prometheus exporter from a
// custom metrics source.
func NewPrometheusExporterFromSource(source metricsSource) *PrometheusExporter {
	return &PrometheusExporter{source: source}
}

// Handler returns an http.Handler that serves Prometheus metrics.
func (p *PrometheusExporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_, _ = w.Write([]byte(p.Render()))
	})
}

// Render returns the current metrics in Prometheus text exposition format.
// Engine families are omitted when metrics are disabled; event families are
// omitted while no event has been delivered or dropped. Render returns ""
// when both are absent.
func (p *PrometheusExporter) Render() string {
	if p == nil || p.source == nil {
		return ""
	}

	snapshot := p.source.MetricsSnapshot()
	stats := p.source.EventStats()
	metricsOn := len(snapshot.Counters) > 0 || len(snapshot.Histograms) > 0
	eventsSeen := sum(stats.Delivered)+sum(stats.Dropped) > 0
	if !metricsOn && !eventsSeen {
		return ""
	}

	var b strings.Builder
	b.Grow(8192)

	if metricsOn {
		for _, fam := range internaldefs.CounterFamilies {
			writeHeader(&b, fam.Name, fam.Help, "counter")
			for _, s := range fam.Series {
				writeSample(&b, fam.Name, s.Labels, snapshot.Counters[s.ID])
			}
		}
		for _, def := range internaldefs.HistogramDefs {
			nonCumulative := internaldefs.NormalizeBuckets(snapshot.Histograms[def.ID])
			writeHistogram(&b, def.Name, def.Help, internaldefs.CumulativeBuckets(nonCumulative))
		}
	}

	if eventsSeen {
		writeEventFamily(&b, internaldefs.EventsDeliveredName, internaldefs.EventsDeliveredHelp, stats.Delivered)
		writeEventFamily(&b, internaldefs.EventsDroppedName, internaldefs.EventsDroppedHelp, stats.Dropped)
	}

	return b.String()
}

func sum(m map[string]uint64) uint64 {
	var n uint64
	for _, v := range m {
		n += v
	}
	return n
}

func writeEventFamily(b *strings.Builder, name, help string, values map[string]uint64) {
	writeHeader(b, name, help, "counter")
	for _, et := range internaldefs.EventTypes {
		writeSample(b, name, []internaldefs.Label{{Name: internaldefs.EventTypeLabel, Value: et}}, values[et])
	}
}

func writeHeader(b *strings.Builder, name, help, kind string) {
	b.WriteString("# HELP ")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(escapeHelp(help))
	b.WriteByte('\n')
	b.WriteString("# TYPE ")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(kind)
	b.WriteByte('\n')
}

func writeSample(b *strings.Builder, name string, labels []internaldefs.Label, value uint64) {
	b.WriteString(name)
	if len(labels) > 0 {
		b.WriteByte('{')
		for i, l := range labels {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(l.Name)
			b.WriteString("=\"")
			b.WriteString(escapeLabelValue(l.Value))
			b.WriteByte('"')
		}
		b.WriteByte('}')
	}
	b.WriteByte(' ')
	b.WriteString(strconv.FormatUint(value, 10))
	b.WriteByte('\n')
}

func writeHistogram(b *strings.Builder, name, help string, cumulative [8]uint64) {
	writeHeader(b, name, help, "histogram")

	bucket := name + "_bucket"
	for i, le := range internaldefs.HistogramBounds {
		writeSample(b, bucket, []internaldefs.Label{{Name: "le", Value: le}}, cumulative[i])
	}
	writeSample(b, name+"_count", nil, cumulative[len(cumulative)-1])

	// Snapshots carry bucket counts only.
	writeSample(b, name+"_sum", nil, 0)
}

func escapeHelp(help string) string {
	help = strings.ReplaceAll(help, "\\", "\\\\")
	help = strings.ReplaceAll(help, "\n", "\\n")
	return help
}

func escapeLabelValue(v string) string {
	v = strings.ReplaceAll(v, "\\", "\\\\")
	v = strings.ReplaceAll(v, "\"", "\\\"")
	v = strings.ReplaceAll(v, "\n", "\\n")
	return v
}
