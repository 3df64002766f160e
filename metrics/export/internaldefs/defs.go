package internaldefs

import (
	goCinema "github.com/MrEthical07/goCinema"
	"github.com/MrEthical07/goCinema/internal/events"
)

// Label is one name/value pair attached to a series.
type Label struct {
	Name  string
	Value string
}

// CounterSeries binds one engine counter to the labels it is published under.
type CounterSeries struct {
	ID     goCinema.MetricID
	Labels []Label
}

// CounterFamily is a counter metric name and its labelled series. Every
// engine counter belongs to exactly one family.
type CounterFamily struct {
	Name   string
	Help   string
	Series []CounterSeries
}

type HistogramDef struct {
	ID   goCinema.MetricID
	Name string
	Help string
}

func outcome(operation, result string) []Label {
	return []Label{{Name: "operation", Value: operation}, {Name: "outcome", Value: result}}
}

func cacheResult(result string) []Label {
	return []Label{{Name: "result", Value: result}}
}

var CounterFamilies = []CounterFamily{
	{
		Name: "gocinema_auth_operations_total",
		Help: "Session operations by operation and outcome. Signup outcome rejected means local validation failed; logout outcome local means no provider call was made.",
		Series: []CounterSeries{
			{ID: goCinema.MetricLoginSuccess, Labels: outcome("login", "success")},
			{ID: goCinema.MetricLoginFailure, Labels: outcome("login", "failure")},
			{ID: goCinema.MetricSignupSuccess, Labels: outcome("signup", "success")},
			{ID: goCinema.MetricSignupFailure, Labels: outcome("signup", "failure")},
			{ID: goCinema.MetricSignupValidationRejected, Labels: outcome("signup", "rejected")},
			{ID: goCinema.MetricLogoutSuccess, Labels: outcome("logout", "success")},
			{ID: goCinema.MetricLogoutFailure, Labels: outcome("logout", "failure")},
			{ID: goCinema.MetricLogoutLocal, Labels: outcome("logout", "local")},
			{ID: goCinema.MetricRefreshSuccess, Labels: outcome("refresh", "success")},
			{ID: goCinema.MetricRefreshFailure, Labels: outcome("refresh", "failure")},
		},
	},
	{
		Name:   "gocinema_sessions_expired_total",
		Help:   "Sessions cleared because they could not be renewed.",
		Series: []CounterSeries{{ID: goCinema.MetricSessionExpired}},
	},
	{
		Name: "gocinema_catalog_cache_requests_total",
		Help: "Catalog lookups by response cache result.",
		Series: []CounterSeries{
			{ID: goCinema.MetricCatalogCacheHit, Labels: cacheResult("hit")},
			{ID: goCinema.MetricCatalogCacheMiss, Labels: cacheResult("miss")},
		},
	},
	{
		Name:   "gocinema_catalog_fetch_failures_total",
		Help:   "Catalog network fetches that failed.",
		Series: []CounterSeries{{ID: goCinema.MetricCatalogRequestFailure}},
	},
}

var HistogramDefs = []HistogramDef{
	{ID: goCinema.MetricCatalogFetchLatency, Name: "gocinema_catalog_fetch_latency_seconds", Help: "Catalog network fetch latency histogram."},
}

// Event families are read from goCinema.EventStats, one series per event type.
const (
	EventTypeLabel = "event_type"

	EventsDeliveredName = "gocinema_events_delivered_total"
	EventsDeliveredHelp = "Session events handed to the sink."
	EventsDroppedName   = "gocinema_events_dropped_total"
	EventsDroppedHelp   = "Session events dropped by the dispatcher. Logout and session expiry only drop when the emitting context ends."
)

// EventTypes lists event type label values in a stable order.
var EventTypes = func() []string {
	kinds := events.Kinds()
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = k.String()
	}
	return out
}()

// HistogramBounds are the upper bounds, in seconds, of the fixed buckets.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// NormalizeBuckets pads or truncates raw counts to the fixed bucket layout.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into the cumulative counts
// exporters publish.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
