// Package metrics exports the thrust history file events to Prometheus.
package metrics

import (
	"net/http"

	thf "github.com/ChristopherRabotin/GMAT-sub037"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder implements thf.Observer with Prometheus collectors.
type Recorder struct {
	queriesTotal     *prometheus.CounterVec
	uncoveredTotal   prometheus.Counter
	splineFallbacks  *prometheus.CounterVec
	massSourceMissed prometheus.Counter
	segmentsLoaded   *prometheus.GaugeVec
	gatherer         prometheus.Gatherer
}

// NewRecorder registers the collectors with reg. A nil registerer uses a new registry.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if reg == nil {
		registry := prometheus.NewRegistry()
		reg, gatherer = registry, registry
	} else if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}
	r := &Recorder{
		queriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "thf_queries_total",
				Help: "Total number of thrust queries served by segment and interpolation method.",
			},
			[]string{"segment", "method"},
		),
		uncoveredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "thf_queries_uncovered_total",
			Help: "Total number of thrust queries outside of every segment.",
		}),
		splineFallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "thf_spline_fallbacks_total",
				Help: "Segments whose spline interpolation fell back to linear.",
			},
			[]string{"segment"},
		),
		massSourceMissed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "thf_mass_source_missing_total",
			Help: "Number of engines which disabled mass depletion for lack of a mass source.",
		}),
		segmentsLoaded: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "thf_segments_loaded",
				Help: "Number of segments read by the last load of a thrust history file.",
			},
			[]string{"thf"},
		),
		gatherer: gatherer,
	}
	reg.MustRegister(r.queriesTotal, r.uncoveredTotal, r.splineFallbacks, r.massSourceMissed, r.segmentsLoaded)
	return r
}

// FileLoaded implements the thf.Observer interface.
func (r *Recorder) FileLoaded(name, path string, segments int) {
	r.segmentsLoaded.WithLabelValues(name).Set(float64(segments))
}

// QueryServed implements the thf.Observer interface.
func (r *Recorder) QueryServed(segment string, method thf.InterpolationMethod) {
	if segment == "" {
		r.uncoveredTotal.Inc()
		return
	}
	r.queriesTotal.WithLabelValues(segment, method.String()).Inc()
}

// SplineFallback implements the thf.Observer interface.
func (r *Recorder) SplineFallback(segment string, points int) {
	r.splineFallbacks.WithLabelValues(segment).Inc()
}

// MassSourceMissing implements the thf.Observer interface.
func (r *Recorder) MassSourceMissing(segment string) {
	r.massSourceMissed.Inc()
}

// Handler returns the Prometheus metrics HTTP handler.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}
