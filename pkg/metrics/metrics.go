// Package metrics records form lifecycle outcomes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder receives lifecycle observations.
type Recorder interface {
	ObserveLifecycle(state, outcome string)
	ObserveRenderError(kind string)
}

type nop struct{}

func (nop) ObserveLifecycle(string, string) {}
func (nop) ObserveRenderError(string)       {}

// Nop returns a Recorder that discards observations.
func Nop() Recorder { return nop{} }

// Prometheus exports lifecycle counters.
type Prometheus struct {
	lifecycle    *prometheus.CounterVec
	renderErrors *prometheus.CounterVec
}

// NewPrometheus registers the formview counters on reg. A nil reg uses the
// default registerer.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	p := &Prometheus{
		lifecycle: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "formview",
			Name:      "lifecycle_total",
			Help:      "Form lifecycle runs by request state and outcome.",
		}, []string{"state", "outcome"}),
		renderErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "formview",
			Name:      "render_errors_total",
			Help:      "Template render failures by kind.",
		}, []string{"kind"}),
	}
	for _, c := range []prometheus.Collector{p.lifecycle, p.renderErrors} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// ObserveLifecycle counts one lifecycle run.
func (p *Prometheus) ObserveLifecycle(state, outcome string) {
	p.lifecycle.WithLabelValues(state, outcome).Inc()
}

// ObserveRenderError counts one render failure.
func (p *Prometheus) ObserveRenderError(kind string) {
	p.renderErrors.WithLabelValues(kind).Inc()
}
