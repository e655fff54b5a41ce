package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Métricas del flujo OAuth. Viven en un paquete aparte para que el engine y
// el demo server las compartan sin ciclos de import.

var (
	FlowTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "socialauth_flow_total",
		Help: "Operaciones del flujo OAuth por provider, op y status",
	}, []string{"provider", "op", "status"})

	FlowDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "socialauth_flow_duration_seconds",
		Help:    "Duración de las operaciones del flujo OAuth",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
	}, []string{"provider", "op"})

	StateRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "socialauth_state_rejected_total",
		Help: "Callbacks rechazados por state CSRF desconocido o expirado",
	}, []string{"provider"})

	RateLimited = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "socialauth_rate_limited_total",
		Help: "Requests rechazados por el rate limiter del demo server",
	})
)

// ObserveFlow registra el resultado y la duración de una operación.
func ObserveFlow(provider, op, status string, d time.Duration) {
	FlowTotal.WithLabelValues(provider, op, status).Inc()
	FlowDuration.WithLabelValues(provider, op).Observe(d.Seconds())
}

// RegisterFlow registra las métricas del flujo en reg (o el default si es nil).
func RegisterFlow(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{FlowTotal, FlowDuration, StateRejected, RateLimited} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return err
			}
		}
	}
	return nil
}
