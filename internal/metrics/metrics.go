package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the worker's Prometheus collectors on a private registry so
// tests can create isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	FramesDecoded   prometheus.Counter
	DecodeFailures  prometheus.Counter
	Detections      prometheus.Counter
	Alerts          prometheus.Counter
	Classifications *prometheus.CounterVec

	InferenceFailures *prometheus.CounterVec

	SessionRunning prometheus.Gauge
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		FramesDecoded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vigil_frames_decoded_total",
			Help: "Frames successfully decoded from client payloads",
		}),
		DecodeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vigil_frame_decode_failures_total",
			Help: "Frame payloads rejected as malformed",
		}),
		Detections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vigil_detections_total",
			Help: "Accepted person detections",
		}),
		Alerts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vigil_alerts_total",
			Help: "Alerts recorded by the alert policy",
		}),
		Classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_classifications_total",
			Help: "Clip classifications by prediction",
		}, []string{"prediction"}),
		InferenceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_inference_failures_total",
			Help: "Inference calls that returned unavailability, by stage",
		}, []string{"stage"}),
		SessionRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vigil_session_running",
			Help: "Whether the surveillance session is running (0/1)",
		}),
	}

	m.registry.MustRegister(
		m.FramesDecoded,
		m.DecodeFailures,
		m.Detections,
		m.Alerts,
		m.Classifications,
		m.InferenceFailures,
		m.SessionRunning,
	)

	return m
}

// Handler exposes the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
