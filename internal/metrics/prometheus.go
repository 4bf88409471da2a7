package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains the Prometheus metrics exposed by the preview server.
type Metrics struct {
	HTTPListeners   prometheus.Gauge
	WebRTCPeers     prometheus.Gauge
	FramesBroadcast prometheus.Counter
	FramesDropped   prometheus.Counter
	EncodeErrors    prometheus.Counter
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPListeners: factory.NewGauge(prometheus.GaugeOpts{
			Name: "musicbox_http_listeners",
			Help: "Current number of HTTP stream listeners",
		}),
		WebRTCPeers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "musicbox_webrtc_peers",
			Help: "Current number of connected WebRTC peers",
		}),
		FramesBroadcast: factory.NewCounter(prometheus.CounterOpts{
			Name: "musicbox_frames_broadcast_total",
			Help: "Total number of 20ms PCM frames fanned out to listeners",
		}),
		FramesDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "musicbox_frames_dropped_total",
			Help: "Total number of frames dropped for slow listeners",
		}),
		EncodeErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "musicbox_opus_encode_errors_total",
			Help: "Total number of Opus encode failures",
		}),
	}
}
